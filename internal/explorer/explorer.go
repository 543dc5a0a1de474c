// Package explorer is the public entry point of the analysis core: it
// orchestrates merge → filter → aggregate and hands the presentation
// layer a read-only result bundle.
package explorer

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/lightning-pulse-api/internal/aggregate"
	"github.com/couchcryptid/lightning-pulse-api/internal/config"
	"github.com/couchcryptid/lightning-pulse-api/internal/filter"
	"github.com/couchcryptid/lightning-pulse-api/internal/ingest"
	"github.com/couchcryptid/lightning-pulse-api/internal/model"
	"github.com/couchcryptid/lightning-pulse-api/internal/observability"
	"github.com/couchcryptid/lightning-pulse-api/internal/store"
	"github.com/google/uuid"
)

// Explorer wires the record store, the predicate builder, and the
// aggregation engine behind two operations: Ingest and Query.
type Explorer struct {
	store    *store.Store
	engine   *aggregate.Engine
	schema   *ingest.Schema
	defaults aggregate.Defaults

	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Explorer over the given store.
func New(s *store.Store, cfg *config.Config, m *observability.Metrics, logger *slog.Logger) *Explorer {
	return &Explorer{
		store:  s,
		engine: aggregate.New(cfg.AggregationWorkers),
		schema: ingest.SchemaV1(),
		defaults: aggregate.Defaults{
			CellSizeDeg:      cfg.DefaultCellSizeDeg,
			MaxScatterPoints: cfg.MaxScatterPoints,
			HistogramBuckets: cfg.HistogramBuckets,
		},
		logger:  logger,
		metrics: m,
	}
}

// Ingest normalizes each raw table and merges it into the store under a
// fresh source ID. Invalid rows are counted and skipped, never raised:
// the batch always produces a MergeResult.
func (e *Explorer) Ingest(tables []ingest.RawTable) model.MergeResult {
	start := time.Now()
	var result model.MergeResult

	for _, tbl := range tables {
		sourceID := uuid.NewString()

		pulses, rowErrs, err := ingest.MapTable(e.schema, tbl, sourceID)
		if err != nil {
			// Unmappable table: every row is rejected for the same reason.
			rowErrs = make([]model.RowError, len(tbl.Rows))
			for i := range rowErrs {
				rowErrs[i] = model.RowError{Row: i + 1, Reason: err.Error()}
			}
			e.logger.Warn("table rejected", "table", tbl.Name, "error", err, "rows", len(tbl.Rows))
		}

		res := e.store.Merge(sourceID, tbl.Name, pulses, rowErrs)
		e.logger.Info("source merged",
			"source_id", sourceID,
			"table", tbl.Name,
			"added", res.Added,
			"duplicates", res.Duplicates,
			"rejected", res.Rejected,
		)
		result.Merge(res)
	}

	e.metrics.QueryDuration.WithLabelValues("ingest").Observe(time.Since(start).Seconds())
	return result
}

// Query compiles the filter, validates the aggregation request, and
// runs the engine over a store snapshot. The store is never mutated;
// concurrent queries against an unchanging store yield identical
// results. An all-unset filter aggregates the entire store.
func (e *Explorer) Query(f *model.PulseFilter, req *model.AggregationRequest) (model.ResultBundle, error) {
	pred, err := filter.Compile(f)
	if err != nil {
		return model.ResultBundle{}, err
	}
	norm, err := aggregate.Normalize(req, e.defaults)
	if err != nil {
		return model.ResultBundle{}, err
	}

	start := time.Now()
	bundle := e.engine.Run(e.store.All(), pred, norm)
	e.metrics.QueryDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	e.metrics.QueryMatched.Observe(float64(bundle.Summary.Total))

	return bundle, nil
}

// Sources returns provenance for every merged upload.
func (e *Explorer) Sources() []model.SourceInfo { return e.store.Sources() }

// Reset discards the session dataset.
func (e *Explorer) Reset() { e.store.Clear() }

// CheckReadiness delegates to the store for the /readyz probe.
func (e *Explorer) CheckReadiness(ctx context.Context) error {
	return e.store.CheckReadiness(ctx)
}
