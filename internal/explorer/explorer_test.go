package explorer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/lightning-pulse-api/internal/config"
	"github.com/couchcryptid/lightning-pulse-api/internal/ingest"
	"github.com/couchcryptid/lightning-pulse-api/internal/model"
	"github.com/couchcryptid/lightning-pulse-api/internal/observability"
	"github.com/couchcryptid/lightning-pulse-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entlnHeader = []string{"timestamp", "latitude", "longitude", "peakcurrent", "icheight", "type"}

func testExplorer(t *testing.T) *Explorer {
	t.Helper()
	cfg := &config.Config{
		DefaultCellSizeDeg: 0.25,
		MaxScatterPoints:   5000,
		HistogramBuckets:   20,
		AggregationWorkers: 1,
	}
	m := observability.NewTestMetrics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.New(m), cfg, m, logger)
}

func stormTable(name string) ingest.RawTable {
	return ingest.RawTable{
		Name:   name,
		Header: entlnHeader,
		Rows: [][]string{
			{"2024-04-26T12:00:05Z", "35.10", "-97.60", "-25000", "", "0"},
			{"2024-04-26T12:30:00Z", "35.20", "-97.40", "15000", "", "0"},
			{"2024-04-26T12:59:59Z", "35.30", "-97.20", "30000", "4000", "1"},
		},
	}
}

func TestIngest_SingleTable(t *testing.T) {
	ex := testExplorer(t)

	res := ex.Ingest([]ingest.RawTable{stormTable("storm.csv")})

	assert.Equal(t, 3, res.Added)
	assert.Zero(t, res.Duplicates)
	assert.Zero(t, res.Rejected)
	require.Len(t, res.Sources, 1)

	sources := ex.Sources()
	require.Len(t, sources, 1)
	assert.Equal(t, "storm.csv", sources[0].Name)
	assert.Equal(t, 3, sources[0].Added)
}

func TestIngest_OverlappingTablesDedup(t *testing.T) {
	ex := testExplorer(t)

	first := ex.Ingest([]ingest.RawTable{stormTable("a.csv")})
	second := ex.Ingest([]ingest.RawTable{stormTable("b.csv")})

	assert.Equal(t, 3, first.Added)
	assert.Zero(t, second.Added)
	assert.Equal(t, 3, second.Duplicates, "identical rows across files are the same strikes")
	assert.Len(t, ex.Sources(), 2, "provenance still records both uploads")
}

func TestIngest_RejectsBadRowsKeepsGood(t *testing.T) {
	ex := testExplorer(t)
	tbl := stormTable("mixed.csv")
	tbl.Rows = append(tbl.Rows, []string{"garbage", "35.0", "-97.0", "100", "", "0"})

	res := ex.Ingest([]ingest.RawTable{tbl})

	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, 4, res.Rejections[0].Row)
}

func TestIngest_UnmappableTableRejectsEveryRow(t *testing.T) {
	ex := testExplorer(t)
	tbl := ingest.RawTable{
		Name:   "no_coords.csv",
		Header: []string{"timestamp", "peakcurrent"},
		Rows:   [][]string{{"2024-04-26T12:00:00Z", "100"}, {"2024-04-26T12:01:00Z", "200"}},
	}

	res := ex.Ingest([]ingest.RawTable{tbl})

	assert.Zero(t, res.Added)
	assert.Equal(t, 2, res.Rejected)
	require.Len(t, res.Rejections, 2)
	assert.Contains(t, res.Rejections[0].Reason, "missing required column")
}

func TestQuery_Unfiltered(t *testing.T) {
	ex := testExplorer(t)
	ex.Ingest([]ingest.RawTable{stormTable("storm.csv")})

	bundle, err := ex.Query(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, bundle.Summary.Total)
	assert.Equal(t, 2, bundle.Summary.CGCount)
	assert.Equal(t, 1, bundle.Summary.ICCount)
	require.Len(t, bundle.TimeSeries, 1)
	assert.Equal(t, 3, bundle.TimeSeries[0].Count)
	assert.Len(t, bundle.Grid.Points, 3)
	assert.False(t, bundle.Grid.Sampled)
}

func TestQuery_FilteredByClass(t *testing.T) {
	ex := testExplorer(t)
	ex.Ingest([]ingest.RawTable{stormTable("storm.csv")})

	bundle, err := ex.Query(&model.PulseFilter{Classes: []model.StrokeClass{model.ClassIntracloud}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, bundle.Summary.Total)
	assert.Equal(t, []float64{4.0, 4.0}, bundle.ICHeight.Edges)
}

func TestQuery_InvalidFilterFailsBeforeStore(t *testing.T) {
	ex := testExplorer(t)

	_, err := ex.Query(&model.PulseFilter{Window: &model.TimeWindow{
		Start: time.Date(2024, 4, 27, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC),
	}}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "window.end")
}

func TestQuery_InvalidAggregationFails(t *testing.T) {
	ex := testExplorer(t)

	_, err := ex.Query(nil, &model.AggregationRequest{Granularity: "FORTNIGHT"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown granularity")
}

func TestQuery_EmptyStore(t *testing.T) {
	ex := testExplorer(t)

	bundle, err := ex.Query(nil, nil)
	require.NoError(t, err)

	assert.Zero(t, bundle.Summary.Total)
	assert.True(t, bundle.PeakCurrent.NoData)
}

// Two identical queries against an unchanged store must return
// identical bundles, including the sampled point set.
func TestQuery_Repeatable(t *testing.T) {
	ex := testExplorer(t)
	ex.Ingest([]ingest.RawTable{stormTable("storm.csv")})

	req := &model.AggregationRequest{MaxScatterPoints: 2}
	a, err := ex.Query(nil, req)
	require.NoError(t, err)
	b, err := ex.Query(nil, req)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, a.Grid.Sampled)
	assert.Len(t, a.Grid.Points, 2)
}

func TestReset(t *testing.T) {
	ex := testExplorer(t)
	ex.Ingest([]ingest.RawTable{stormTable("storm.csv")})

	ex.Reset()

	bundle, err := ex.Query(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, bundle.Summary.Total)
	assert.Empty(t, ex.Sources())

	res := ex.Ingest([]ingest.RawTable{stormTable("storm.csv")})
	assert.Equal(t, 3, res.Added, "cleared store forgets previous dedup keys")
}

func TestCheckReadiness(t *testing.T) {
	ex := testExplorer(t)
	assert.NoError(t, ex.CheckReadiness(context.Background()))
}
