package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/lightning-pulse-api/internal/model"
)

// RawTable is one uploaded file after CSV parsing: a header row plus
// data rows, still untyped.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// timestampLayouts are tried in order. ENTLN exports use RFC 3339 with
// millisecond precision; older exports use a space separator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// MapTable normalizes a raw table into pulses using the given schema.
// Rows that fail coercion or a range invariant become RowErrors (row
// numbers are 1-based data rows, matching spreadsheet line - 1); the
// rest of the batch continues. A table missing a required column is
// unmappable and returns a table-level error instead.
func MapTable(schema *Schema, tbl RawTable, sourceID string) ([]model.Pulse, []model.RowError, error) {
	cols := schema.Resolve(tbl.Header)

	for _, required := range []Field{FieldTimestamp, FieldLatitude, FieldLongitude} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("table %q: missing required column %q", tbl.Name, required)
		}
	}

	pulses := make([]model.Pulse, 0, len(tbl.Rows))
	var rowErrs []model.RowError

	for i, row := range tbl.Rows {
		p, err := mapRow(cols, row, sourceID)
		if err != nil {
			rowErrs = append(rowErrs, model.RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		pulses = append(pulses, p)
	}

	return pulses, rowErrs, nil
}

// mapRow coerces one data row into a Pulse.
func mapRow(cols map[Field]int, row []string, sourceID string) (model.Pulse, error) {
	ts, err := parseTimestamp(cell(row, cols, FieldTimestamp))
	if err != nil {
		return model.Pulse{}, err
	}

	lat, err := parseCoordinate("latitude", cell(row, cols, FieldLatitude), 90)
	if err != nil {
		return model.Pulse{}, err
	}
	lon, err := parseCoordinate("longitude", cell(row, cols, FieldLongitude), 180)
	if err != nil {
		return model.Pulse{}, err
	}

	p := model.Pulse{
		Time:     ts,
		Lat:      lat,
		Lon:      lon,
		Polarity: model.PolarityUnknown,
		Class:    model.ClassCloudToGround,
		SourceID: sourceID,
	}

	// Peak current arrives in amperes; the model stores kA. Polarity
	// derives from the sign. A missing or unparseable value leaves the
	// current at 0 with unknown polarity rather than rejecting the row.
	if amps, ok := parseOptionalFloat(cell(row, cols, FieldPeakCurrent)); ok {
		p.PeakCurrentKA = amps / 1000.0
		if amps >= 0 {
			p.Polarity = model.PolarityPositive
		} else {
			p.Polarity = model.PolarityNegative
		}
	}

	if parseStrokeType(cell(row, cols, FieldType)) == model.ClassIntracloud {
		p.Class = model.ClassIntracloud
		// IC height arrives in meters; the model stores km. Retained
		// only for intracloud pulses so absence stays distinguishable
		// from a true zero height.
		if meters, ok := parseOptionalFloat(cell(row, cols, FieldICHeight)); ok {
			km := meters / 1000.0
			p.ICHeightKM = &km
		}
	}

	return p, nil
}

// cell returns the trimmed value of a mapped column, or "" when the
// column is unmapped or the row is short.
func cell(row []string, cols map[Field]int, f Field) string {
	i, ok := cols[f]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseTimestamp parses an instant, normalizing to UTC.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// parseCoordinate parses a degree value and enforces the ±limit range.
func parseCoordinate(name, s string, limit float64) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty %s", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable %s %q", name, s)
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("%s %g out of range [%g, %g]", name, v, -limit, limit)
	}
	return v, nil
}

// parseOptionalFloat parses a tolerant numeric column: ok is false for
// empty or non-numeric values.
func parseOptionalFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseStrokeType maps the vendor type column: 0 = cloud-to-ground,
// 1 = intracloud. Anything else defaults to cloud-to-ground.
func parseStrokeType(s string) model.StrokeClass {
	if s == "1" {
		return model.ClassIntracloud
	}
	// Some exports encode the type as a float ("1.0").
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == 1 {
		return model.ClassIntracloud
	}
	return model.ClassCloudToGround
}
