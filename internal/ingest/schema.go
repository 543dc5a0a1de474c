package ingest

import "strings"

// Field is a canonical pulse attribute a vendor column can map to.
type Field string

// Canonical fields.
const (
	FieldTimestamp   Field = "timestamp"
	FieldLatitude    Field = "latitude"
	FieldLongitude   Field = "longitude"
	FieldPeakCurrent Field = "peak_current"
	FieldICHeight    Field = "ic_height"
	FieldType        Field = "type"
)

// Schema is a versioned vendor column mapping: column alias → canonical
// field. Varying column names across upload batches are handled here as
// configuration; unknown columns are ignored.
type Schema struct {
	Version int
	aliases map[string]Field
}

// SchemaV1 returns the ENTLN export mapping.
func SchemaV1() *Schema {
	return &Schema{
		Version: 1,
		aliases: map[string]Field{
			"timestamp":    FieldTimestamp,
			"time":         FieldTimestamp,
			"time_utc":     FieldTimestamp,
			"latitude":     FieldLatitude,
			"lat":          FieldLatitude,
			"longitude":    FieldLongitude,
			"lon":          FieldLongitude,
			"lng":          FieldLongitude,
			"peakcurrent":  FieldPeakCurrent,
			"peak_current": FieldPeakCurrent,
			"icheight":     FieldICHeight,
			"ic_height":    FieldICHeight,
			"type":         FieldType,
			"stroke_type":  FieldType,
		},
	}
}

// Resolve maps a header row to field → column index. Lookup is
// case-insensitive; the first column wins when aliases collide.
func (s *Schema) Resolve(header []string) map[Field]int {
	cols := make(map[Field]int, len(s.aliases))
	for i, name := range header {
		f, ok := s.aliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, seen := cols[f]; !seen {
			cols[f] = i
		}
	}
	return cols
}
