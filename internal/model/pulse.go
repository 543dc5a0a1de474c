package model

import "time"

// ─── Core types ─────────────────────────────────────────────

// Pulse represents a single lightning discharge detected by the ENTLN
// network. Pulses are created once at ingestion and never mutated.
type Pulse struct {
	Time          time.Time   `json:"time"`
	Lat           float64     `json:"lat"`
	Lon           float64     `json:"lon"`
	Polarity      Polarity    `json:"polarity"`
	Class         StrokeClass `json:"class"`
	PeakCurrentKA float64     `json:"peak_current_ka"`

	// ICHeightKM is set only for intracloud pulses. A nil pointer means
	// the height is absent, which is distinct from a true zero height.
	ICHeightKM *float64 `json:"ic_height_km,omitempty"`

	// SourceID identifies the upload that contributed this pulse.
	// Provenance only; it is not part of the dedup key.
	SourceID string `json:"source_id"`
}

// DedupKey identifies a physically unique event across overlapping
// uploads. Two pulses with equal keys are the same strike, even when
// they arrive from different files.
type DedupKey struct {
	UnixNano      int64
	Lat           float64
	Lon           float64
	PeakCurrentKA float64
}

// Key returns the pulse's dedup key.
func (p *Pulse) Key() DedupKey {
	return DedupKey{
		UnixNano:      p.Time.UnixNano(),
		Lat:           p.Lat,
		Lon:           p.Lon,
		PeakCurrentKA: p.PeakCurrentKA,
	}
}

// ─── Enums ──────────────────────────────────────────────────

// Polarity is the sign of the discharge's dominant current.
type Polarity string

// Allowed Polarity values.
const (
	PolarityPositive Polarity = "POSITIVE"
	PolarityNegative Polarity = "NEGATIVE"
	PolarityUnknown  Polarity = "UNKNOWN"
)

// IsValid returns true if the Polarity is one of the known enum values.
func (e Polarity) IsValid() bool {
	switch e {
	case PolarityPositive, PolarityNegative, PolarityUnknown:
		return true
	}
	return false
}

func (e Polarity) String() string { return string(e) }

// StrokeClass is the discharge type: cloud-to-ground or intracloud.
type StrokeClass string

// Allowed StrokeClass values.
const (
	ClassCloudToGround StrokeClass = "CLOUD_TO_GROUND"
	ClassIntracloud    StrokeClass = "INTRACLOUD"
)

// IsValid returns true if the StrokeClass is one of the known enum values.
func (e StrokeClass) IsValid() bool {
	switch e {
	case ClassCloudToGround, ClassIntracloud:
		return true
	}
	return false
}

func (e StrokeClass) String() string { return string(e) }

// ─── Provenance ─────────────────────────────────────────────

// SourceInfo records what a single uploaded file contributed to the store.
type SourceInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Added      int       `json:"added"`
	Duplicates int       `json:"duplicates"`
	Rejected   int       `json:"rejected"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// ─── Merge reporting ────────────────────────────────────────

// RowError describes a raw row that failed coercion or a range invariant.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// MergeResult reports the outcome of merging one or more uploads.
// Rejected rows are counted and described, never silently dropped.
type MergeResult struct {
	Added      int        `json:"added"`
	Duplicates int        `json:"duplicates"`
	Rejected   int        `json:"rejected"`
	Rejections []RowError `json:"rejections,omitempty"`
	Sources    []string   `json:"sources,omitempty"`
}

// Merge folds another result into this one.
func (m *MergeResult) Merge(other MergeResult) {
	m.Added += other.Added
	m.Duplicates += other.Duplicates
	m.Rejected += other.Rejected
	m.Rejections = append(m.Rejections, other.Rejections...)
	m.Sources = append(m.Sources, other.Sources...)
}
