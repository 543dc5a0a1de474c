package filter

import (
	"fmt"

	"github.com/couchcryptid/lightning-pulse-api/internal/model"
)

// Validate rejects malformed filters before any query touches the
// store. A nil filter and the zero-value filter are both valid and
// impose no restriction.
func Validate(f *model.PulseFilter) error {
	if f == nil {
		return nil
	}

	if f.Window != nil && f.Window.End.Before(f.Window.Start) {
		return fmt.Errorf("window.end must not be before window.start")
	}

	for i, pol := range f.Polarities {
		if !pol.IsValid() {
			return fmt.Errorf("polarities[%d]: unknown polarity %q", i, pol)
		}
	}
	for i, c := range f.Classes {
		if !c.IsValid() {
			return fmt.Errorf("classes[%d]: unknown stroke class %q", i, c)
		}
	}

	if f.BBox != nil {
		if err := validateBBox(*f.BBox); err != nil {
			return err
		}
	}

	if f.MinPeakCurrentKA != nil && *f.MinPeakCurrentKA < 0 {
		return fmt.Errorf("min_peak_current_ka must not be negative, got %g", *f.MinPeakCurrentKA)
	}

	return nil
}

// validateBBox enforces coordinate ranges and latitude ordering.
// MinLon > MaxLon is legal (antimeridian wrap); the equivalent latitude
// inversion is not, since latitude has no wraparound.
func validateBBox(b model.BoundingBox) error {
	if b.MinLat < -90 || b.MinLat > 90 || b.MaxLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("bbox latitude bounds must be within [-90, 90]")
	}
	if b.MinLon < -180 || b.MinLon > 180 || b.MaxLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("bbox longitude bounds must be within [-180, 180]")
	}
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("bbox min_lat %g exceeds max_lat %g", b.MinLat, b.MaxLat)
	}
	return nil
}
