package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"homeval/server/internal/models"
)

// DefaultCompRadiusKm is the search radius for comparables around a subject
const DefaultCompRadiusKm = 1.5

// Point returns the location as an orb point, lon first
func Point(lat, lon float64) orb.Point {
	return orb.Point{lon, lat}
}

// SubjectPoint returns the subject location. ok is false without coordinates.
func SubjectPoint(facts models.PropertyFacts) (orb.Point, bool) {
	if !facts.HasCoordinates() {
		return orb.Point{}, false
	}
	return Point(*facts.Latitude, *facts.Longitude), true
}

// CompPoint returns the comparable location. ok is false without coordinates.
func CompPoint(c models.ComparableRecord) (orb.Point, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return orb.Point{}, false
	}
	return Point(*c.Latitude, *c.Longitude), true
}

// DistanceKm is the great circle distance between two points
func DistanceKm(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// FilterCompsWithinRadius drops comparables located farther than radiusKm
// from the subject. Comparables without coordinates are kept, and nothing is
// dropped when the subject has no coordinates or radiusKm is not positive.
func FilterCompsWithinRadius(facts models.PropertyFacts, comps []models.ComparableRecord, radiusKm float64) []models.ComparableRecord {
	subject, ok := SubjectPoint(facts)
	if !ok || radiusKm <= 0 {
		return comps
	}

	filtered := make([]models.ComparableRecord, 0, len(comps))
	for _, c := range comps {
		p, ok := CompPoint(c)
		if ok && DistanceKm(subject, p) > radiusKm {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}
