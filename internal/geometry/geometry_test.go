package geometry

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeval/server/internal/models"
)

func comp(price float64, lat, lon *float64) models.ComparableRecord {
	return models.ComparableRecord{Price: price, Status: models.CompSold, Latitude: lat, Longitude: lon}
}

func TestDistanceKm(t *testing.T) {
	a := Point(37.77, -122.42)
	b := Point(37.78, -122.42)

	assert.InDelta(t, 1.11, DistanceKm(a, b), 0.02)
	assert.Equal(t, 0.0, DistanceKm(a, a))
}

func TestFilterCompsWithinRadius(t *testing.T) {
	subject := models.PropertyFacts{Latitude: models.Float(37.77), Longitude: models.Float(-122.42)}
	comps := []models.ComparableRecord{
		comp(1, models.Float(37.775), models.Float(-122.42)),
		comp(2, models.Float(37.79), models.Float(-122.42)),
		comp(3, nil, nil),
		comp(4, models.Float(37.77), models.Float(-122.425)),
	}

	tests := []struct {
		name     string
		facts    models.PropertyFacts
		radius   float64
		expected []float64
	}{
		{name: "Default radius", facts: subject, radius: DefaultCompRadiusKm, expected: []float64{1, 3, 4}},
		{name: "Wide radius", facts: subject, radius: 5, expected: []float64{1, 2, 3, 4}},
		{name: "Tight radius", facts: subject, radius: 0.1, expected: []float64{3}},
		{name: "Subject without coordinates", facts: models.PropertyFacts{}, radius: 0.1, expected: []float64{1, 2, 3, 4}},
		{name: "No radius", facts: subject, radius: 0, expected: []float64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCompsWithinRadius(tt.facts, comps, tt.radius)
			prices := make([]float64, len(got))
			for i, c := range got {
				prices[i] = c.Price
			}
			assert.Equal(t, tt.expected, prices)
		})
	}
}

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name     string
		points   []orb.Point
		expected int
	}{
		{name: "Too few points", points: []orb.Point{{0, 0}, {1, 1}}, expected: 0},
		{name: "Collinear", points: []orb.Point{{0, 0}, {1, 1}, {2, 2}}, expected: 0},
		{name: "Triangle", points: []orb.Point{{0, 0}, {1, 0}, {0, 1}}, expected: 4},
		{name: "Square with interior point", points: []orb.Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {1, 1}}, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hull := ConvexHull(tt.points)
			if tt.expected == 0 {
				assert.Nil(t, hull)
				return
			}
			require.Len(t, hull, tt.expected)
			assert.True(t, hull.Closed())
			assert.Equal(t, orb.CCW, hull.Orientation())
			assert.NotContains(t, hull, orb.Point{1, 1})
		})
	}
}

func TestEvaluationFeatures(t *testing.T) {
	rec := models.EvaluationRecord{
		ID:      "abc",
		Intent:  models.IntentBuy,
		Address: "1 Main St",
		Facts: models.PropertyFacts{
			Latitude:  models.Float(37.77),
			Longitude: models.Float(-122.42),
			ListPrice: models.Float(600000),
		},
		Comps: []models.ComparableRecord{
			comp(500000, models.Float(37.771), models.Float(-122.421)),
			comp(510000, models.Float(37.772), models.Float(-122.418)),
			comp(520000, models.Float(37.768), models.Float(-122.419)),
			comp(530000, nil, nil),
		},
		Evaluation: models.Evaluation{
			Bars: map[string]models.Level{models.BarPricePosition: models.LevelHigh},
		},
	}

	fc := EvaluationFeatures(rec)
	require.Len(t, fc.Features, 5)

	subject := fc.Features[0]
	assert.Equal(t, RoleSubject, subject.Properties["role"])
	assert.Equal(t, "high", subject.Properties[models.BarPricePosition])
	assert.Equal(t, "overpriced", subject.Properties["price_label"])
	assert.Equal(t, orb.Point{-122.42, 37.77}, subject.Geometry)

	for _, f := range fc.Features[1:4] {
		assert.Equal(t, RoleComp, f.Properties["role"])
		assert.Contains(t, f.Properties, "distance_km")
	}

	area := fc.Features[4]
	assert.Equal(t, RoleCompArea, area.Properties["role"])
	assert.IsType(t, orb.Polygon{}, area.Geometry)

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}

func TestEvaluationFeatures_NoCoordinates(t *testing.T) {
	fc := EvaluationFeatures(models.EvaluationRecord{ID: "x", Intent: models.IntentRent})
	assert.Empty(t, fc.Features)
}
