package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeval/server/internal/models"
)

func TestSeasonalFactor(t *testing.T) {
	tests := []struct {
		month    time.Month
		expected float64
	}{
		{time.January, 0.985},
		{time.February, 0.985},
		{time.March, 1.015},
		{time.April, 1.015},
		{time.May, 1.015},
		{time.June, 1.015},
		{time.July, 1.0},
		{time.August, 1.0},
		{time.September, 1.0},
		{time.October, 1.0},
		{time.November, 0.985},
		{time.December, 0.985},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, SeasonalFactor(tt.month))
		})
	}
}

func TestSuggestedListPrice_Base(t *testing.T) {
	tests := []struct {
		name     string
		facts    models.PropertyFacts
		stats    models.MarketStats
		comps    []models.ComparableRecord
		expected float64
	}{
		{
			name: "Recent sold comps only",
			comps: []models.ComparableRecord{
				{Price: 400000, Status: models.CompSold, DaysAgo: 30},
				{Price: 420000, Status: models.CompSold, DaysAgo: 90},
				{Price: 1000000, Status: models.CompSold, DaysAgo: 120},
				{Price: 600000, Status: models.CompActive, DaysAgo: 5},
			},
			expected: 410000,
		},
		{
			name: "All comps when none sold recently",
			comps: []models.ComparableRecord{
				{Price: 300000, Status: models.CompSold, DaysAgo: 200},
				{Price: 500000, Status: models.CompActive},
			},
			expected: 400000,
		},
		{
			name:     "Median sale price",
			facts:    models.PropertyFacts{ListPrice: models.Float(700000)},
			stats:    models.MarketStats{MedianSoldPrice: models.Float(650000)},
			expected: 650000,
		},
		{
			name:     "List price",
			facts:    models.PropertyFacts{ListPrice: models.Float(700000)},
			expected: 700000,
		},
		{
			name:     "Default",
			expected: DefaultPropertyPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SuggestedListPrice(tt.facts, tt.stats, tt.comps, time.July)
			assert.InDelta(t, tt.expected, s.SuggestedPrice, 0.001)
			assert.InDelta(t, tt.expected*0.97, s.PriceRangeLow, 0.001)
			assert.InDelta(t, tt.expected*1.03, s.PriceRangeHigh, 0.001)
			assert.Equal(t, 1.0, s.SeasonalFactor)
			require.NotNil(t, s.Reasons)
			assert.Empty(t, s.Reasons)
		})
	}
}

func TestSuggestedListPrice_Reasons(t *testing.T) {
	tests := []struct {
		name     string
		month    time.Month
		ratio    *float64
		expected []string
	}{
		{
			name:     "Spring with tight supply",
			month:    time.April,
			ratio:    models.Float(2),
			expected: []string{reasonPeakSeason, reasonLowInventory},
		},
		{
			name:     "Winter with loose supply",
			month:    time.December,
			ratio:    models.Float(7),
			expected: []string{reasonOffSeason, reasonHighInventory},
		},
		{
			name:     "Summer with balanced supply",
			month:    time.August,
			ratio:    models.Float(4),
			expected: []string{},
		},
		{
			name:     "Unknown ratio",
			month:    time.January,
			expected: []string{reasonOffSeason},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := models.MarketStats{SupplyToDemandRatio: tt.ratio}
			s := SuggestedListPrice(models.PropertyFacts{}, stats, nil, tt.month)
			assert.Equal(t, tt.expected, s.Reasons)
		})
	}
}

func TestSuggestedListPrice_Spring(t *testing.T) {
	s := SuggestedListPrice(models.PropertyFacts{}, models.MarketStats{}, nil, time.May)

	assert.InDelta(t, 507500, s.SuggestedPrice, 0.001)
	assert.InDelta(t, 492275, s.PriceRangeLow, 0.001)
	assert.InDelta(t, 522725, s.PriceRangeHigh, 0.001)
}
