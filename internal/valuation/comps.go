package valuation

import (
	"sort"

	"homeval/server/internal/models"
)

// PricePosition places subjectPrice relative to the comparable prices.
//
// Sold comps are preferred; when there are none every comp is used. The
// quartile indices are len/4 and 3*len/4 with integer division, which is an
// approximation kept for compatibility with stored evaluations.
func PricePosition(subjectPrice float64, comps []models.ComparableRecord) models.Level {
	if len(comps) == 0 {
		return models.LevelNormal
	}

	prices := make([]float64, 0, len(comps))
	for _, c := range comps {
		if c.Status == models.CompSold {
			prices = append(prices, c.Price)
		}
	}
	if len(prices) == 0 {
		for _, c := range comps {
			prices = append(prices, c.Price)
		}
	}
	sort.Float64s(prices)

	q1 := prices[len(prices)/4]
	q3 := prices[(3*len(prices))/4]

	switch {
	case subjectPrice < q1:
		return models.LevelLow
	case subjectPrice > q3:
		return models.LevelHigh
	default:
		return models.LevelNormal
	}
}

// SubjectPrice is the price compared against comps: the list price, else
// the rent estimate, else a fixed default.
func SubjectPrice(facts models.PropertyFacts) float64 {
	if positive(facts.ListPrice) {
		return *facts.ListPrice
	}
	if positive(facts.RentEstimate) {
		return *facts.RentEstimate
	}
	return DefaultPropertyPrice
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func positiveInt(v *int) bool {
	return v != nil && *v > 0
}
