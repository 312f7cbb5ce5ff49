package valuation

import "homeval/server/internal/models"

const (
	rentToPriceRatio   = 0.009
	rentPerSqft        = 2.0
	defaultMonthlyRent = 2500.0
)

// EstimateRent returns the monthly rent for a property: the known estimate,
// else 0.9% of the list price, else $2/sqft, else a flat default.
func EstimateRent(facts models.PropertyFacts) float64 {
	switch {
	case positive(facts.RentEstimate):
		return *facts.RentEstimate
	case positive(facts.ListPrice):
		return *facts.ListPrice * rentToPriceRatio
	case facts.Sqft != nil && *facts.Sqft > 0:
		return float64(*facts.Sqft) * rentPerSqft
	default:
		return defaultMonthlyRent
	}
}
