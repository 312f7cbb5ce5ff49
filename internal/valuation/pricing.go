package valuation

import (
	"time"

	"homeval/server/internal/models"
)

const (
	// DefaultPropertyPrice is used when nothing else prices the property
	DefaultPropertyPrice = 500000.0

	recentSaleDays  = 90
	priceRangeLower = 0.97
	priceRangeUpper = 1.03
)

const (
	reasonPeakSeason    = "Peak selling season - market favors sellers"
	reasonOffSeason     = "Off-season pricing to attract serious buyers"
	reasonLowInventory  = "Low inventory creates pricing power"
	reasonHighInventory = "High inventory suggests competitive pricing needed"
)

// ListPriceSuggestion is the seller-facing price recommendation
type ListPriceSuggestion struct {
	SuggestedPrice float64  `json:"suggested_price"`
	PriceRangeLow  float64  `json:"price_range_low"`
	PriceRangeHigh float64  `json:"price_range_high"`
	SeasonalFactor float64  `json:"seasonal_factor"`
	Reasons        []string `json:"reasons"`
}

// SeasonalFactor adjusts list prices for the time of year: winter months
// are discounted, spring months carry a premium.
func SeasonalFactor(month time.Month) float64 {
	switch month {
	case time.November, time.December, time.January, time.February:
		return 0.985
	case time.March, time.April, time.May, time.June:
		return 1.015
	default:
		return 1.0
	}
}

// SuggestedListPrice recommends a list price for the month of listing.
// The base is the mean of recent sold comps, else the mean of all comps,
// else the area median sale price, the list price or a fixed default.
func SuggestedListPrice(facts models.PropertyFacts, stats models.MarketStats, comps []models.ComparableRecord, month time.Month) ListPriceSuggestion {
	factor := SeasonalFactor(month)
	suggested := basePrice(facts, stats, comps) * factor

	reasons := []string{}
	if factor > 1 {
		reasons = append(reasons, reasonPeakSeason)
	} else if factor < 1 {
		reasons = append(reasons, reasonOffSeason)
	}

	if r := stats.SupplyToDemandRatio; r != nil {
		if *r < tightMarketRatio {
			reasons = append(reasons, reasonLowInventory)
		} else if *r > looseMarketRatio {
			reasons = append(reasons, reasonHighInventory)
		}
	}

	return ListPriceSuggestion{
		SuggestedPrice: suggested,
		PriceRangeLow:  suggested * priceRangeLower,
		PriceRangeHigh: suggested * priceRangeUpper,
		SeasonalFactor: factor,
		Reasons:        reasons,
	}
}

func basePrice(facts models.PropertyFacts, stats models.MarketStats, comps []models.ComparableRecord) float64 {
	if len(comps) > 0 {
		var sum float64
		var n int
		for _, c := range comps {
			if c.Status == models.CompSold && c.DaysAgo <= recentSaleDays {
				sum += c.Price
				n++
			}
		}
		if n > 0 {
			return sum / float64(n)
		}
		for _, c := range comps {
			sum += c.Price
		}
		return sum / float64(len(comps))
	}

	switch {
	case positive(stats.MedianSoldPrice):
		return *stats.MedianSoldPrice
	case positive(facts.ListPrice):
		return *facts.ListPrice
	default:
		return DefaultPropertyPrice
	}
}
