package valuation

import "homeval/server/internal/models"

// Demand/supply thresholds on active listings per sale in the last 90 days
const (
	tightMarketRatio = 3.0
	looseMarketRatio = 6.0
)

// DemandSupply classifies the area market. A low listings-to-sales ratio is
// high demand pressure, so LevelHigh means a tight market.
func DemandSupply(stats models.MarketStats) models.Level {
	if stats.ActiveListings == nil || stats.SoldLast90d == nil {
		return models.LevelNormal
	}

	sold := *stats.SoldLast90d
	if sold < 1 {
		sold = 1
	}
	ratio := float64(*stats.ActiveListings) / float64(sold)

	switch {
	case ratio < tightMarketRatio:
		return models.LevelHigh
	case ratio > looseMarketRatio:
		return models.LevelLow
	default:
		return models.LevelNormal
	}
}
