package valuation

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"homeval/server/internal/models"
)

const maxFlags = 4

const (
	staleListingDays  = 60
	freshListingDays  = 15
	strongTrendPct    = 5.0
	decliningTrendPct = -2.0
	highHOA           = 500.0
	reasonableHOA     = 200.0
	modernBuildYear   = 2015
	olderBuildYear    = 1970
)

// Flags converts the indicators and raw facts into advisory red and green
// flags. Rules run in a fixed order and each list keeps at most four entries.
func Flags(facts models.PropertyFacts, stats models.MarketStats, pricePosition, demandSupply models.Level) (red, green []string) {
	red, green = []string{}, []string{}

	switch pricePosition {
	case models.LevelHigh:
		red = append(red, "Priced above market average")
	case models.LevelLow:
		green = append(green, "Below market value - potential deal")
	}

	switch demandSupply {
	case models.LevelLow:
		red = append(red, "High inventory - buyer's market")
	case models.LevelHigh:
		green = append(green, "Low inventory - competitive market")
	}

	if dom := facts.DaysOnMarket; dom != nil {
		if *dom > staleListingDays {
			red = append(red, fmt.Sprintf("Long time on market (%d days)", *dom))
		} else if *dom < freshListingDays {
			green = append(green, "Recently listed - move quickly")
		}
	}

	if trend := stats.PriceTrend12mPct; trend != nil {
		if *trend > strongTrendPct {
			green = append(green, fmt.Sprintf("Strong appreciation (+%.1f%% 1yr)", *trend))
		} else if *trend < decliningTrendPct {
			red = append(red, fmt.Sprintf("Declining prices (%.1f%% 1yr)", *trend))
		}
	}

	if hoa := facts.HOAMonthly; positive(hoa) {
		if *hoa > highHOA {
			red = append(red, fmt.Sprintf("High HOA fees ($%s/mo)", FormatAmount(*hoa)))
		} else if *hoa < reasonableHOA {
			green = append(green, "Reasonable HOA fees")
		}
	}

	if yb := facts.YearBuilt; positiveInt(yb) {
		if *yb > modernBuildYear {
			green = append(green, "Modern construction")
		} else if *yb < olderBuildYear {
			red = append(red, "Older property - may need updates")
		}
	}

	return truncate(red), truncate(green)
}

// FormatAmount renders v rounded to whole units with thousands separators
func FormatAmount(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%.0f", v)
}

func truncate(flags []string) []string {
	if len(flags) > maxFlags {
		return flags[:maxFlags]
	}
	return flags
}
