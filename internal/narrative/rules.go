package narrative

import (
	"context"
	"fmt"
	"strconv"

	"homeval/server/internal/models"
	"homeval/server/internal/valuation"
)

const fallbackSummary = "Property evaluation complete. Review the metrics below for detailed insights."

// RuleBased writes fixed per-intent summaries from the indicators and stats
type RuleBased struct{}

func (RuleBased) Summarize(_ context.Context, in Input) string {
	return RuleBasedSummary(in)
}

func RuleBasedSummary(in Input) string {
	switch in.Intent {
	case models.IntentRent:
		return rentSummary(in)
	case models.IntentBuy:
		return buySummary(in)
	case models.IntentSell:
		return sellSummary(in)
	case models.IntentInvestment:
		return investmentSummary(in)
	default:
		return fallbackSummary
	}
}

func rentSummary(in Input) string {
	priceDesc := map[models.Level]string{
		models.LevelLow:    "below market",
		models.LevelNormal: "fairly priced",
		models.LevelHigh:   "above market",
	}[in.level(models.BarPricePosition)]
	demand := in.level(models.BarDemandSupply)
	demandDesc := map[models.Level]string{
		models.LevelLow:    "soft",
		models.LevelNormal: "balanced",
		models.LevelHigh:   "strong",
	}[demand]
	pace := "moderate"
	if demand == models.LevelHigh {
		pace = "quick"
	}

	return fmt.Sprintf("This rental property appears %s compared to similar units in the area. "+
		"The local rental market shows %s demand. "+
		"With median days on market at %s days, "+
		"rental opportunities in this neighborhood are moving at a %s pace. "+
		"Consider negotiating if pricing seems high relative to market conditions.",
		priceDesc, demandDesc, intOrNA(in.Stats.DOMMedian), pace)
}

func buySummary(in Input) string {
	priceDesc := map[models.Level]string{
		models.LevelLow:    "underpriced",
		models.LevelNormal: "market-rate",
		models.LevelHigh:   "premium-priced",
	}[in.level(models.BarPricePosition)]

	var trend float64
	if in.Stats.PriceTrend12mPct != nil {
		trend = *in.Stats.PriceTrend12mPct
	}
	trendDesc := "softening"
	if trend > 3 {
		trendDesc = "appreciating"
	} else if trend > -2 {
		trendDesc = "stable"
	}

	marketType, action := "balanced", "thoughtfully"
	switch in.level(models.BarDemandSupply) {
	case models.LevelLow:
		marketType = "competitive buyer's"
	case models.LevelHigh:
		marketType, action = "seller's", "decisively"
	}

	return fmt.Sprintf("This property is %s relative to comparable sales in the area. "+
		"The market is currently %s with a %+.1f%% price change over the past year. "+
		"Local inventory levels suggest a %s market. "+
		"Act %s based on your timeline and budget constraints.",
		priceDesc, trendDesc, trend, marketType, action)
}

func sellSummary(in Input) string {
	marketDesc, strategy := "balanced", "remain competitive"
	switch in.level(models.BarDemandSupply) {
	case models.LevelLow:
		marketDesc, strategy = "buyer-friendly", "generate buyer interest"
	case models.LevelHigh:
		marketDesc, strategy = "seller-friendly", "attract multiple offers"
	}

	return fmt.Sprintf("Current market conditions are %s with %s active listings "+
		"and %s sales in the past 90 days. "+
		"Properties are averaging %s days on market. "+
		"Price strategically to %s. "+
		"Consider seasonal timing and current inventory levels when setting your list price.",
		marketDesc, intOrNA(in.Stats.ActiveListings), intOrNA(in.Stats.SoldLast90d),
		intOrNA(in.Stats.DOMMedian), strategy)
}

func investmentSummary(in Input) string {
	m, _ := in.Evaluation.Details[models.DetailInvestmentMetrics].(valuation.InvestmentMetrics)

	capQuality := "modest"
	if m.CapRate > 7 {
		capQuality = "strong"
	} else if m.CapRate > 5 {
		capQuality = "moderate"
	}
	cashFlow := "challenging"
	if m.MonthlyNOI > 0 {
		cashFlow = "positive"
	}
	var trend5y float64
	if in.Stats.PriceTrend5yPct != nil {
		trend5y = *in.Stats.PriceTrend5yPct
	}

	return fmt.Sprintf("This investment opportunity shows a %s %.1f%% cap rate "+
		"with a %.1f%% cash-on-cash return. "+
		"Monthly NOI of $%s suggests %s cash flow potential. "+
		"Consider operating expense ratios and local vacancy trends when finalizing your analysis. "+
		"Long-term appreciation in this market has been %.1f%% over 5 years.",
		capQuality, m.CapRate, m.CashOnCash, valuation.FormatAmount(m.MonthlyNOI), cashFlow, trend5y)
}

func intOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
