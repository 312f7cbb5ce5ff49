package valuation

import (
	"time"

	"homeval/server/internal/models"
)

// Input is everything one evaluation is computed from
type Input struct {
	Intent      models.Intent
	Facts       models.PropertyFacts
	Stats       models.MarketStats
	Comps       []models.ComparableRecord
	Assumptions *models.AssumptionOverrides
}

// MarketSummary is the area snapshot shown to sellers
type MarketSummary struct {
	ActiveListings *int `json:"active_listings"`
	Sold90d        *int `json:"sold_90d"`
	DOMMedian      *int `json:"dom_median"`
}

// Evaluator sequences the valuation components for an intent. It holds no
// per-evaluation state and is safe for concurrent use.
type Evaluator struct {
	defaults Defaults
	now      func() time.Time
}

type Option func(*Evaluator)

// WithClock sets the clock used for the seasonal list-price adjustment
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

func NewEvaluator(defaults Defaults, opts ...Option) *Evaluator {
	e := &Evaluator{
		defaults: defaults,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Defaults returns the assumption defaults of the evaluator
func (e *Evaluator) Defaults() Defaults {
	return e.defaults
}

// Evaluate builds the evaluation for in. Summary is left empty; narrative
// generation consumes the returned value.
func (e *Evaluator) Evaluate(in Input) models.Evaluation {
	facts := in.Facts

	pricePosition := PricePosition(SubjectPrice(facts), in.Comps)
	demandSupply := DemandSupply(in.Stats)
	red, green := Flags(facts, in.Stats, pricePosition, demandSupply)

	details := map[string]any{}

	switch in.Intent {
	case models.IntentRent:
		rent := EstimateRent(facts)
		facts.RentEstimate = &rent
		details[models.DetailEstimatedRent] = rent
		details[models.DetailCondition] = AnalyzeCondition(facts)

	case models.IntentBuy:
		assumptions := e.defaults.Resolve(models.IntentBuy, in.Assumptions)
		if positive(facts.ListPrice) {
			var hoa float64
			if facts.HOAMonthly != nil {
				hoa = *facts.HOAMonthly
			}
			details[models.DetailMonthlyPayment] = CalculateMonthlyPayment(PaymentRequest{
				PurchasePrice:  *facts.ListPrice,
				DownPaymentPct: assumptions.DownPaymentPct,
				InterestRate:   assumptions.InterestRate,
				LoanTermYears:  assumptions.LoanTermYears,
				TaxesAnnual:    facts.TaxesAnnual,
				HOAMonthly:     hoa,
			})
		}
		details[models.DetailCondition] = AnalyzeCondition(facts)
		details[models.DetailAssumptions] = assumptions
		if capRate, ok := PotentialCapRate(facts); ok {
			details[models.DetailPotentialCapRate] = capRate
		}

	case models.IntentSell:
		details[models.DetailSuggestedPricing] = SuggestedListPrice(facts, in.Stats, in.Comps, e.now().Month())
		details[models.DetailMarketSummary] = MarketSummary{
			ActiveListings: in.Stats.ActiveListings,
			Sold90d:        in.Stats.SoldLast90d,
			DOMMedian:      in.Stats.DOMMedian,
		}

	case models.IntentInvestment:
		assumptions := e.defaults.Resolve(models.IntentInvestment, in.Assumptions)
		price := DefaultPropertyPrice
		if positive(facts.ListPrice) {
			price = *facts.ListPrice
		}
		var hoa float64
		if facts.HOAMonthly != nil {
			hoa = *facts.HOAMonthly
		}
		details[models.DetailInvestmentMetrics] = CalculateInvestmentMetrics(InvestmentRequest{
			PurchasePrice: price,
			MonthlyRent:   EstimateRent(facts),
			TaxesAnnual:   facts.TaxesAnnual,
			HOAMonthly:    hoa,
			Assumptions:   assumptions,
		})
		details[models.DetailAssumptions] = assumptions
	}

	return models.Evaluation{
		Bars: map[string]models.Level{
			models.BarPricePosition: pricePosition,
			models.BarDemandSupply:  demandSupply,
		},
		RedFlags:   red,
		GreenFlags: green,
		Details:    details,
	}
}

// Evaluate runs one evaluation with the default assumptions and the wall clock
func Evaluate(intent models.Intent, facts models.PropertyFacts, stats models.MarketStats, comps []models.ComparableRecord, overrides *models.AssumptionOverrides) models.Evaluation {
	return NewEvaluator(DefaultAssumptions()).Evaluate(Input{
		Intent:      intent,
		Facts:       facts,
		Stats:       stats,
		Comps:       comps,
		Assumptions: overrides,
	})
}
