package valuation

import "homeval/server/internal/models"

// Defaults holds the assumption sets overrides are merged over. Rent and
// sell evaluations use the Buy set.
type Defaults struct {
	Buy        models.Assumptions
	Investment models.Assumptions
}

// DefaultAssumptions returns the documented defaults: 7% over 30 years,
// 20% down for a purchase and 25% down for an investment property.
func DefaultAssumptions() Defaults {
	buy := models.Assumptions{
		InterestRate:    0.07,
		DownPaymentPct:  0.20,
		LoanTermYears:   30,
		VacancyRate:     0.05,
		ManagementFee:   0.08,
		MaintenanceRate: 0.08,
	}
	investment := buy
	investment.DownPaymentPct = 0.25
	return Defaults{Buy: buy, Investment: investment}
}

// For returns the default assumptions of an intent
func (d Defaults) For(intent models.Intent) models.Assumptions {
	if intent == models.IntentInvestment {
		return d.Investment
	}
	return d.Buy
}

// Resolve merges overrides over the defaults of an intent
func (d Defaults) Resolve(intent models.Intent, overrides *models.AssumptionOverrides) models.Assumptions {
	return d.For(intent).Merge(overrides)
}
