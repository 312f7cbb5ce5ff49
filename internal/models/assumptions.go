package models

// Assumptions are the financing and operating parameters used by the buy
// and investment flows
type Assumptions struct {
	InterestRate    float64 `json:"interest_rate"`
	DownPaymentPct  float64 `json:"down_payment_pct"`
	LoanTermYears   int     `json:"loan_term_years"`
	VacancyRate     float64 `json:"vacancy_rate"`
	ManagementFee   float64 `json:"management_fee"`
	MaintenanceRate float64 `json:"maintenance_rate"`
}

// AssumptionOverrides is a partial set of assumptions supplied by a caller.
// Only non-nil fields replace the defaults.
type AssumptionOverrides struct {
	InterestRate    *float64 `json:"interest_rate,omitempty"`
	DownPaymentPct  *float64 `json:"down_payment_pct,omitempty"`
	LoanTermYears   *int     `json:"loan_term_years,omitempty"`
	VacancyRate     *float64 `json:"vacancy_rate,omitempty"`
	ManagementFee   *float64 `json:"management_fee,omitempty"`
	MaintenanceRate *float64 `json:"maintenance_rate,omitempty"`
}

// Merge returns a copy of a with every present override applied
func (a Assumptions) Merge(o *AssumptionOverrides) Assumptions {
	if o == nil {
		return a
	}
	if o.InterestRate != nil {
		a.InterestRate = *o.InterestRate
	}
	if o.DownPaymentPct != nil {
		a.DownPaymentPct = *o.DownPaymentPct
	}
	if o.LoanTermYears != nil {
		a.LoanTermYears = *o.LoanTermYears
	}
	if o.VacancyRate != nil {
		a.VacancyRate = *o.VacancyRate
	}
	if o.ManagementFee != nil {
		a.ManagementFee = *o.ManagementFee
	}
	if o.MaintenanceRate != nil {
		a.MaintenanceRate = *o.MaintenanceRate
	}
	return a
}
