package valuation

import "homeval/server/internal/models"

// InvestmentRequest describes a rental purchase. TaxesAnnual falls back to
// 1.2% of the price when nil or zero.
type InvestmentRequest struct {
	PurchasePrice float64
	MonthlyRent   float64
	TaxesAnnual   *float64
	HOAMonthly    float64
	Assumptions   models.Assumptions
}

// OperatingExpenses are annual figures
type OperatingExpenses struct {
	Insurance   float64 `json:"insurance"`
	Maintenance float64 `json:"maintenance"`
	Vacancy     float64 `json:"vacancy"`
	Management  float64 `json:"management"`
	Taxes       float64 `json:"taxes"`
	HOA         float64 `json:"hoa"`
	Total       float64 `json:"total"`
}

type InvestmentMetrics struct {
	AnnualRent        float64           `json:"annual_rent"`
	OperatingExpenses OperatingExpenses `json:"operating_expenses"`
	NOI               float64           `json:"noi"`
	MonthlyNOI        float64           `json:"monthly_noi"`
	CapRate           float64           `json:"cap_rate"`
	CashOnCash        float64           `json:"cash_on_cash"`
	AnnualCashFlow    float64           `json:"annual_cash_flow"`
	CashInvested      float64           `json:"cash_invested"`
	MonthlyPayment    float64           `json:"monthly_payment"`
}

// CalculateInvestmentMetrics computes NOI, cap rate and cash-on-cash return.
// Cap rate and cash-on-cash are percentages and are zero when their
// denominator is not positive.
func CalculateInvestmentMetrics(req InvestmentRequest) InvestmentMetrics {
	a := req.Assumptions
	annualRent := req.MonthlyRent * 12

	taxes := req.PurchasePrice * defaultTaxRate
	if positive(req.TaxesAnnual) {
		taxes = *req.TaxesAnnual
	}

	exp := OperatingExpenses{
		Insurance:   req.PurchasePrice * defaultInsuranceRate,
		Maintenance: annualRent * a.MaintenanceRate,
		Vacancy:     annualRent * a.VacancyRate,
		Management:  annualRent * a.ManagementFee,
		Taxes:       taxes,
		HOA:         req.HOAMonthly * 12,
	}
	exp.Total = exp.Insurance + exp.Maintenance + exp.Vacancy + exp.Management + exp.Taxes + exp.HOA

	noi := annualRent - exp.Total

	var capRate float64
	if req.PurchasePrice > 0 {
		capRate = noi / req.PurchasePrice * 100
	}

	payment := CalculateMonthlyPayment(PaymentRequest{
		PurchasePrice:   req.PurchasePrice,
		DownPaymentPct:  a.DownPaymentPct,
		InterestRate:    a.InterestRate,
		LoanTermYears:   a.LoanTermYears,
		TaxesAnnual:     &taxes,
		HOAMonthly:      req.HOAMonthly,
		InsuranceAnnual: &exp.Insurance,
	})

	cashFlow := noi - payment.MortgagePayment*12
	cashInvested := payment.DownPayment

	var cashOnCash float64
	if cashInvested > 0 {
		cashOnCash = cashFlow / cashInvested * 100
	}

	return InvestmentMetrics{
		AnnualRent:        annualRent,
		OperatingExpenses: exp,
		NOI:               noi,
		MonthlyNOI:        noi / 12,
		CapRate:           capRate,
		CashOnCash:        cashOnCash,
		AnnualCashFlow:    cashFlow,
		CashInvested:      cashInvested,
		MonthlyPayment:    payment.TotalMonthly,
	}
}

// PotentialCapRate is the quick buy-flow cap rate: rent less taxes over the
// list price, before any other expense. ok is false when no rent figure can
// be derived or the list price is unknown.
func PotentialCapRate(facts models.PropertyFacts) (capRate float64, ok bool) {
	if !positive(facts.ListPrice) {
		return 0, false
	}
	var rent float64
	switch {
	case positive(facts.RentEstimate):
		rent = *facts.RentEstimate
	case facts.Sqft != nil && *facts.Sqft > 0:
		rent = float64(*facts.Sqft) * rentPerSqft
	default:
		return 0, false
	}
	var taxes float64
	if facts.TaxesAnnual != nil {
		taxes = *facts.TaxesAnnual
	}
	return (rent*12 - taxes) / *facts.ListPrice * 100, true
}
