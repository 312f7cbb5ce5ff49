package valuation

import "math"

// Annual cost rates applied to the purchase price when the actual figure is unknown
const (
	defaultTaxRate       = 0.012
	defaultInsuranceRate = 0.006
)

// PaymentRequest describes a fixed-rate purchase. TaxesAnnual falls back to
// 1.2% of the price when not positive, InsuranceAnnual to 0.6% when nil.
type PaymentRequest struct {
	PurchasePrice   float64
	DownPaymentPct  float64
	InterestRate    float64
	LoanTermYears   int
	TaxesAnnual     *float64
	HOAMonthly      float64
	InsuranceAnnual *float64
}

// MonthlyPayment is the PITI breakdown of a purchase, plus HOA
type MonthlyPayment struct {
	MortgagePayment float64 `json:"mortgage_payment"`
	PropertyTax     float64 `json:"property_tax"`
	Insurance       float64 `json:"insurance"`
	HOA             float64 `json:"hoa"`
	TotalMonthly    float64 `json:"total_monthly"`
	DownPayment     float64 `json:"down_payment"`
	LoanAmount      float64 `json:"loan_amount"`
}

// CalculateMonthlyPayment amortizes the loan and adds monthly tax, insurance
// and HOA. Callers guarantee a positive price and term.
func CalculateMonthlyPayment(req PaymentRequest) MonthlyPayment {
	downPayment := req.PurchasePrice * req.DownPaymentPct
	loan := req.PurchasePrice - downPayment

	monthlyTax := req.PurchasePrice * defaultTaxRate / 12
	if positive(req.TaxesAnnual) {
		monthlyTax = *req.TaxesAnnual / 12
	}
	monthlyInsurance := req.PurchasePrice * defaultInsuranceRate / 12
	if req.InsuranceAnnual != nil {
		monthlyInsurance = *req.InsuranceAnnual / 12
	}

	mortgage := amortizedPayment(loan, req.InterestRate/12, req.LoanTermYears*12)

	return MonthlyPayment{
		MortgagePayment: mortgage,
		PropertyTax:     monthlyTax,
		Insurance:       monthlyInsurance,
		HOA:             req.HOAMonthly,
		TotalMonthly:    mortgage + monthlyTax + monthlyInsurance + req.HOAMonthly,
		DownPayment:     downPayment,
		LoanAmount:      loan,
	}
}

// amortizedPayment is the standard M = P[r(1+r)^n]/[(1+r)^n-1]
func amortizedPayment(principal, monthlyRate float64, payments int) float64 {
	if monthlyRate <= 0 {
		return principal / float64(payments)
	}
	growth := math.Pow(1+monthlyRate, float64(payments))
	return principal * (monthlyRate * growth) / (growth - 1)
}
