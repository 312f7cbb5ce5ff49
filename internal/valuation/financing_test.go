package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"homeval/server/internal/models"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	p := CalculateMonthlyPayment(PaymentRequest{
		PurchasePrice:  300000,
		DownPaymentPct: 0.20,
		InterestRate:   0.07,
		LoanTermYears:  30,
		TaxesAnnual:    models.Float(3600),
	})

	assert.InDelta(t, 1597.00, p.MortgagePayment, 0.5)
	assert.InDelta(t, 300.00, p.PropertyTax, 0.001)
	assert.InDelta(t, 150.00, p.Insurance, 0.001)
	assert.Equal(t, 0.0, p.HOA)
	assert.InDelta(t, 2047, p.TotalMonthly, 1)
	assert.Equal(t, 60000.0, p.DownPayment)
	assert.Equal(t, 240000.0, p.LoanAmount)
}

func TestCalculateMonthlyPayment_Defaults(t *testing.T) {
	p := CalculateMonthlyPayment(PaymentRequest{
		PurchasePrice:  500000,
		DownPaymentPct: 0.20,
		InterestRate:   0.07,
		LoanTermYears:  30,
		HOAMonthly:     250,
	})

	assert.InDelta(t, 500.0, p.PropertyTax, 0.001, "1.2% of price per year")
	assert.InDelta(t, 250.0, p.Insurance, 0.001, "0.6% of price per year")
	assert.InDelta(t, p.MortgagePayment+500+250+250, p.TotalMonthly, 0.001)
}

func TestCalculateMonthlyPayment_ZeroTaxesUseDefault(t *testing.T) {
	for _, taxes := range []*float64{nil, models.Float(0)} {
		p := CalculateMonthlyPayment(PaymentRequest{
			PurchasePrice:  500000,
			DownPaymentPct: 0.20,
			InterestRate:   0.07,
			LoanTermYears:  30,
			TaxesAnnual:    taxes,
		})
		assert.InDelta(t, 500.0, p.PropertyTax, 0.001)
	}
}

func TestCalculateMonthlyPayment_ExplicitInsurance(t *testing.T) {
	p := CalculateMonthlyPayment(PaymentRequest{
		PurchasePrice:   300000,
		DownPaymentPct:  0.20,
		InterestRate:    0.07,
		LoanTermYears:   30,
		InsuranceAnnual: models.Float(2400),
	})

	assert.InDelta(t, 200.0, p.Insurance, 0.001)
}

func TestCalculateMonthlyPayment_ZeroInterest(t *testing.T) {
	p := CalculateMonthlyPayment(PaymentRequest{
		PurchasePrice:  120000,
		DownPaymentPct: 0,
		InterestRate:   0,
		LoanTermYears:  10,
	})

	assert.InDelta(t, 1000.0, p.MortgagePayment, 0.0001)
	assert.False(t, math.IsNaN(p.TotalMonthly))
}

func TestCalculateMonthlyPayment_AllCash(t *testing.T) {
	p := CalculateMonthlyPayment(PaymentRequest{
		PurchasePrice:  250000,
		DownPaymentPct: 1,
		InterestRate:   0.07,
		LoanTermYears:  30,
	})

	assert.Equal(t, 0.0, p.LoanAmount)
	assert.Equal(t, 0.0, p.MortgagePayment)
}
