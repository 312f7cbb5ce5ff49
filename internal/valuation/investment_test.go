package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"homeval/server/internal/models"
)

func TestCalculateInvestmentMetrics(t *testing.T) {
	m := CalculateInvestmentMetrics(InvestmentRequest{
		PurchasePrice: 200000,
		MonthlyRent:   2000,
		Assumptions:   DefaultAssumptions().Investment,
	})

	assert.Equal(t, 24000.0, m.AnnualRent)
	assert.InDelta(t, 1200, m.OperatingExpenses.Insurance, 0.001)
	assert.InDelta(t, 1920, m.OperatingExpenses.Maintenance, 0.001)
	assert.InDelta(t, 1200, m.OperatingExpenses.Vacancy, 0.001)
	assert.InDelta(t, 1920, m.OperatingExpenses.Management, 0.001)
	assert.InDelta(t, 2400, m.OperatingExpenses.Taxes, 0.001)
	assert.InDelta(t, 0, m.OperatingExpenses.HOA, 0.001)
	assert.InDelta(t, 8640, m.OperatingExpenses.Total, 0.001)

	assert.InDelta(t, 15360, m.NOI, 0.001)
	assert.InDelta(t, 1280, m.MonthlyNOI, 0.001)
	assert.InDelta(t, 7.68, m.CapRate, 0.0001)

	assert.Equal(t, 50000.0, m.CashInvested)
	assert.InDelta(t, 3384.6, m.AnnualCashFlow, 1)
	assert.InDelta(t, 6.77, m.CashOnCash, 0.01)
	assert.InDelta(t, 1297.95, m.MonthlyPayment, 0.5)
}

func TestCalculateInvestmentMetrics_Overrides(t *testing.T) {
	a := DefaultAssumptions().Investment
	a.VacancyRate = 0.10
	a.ManagementFee = 0
	a.MaintenanceRate = 0.05

	m := CalculateInvestmentMetrics(InvestmentRequest{
		PurchasePrice: 300000,
		MonthlyRent:   2500,
		TaxesAnnual:   models.Float(4000),
		HOAMonthly:    100,
		Assumptions:   a,
	})

	assert.InDelta(t, 3000, m.OperatingExpenses.Vacancy, 0.001)
	assert.InDelta(t, 0, m.OperatingExpenses.Management, 0.001)
	assert.InDelta(t, 1500, m.OperatingExpenses.Maintenance, 0.001)
	assert.InDelta(t, 4000, m.OperatingExpenses.Taxes, 0.001)
	assert.InDelta(t, 1200, m.OperatingExpenses.HOA, 0.001)
}

func TestCalculateInvestmentMetrics_ZeroTaxesUseDefault(t *testing.T) {
	for _, taxes := range []*float64{nil, models.Float(0)} {
		m := CalculateInvestmentMetrics(InvestmentRequest{
			PurchasePrice: 300000,
			MonthlyRent:   2500,
			TaxesAnnual:   taxes,
			Assumptions:   DefaultAssumptions().Investment,
		})
		assert.InDelta(t, 3600, m.OperatingExpenses.Taxes, 0.001, "1.2% of price")
	}
}

func TestCalculateInvestmentMetrics_ZeroDenominators(t *testing.T) {
	tests := []struct {
		name string
		req  InvestmentRequest
	}{
		{
			name: "Zero price",
			req: InvestmentRequest{
				PurchasePrice: 0,
				MonthlyRent:   1500,
				Assumptions:   DefaultAssumptions().Investment,
			},
		},
		{
			name: "No cash invested",
			req: InvestmentRequest{
				PurchasePrice: 250000,
				MonthlyRent:   1500,
				Assumptions: models.Assumptions{
					InterestRate:  0.07,
					LoanTermYears: 30,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CalculateInvestmentMetrics(tt.req)
			assert.Equal(t, 0.0, m.CashOnCash)
			assert.False(t, math.IsNaN(m.CapRate))
			assert.False(t, math.IsInf(m.CapRate, 0))
			if tt.req.PurchasePrice == 0 {
				assert.Equal(t, 0.0, m.CapRate)
			}
		})
	}
}

func TestPotentialCapRate(t *testing.T) {
	tests := []struct {
		name     string
		facts    models.PropertyFacts
		expected float64
		ok       bool
	}{
		{
			name:     "Rent estimate",
			facts:    models.PropertyFacts{ListPrice: models.Float(300000), RentEstimate: models.Float(2500), TaxesAnnual: models.Float(3000)},
			expected: 9.0,
			ok:       true,
		},
		{
			name:     "Area based rent",
			facts:    models.PropertyFacts{ListPrice: models.Float(300000), Sqft: models.Int(1500), TaxesAnnual: models.Float(3600)},
			expected: 10.8,
			ok:       true,
		},
		{
			name:  "No rent source",
			facts: models.PropertyFacts{ListPrice: models.Float(300000)},
			ok:    false,
		},
		{
			name:  "No list price",
			facts: models.PropertyFacts{Sqft: models.Int(1500)},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capRate, ok := PotentialCapRate(tt.facts)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, capRate, 0.0001)
			}
		})
	}
}
