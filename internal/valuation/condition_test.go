package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"homeval/server/internal/models"
)

func TestAnalyzeCondition(t *testing.T) {
	tests := []struct {
		name     string
		facts    models.PropertyFacts
		expected string
	}{
		{
			name:     "Renovated",
			facts:    models.PropertyFacts{Description: "Newly renovated, immaculate throughout"},
			expected: ConditionUpdated,
		},
		{
			name:     "Tie goes to needs work",
			facts:    models.PropertyFacts{Description: "Updated bath, otherwise a fixer"},
			expected: ConditionNeedsWork,
		},
		{
			name:     "Original floors",
			facts:    models.PropertyFacts{Description: "Charming property with updated kitchen and original hardwood floors."},
			expected: ConditionNeedsWork,
		},
		{
			name:     "Keywords beat age",
			facts:    models.PropertyFacts{Description: "Sold as-is", YearBuilt: models.Int(2020)},
			expected: ConditionNeedsWork,
		},
		{
			name:     "Modern build",
			facts:    models.PropertyFacts{YearBuilt: models.Int(2015)},
			expected: ConditionModern,
		},
		{
			name:     "2010 is not modern",
			facts:    models.PropertyFacts{YearBuilt: models.Int(2010)},
			expected: ConditionAverage,
		},
		{
			name:     "Older build",
			facts:    models.PropertyFacts{Description: "Cozy bungalow", YearBuilt: models.Int(1975)},
			expected: ConditionOlder,
		},
		{
			name:     "Mid century",
			facts:    models.PropertyFacts{YearBuilt: models.Int(1990)},
			expected: ConditionAverage,
		},
		{
			name:     "Nothing known",
			facts:    models.PropertyFacts{},
			expected: ConditionAverage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnalyzeCondition(tt.facts))
		})
	}
}

func TestConditionClassifier_Custom(t *testing.T) {
	c := ConditionClassifier{
		Positive:    []string{"turnkey"},
		Negative:    []string{"handyman"},
		ModernAfter: 2000,
		OlderBefore: 1950,
	}

	assert.Equal(t, ConditionUpdated, c.Classify(models.PropertyFacts{Description: "TURNKEY home"}))
	assert.Equal(t, ConditionNeedsWork, c.Classify(models.PropertyFacts{Description: "handyman special"}))
	assert.Equal(t, ConditionModern, c.Classify(models.PropertyFacts{Description: "renovated", YearBuilt: models.Int(2005)}))
	assert.Equal(t, ConditionOlder, c.Classify(models.PropertyFacts{YearBuilt: models.Int(1940)}))
}
