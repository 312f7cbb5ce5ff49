package valuation

import (
	"strings"

	"homeval/server/internal/models"
)

// Condition labels
const (
	ConditionUpdated   = "Updated/Renovated"
	ConditionNeedsWork = "Original/Needs Work"
	ConditionModern    = "Modern/Like New"
	ConditionOlder     = "Older/Character Home"
	ConditionAverage   = "Average Condition"
)

// ConditionClassifier infers condition from listing text and build year
type ConditionClassifier struct {
	Positive    []string
	Negative    []string
	ModernAfter int
	OlderBefore int
}

// DefaultConditionClassifier returns the keyword sets and age cutoffs used
// for every evaluation
func DefaultConditionClassifier() ConditionClassifier {
	return ConditionClassifier{
		Positive:    []string{"updated", "renovated", "remodeled", "modern", "new", "pristine", "immaculate"},
		Negative:    []string{"original", "needs tlc", "fixer", "potential", "investor special", "as-is"},
		ModernAfter: 2010,
		OlderBefore: 1980,
	}
}

// Classify counts keywords found anywhere in the lower-cased description.
// Matching is by substring, so "newly" counts as "new". Keyword evidence
// wins over age; negatives win a tie.
func (c ConditionClassifier) Classify(facts models.PropertyFacts) string {
	description := strings.ToLower(facts.Description)

	positives := countKeywords(description, c.Positive)
	negatives := countKeywords(description, c.Negative)

	switch {
	case positives > negatives && positives > 0:
		return ConditionUpdated
	case negatives > 0:
		return ConditionNeedsWork
	case positiveInt(facts.YearBuilt) && *facts.YearBuilt > c.ModernAfter:
		return ConditionModern
	case positiveInt(facts.YearBuilt) && *facts.YearBuilt < c.OlderBefore:
		return ConditionOlder
	default:
		return ConditionAverage
	}
}

// AnalyzeCondition classifies with the default classifier
func AnalyzeCondition(facts models.PropertyFacts) string {
	return DefaultConditionClassifier().Classify(facts)
}

func countKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
