// Package narrative turns a computed evaluation into a short prose summary.
package narrative

import (
	"context"

	"homeval/server/internal/models"
)

// Input is what a summary is written from
type Input struct {
	Intent     models.Intent
	Facts      models.PropertyFacts
	Stats      models.MarketStats
	Evaluation models.Evaluation
}

// Summarizer writes the summary of an evaluation. Implementations never
// fail: when the preferred source is unavailable they fall back to the
// rule-based text.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) string
}

func (in Input) level(bar string) models.Level {
	if l, ok := in.Evaluation.Bars[bar]; ok {
		return l
	}
	return models.LevelNormal
}
