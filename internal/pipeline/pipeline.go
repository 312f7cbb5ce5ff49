// Package pipeline runs one evaluation end to end: acquire inputs, evaluate,
// summarise and build the record to store.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"homeval/server/internal/acquisition"
	"homeval/server/internal/models"
	"homeval/server/internal/narrative"
	"homeval/server/internal/valuation"
)

type Acquirer interface {
	Acquire(ctx context.Context, req acquisition.Request) (*acquisition.Bundle, error)
}

type Pipeline struct {
	acquirer   Acquirer
	evaluator  *valuation.Evaluator
	summarizer narrative.Summarizer
	logger     *logrus.Logger
	now        func() time.Time
}

func New(acquirer Acquirer, evaluator *valuation.Evaluator, summarizer narrative.Summarizer, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if summarizer == nil {
		summarizer = narrative.RuleBased{}
	}
	return &Pipeline{
		acquirer:   acquirer,
		evaluator:  evaluator,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
	}
}

// Run evaluates req and returns the record to persist. id becomes the record
// ID; a new one is generated when empty. req must have been validated.
func (p *Pipeline) Run(ctx context.Context, id string, req models.EvaluationRequest) (*models.EvaluationRecord, error) {
	if id == "" {
		id = uuid.NewString()
	}
	logger := p.logger.WithFields(logrus.Fields{
		"evaluation_id": id,
		"session_id":    req.SessionID,
		"intent":        req.Intent,
	})

	bundle, err := p.acquirer.Acquire(ctx, acquisition.Request{
		URL:     req.URL,
		Address: req.Address,
		Facts:   req.Facts,
		Stats:   req.Stats,
		Comps:   req.Comps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire evaluation inputs: %w", err)
	}

	evaluation := p.evaluator.Evaluate(valuation.Input{
		Intent:      req.Intent,
		Facts:       bundle.Facts,
		Stats:       bundle.Stats,
		Comps:       bundle.Comps,
		Assumptions: req.Assumptions,
	})

	evaluation.Summary = p.summarizer.Summarize(ctx, narrative.Input{
		Intent:     req.Intent,
		Facts:      bundle.Facts,
		Stats:      bundle.Stats,
		Evaluation: evaluation,
	})

	now := p.now()
	record := &models.EvaluationRecord{
		ID:          id,
		SessionID:   req.SessionID,
		Intent:      req.Intent,
		Address:     bundle.Facts.Address,
		Facts:       bundle.Facts,
		Stats:       bundle.Stats,
		Comps:       bundle.Comps,
		Evaluation:  evaluation,
		Assumptions: p.evaluator.Defaults().Resolve(req.Intent, req.Assumptions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	logger.WithFields(logrus.Fields{
		"address":        record.Address,
		"price_position": evaluation.Bars[models.BarPricePosition],
		"demand_supply":  evaluation.Bars[models.BarDemandSupply],
		"red_flags":      len(evaluation.RedFlags),
		"green_flags":    len(evaluation.GreenFlags),
	}).Info("Evaluation completed")

	return record, nil
}
