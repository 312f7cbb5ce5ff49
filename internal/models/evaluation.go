package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownIntent = errors.New("unknown intent")

// Intent is the purpose of an evaluation
type Intent string

const (
	IntentRent       Intent = "rent"
	IntentBuy        Intent = "buy"
	IntentSell       Intent = "sell"
	IntentInvestment Intent = "investment"
)

// Intents lists every supported intent
var Intents = []Intent{IntentRent, IntentBuy, IntentSell, IntentInvestment}

// IsValid checks if an intent is recognized
func (i Intent) IsValid() bool {
	for _, v := range Intents {
		if i == v {
			return true
		}
	}
	return false
}

// ParseIntent converts user input into an Intent
func ParseIntent(s string) (Intent, error) {
	intent := Intent(strings.ToLower(strings.TrimSpace(s)))
	if !intent.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, s)
	}
	return intent, nil
}

// Level is one of three ordinal market-position buckets
type Level string

const (
	LevelLow    Level = "low"
	LevelNormal Level = "normal"
	LevelHigh   Level = "high"
)

// Label returns the presentation label of the level for the given intent.
// The buy flow shows price position as underpriced/average/overpriced.
func (l Level) Label(intent Intent) string {
	if intent == IntentBuy {
		switch l {
		case LevelLow:
			return "underpriced"
		case LevelHigh:
			return "overpriced"
		default:
			return "average"
		}
	}
	return string(l)
}

// Indicator names used as keys of Evaluation.Bars
const (
	BarPricePosition = "price_position"
	BarDemandSupply  = "demand_supply"
)

// Details keys. Other layers read evaluation details by these names.
const (
	DetailEstimatedRent     = "estimated_rent"
	DetailCondition         = "condition"
	DetailMonthlyPayment    = "monthly_payment"
	DetailAssumptions       = "assumptions"
	DetailPotentialCapRate  = "potential_cap_rate"
	DetailSuggestedPricing  = "suggested_pricing"
	DetailMarketSummary     = "market_summary"
	DetailInvestmentMetrics = "investment_metrics"
)

// Evaluation is the computed output for one property and intent
type Evaluation struct {
	Summary    string           `json:"summary"`
	Bars       map[string]Level `json:"bars"`
	RedFlags   []string         `json:"red_flags"`
	GreenFlags []string         `json:"green_flags"`
	Details    map[string]any   `json:"details"`
}

// EvaluationRecord is a stored evaluation with the inputs it was computed from
type EvaluationRecord struct {
	ID          string             `gorm:"primaryKey;type:text" json:"id"`
	SessionID   string             `gorm:"index;not null" json:"session_id"`
	Intent      Intent             `gorm:"not null" json:"intent"`
	Address     string             `gorm:"not null" json:"address"`
	Facts       PropertyFacts      `gorm:"column:property_data;serializer:json" json:"property_data"`
	Stats       MarketStats        `gorm:"column:market_stats;serializer:json" json:"market_stats"`
	Comps       []ComparableRecord `gorm:"column:comparables;serializer:json" json:"comparables"`
	Evaluation  Evaluation         `gorm:"column:evaluation_data;serializer:json" json:"evaluation_data"`
	Assumptions Assumptions        `gorm:"column:assumptions;serializer:json" json:"assumptions"`
	CreatedAt   time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (EvaluationRecord) TableName() string {
	return "evaluations"
}
