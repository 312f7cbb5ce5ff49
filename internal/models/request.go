package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidRequest wraps every validation failure of an EvaluationRequest
var ErrInvalidRequest = errors.New("invalid evaluation request")

// EvaluationRequest asks for one evaluation. Facts, Stats and Comps, when
// given, are used as-is instead of being acquired.
type EvaluationRequest struct {
	SessionID   string               `json:"session_id"`
	Intent      Intent               `json:"intent"`
	URL         string               `json:"url,omitempty"`
	Address     string               `json:"address,omitempty"`
	Facts       *PropertyFacts       `json:"facts,omitempty"`
	Stats       *MarketStats         `json:"stats,omitempty"`
	Comps       []ComparableRecord   `json:"comps,omitempty"`
	Assumptions *AssumptionOverrides `json:"assumptions,omitempty"`
}

// Validate normalises the intent and checks the request can be evaluated
func (r *EvaluationRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}
	intent, err := ParseIntent(string(r.Intent))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	r.Intent = intent

	r.URL = strings.TrimSpace(r.URL)
	r.Address = strings.TrimSpace(r.Address)
	if r.URL != "" {
		if err := validateListingURL(r.URL); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if r.URL == "" && r.Address == "" && r.Facts == nil {
		return fmt.Errorf("%w: one of url, address or facts is required", ErrInvalidRequest)
	}

	if err := r.Assumptions.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Validate checks that every present override is in range. A nil set of
// overrides is valid.
func (o *AssumptionOverrides) Validate() error {
	if o == nil {
		return nil
	}
	if o.LoanTermYears != nil && *o.LoanTermYears < 1 {
		return fmt.Errorf("loan_term_years must be at least 1")
	}
	if o.InterestRate != nil && (*o.InterestRate < 0 || *o.InterestRate > 1) {
		return fmt.Errorf("interest_rate must be between 0 and 1")
	}
	fractions := []struct {
		name  string
		value *float64
	}{
		{"down_payment_pct", o.DownPaymentPct},
		{"vacancy_rate", o.VacancyRate},
		{"management_fee", o.ManagementFee},
		{"maintenance_rate", o.MaintenanceRate},
	}
	for _, f := range fractions {
		if f.value != nil && (*f.value < 0 || *f.value > 1) {
			return fmt.Errorf("%s must be between 0 and 1", f.name)
		}
	}
	return nil
}

// EvaluationJob is one evaluation submitted in bulk. The stored record
// takes the job ID, so clients poll the record by it.
type EvaluationJob struct {
	ID      string            `json:"id"`
	Request EvaluationRequest `json:"request"`
}

// validateListingURL accepts absolute http(s) URLs with a host
func validateListingURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("url is malformed")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https")
	}
	if u.Hostname() == "" {
		return fmt.Errorf("url must include a host")
	}
	return nil
}
