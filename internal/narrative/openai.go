package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"homeval/server/internal/models"
	"homeval/server/internal/valuation"
)

const systemPromptTemplate = `You are a real estate expert providing insights for a %s evaluation.
Provide a concise, actionable 4-6 sentence summary that helps the user make an informed decision.
Focus on key factors like pricing, market conditions, financial viability, and notable risks or opportunities.
Be professional but conversational. Respond in JSON format with a 'summary' field.`

// OpenAISummarizer asks a chat model for the summary and falls back to the
// rule-based text on any failure
type OpenAISummarizer struct {
	client   *openai.Client
	model    string
	fallback Summarizer
	logger   *logrus.Logger
}

// New returns an OpenAI backed summarizer, or the rule-based one when no API
// key is configured
func New(apiKey, model string, logger *logrus.Logger) Summarizer {
	if apiKey == "" {
		return RuleBased{}
	}
	return NewOpenAISummarizer(openai.DefaultConfig(apiKey), model, logger)
}

func NewOpenAISummarizer(cfg openai.ClientConfig, model string, logger *logrus.Logger) *OpenAISummarizer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAISummarizer{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		fallback: RuleBased{},
		logger:   logger,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, in Input) string {
	summary, err := s.generate(ctx, in)
	if err != nil {
		s.logger.WithError(err).WithField("intent", in.Intent).Warn("Falling back to rule-based summary")
		return s.fallback.Summarize(ctx, in)
	}
	return summary
}

func (s *OpenAISummarizer) generate(ctx context.Context, in Input) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPromptTemplate, in.Intent)},
			{Role: openai.ChatMessageRoleUser, Content: BuildContext(in)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion returned no content")
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return "", fmt.Errorf("failed to decode summary: %w", err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return "", fmt.Errorf("summary field missing")
	}
	return result.Summary, nil
}

// BuildContext flattens the evaluation into the single line the model is
// prompted with. Only scalar details are included, in key order.
func BuildContext(in Input) string {
	parts := []string{"Flow: " + string(in.Intent)}

	f := in.Facts
	address := f.Address
	if address == "" {
		address = "Unknown"
	}
	parts = append(parts, "Property: "+address)
	if f.ListPrice != nil && *f.ListPrice > 0 {
		parts = append(parts, "Price: $"+valuation.FormatAmount(*f.ListPrice))
	}
	if f.Beds != nil && f.Baths != nil {
		parts = append(parts, fmt.Sprintf("%s bed, %s bath", formatNumber(*f.Beds), formatNumber(*f.Baths)))
	}
	if f.Sqft != nil {
		parts = append(parts, fmt.Sprintf("%d sqft", *f.Sqft))
	}

	st := in.Stats
	if st.MedianListPrice != nil {
		parts = append(parts, "Area median: $"+valuation.FormatAmount(*st.MedianListPrice))
	}
	if st.DOMMedian != nil {
		parts = append(parts, fmt.Sprintf("Median DOM: %d days", *st.DOMMedian))
	}
	if st.PriceTrend12mPct != nil {
		parts = append(parts, fmt.Sprintf("1yr trend: %+.1f%%", *st.PriceTrend12mPct))
	}

	if len(in.Evaluation.Bars) > 0 {
		parts = append(parts, fmt.Sprintf("Price position: %s", in.level(models.BarPricePosition)),
			fmt.Sprintf("Demand: %s", in.level(models.BarDemandSupply)))
	}

	keys := make([]string, 0, len(in.Evaluation.Details))
	for k := range in.Evaluation.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := in.Evaluation.Details[k].(type) {
		case float64:
			parts = append(parts, fmt.Sprintf("%s: %s", k, formatNumber(v)))
		case int:
			parts = append(parts, fmt.Sprintf("%s: %d", k, v))
		case string:
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		}
	}

	return strings.Join(parts, " | ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ Summarizer = (*OpenAISummarizer)(nil)
var _ Summarizer = RuleBased{}

