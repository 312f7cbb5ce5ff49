package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeval/server/internal/valuation"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "database/homeval.db", cfg.Database.Path)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 1.5, cfg.CompRadiusKm)
	assert.Equal(t, 100, cfg.BatchProcessing.MaxBatchSize)
	assert.Equal(t, 2, cfg.BatchProcessing.ProcessorCount)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay())
	assert.Equal(t, 0, cfg.HistoryRetentionDays)

	assert.Equal(t, valuation.DefaultAssumptions(), cfg.Defaults())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://homeval.app")
	t.Setenv("DEFAULT_INTEREST_RATE", "0.065")
	t.Setenv("DEFAULT_DOWN_PAYMENT_INVESTMENT", "0.30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://homeval.app"}, cfg.Server.CORSOrigins)

	d := cfg.Defaults()
	assert.Equal(t, 0.065, d.Buy.InterestRate)
	assert.Equal(t, 0.065, d.Investment.InterestRate)
	assert.Equal(t, 0.20, d.Buy.DownPaymentPct)
	assert.Equal(t, 0.30, d.Investment.DownPaymentPct)

	assert.Equal(t, logrus.DebugLevel, cfg.Logger().GetLevel())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Zero loan term", key: "DEFAULT_LOAN_TERM_YEARS", value: "0"},
		{name: "No processors", key: "BATCH_PROCESSOR_COUNT", value: "0"},
		{name: "Empty queue", key: "BATCH_MAX_SIZE", value: "0"},
		{name: "Down payment above 100%", key: "DEFAULT_DOWN_PAYMENT_BUY", value: "1.5"},
		{name: "Negative vacancy", key: "DEFAULT_VACANCY_RATE", value: "-0.1"},
		{name: "Interest as percent", key: "DEFAULT_INTEREST_RATE", value: "7"},
		{name: "Negative retention", key: "HISTORY_RETENTION_DAYS", value: "-1"},
		{name: "Unknown log level", key: "LOG_LEVEL", value: "chatty"},
		{name: "Malformed number", key: "DEFAULT_INTEREST_RATE", value: "seven"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
