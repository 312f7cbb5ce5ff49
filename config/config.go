package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"

	"homeval/server/internal/models"
	"homeval/server/internal/valuation"
)

type Config struct {
	Server struct {
		Port        string   `env:"PORT" envDefault:"5250"`
		GinMode     string   `env:"GIN_MODE" envDefault:"release"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/homeval.db"`
	}

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Assumption defaults merged under caller overrides
	Assumptions struct {
		InterestRate          float64 `env:"DEFAULT_INTEREST_RATE" envDefault:"0.07"`
		LoanTermYears         int     `env:"DEFAULT_LOAN_TERM_YEARS" envDefault:"30"`
		VacancyRate           float64 `env:"DEFAULT_VACANCY_RATE" envDefault:"0.05"`
		ManagementFee         float64 `env:"DEFAULT_MANAGEMENT_FEE" envDefault:"0.08"`
		MaintenanceRate       float64 `env:"DEFAULT_MAINTENANCE_RATE" envDefault:"0.08"`
		DownPaymentBuy        float64 `env:"DEFAULT_DOWN_PAYMENT_BUY" envDefault:"0.20"`
		DownPaymentInvestment float64 `env:"DEFAULT_DOWN_PAYMENT_INVESTMENT" envDefault:"0.25"`
	}

	OpenAI struct {
		APIKey string `env:"OPENAI_API_KEY"`
		Model  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	}

	RentCast struct {
		APIKey  string `env:"RENTCAST_API_KEY"`
		BaseURL string `env:"RENTCAST_BASE_URL" envDefault:"https://api.rentcast.io/v1"`
	}

	Geocoding struct {
		BaseURL  string `env:"NOMINATIM_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
		CacheDir string `env:"GEOCODE_CACHE_DIR"`
	}

	// Comparables farther than this from the subject are dropped
	CompRadiusKm float64 `env:"COMP_RADIUS_KM" envDefault:"1.5"`

	// Days of evaluation history to keep, 0 keeps everything
	HistoryRetentionDays int `env:"HISTORY_RETENTION_DAYS" envDefault:"0"`

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of queued evaluation jobs
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed jobs
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Assumptions.LoanTermYears < 1 {
		return fmt.Errorf("DEFAULT_LOAN_TERM_YEARS must be at least 1, got %d", c.Assumptions.LoanTermYears)
	}
	fractions := []struct {
		name  string
		value float64
	}{
		{"DEFAULT_INTEREST_RATE", c.Assumptions.InterestRate},
		{"DEFAULT_VACANCY_RATE", c.Assumptions.VacancyRate},
		{"DEFAULT_MANAGEMENT_FEE", c.Assumptions.ManagementFee},
		{"DEFAULT_MAINTENANCE_RATE", c.Assumptions.MaintenanceRate},
		{"DEFAULT_DOWN_PAYMENT_BUY", c.Assumptions.DownPaymentBuy},
		{"DEFAULT_DOWN_PAYMENT_INVESTMENT", c.Assumptions.DownPaymentInvestment},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %g", f.name, f.value)
		}
	}
	if c.BatchProcessing.ProcessorCount < 1 {
		return fmt.Errorf("BATCH_PROCESSOR_COUNT must be at least 1, got %d", c.BatchProcessing.ProcessorCount)
	}
	if c.BatchProcessing.MaxBatchSize < 1 {
		return fmt.Errorf("BATCH_MAX_SIZE must be at least 1, got %d", c.BatchProcessing.MaxBatchSize)
	}
	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative, got %d", c.HistoryRetentionDays)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// Defaults converts the configured assumptions into evaluator defaults
func (c *Config) Defaults() valuation.Defaults {
	a := c.Assumptions
	buy := models.Assumptions{
		InterestRate:    a.InterestRate,
		DownPaymentPct:  a.DownPaymentBuy,
		LoanTermYears:   a.LoanTermYears,
		VacancyRate:     a.VacancyRate,
		ManagementFee:   a.ManagementFee,
		MaintenanceRate: a.MaintenanceRate,
	}
	investment := buy
	investment.DownPaymentPct = a.DownPaymentInvestment
	return valuation.Defaults{Buy: buy, Investment: investment}
}

// Logger builds the JSON logger at the configured level
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// RetryDelay returns the batch retry delay as a duration
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.BatchProcessing.RetryDelay) * time.Second
}
