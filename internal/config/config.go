// Package config defines the Shorewatch service configuration. Values are
// loaded once at startup from the environment (with optional .env support),
// validated, and immutable thereafter. Sub-components receive only the
// config subsets they require.
package config

import (
	"time"

	"shorewatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration for the Shorewatch service.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server        ServerConfig
	Vision        VisionConfig
	Environmental EnvironmentalConfig
	Polling       PollingConfig
	Budget        BudgetConfig
	Metrics       MetricsConfig
}

// ServerConfig holds HTTP server and public URL configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// PublicURL is the externally reachable base URL of this service (no
	// trailing slash); the vision provider delivers webhook events to
	// PublicURL + /v1/webhooks/vision.
	PublicURL string `envconfig:"PUBLIC_URL" validate:"required,url"`
}

// VisionConfig holds the vision API endpoint and credentials.
type VisionConfig struct {
	BaseURL string       `envconfig:"VISION_BASE_URL" default:"https://trio.machinefi.com/api" validate:"required,url"`
	APIKey  SecretString `envconfig:"VISION_API_KEY" validate:"required"`
	Timeout time.Duration `envconfig:"VISION_TIMEOUT" default:"30s"`
}

// EnvironmentalConfig holds the NOAA data source endpoints.
type EnvironmentalConfig struct {
	NDBCBaseURL  string        `envconfig:"NDBC_BASE_URL" default:"https://www.ndbc.noaa.gov/data/realtime2" validate:"required,url"`
	COOPSBaseURL string        `envconfig:"COOPS_BASE_URL" default:"https://api.tidesandcurrents.noaa.gov/api/prod/datagetter" validate:"required,url"`
	Timeout      time.Duration `envconfig:"ENVIRONMENTAL_TIMEOUT" default:"15s"`
}

// PollingConfig holds the orchestrator's timer cadences.
type PollingConfig struct {
	// DemoInterval is the condition-poll interval in demo (broad) mode.
	DemoInterval time.Duration `envconfig:"POLL_DEMO_INTERVAL" default:"20s"`
	// ConservativeInterval is the condition-poll interval in conservative
	// (narrow) mode.
	ConservativeInterval time.Duration `envconfig:"POLL_CONSERVATIVE_INTERVAL" default:"60s"`
	// InterCallDelay spaces sequential check-once calls within one broad
	// cycle to respect remote rate limits.
	InterCallDelay time.Duration `envconfig:"POLL_INTER_CALL_DELAY" default:"3s"`
	// EnvironmentalInterval is the sensor refresh cadence, independent of
	// polling mode.
	EnvironmentalInterval time.Duration `envconfig:"POLL_ENVIRONMENTAL_INTERVAL" default:"5m"`
}

// BudgetConfig holds the daily quotas for the rate-limited vision API.
type BudgetConfig struct {
	// DailyCheckBudget is the daily quota of single-shot condition checks.
	DailyCheckBudget int `envconfig:"BUDGET_DAILY_CHECKS" default:"500" validate:"min=1"`
	// CheckSafetyMargin: conservative-mode polling stops once usage reaches
	// DailyCheckBudget - CheckSafetyMargin.
	CheckSafetyMargin int `envconfig:"BUDGET_CHECK_SAFETY_MARGIN" default:"50" validate:"min=0"`
	// DailyLiveMinutes is the daily quota of continuous-job minutes.
	DailyLiveMinutes int `envconfig:"BUDGET_DAILY_LIVE_MINUTES" default:"120" validate:"min=1"`
	// LiveMinuteCharge is the fixed minute cost charged per continuous-job
	// trigger, matching the remote service's job auto-expiry window. This is
	// a conservative approximation, not metered usage.
	LiveMinuteCharge int `envconfig:"BUDGET_LIVE_MINUTE_CHARGE" default:"10" validate:"min=1"`
}

// MetricsConfig holds the optional CloudWatch metrics publisher settings.
// Disabled by default so local development needs no AWS credentials.
type MetricsConfig struct {
	Enabled   bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"Shorewatch"`
	Region    string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// WebhookPath is the route at which inbound vision webhook events are
// received, appended to Server.PublicURL when registering remote jobs.
const WebhookPath = "/v1/webhooks/vision"

// WebhookURL returns the externally reachable webhook callback URL.
func (c *Config) WebhookURL() string {
	return c.Server.PublicURL + WebhookPath
}
