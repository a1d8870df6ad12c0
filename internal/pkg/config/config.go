package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (offsets, batch sizes, timeouts)
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	App       AppConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	Internal  InternalAuthConfig
	Gateway   GatewayConfig
	MQ        MQConfig
	Tracing   TracingConfig
	Scheduler SchedulerConfig
	Holds     HoldConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type AppConfig struct {
	// BaseURL is used to build customer-facing return links
	BaseURL string `envconfig:"APP_BASE_URL" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

// InternalAuthConfig holds the shared credential used between the scheduler
// and gateway-fronting endpoints. Never used on customer-facing routes.
type InternalAuthConfig struct {
	ServiceSecret string        `envconfig:"INTERNAL_SERVICE_SECRET" required:"true"`
	TokenTTL      time.Duration `envconfig:"INTERNAL_TOKEN_TTL" default:"2m"`
	ServiceName   string        `envconfig:"INTERNAL_SERVICE_NAME" default:"hold-orchestrator"`
}

type GatewayConfig struct {
	// Driver selects the payment gateway adapter: "omise" or "http"
	Driver         string `envconfig:"GATEWAY_DRIVER" default:"omise"`
	BaseURL        string `envconfig:"GATEWAY_BASE_URL" default:"http://localhost:8081"`
	APIKey         string `envconfig:"GATEWAY_API_KEY"`
	OmisePublicKey string `envconfig:"OMISE_PUBLIC_KEY"`
	Currency       string `envconfig:"GATEWAY_CURRENCY" default:"usd"`
}

type MQConfig struct {
	URL          string   `envconfig:"RABBIT_URL"`
	Exchange     string   `envconfig:"RABBIT_EXCHANGE" default:"rental.events"`
	PaymentQueue string   `envconfig:"RABBIT_PAYMENT_QUEUE" default:"orchestrator.payments"`
	PaymentKeys  []string `envconfig:"RABBIT_PAYMENT_KEYS" default:"payment.paid,payment.status_changed"`
	Prefetch     int      `envconfig:"RABBIT_PREFETCH" default:"8"`
}

type TracingConfig struct {
	Enabled     bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"hold-orchestrator"`
	Environment string `envconfig:"ENV" default:"dev"`
}

type SchedulerConfig struct {
	BatchSize        int           `envconfig:"SCHEDULER_BATCH_SIZE" default:"100"`
	MaxRetries       int           `envconfig:"SCHEDULER_MAX_RETRIES" default:"3"`
	RetryDelay       time.Duration `envconfig:"SCHEDULER_RETRY_DELAY" default:"5m"`
	Concurrency      int           `envconfig:"SCHEDULER_CONCURRENCY" default:"10"`
	CallTimeout      time.Duration `envconfig:"SCHEDULER_CALL_TIMEOUT" default:"30s"`
	// ClaimTimeout is how long a job may sit in processing before it is handed back to pending
	ClaimTimeout     time.Duration `envconfig:"SCHEDULER_CLAIM_TIMEOUT" default:"10m"`
	HoldLeadTime     time.Duration `envconfig:"HOLD_LEAD_TIME" default:"48h"`
	AutoCancelGrace  time.Duration `envconfig:"AUTO_CANCEL_GRACE" default:"12h"`
	InsuranceHorizon time.Duration `envconfig:"INSURANCE_EXPIRY_HORIZON" default:"720h"`
	ReminderLeadTime time.Duration `envconfig:"REMINDER_LEAD_TIME" default:"24h"`
	ReleaseDelay     time.Duration `envconfig:"RELEASE_DELAY" default:"24h"`
}

type HoldConfig struct {
	VerificationCents int64 `envconfig:"VERIFICATION_HOLD_CENTS" default:"5000"`
	SecurityCents     int64 `envconfig:"SECURITY_HOLD_CENTS" default:"50000"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	// .env is optional; real environments inject variables directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings that would make the job schedule inconsistent
// or leave the gateway adapter unusable.
func (c Config) Validate() error {
	var problems []string
	switch c.Gateway.Driver {
	case "omise":
		if c.Gateway.APIKey == "" || c.Gateway.OmisePublicKey == "" {
			problems = append(problems, "omise driver requires GATEWAY_API_KEY and OMISE_PUBLIC_KEY")
		}
	case "http":
		if c.Gateway.BaseURL == "" {
			problems = append(problems, "http driver requires GATEWAY_BASE_URL")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown GATEWAY_DRIVER %q", c.Gateway.Driver))
	}

	s := c.Scheduler
	if s.BatchSize <= 0 || s.Concurrency <= 0 {
		problems = append(problems, "SCHEDULER_BATCH_SIZE and SCHEDULER_CONCURRENCY must be positive")
	}
	if s.ClaimTimeout <= s.CallTimeout {
		problems = append(problems, "SCHEDULER_CLAIM_TIMEOUT must exceed SCHEDULER_CALL_TIMEOUT")
	}
	if s.MaxRetries < 0 {
		problems = append(problems, "SCHEDULER_MAX_RETRIES must not be negative")
	}
	if s.HoldLeadTime <= 0 || s.AutoCancelGrace <= 0 {
		problems = append(problems, "HOLD_LEAD_TIME and AUTO_CANCEL_GRACE must be positive")
	}
	if s.AutoCancelGrace >= s.HoldLeadTime {
		problems = append(problems, "AUTO_CANCEL_GRACE must be shorter than HOLD_LEAD_TIME")
	}
	if c.Holds.VerificationCents <= 0 || c.Holds.SecurityCents <= 0 {
		problems = append(problems, "hold amounts must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		App: AppConfig{
			BaseURL: "https://rentals.test",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 5,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Internal: InternalAuthConfig{
			ServiceSecret: "test-internal-secret",
			TokenTTL:      2 * time.Minute,
			ServiceName:   "hold-orchestrator-test",
		},
		Gateway: GatewayConfig{
			Driver:   "http",
			BaseURL:  "http://localhost:18081",
			Currency: "usd",
		},
		Scheduler: SchedulerConfig{
			BatchSize:        100,
			MaxRetries:       3,
			RetryDelay:       5 * time.Minute,
			Concurrency:      4,
			CallTimeout:      5 * time.Second,
			ClaimTimeout:     10 * time.Minute,
			HoldLeadTime:     48 * time.Hour,
			AutoCancelGrace:  12 * time.Hour,
			InsuranceHorizon: 30 * 24 * time.Hour,
			ReminderLeadTime: 24 * time.Hour,
			ReleaseDelay:     24 * time.Hour,
		},
		Holds: HoldConfig{
			VerificationCents: 5000,
			SecurityCents:     50000,
		},
	}
}
