package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB, Stripe keys)
// - default: Values common across all environments (cadences, fees, timeouts)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Stripe  StripeConfig
	Billing BillingConfig
	Jobs    JobsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Europe/Paris"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Europe/Paris"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"3600"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"STRIPE_API_KEY" required:"true"`
	Currency string `envconfig:"STRIPE_CURRENCY" default:"eur"`
}

type BillingConfig struct {
	// Prices are pre-tax, in minor currency units.
	Rate30          int64         `envconfig:"BILLING_RATE_30" default:"3000"`
	Rate60          int64         `envconfig:"BILLING_RATE_60" default:"6000"`
	CancellationFee int64         `envconfig:"BILLING_CANCELLATION_FEE" default:"1000"`
	PayoutDelay     time.Duration `envconfig:"BILLING_PAYOUT_DELAY" default:"48h"`
}

type JobsConfig struct {
	// Local timezone for "today / in two days" day boundaries.
	TimeZone           string        `envconfig:"JOBS_TIMEZONE" default:"Europe/Paris"`
	ExpiryInterval     time.Duration `envconfig:"JOBS_EXPIRY_INTERVAL" default:"10m"`
	InitiationTTL      time.Duration `envconfig:"JOBS_INITIATION_TTL" default:"10m"`
	ReminderInterval   time.Duration `envconfig:"JOBS_REMINDER_INTERVAL" default:"1m"`
	IndexInterval      time.Duration `envconfig:"JOBS_INDEX_INTERVAL" default:"24h"`
	EvaluationInterval time.Duration `envconfig:"JOBS_EVALUATION_INTERVAL" default:"24h"`
	PayoutInterval     time.Duration `envconfig:"JOBS_PAYOUT_INTERVAL" default:"1h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	// Local development convenience; absent .env files are not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Europe/Paris",
		},
		Log: LogConfig{
			Level:          "error",
			TimeZone:       "Europe/Paris",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 3600,
		},
		Stripe: StripeConfig{
			APIKey:   "sk_test_dummy",
			Currency: "eur",
		},
		Billing: BillingConfig{
			Rate30:          3000,
			Rate60:          6000,
			CancellationFee: 1000,
			PayoutDelay:     48 * time.Hour,
		},
		Jobs: JobsConfig{
			TimeZone:           "Europe/Paris",
			ExpiryInterval:     10 * time.Minute,
			InitiationTTL:      10 * time.Minute,
			ReminderInterval:   time.Minute,
			IndexInterval:      24 * time.Hour,
			EvaluationInterval: 24 * time.Hour,
			PayoutInterval:     time.Hour,
		},
	}
}
