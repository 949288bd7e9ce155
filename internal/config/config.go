package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Verification store backends
const (
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreNone     = "none"
)

// Notification providers
const (
	EmailProviderLog  = "log"
	EmailProviderSES  = "ses"
	EmailProviderSMTP = "smtp"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Commerce CommerceConfig
	Auth     AuthConfig
	Session  SessionConfig
	Redis    RedisConfig
	Email    EmailConfig
	AWS      AWSConfig
	PayPal   PayPalConfig
}

type DatabaseConfig struct {
	URL               string
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type CommerceConfig struct {
	BaseURL           string
	ShopID            string
	APIKey            string
	RequestsPerSecond float64
	Timeout           time.Duration
}

type AuthConfig struct {
	CodeTTL             time.Duration
	VerificationStore   string
	CleanupInterval     time.Duration
	RateLimitPerMinute  int
	TimingDelayBaseMs   int
	TimingDelayRandomMs int
}

type SessionConfig struct {
	Secret         string
	CookieName     string
	MaxAge         time.Duration
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type EmailConfig struct {
	Provider     string
	FromAddress  string
	Brand        string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

type AWSConfig struct {
	Region                 string
	EndpointURL            string // empty in prod, LocalStack URL in dev
	AccessKeyID            string
	SecretAccessKey        string
	VerificationsTableName string
}

type PayPalConfig struct {
	BusinessEmail string
	Currency      string
	ReturnURL     string
	CancelURL     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			URL:               getEnv("DATABASE_URL", ""),
			Host:              getEnv("DB_HOST", ""),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "shopflow"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 1)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Commerce: CommerceConfig{
			BaseURL:           strings.TrimRight(getEnv("SELLAUTH_API_URL", "https://api.sellauth.com/v1"), "/"),
			ShopID:            getEnv("SELLAUTH_SHOP_ID", ""),
			APIKey:            getEnv("SELLAUTH_API_KEY", ""),
			RequestsPerSecond: getEnvAsFloat("SELLAUTH_REQUESTS_PER_SECOND", 5),
			Timeout:           getEnvAsDuration("SELLAUTH_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			CodeTTL:             time.Duration(getEnvAsInt("LOGIN_CODE_TTL", 10)) * time.Minute,
			CleanupInterval:     getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
			RateLimitPerMinute:  getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 5),
			TimingDelayBaseMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 0),
			TimingDelayRandomMs: getEnvAsInt("TIMING_DELAY_RANDOM_MS", 0),
		},
		Session: SessionConfig{
			Secret:         sessionSecret,
			CookieName:     getEnv("SESSION_COOKIE_NAME", "shopflow.sid"),
			MaxAge:         getEnvAsDuration("SESSION_MAX_AGE", 24*time.Hour),
			CookieDomain:   getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:   getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite: strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderLog)),
			FromAddress:  getEnv("EMAIL_FROM", "noreply@shopflow.local"),
			Brand:        getEnv("EMAIL_BRAND", "Shop-Flow"),
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnv("SMTP_PORT", "1025"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		},
		AWS: AWSConfig{
			Region:                 getEnv("AWS_REGION", "us-east-1"),
			EndpointURL:            getEnv("AWS_ENDPOINT_URL", ""),
			AccessKeyID:            getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:        getEnv("AWS_SECRET_ACCESS_KEY", ""),
			VerificationsTableName: getEnv("DYNAMO_TABLE_VERIFICATIONS", "auth_verifications"),
		},
		PayPal: PayPalConfig{
			BusinessEmail: getEnv("PAYPAL_BUSINESS_EMAIL", ""),
			Currency:      getEnv("PAYPAL_CURRENCY", "EUR"),
			ReturnURL:     getEnv("PAYPAL_RETURN_URL", "http://localhost:5000/checkout/success"),
			CancelURL:     getEnv("PAYPAL_CANCEL_URL", "http://localhost:5000/checkout/cancel"),
		},
	}

	if cfg.Commerce.ShopID == "" || cfg.Commerce.APIKey == "" {
		return nil, fmt.Errorf("SELLAUTH_SHOP_ID and SELLAUTH_API_KEY are required")
	}

	defaultStore := StoreNone
	if cfg.Database.Enabled() {
		defaultStore = StorePostgres
	}
	cfg.Auth.VerificationStore = strings.ToLower(getEnv("VERIFICATION_STORE", defaultStore))

	switch cfg.Auth.VerificationStore {
	case StorePostgres:
		if !cfg.Database.Enabled() {
			return nil, fmt.Errorf("VERIFICATION_STORE=postgres requires DB_HOST or DATABASE_URL")
		}
	case StoreDynamoDB, StoreNone:
	default:
		return nil, fmt.Errorf("unknown VERIFICATION_STORE %q", cfg.Auth.VerificationStore)
	}

	switch cfg.Email.Provider {
	case EmailProviderLog, EmailProviderSES, EmailProviderSMTP:
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.Email.Provider)
	}

	if cfg.Auth.CodeTTL <= 0 {
		cfg.Auth.CodeTTL = 10 * time.Minute
	}

	// Validate session secret strength
	if err := validateSessionSecret(sessionSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSessionSecret enforces minimum security standards for the cookie signing secret
func validateSessionSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("SESSION_SECRET cannot be a common weak value")
		}
	}

	return nil
}

// Enabled reports whether a Postgres datastore is configured
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if originsStr := getEnv("ALLOWED_ORIGINS", ""); originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	if env == "production" {
		return []string{}
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:5000",
		"http://localhost:5173", // Vite default
		"http://localhost:3000",
		"http://127.0.0.1:5000",
		"http://127.0.0.1:5173",
		"http://127.0.0.1:3000",
	}
}
