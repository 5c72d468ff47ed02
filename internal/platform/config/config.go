package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// Exchange rate provider
	RatesLatestURL      string
	RatesHistoricalURL  string
	RatesPivotCurrency  string
	RatesFallbackConfig string // path of the bundled credential file
	RatesRetention      time.Duration
	RatesHTTPTimeout    time.Duration

	// Secure storage
	SecretsDBPath string
	SecretsKey    string

	// Event delivery
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	PosthogAPIKey      string
	RateLimit          string
	CORSAllowedOrigins []string

	BudgetHorizonMonths int
	DefaultCurrency     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "budget-engine")
	viper.SetDefault("RATES_LATEST_URL", "https://openexchangerates.org/api/latest.json")
	viper.SetDefault("RATES_HISTORICAL_URL", "https://openexchangerates.org/api/historical")
	viper.SetDefault("RATES_PIVOT_CURRENCY", "USD")
	viper.SetDefault("RATES_FALLBACK_CONFIG", "")
	viper.SetDefault("RATES_RETENTION", "8760h")
	viper.SetDefault("RATES_HTTP_TIMEOUT", "15s")
	viper.SetDefault("SECRETS_DB_PATH", "./data/secrets.db")
	viper.SetDefault("SECRETS_KEY", "")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "budget-events")
	viper.SetDefault("AMQP_QUEUE", "budget-events")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("BUDGET_HORIZON_MONTHS", 6)
	viper.SetDefault("DEFAULT_CURRENCY", "")

	// Environment variables override the defaults and the .env file.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RatesLatestURL = viper.GetString("RATES_LATEST_URL")
	cfg.RatesHistoricalURL = strings.TrimSuffix(viper.GetString("RATES_HISTORICAL_URL"), "/")
	cfg.RatesPivotCurrency = strings.ToUpper(viper.GetString("RATES_PIVOT_CURRENCY"))
	cfg.RatesFallbackConfig = viper.GetString("RATES_FALLBACK_CONFIG")
	cfg.RatesRetention = parseDuration("RATES_RETENTION", 365*24*time.Hour)
	cfg.RatesHTTPTimeout = parseDuration("RATES_HTTP_TIMEOUT", 15*time.Second)

	cfg.SecretsDBPath = viper.GetString("SECRETS_DB_PATH")
	cfg.SecretsKey = viper.GetString("SECRETS_KEY")
	if cfg.SecretsKey == "" {
		log.Println("Warning: SECRETS_KEY not set. The provider credential cannot be stored securely.")
	}

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.AMQPExchange = viper.GetString("AMQP_EXCHANGE")
	cfg.AMQPQueue = viper.GetString("AMQP_QUEUE")

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.BudgetHorizonMonths = viper.GetInt("BUDGET_HORIZON_MONTHS")
	if cfg.BudgetHorizonMonths < 1 || cfg.BudgetHorizonMonths > 24 {
		log.Printf("Warning: Invalid value for BUDGET_HORIZON_MONTHS (%d). Defaulting to 6.\n", cfg.BudgetHorizonMonths)
		cfg.BudgetHorizonMonths = 6
	}
	cfg.DefaultCurrency = strings.ToUpper(viper.GetString("DEFAULT_CURRENCY"))

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
