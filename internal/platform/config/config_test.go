package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("RATES_PIVOT_CURRENCY", "usd")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.RatesPivotCurrency)
	assert.Equal(t, 6, cfg.BudgetHorizonMonths)
	assert.Equal(t, 365*24*time.Hour, cfg.RatesRetention)
	assert.Equal(t, 15*time.Second, cfg.RatesHTTPTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	viper.Reset()
	t.Setenv("BUDGET_HORIZON_MONTHS", "99")
	t.Setenv("RATES_HTTP_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.BudgetHorizonMonths)
	assert.Equal(t, 15*time.Second, cfg.RatesHTTPTimeout)
}
