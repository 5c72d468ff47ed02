package ratesapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Latest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/latest.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("app_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"timestamp": 1700000000, "base": "USD", "rates": {"EUR": 0.9, "usd": 1, "JPY": 151.25}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/latest.json", srv.URL+"/api/historical", time.Second)
	snap, err := c.Latest(context.Background(), "secret")
	require.NoError(t, err)

	assert.Equal(t, "USD", snap.Base)
	assert.Equal(t, time.Unix(1700000000, 0), snap.Timestamp)
	require.Len(t, snap.Rates, 3)
	assert.True(t, snap.Rates["EUR"].Equal(decimal.RequireFromString("0.9")))
	assert.True(t, snap.Rates["USD"].Equal(decimal.NewFromInt(1)))
}

func TestClient_Historical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/historical/2025-03-14.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"timestamp": 1741996799, "base": "USD", "rates": {"EUR": 0.92}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/latest.json", srv.URL+"/api/historical/", time.Second)
	snap, err := c.Historical(context.Background(), "secret", time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, snap.Rates["EUR"].Equal(decimal.RequireFromString("0.92")))
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusUnauthorized, `{"error": true}`},
		{"malformed", http.StatusOK, `{"timestamp": "x"`},
		{"no rates", http.StatusOK, `{"timestamp": 1, "base": "USD", "rates": {}}`},
		{"negative rate", http.StatusOK, `{"timestamp": 1, "base": "USD", "rates": {"EUR": -1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, srv.URL, time.Second)
			_, err := c.Latest(context.Background(), "secret")
			assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
		})
	}
}

func TestClient_RequiresCredential(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "http://127.0.0.1:1", time.Second)
	_, err := c.Latest(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrCredentialMissing)
}
