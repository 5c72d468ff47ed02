// Package ratesapi talks to an openexchangerates-compatible rate provider.
package ratesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/budget_engine/internal/apperrors"
	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/core/ports/providers"
	"github.com/shopspring/decimal"
)

// maxBodySize bounds the provider response; a full snapshot is a few kilobytes.
const maxBodySize = 1 << 20

// Client fetches rate snapshots over HTTP.
type Client struct {
	httpClient    *http.Client
	latestURL     string
	historicalURL string
}

var _ providers.RateProvider = (*Client)(nil)

// NewClient creates a client. historicalURL is the prefix of <prefix>/<YYYY-MM-DD>.json.
func NewClient(latestURL, historicalURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		latestURL:     latestURL,
		historicalURL: strings.TrimSuffix(historicalURL, "/"),
	}
}

// snapshotPayload is the wire shape: {"timestamp": 1700000000, "base": "USD", "rates": {"EUR": 0.91}}.
type snapshotPayload struct {
	Timestamp int64                      `json:"timestamp"`
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// Latest fetches the current snapshot.
func (c *Client) Latest(ctx context.Context, credential string) (domain.RateSnapshot, error) {
	return c.fetch(ctx, c.latestURL, credential)
}

// Historical fetches the snapshot published for day.
func (c *Client) Historical(ctx context.Context, credential string, day time.Time) (domain.RateSnapshot, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/%s.json", c.historicalURL, day.Format("2006-01-02")), credential)
}

func (c *Client) fetch(ctx context.Context, endpoint, credential string) (domain.RateSnapshot, error) {
	if credential == "" {
		return domain.RateSnapshot{}, apperrors.ErrCredentialMissing
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: invalid endpoint: %v", apperrors.ErrFetchFailed, err)
	}
	q := u.Query()
	q.Set("app_id", credential)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: %v", apperrors.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RateSnapshot{}, fmt.Errorf("%w: cannot GET %s%s: %s", apperrors.ErrFetchFailed, u.Host, u.Path, resp.Status)
	}

	var payload snapshotPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: decode response: %v", apperrors.ErrFetchFailed, err)
	}
	return toSnapshot(payload)
}

func toSnapshot(p snapshotPayload) (domain.RateSnapshot, error) {
	if p.Base == "" || len(p.Rates) == 0 {
		return domain.RateSnapshot{}, fmt.Errorf("%w: response has no base or no rates", apperrors.ErrFetchFailed)
	}
	rates := make(map[string]decimal.Decimal, len(p.Rates))
	for code, rate := range p.Rates {
		if !rate.IsPositive() {
			return domain.RateSnapshot{}, fmt.Errorf("%w: non-positive rate for %s", apperrors.ErrFetchFailed, code)
		}
		rates[domain.NormalizeCurrencyCode(code)] = rate
	}
	return domain.RateSnapshot{
		Base:      domain.NormalizeCurrencyCode(p.Base),
		Timestamp: time.Unix(p.Timestamp, 0),
		Rates:     rates,
	}, nil
}
