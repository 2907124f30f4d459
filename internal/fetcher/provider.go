package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProviderOptions parameterise the rates provider client.
type ProviderOptions struct {
	URL       string
	Pair      string
	Timeout   time.Duration
	UserAgent string
}

// Provider fetches gradation rates over HTTPS and normalizes them.
type Provider struct {
	opts   ProviderOptions
	logger zerolog.Logger
	client *http.Client
}

// NewProvider constructs a provider client.
func NewProvider(opts ProviderOptions, logger zerolog.Logger) *Provider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Provider{
		opts:   opts,
		logger: logger.With().Str("component", "rate_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchRate retrieves the provider document and returns the representative
// price for the configured pair.
func (p *Provider) FetchRate(ctx context.Context) (decimal.Decimal, error) {
	raw, err := p.fetchRaw(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	entries := Normalize(raw)
	price, err := SelectPrice(entries, p.opts.Pair)
	if err != nil {
		return decimal.Decimal{}, err
	}

	p.logger.Debug().Str("pair", p.opts.Pair).Str("price", price.String()).
		Int("entries", len(entries)).Msg("selected price from provider feed")
	return price, nil
}

func (p *Provider) fetchRaw(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create provider request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if ua := strings.TrimSpace(p.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp.StatusCode, payload)
	}

	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse provider response: %w", err)
	}
	return raw, nil
}

func httpError(status int, payload []byte) error {
	body := strings.TrimSpace(string(payload))
	if len(body) > 200 {
		body = body[:200]
	}
	if body != "" {
		return fmt.Errorf("provider error (%d): %s", status, body)
	}
	return fmt.Errorf("provider error (%d)", status)
}

var _ RateFetcher = (*Provider)(nil)
