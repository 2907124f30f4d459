package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestProvider(url string) *Provider {
	return NewProvider(ProviderOptions{
		URL:       url,
		Pair:      "EUR/KZT",
		Timeout:   time.Second,
		UserAgent: "test",
	}, noopLogger())
}

func TestFetchRateWrappedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{
				map[string]any{
					"pairCode": "EURKZT",
					"gradations": []any{
						map[string]any{"fromAmount": 0, "buyRate": 510.0, "sellRate": 520.0},
					},
				},
			},
		})
	}))
	defer srv.Close()

	price, err := newTestProvider(srv.URL).FetchRate(context.Background())
	if err != nil {
		t.Fatalf("fetch should succeed: %v", err)
	}
	if price.String() != "515" {
		t.Fatalf("expected midpoint 515, got %s", price.String())
	}
}

func TestFetchRatePairNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]any{
			map[string]any{"pair": "USD/KZT", "buy": 450.0, "sell": 455.0},
		})
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).FetchRate(context.Background())
	if !errors.Is(err, ErrPairNotFound) {
		t.Fatalf("expected ErrPairNotFound, got %v", err)
	}
}

func TestFetchRateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := newTestProvider(srv.URL).FetchRate(context.Background()); err == nil {
		t.Fatal("HTTP 502 should return an error")
	}
}

func TestFetchRateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	if _, err := newTestProvider(srv.URL).FetchRate(context.Background()); err == nil {
		t.Fatal("malformed body should return an error")
	}
}

func TestNormalizeBaseQuoteAliases(t *testing.T) {
	entries := Normalize(map[string]any{
		"rates": []any{
			map[string]any{"fromCcy": "EUR", "toCcy": "KZT", "buy": "512,5", "sell": "517 , 5"},
		},
	})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Pair != "EUR/KZT" {
		t.Fatalf("pair should assemble from base/quote, got %q", entries[0].Pair)
	}

	price, err := SelectPrice(entries, "eur-kzt")
	if err != nil {
		t.Fatalf("case and separator differences should not matter: %v", err)
	}
	if price.String() != "515" {
		t.Fatalf("cleaned string numbers should parse, got %s", price.String())
	}
}

func TestNormalizeSingleCurrencyDefaultsToKZT(t *testing.T) {
	entries := Normalize([]any{
		map[string]any{"ccy": "EUR", "buy": 510.0},
	})
	if entries[0].Pair != "EUR/KZT" {
		t.Fatalf("lone base currency should be quoted versus KZT, got %q", entries[0].Pair)
	}
}

func TestSelectPriceTierPreference(t *testing.T) {
	five := dec(5000)
	entries := []Entry{{
		Pair: "EUR/KZT",
		Tiers: []Tier{
			{From: dec(1000), Buy: dec(505), Sell: dec(509)},
			{From: dec(0), Buy: dec(510), Sell: dec(520)},
			{From: five, Buy: dec(500), Sell: dec(502)},
		},
	}}

	price, err := SelectPrice(entries, "EURKZT")
	if err != nil {
		t.Fatal(err)
	}
	if price.String() != "515" {
		t.Fatalf("zero-lower-bound tier should win, got %s", price.String())
	}
}

func TestSelectPriceFallsBackToFirstTier(t *testing.T) {
	entries := []Entry{{
		Pair: "EUR/KZT",
		Tiers: []Tier{
			{From: dec(1000), Buy: dec(505)},
			{From: dec(5000), Sell: dec(502)},
		},
	}}

	price, err := SelectPrice(entries, "EUR/KZT")
	if err != nil {
		t.Fatal(err)
	}
	if price.String() != "505" {
		t.Fatalf("first tier buy should be used when no zero tier exists, got %s", price.String())
	}
}

func TestSelectPriceSingleSide(t *testing.T) {
	entries := []Entry{{
		Pair:  "EUR/KZT",
		Tiers: []Tier{{Sell: dec(520)}},
	}}

	price, err := SelectPrice(entries, "EUR/KZT")
	if err != nil {
		t.Fatal(err)
	}
	if price.String() != "520" {
		t.Fatalf("sell-only tier should return sell, got %s", price.String())
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	original := Normalize(map[string]any{
		"items": []any{
			map[string]any{
				"ccyPair": "EUR/KZT",
				"rateList": []any{
					map[string]any{"amountFrom": 0, "rateBuy": 510.0, "rateSell": 520.0},
					map[string]any{"amountFrom": 10000, "rateBuy": 508.0, "rateSell": 518.0},
				},
			},
		},
	})

	first, err := SelectPrice(original, "EUR/KZT")
	if err != nil {
		t.Fatal(err)
	}

	// Round-trip the normalized form through JSON and normalize again.
	payload, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatal(err)
	}

	again, err := SelectPrice(Normalize(decoded), "EUR/KZT")
	if err != nil {
		t.Fatalf("re-normalizing normalized output should still resolve: %v", err)
	}
	if !first.Equal(again) {
		t.Fatalf("normalization is not idempotent: %s vs %s", first, again)
	}
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
