package fetcher

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrPairNotFound is returned when the normalized feed carries no entry
// for the configured currency pair.
var ErrPairNotFound = errors.New("pair not found in normalized data")

// RateFetcher retrieves a single representative price for the configured
// currency pair.
type RateFetcher interface {
	FetchRate(ctx context.Context) (decimal.Decimal, error)
}
