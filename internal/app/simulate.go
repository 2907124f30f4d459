package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"currency-rate-alerts/internal/detector"
	"currency-rate-alerts/internal/fetcher"
	"currency-rate-alerts/internal/service"
	"currency-rate-alerts/internal/storage"
)

// Simulate feeds a synthetic previous/current price pair through the real
// tick pipeline against in-memory stores, so the on-disk state is never
// touched. The detector starts past warm-up so the alert path is exercised.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	if opts.Price <= 0 {
		return errors.New("--price must be greater than zero")
	}

	notifier, err := a.newNotifier()
	if err != nil {
		return err
	}

	params := a.detectorParams()
	states := &memoryStateStore{state: detector.NewState()}
	if opts.PrevPrice > 0 {
		prev := opts.PrevPrice
		states.state.PrevPrice = &prev
		states.state.Samples = params.WarmupSamples
	}
	history := &memoryHistoryStore{}

	svc := service.New(a.Config.Provider.Pair, params,
		&staticRateFetcher{price: decimal.NewFromFloat(opts.Price)},
		states, history, notifier, a.Logger)

	obs, err := svc.ProcessTick(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	event := a.Logger.Info().Float64("price", opts.Price)
	if obs.Bootstrap {
		event.Bool("bootstrap", true).Msg("simulation recorded a bootstrap sample")
	} else {
		event.Float64("r", obs.Return).Float64("z", obs.Z).Bool("alert", obs.Alert).Msg("simulation complete")
	}
	return nil
}

type staticRateFetcher struct {
	price decimal.Decimal
}

func (s *staticRateFetcher) FetchRate(ctx context.Context) (decimal.Decimal, error) {
	return s.price, nil
}

type memoryStateStore struct {
	state detector.State
}

func (m *memoryStateStore) Load() (detector.State, error) {
	return m.state, nil
}

func (m *memoryStateStore) Save(state detector.State) error {
	m.state = state
	return nil
}

type memoryHistoryStore struct {
	records []storage.HistoryRecord
}

func (m *memoryHistoryStore) Append(record storage.HistoryRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memoryHistoryStore) ListRecent(limit int) ([]storage.HistoryRecord, error) {
	out := make([]storage.HistoryRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memoryHistoryStore) ListBetween(from, to time.Time) ([]storage.HistoryRecord, error) {
	out := make([]storage.HistoryRecord, 0, len(m.records))
	for _, rec := range m.records {
		if rec.Time.Before(from) || !rec.Time.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

var _ fetcher.RateFetcher = (*staticRateFetcher)(nil)
var _ storage.StateStore = (*memoryStateStore)(nil)
var _ storage.HistoryStore = (*memoryHistoryStore)(nil)
