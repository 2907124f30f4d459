package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"currency-rate-alerts/internal/alerting"
	"currency-rate-alerts/internal/detector"
	"currency-rate-alerts/internal/fetcher"
	"currency-rate-alerts/internal/storage"
)

// Service orchestrates one monitoring tick: fetch, detect, alert, persist.
type Service struct {
	fetcher  fetcher.RateFetcher
	states   storage.StateStore
	history  storage.HistoryStore
	notifier alerting.Notifier
	params   detector.Params
	pair     string
	logger   zerolog.Logger
}

// New constructs the monitoring service. The notifier may be nil when
// alerting is disabled.
func New(pair string, params detector.Params, rates fetcher.RateFetcher, states storage.StateStore, history storage.HistoryStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:  rates,
		states:   states,
		history:  history,
		notifier: notifier,
		params:   params,
		pair:     pair,
		logger:   logger.With().Str("component", "service").Logger(),
	}
}

// ProcessTick runs a single monitoring pass. A fetch or state-load failure
// aborts before anything is written, so a transient outage leaves a gap
// rather than corrupted state. History append and state save are sequential
// and non-transactional.
func (s *Service) ProcessTick(ctx context.Context, now time.Time) (detector.Observation, error) {
	price, err := s.fetcher.FetchRate(ctx)
	if err != nil {
		return detector.Observation{}, fmt.Errorf("fetch rate: %w", err)
	}

	state, err := s.states.Load()
	if err != nil {
		return detector.Observation{}, fmt.Errorf("load state: %w", err)
	}

	obs := s.params.Update(&state, price.InexactFloat64(), now)

	record := storage.HistoryRecord{Time: now, Price: price}
	if !obs.Bootstrap {
		r, z := obs.Return, obs.Z
		record.Return = &r
		record.Z = &z
		record.Alert = storage.FlagNoAlert
		if obs.Alert {
			record.Alert = storage.FlagAlert
		}
	}

	if obs.Alert && s.notifier != nil {
		note := alerting.Notification{
			Pair:      s.pair,
			Time:      now,
			Price:     price,
			Return:    obs.Return,
			Z:         obs.Z,
			Threshold: s.params.Threshold,
		}
		// The alert stands even if delivery fails; the state already
		// records it, and the next tick is gated by cooldown.
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Time("tick", now).Msg("failed to dispatch alert")
		}
	}

	if err := s.history.Append(record); err != nil {
		s.logger.Error().Err(err).Time("tick", now).Msg("failed to append history row")
	}
	if err := s.states.Save(state); err != nil {
		return obs, fmt.Errorf("save state: %w", err)
	}

	event := s.logger.Info().Time("tick", now).Str("pair", s.pair).Str("price", price.String())
	if obs.Bootstrap {
		event.Bool("bootstrap", true).Msg("recorded first sample")
	} else {
		event.Float64("r", obs.Return).Float64("z", obs.Z).Bool("alert", obs.Alert).Msg("sample recorded")
	}

	return obs, nil
}
