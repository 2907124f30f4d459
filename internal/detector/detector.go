// Package detector implements an EWMA mean/variance model over one-step
// log-returns with z-score thresholding, warm-up, and alert cooldown.
package detector

import (
	"math"
	"time"
)

// Params tune the detector. Zero values are not usable; start from
// DefaultParams and override from configuration.
type Params struct {
	// Lambda is the EWMA smoothing factor: each new return contributes
	// Lambda of its weight, older ones decay geometrically.
	Lambda float64
	// Threshold is the alert bar in standard-deviation units.
	Threshold float64
	// Cooldown is the minimum gap between alerts.
	Cooldown time.Duration
	// WarmupSamples is the number of updates before alerts may fire.
	WarmupSamples int
	// Epsilon is added under the square root so the z denominator
	// stays strictly positive.
	Epsilon float64
}

// DefaultParams returns the production tuning.
func DefaultParams() Params {
	return Params{
		Lambda:        0.1,
		Threshold:     3.0,
		Cooldown:      3 * time.Hour,
		WarmupSamples: 48,
		Epsilon:       1e-12,
	}
}

// State is the persisted model, one record overwritten per run.
type State struct {
	// PrevPrice is the last observed price; nil until the bootstrap run.
	PrevPrice *float64 `json:"prev_price"`
	// Mean is the EWMA estimate of the mean log-return.
	Mean float64 `json:"mu"`
	// Variance is the EWMA estimate of the log-return variance.
	Variance float64 `json:"var"`
	// LastAlertAt is the timestamp of the most recent alert, if any.
	LastAlertAt *time.Time `json:"last_alert_time"`
	// Samples counts processed updates; gates the warm-up.
	Samples int `json:"n"`
}

// NewState returns the bootstrap model state.
func NewState() State {
	return State{Variance: 1e-8}
}

// Observation reports what a single update concluded.
type Observation struct {
	// Bootstrap is true when no previous price existed; no detection ran.
	Bootstrap bool
	Return    float64
	Z         float64
	Alert     bool
}

// Update folds one price into the model and decides whether it is an
// outlier. The ordering is deliberate: the residual is computed against
// the updated mean, and the variance update uses that residual. The
// previous price is only overwritten at the end of the update.
func (p Params) Update(s *State, price float64, now time.Time) Observation {
	if s.PrevPrice == nil {
		prev := price
		s.PrevPrice = &prev
		return Observation{Bootstrap: true}
	}

	r := math.Log(price / *s.PrevPrice)
	s.Mean = p.Lambda*r + (1-p.Lambda)*s.Mean
	residual := r - s.Mean
	s.Variance = p.Lambda*residual*residual + (1-p.Lambda)*s.Variance
	z := residual / math.Sqrt(s.Variance+p.Epsilon)
	s.Samples++

	obs := Observation{Return: r, Z: z}
	if s.Samples >= p.WarmupSamples && math.Abs(z) >= p.Threshold && !p.inCooldown(s, now) {
		alertAt := now
		s.LastAlertAt = &alertAt
		obs.Alert = true
	}

	prev := price
	s.PrevPrice = &prev
	return obs
}

// inCooldown reports whether an alert fired within the cooldown window.
// The gap is undirected: a clock that moved backward past the last alert
// still counts as recent.
func (p Params) inCooldown(s *State, now time.Time) bool {
	if s.LastAlertAt == nil {
		return false
	}
	gap := now.Sub(*s.LastAlertAt)
	if gap < 0 {
		gap = -gap
	}
	return gap < p.Cooldown
}
