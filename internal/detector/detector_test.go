package detector

import (
	"math"
	"testing"
	"time"
)

func warmState(prev float64) State {
	s := NewState()
	s.PrevPrice = &prev
	s.Samples = 100
	return s
}

func TestBootstrapNeverAlerts(t *testing.T) {
	p := DefaultParams()
	s := NewState()

	obs := p.Update(&s, 500.0, time.Now())
	if !obs.Bootstrap {
		t.Fatal("first update should be a bootstrap")
	}
	if obs.Alert {
		t.Fatal("bootstrap must not alert")
	}
	if s.PrevPrice == nil || *s.PrevPrice != 500.0 {
		t.Fatalf("bootstrap should record the fetched price, got %v", s.PrevPrice)
	}
	if s.Samples != 0 {
		t.Fatalf("bootstrap must not count as a sample, got n=%d", s.Samples)
	}
}

func TestUpdateFormulas(t *testing.T) {
	p := DefaultParams()
	s := warmState(500.0)
	s.Mean = 0.002
	s.Variance = 1e-6

	price := 501.0
	obs := p.Update(&s, price, time.Now())

	r := math.Log(price / 500.0)
	mu := p.Lambda*r + (1-p.Lambda)*0.002
	residual := r - mu
	variance := p.Lambda*residual*residual + (1-p.Lambda)*1e-6
	z := residual / math.Sqrt(variance+p.Epsilon)

	if math.Abs(obs.Return-r) > 1e-15 {
		t.Fatalf("return mismatch: got %v want %v", obs.Return, r)
	}
	if math.Abs(s.Mean-mu) > 1e-15 {
		t.Fatalf("mean mismatch: got %v want %v", s.Mean, mu)
	}
	if math.Abs(s.Variance-variance) > 1e-18 {
		t.Fatalf("variance mismatch: got %v want %v", s.Variance, variance)
	}
	if math.Abs(obs.Z-z) > 1e-12 {
		t.Fatalf("z mismatch: got %v want %v", obs.Z, z)
	}
	if *s.PrevPrice != price {
		t.Fatalf("prev price should be the newest price, got %v", *s.PrevPrice)
	}
}

func TestResidualUsesUpdatedMean(t *testing.T) {
	p := DefaultParams()
	s := warmState(100.0)
	s.Mean = 0.5 // large prior so the ordering is observable
	s.Variance = 1e-6

	obs := p.Update(&s, 100.0, time.Now()) // r = 0
	updatedMean := (1 - p.Lambda) * 0.5
	wantResidual := 0.0 - updatedMean
	wantZ := wantResidual / math.Sqrt(s.Variance+p.Epsilon)

	if math.Abs(obs.Z-wantZ) > 1e-9 {
		t.Fatalf("residual must be taken against the updated mean: got z=%v want %v", obs.Z, wantZ)
	}
}

func TestWarmupGateSuppressesAlerts(t *testing.T) {
	p := DefaultParams()
	prev := 500.0
	s := State{PrevPrice: &prev, Variance: 1e-10, Samples: 10}

	obs := p.Update(&s, 600.0, time.Now())
	if math.Abs(obs.Z) < p.Threshold {
		t.Fatalf("test premise broken: |z|=%v should exceed threshold", obs.Z)
	}
	if obs.Alert {
		t.Fatal("no alert may fire before warm-up completes")
	}
	if s.Samples != 11 {
		t.Fatalf("sample count should increment, got %d", s.Samples)
	}
}

func TestWarmupBoundary(t *testing.T) {
	p := DefaultParams()
	prev := 500.0
	s := State{PrevPrice: &prev, Variance: 1e-10, Samples: p.WarmupSamples - 1}

	obs := p.Update(&s, 600.0, time.Now())
	if !obs.Alert {
		t.Fatalf("n'=%d equals warm-up; alert should fire for |z|=%v", s.Samples, obs.Z)
	}
}

func TestCooldownSuppressesAlert(t *testing.T) {
	p := DefaultParams()
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		name      string
		lastAlert time.Time
		want      bool
	}{
		{"recent alert blocks", now.Add(-1 * time.Hour), false},
		{"stale alert allows", now.Add(-4 * time.Hour), true},
		{"exact cooldown allows", now.Add(-3 * time.Hour), true},
		{"future alert blocks too", now.Add(2 * time.Hour), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := warmState(500.0)
			s.Variance = 1e-10
			last := tc.lastAlert
			s.LastAlertAt = &last

			obs := p.Update(&s, 600.0, now)
			if obs.Alert != tc.want {
				t.Fatalf("alert=%v want %v (gap %v)", obs.Alert, tc.want, now.Sub(last))
			}
		})
	}
}

func TestAlertRecordsTimestamp(t *testing.T) {
	p := DefaultParams()
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s := warmState(500.0)
	s.Variance = 1e-10

	obs := p.Update(&s, 600.0, now)
	if !obs.Alert {
		t.Fatal("expected an alert")
	}
	if s.LastAlertAt == nil || !s.LastAlertAt.Equal(now) {
		t.Fatalf("last alert time should be now, got %v", s.LastAlertAt)
	}
}

func TestFlatPricesProduceZeroZ(t *testing.T) {
	p := DefaultParams()
	s := NewState()
	now := time.Now()

	p.Update(&s, 500.0, now)
	obs := p.Update(&s, 500.0, now.Add(time.Hour))

	if obs.Return != 0 {
		t.Fatalf("r should be 0 for equal prices, got %v", obs.Return)
	}
	if s.Mean != 0 {
		t.Fatalf("mean should stay 0, got %v", s.Mean)
	}
	if obs.Z != 0 {
		t.Fatalf("z should be 0, got %v", obs.Z)
	}
	if obs.Alert {
		t.Fatal("flat prices must not alert")
	}
}

func TestLargeMoveAlertsAfterWarmup(t *testing.T) {
	p := DefaultParams()
	s := warmState(500.0)
	s.Variance = 1e-8

	obs := p.Update(&s, 600.0, time.Now())
	wantReturn := math.Log(1.2)
	if math.Abs(obs.Return-wantReturn) > 1e-12 {
		t.Fatalf("r should be ln(1.2), got %v", obs.Return)
	}
	if math.Abs(obs.Z) < p.Threshold {
		t.Fatalf("a 20%% move against a converged-flat variance should cross the threshold, got z=%v", obs.Z)
	}
	if !obs.Alert {
		t.Fatal("expected an alert")
	}
}

func TestVarianceStaysPositive(t *testing.T) {
	p := DefaultParams()
	s := NewState()
	now := time.Now()

	price := 500.0
	for i := 0; i < 200; i++ {
		p.Update(&s, price, now)
		now = now.Add(time.Hour)
		if s.Variance < 0 {
			t.Fatalf("variance went negative at step %d: %v", i, s.Variance)
		}
		if math.Sqrt(s.Variance+p.Epsilon) <= 0 {
			t.Fatalf("z denominator must stay positive at step %d", i)
		}
	}
}

func TestSampleCountMonotone(t *testing.T) {
	p := DefaultParams()
	s := NewState()
	now := time.Now()

	last := s.Samples
	for i := 0; i < 60; i++ {
		p.Update(&s, 500.0+float64(i), now)
		now = now.Add(time.Hour)
		if s.Samples < last {
			t.Fatalf("sample count decreased: %d -> %d", last, s.Samples)
		}
		last = s.Samples
	}
}
