// Package daily decides which message of a fixed-length day sequence to
// send for "today" in a configured timezone.
package daily

import (
	"errors"
	"fmt"
	"time"
)

// Skip reasons: the marathon is outside its active window. Callers treat
// both as a clean no-send, not a failure.
var (
	ErrNotStarted = errors.New("marathon has not started yet")
	ErrFinished   = errors.New("marathon has finished")
)

// Schedule describes the message marathon.
type Schedule struct {
	Start     time.Time // first day, at midnight in Location
	TotalDays int
	Location  *time.Location
}

// NewSchedule parses a YYYY-MM-DD start date in the given zone.
func NewSchedule(startDate string, totalDays int, loc *time.Location) (Schedule, error) {
	day, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return Schedule{}, fmt.Errorf("parse start date: %w", err)
	}
	return Schedule{Start: day, TotalDays: totalDays, Location: loc}, nil
}

// DayIndex returns the one-based day number for the given local time.
func (s Schedule) DayIndex(now time.Time) int {
	return daysBetween(s.Start, now.In(s.Location)) + 1
}

// LastDay returns the final calendar day of the marathon.
func (s Schedule) LastDay() time.Time {
	return s.Start.AddDate(0, 0, s.TotalDays-1)
}

// PickMessage selects the message for the given moment: slot-gated special
// content on day one, a generated daily message afterwards. Outside the
// active window it returns ErrNotStarted or ErrFinished.
func (s Schedule) PickMessage(now time.Time) (string, error) {
	local := now.In(s.Location)
	index := s.DayIndex(local)

	switch {
	case index < 1:
		return "", ErrNotStarted
	case index > s.TotalDays:
		return "", ErrFinished
	case index == 1:
		return slotMessages[SlotFor(local.Hour())], nil
	default:
		return DailyMessage(index, s.TotalDays), nil
	}
}

// daysBetween counts whole calendar days from a to b, ignoring clock time
// and DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
