package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"currency-rate-alerts/internal/daily"
)

// Send posts today's marathon message to the configured chat. Days outside
// the marathon window are a clean skip, not a failure.
func (a *App) Send(ctx context.Context) error {
	loc, err := time.LoadLocation(a.Config.Daily.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	sched, err := daily.NewSchedule(a.Config.Daily.StartDate, a.Config.Daily.TotalDays, loc)
	if err != nil {
		return err
	}

	now, err := daily.ResolveNow(loc, a.Config.Daily.TestDate, a.Config.Daily.TestHour)
	if err != nil {
		return err
	}

	message, err := sched.PickMessage(now)
	switch {
	case errors.Is(err, daily.ErrNotStarted):
		a.Logger.Info().Time("today", now).Time("start", sched.Start).Msg("marathon has not started yet; skipping send")
		return nil
	case errors.Is(err, daily.ErrFinished):
		a.Logger.Info().Time("last_day", sched.LastDay()).Msg("marathon finished; disable the schedule to stop runs")
		return nil
	case err != nil:
		return err
	}

	client, err := a.newTelegramClient()
	if err != nil {
		return err
	}
	chatID, err := a.targetChatID()
	if err != nil {
		return err
	}

	if err := client.SendText(chatID, message); err != nil {
		return err
	}

	a.Logger.Info().Int("day", sched.DayIndex(now)).Int64("chat_id", chatID).Msg("sent ok")
	return nil
}
