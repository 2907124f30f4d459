package app

import (
	"context"
	"os/signal"
	"syscall"

	"currency-rate-alerts/internal/bot"
)

// RunBot starts the trigger-reply bot and blocks until interrupted.
func (a *App) RunBot(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := a.newTelegramClient()
	if err != nil {
		return err
	}

	err = bot.New(client, a.Config.Bot.Triggers, a.Logger).Run(ctx)
	if err != nil && ctx.Err() != nil {
		// Interrupted: a normal shutdown.
		return nil
	}
	return err
}
