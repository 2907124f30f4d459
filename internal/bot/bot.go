// Package bot runs the long-lived trigger-reply bot.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"currency-rate-alerts/internal/telegram"
)

// DefaultTriggers are the built-in text triggers, matched case-insensitively
// against the whole message. Config may extend or replace them.
var DefaultTriggers = map[string]string{
	"ping": "pong",
}

// Bot replies to commands and simple text triggers.
type Bot struct {
	client   *telegram.Client
	triggers map[string]string
	logger   zerolog.Logger
}

// New constructs a Bot. Extra triggers are merged over the defaults.
func New(client *telegram.Client, triggers map[string]string, logger zerolog.Logger) *Bot {
	merged := make(map[string]string, len(DefaultTriggers)+len(triggers))
	for k, v := range DefaultTriggers {
		merged[strings.ToLower(k)] = v
	}
	for k, v := range triggers {
		merged[strings.ToLower(k)] = v
	}

	return &Bot{
		client:   client,
		triggers: merged,
		logger:   logger.With().Str("component", "bot").Logger(),
	}
}

// Run blocks on the update feed until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().Str("bot", b.client.Username()).Msg("bot started")
	b.client.Listen(ctx, b.handleUpdate)
	b.logger.Info().Msg("bot stopped")
	return ctx.Err()
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	key := strings.ToLower(strings.TrimSpace(msg.Text))
	reply, ok := b.triggers[key]
	if !ok {
		return
	}
	if err := b.client.SendReply(msg.Chat.ID, msg.MessageID, reply); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to send trigger reply")
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		if err := b.client.SendText(msg.Chat.ID, greeting(msg.From)); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to send greeting")
		}
	}
}

func greeting(user *tgbotapi.User) string {
	name := "there"
	if user != nil {
		name = strings.TrimSpace(strings.Join([]string{user.FirstName, user.LastName}, " "))
		if name == "" {
			name = "there"
		}
	}
	return fmt.Sprintf("Hi, %s! I reply to a few text triggers and otherwise keep quiet. Send /help to see this message again.", name)
}
