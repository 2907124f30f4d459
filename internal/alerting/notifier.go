package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"currency-rate-alerts/internal/telegram"
)

// Notification carries the context of one anomaly alert.
type Notification struct {
	Pair      string
	Time      time.Time
	Price     decimal.Decimal
	Return    float64
	Z         float64
	Threshold float64
}

// Notifier delivers alert notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes alerts to a single chat via the Bot API.
type TelegramNotifier struct {
	client *telegram.Client
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram-backed notifier.
func NewTelegramNotifier(client *telegram.Client, chatID int64, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		client: client,
		chatID: chatID,
		logger: logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify renders and sends the alert text.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	if err := n.client.SendText(n.chatID, renderMessage(note)); err != nil {
		return fmt.Errorf("dispatch alert: %w", err)
	}

	n.logger.Info().Time("time", note.Time).
		Str("pair", note.Pair).
		Float64("z", note.Z).
		Msg("alert sent")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("[%s strong move]\n", note.Pair))
	builder.WriteString(fmt.Sprintf("Time: %s UTC\n", note.Time.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Price: %s\n", note.Price.StringFixed(4)))
	builder.WriteString(fmt.Sprintf("Log-return: %.6f\n", note.Return))
	builder.WriteString(fmt.Sprintf("Z-score: %.2f (threshold %.1f)\n", note.Z, note.Threshold))
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
