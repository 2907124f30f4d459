// Package telegram wraps the Bot API client used by alerting, the daily
// sender, chat discovery, and the trigger bot.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Client is a thin wrapper over tgbotapi.BotAPI.
type Client struct {
	bot    *tgbotapi.BotAPI
	logger zerolog.Logger
}

// NewClient authenticates against the Bot API. An empty endpoint selects
// the production API; tests pass an httptest URL suffixed with
// tgbotapi's "/bot%s/%s" placeholders.
func NewClient(token, endpoint string, logger zerolog.Logger) (*Client, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Client{
		bot:    bot,
		logger: logger.With().Str("component", "telegram").Logger(),
	}, nil
}

// SendText posts a plain-text message to a chat.
func (c *Client) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendReply posts a message replying to a specific message in a chat.
func (c *Client) SendReply(chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// Updates fetches the pending update feed once, without long polling.
func (c *Client) Updates(offset int) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = 0

	updates, err := c.bot.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	return updates, nil
}

// Ack advances the server-side offset past lastUpdateID so consumed
// updates are not delivered again.
func (c *Client) Ack(lastUpdateID int) error {
	cfg := tgbotapi.NewUpdate(lastUpdateID + 1)
	cfg.Limit = 1
	cfg.Timeout = 0

	if _, err := c.bot.GetUpdates(cfg); err != nil {
		return fmt.Errorf("ack updates: %w", err)
	}
	return nil
}

// Listen long-polls the update feed and invokes handler for each update
// until ctx is cancelled.
func (c *Client) Listen(ctx context.Context, handler func(update tgbotapi.Update)) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := c.bot.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			c.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			handler(update)
		}
	}
}

// Username returns the authenticated bot's username.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}
