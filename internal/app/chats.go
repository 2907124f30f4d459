package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"currency-rate-alerts/internal/chats"
)

// DiscoverChats lists the distinct chats present in the bot's update feed.
// With Manual set it echoes the supplied id and skips the network entirely.
func (a *App) DiscoverChats(ctx context.Context, opts ChatsOptions) error {
	if opts.Manual != "" {
		fmt.Printf("CHAT_ID=%s\n", opts.Manual)
		return nil
	}

	client, err := a.newTelegramClient()
	if err != nil {
		return err
	}

	updates, err := client.Updates(0)
	if err != nil {
		return err
	}

	if opts.Raw {
		for _, update := range updates {
			payload, err := json.MarshalIndent(update, "", "  ")
			if err != nil {
				return fmt.Errorf("encode update: %w", err)
			}
			fmt.Fprintln(os.Stderr, string(payload))
		}
	}

	if len(updates) == 0 {
		fmt.Println("No updates yet. Send /start to the bot from the target chat and run again.")
		return nil
	}

	for _, info := range chats.Collect(updates) {
		fmt.Printf("%s\t%d\t%s\n", info.Type, info.ID, info.Title)
	}

	if opts.MarkRead {
		if last := chats.LastUpdateID(updates); last >= 0 {
			if err := client.Ack(last); err != nil {
				return err
			}
			a.Logger.Info().Int("last_update_id", last).Msg("advanced update offset")
		}
	}

	return nil
}
