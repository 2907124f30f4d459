package cli

import (
	"github.com/spf13/cobra"

	"currency-rate-alerts/internal/app"
)

var (
	chatsManual   string
	chatsMarkRead bool
	chatsRaw      bool
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List distinct chats seen in the bot's update feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().DiscoverChats(cmd.Context(), app.ChatsOptions{
			Manual:   chatsManual,
			MarkRead: chatsMarkRead,
			Raw:      chatsRaw,
		})
	},
}

func init() {
	chatsCmd.Flags().StringVar(&chatsManual, "manual", "", "Skip the API call and just echo the provided chat id")
	chatsCmd.Flags().BoolVar(&chatsMarkRead, "mark-read", false, "Advance the server-side offset after listing")
	chatsCmd.Flags().BoolVar(&chatsRaw, "raw", false, "Dump raw updates as JSON to stderr")
}
