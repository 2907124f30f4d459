package cli

import (
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the long-lived trigger-reply bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().RunBot(cmd.Context())
	},
}
