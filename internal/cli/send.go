package cli

import (
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send today's scheduled daily message",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Send(cmd.Context())
	},
}
