package cli

import (
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Execute a single monitoring tick (for cron deployment)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().MonitorOnce(cmd.Context())
	},
}
