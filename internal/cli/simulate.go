package cli

import (
	"github.com/spf13/cobra"

	"currency-rate-alerts/internal/app"
)

var (
	simulatePrice     float64
	simulatePrevPrice float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Feed a synthetic price through the detection pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Simulate(cmd.Context(), app.SimulateOptions{
			Price:     simulatePrice,
			PrevPrice: simulatePrevPrice,
		})
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulatePrice, "price", 0, "Current price to feed in")
	simulateCmd.Flags().Float64Var(&simulatePrevPrice, "prev-price", 0, "Previous price to seed the model with")
	_ = simulateCmd.MarkFlagRequired("price")
}
