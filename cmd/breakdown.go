package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshare/app"
)

var breakdownCmd = &cobra.Command{
	Use:   "breakdown <shipment-id>",
	Short: "Compare a shipment's shared cost with its individual cost",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(svc *app.Service) error {
			bd, err := svc.Engine.GetCostBreakdown(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), bd)
		})
	},
}

func init() {
	rootCmd.AddCommand(breakdownCmd)
}
