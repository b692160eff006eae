package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadshare/app"
	"github.com/kilianp07/loadshare/infra/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load shipments from a YAML file into the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := seed.LoadFile(args[0])
		if err != nil {
			return err
		}
		return withService(cmd.Context(), func(svc *app.Service) error {
			n, err := seed.Apply(cmd.Context(), svc.Store, recs)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d shipments\n", n)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
