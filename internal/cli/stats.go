package cli

import (
	"github.com/spf13/cobra"
)

func NewStatsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show daily goal, streak and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := deps.Services.Progress.Load(cmd.Context())
			if err != nil {
				return err
			}
			deps.Out.Stats(stats)
			return nil
		},
	}
}
