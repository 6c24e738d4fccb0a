package cli

import (
	"github.com/spf13/cobra"

	"convention-planner/internal/planner"
)

func newLayoutCmd() *cobra.Command {
	var (
		pf        paramFlags
		withTimes bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Auto-populate the day/slot grid and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, plannerCfg, err := loadParameters(cmd, &pf)
			if err != nil {
				return err
			}

			result := planner.Plan(params)
			layout := planner.AutoPopulate(params, result.PaperSessions, params.TotalRoundTables)

			var opts planner.GridOptions
			if withTimes {
				opts.SlotTimes = planner.AutoSlotTimes(params, plannerCfg.DefaultStartTime,
					plannerCfg.SessionMinutes, plannerCfg.BreakMinutes)
			}
			grid := planner.BuildGrid(params, layout, opts)

			if pf.asJSON {
				return writeJSON(cmd.OutOrStdout(), grid)
			}
			return renderGrid(cmd.OutOrStdout(), grid, result.PaperSessions)
		},
	}

	addParamFlags(cmd, &pf)
	cmd.Flags().BoolVar(&withTimes, "times", false, "show generated start times (planner.default_start_time, session and break minutes)")
	return cmd
}
