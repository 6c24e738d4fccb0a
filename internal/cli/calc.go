package cli

import (
	"github.com/spf13/cobra"

	"convention-planner/internal/planner"
)

func newCalcCmd() *cobra.Command {
	var pf paramFlags

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute session distribution, capacity and suggestions",
		Example: `  planner calc --days 2 --slots 3 --rooms 4 --papers 40
  planner calc --papers 20 --category AI=12 --category Bio=8 --json
  planner calc --config convention.yaml --rooms 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, _, err := loadParameters(cmd, &pf)
			if err != nil {
				return err
			}

			result := planner.Plan(params)
			if pf.asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return renderPlan(cmd.OutOrStdout(), result)
		},
	}

	addParamFlags(cmd, &pf)
	return cmd
}
