package cli

import "github.com/spf13/cobra"

// Execute 运行离线排期命令行
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Offline convention session planner",
		Long:          "planner computes paper-session distribution, room capacity and a suggested grid layout for a convention without touching the database.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newCalcCmd(),
		newLayoutCmd(),
	)

	return rootCmd
}
