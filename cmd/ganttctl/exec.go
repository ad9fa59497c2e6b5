package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var execCmd = &cobra.Command{
	Use:   "exec <file>",
	Short: "Run the commands of a task file and print the result",
	Long: `Runs the commands listed under "commands:" in the task file, in order,
through the chart's command chain, then prints the derived timeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringP("output", "o", "table", "output format: table, yaml")
	execCmd.Flags().Bool("keep-going", false, "continue after a failing command")
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	g, f, err := openChart(args[0])
	if err != nil {
		return err
	}
	defer g.Close()

	keepGoing, _ := cmd.Flags().GetBool("keep-going")

	for i, c := range f.Commands {
		payload, err := c.payload()
		if err == nil {
			err = g.Exec(cmd.Context(), c.Action, payload)
		}
		if err != nil {
			if !keepGoing {
				return fmt.Errorf("command %d (%s): %w", i+1, c.Action, err)
			}
			logger.Warn("command failed", zap.Int("index", i+1), zap.Stringer("action", c.Action), zap.Error(err))
		}
	}

	format, _ := cmd.Flags().GetString("output")
	return render(cmd.OutOrStdout(), g, format)
}
