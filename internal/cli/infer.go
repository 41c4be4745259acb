package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/engine"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/taskio"
)

var (
	inferTasksPath string
	inferOutPath   string
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Compute due-anchored placements for a task file",
	Long: `Compute a concrete calendar interval for every task with a due time.

The interval always ends at the due time; the start is derived from the
explicit duration, the scheduled..due span, or the configured default, in
that order. Tasks without a due time are left unplaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := loadPayload(inferTasksPath)
		if err != nil {
			return err
		}

		result, err := newEngine().Infer(&engine.InferRequest{Payload: payload})
		if err != nil {
			return err
		}

		if inferOutPath != "" {
			if err := taskio.SavePayload(inferOutPath, payload); err != nil {
				return err
			}
		}

		if jsonOutput() {
			return outputJSON(result)
		}

		PrintSuccess(fmt.Sprintf("Placed %s, %s unplaced",
			PrintCount(result.Placed, "task", "tasks"),
			PrintCount(result.Skipped, "task", "tasks")))
		if result.Kept > 0 {
			PrintInfo(fmt.Sprintf("Kept %s placed by an applied plan", PrintCount(result.Kept, "task", "tasks")))
		}
		for _, w := range result.Warnings {
			PrintWarning(w)
		}
		if inferOutPath != "" {
			PrintInfo(fmt.Sprintf("Wrote %s", inferOutPath))
		}
		return nil
	},
}

func init() {
	inferCmd.Flags().StringVar(&inferTasksPath, "tasks", "tasks.json", "Task export or payload file")
	inferCmd.Flags().StringVar(&inferOutPath, "out", "", "Write the placed payload to this file")
}
