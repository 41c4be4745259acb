package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/engine"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/plan"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/taskio"
	"github.com/catanadj/taskwarrior-SCALPEL-sub000/internal/wire"
)

var (
	planPath      string
	planTasksPath string
	planOutPath   string
	planDryRun    bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Validate, compile and apply planner output",
}

var planValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Contract-check a plan file without applying it",
	RunE: func(cmd *cobra.Command, args []string) error {
		obj, err := loadPlanObject(planPath)
		if err != nil {
			return err
		}
		violations := wire.Validate(obj)
		if jsonOutput() {
			return outputJSON(map[string]any{"violations": violationStrings(violations)})
		}
		if len(violations) == 0 {
			PrintSuccess("Plan passes contract validation")
			return nil
		}
		PrintSection(fmt.Sprintf("%s found", PrintCount(len(violations), "violation", "violations")))
		for _, v := range violations {
			PrintError(v.String())
		}
		return fmt.Errorf("plan rejected")
	},
}

var planCompileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a plan.v2 op list to the canonical plan result",
	RunE: func(cmd *cobra.Command, args []string) error {
		obj, err := loadPlanObject(planPath)
		if err != nil {
			return err
		}
		if schema, _ := obj["schema"].(string); schema != wire.SchemaV2 {
			if schema == "" {
				schema = wire.SchemaV1
			}
			return fmt.Errorf("compile accepts %s plans only; this plan is %s (use plan apply, which handles both)", wire.SchemaV2, schema)
		}
		if violations := wire.Validate(obj); len(violations) > 0 {
			for _, v := range violations {
				PrintError(v.String())
			}
			return fmt.Errorf("plan rejected")
		}
		result, err := wire.Compile(obj)
		if err != nil {
			return err
		}
		return outputJSON(result)
	},
}

var planApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a validated plan onto a task file",
	RunE: func(cmd *cobra.Command, args []string) error {
		obj, err := loadPlanObject(planPath)
		if err != nil {
			return err
		}
		payload, err := loadPayload(planTasksPath)
		if err != nil {
			return err
		}

		result, err := newEngine().ApplyPlan(&engine.ApplyPlanRequest{
			Payload: payload,
			Plan:    obj,
			DryRun:  planDryRun,
		})
		if err != nil {
			if errors.Is(err, engine.ErrPlanRejected) {
				PrintSection("Plan rejected")
				for _, v := range result.Violations {
					PrintError(v.String())
				}
			}
			return err
		}

		for _, w := range result.Warnings {
			PrintWarning(w)
		}

		if planDryRun {
			PrintSuccess(fmt.Sprintf("Dry run: plan compiles to %s and %s",
				PrintCount(len(result.Result.Overrides), "placement", "placements"),
				PrintCount(len(result.Result.AddedTasks), "new task", "new tasks")))
			return nil
		}

		if planOutPath == "" {
			planOutPath = planTasksPath
		}
		if err := taskio.SavePayload(planOutPath, payload); err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("Applied %s (%s); wrote %s",
			PrintCount(len(result.Result.Overrides), "placement", "placements"),
			result.Schema, planOutPath))
		return nil
	},
}

func violationStrings(violations []plan.Violation) []string {
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.String()
	}
	return out
}

func init() {
	planCmd.PersistentFlags().StringVar(&planPath, "plan", "plan.json", "Plan wire file")
	planApplyCmd.Flags().StringVar(&planTasksPath, "tasks", "tasks.json", "Task export or payload file")
	planApplyCmd.Flags().StringVar(&planOutPath, "out", "", "Output payload path (defaults to --tasks)")
	planApplyCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "Validate and compile without applying")

	planCmd.AddCommand(planValidateCmd)
	planCmd.AddCommand(planCompileCmd)
	planCmd.AddCommand(planApplyCmd)
}
