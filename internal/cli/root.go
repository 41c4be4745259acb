package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd is the root command for scalpel.
var rootCmd = &cobra.Command{
	Use:     "scalpel",
	Version: "dev",
	Short:   "Due-anchored calendar placement for Taskwarrior tasks",
	Long: `scalpel turns a flat Taskwarrior task list into concrete, non-overlapping
calendar placements, and lets an external planner propose changes through a
validated, replayable plan format.

End times are pinned to due times; starts are derived from durations. Plans
come in two wire schemas: the legacy plan.v1 override map and the op-based
plan.v2 DSL, which references generated candidate slots by id so the planner
never does time arithmetic itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion sets the version reported by the root command.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("config", "scalpel.yaml", "Path to the settings file")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddGroup(&cobra.Group{
		ID:    "planning",
		Title: "Planning:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the scalpel CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	inferCmd.GroupID = "planning"
	slotsCmd.GroupID = "planning"
	planCmd.GroupID = "planning"
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(planCmd)
}

func initViper() {
	viper.SetEnvPrefix("SCALPEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
