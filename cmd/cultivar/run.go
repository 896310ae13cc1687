package main

import (
	"fmt"
	"os"

	"github.com/rvielma/cultivar/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [sequence:node ...]",
	Short: "Generate variants for one or more target nodes",
	Long: `Resolves a path to each target node, generates phrasing variants for it
and appends the accepted ones to the content corpus. Targets come from
positional arguments, a targets file, or both.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		statePath, _ := cmd.Flags().GetString("state")
		targetsPath, _ := cmd.Flags().GetString("targets")
		variants, _ := cmd.Flags().GetInt("variants")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		failFast, _ := cmd.Flags().GetBool("fail-fast")
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := cli.RunOptions{
			ConfigPath:  configPath,
			StatePath:   statePath,
			TargetsPath: targetsPath,
			Variants:    variants,
			DryRun:      dryRun,
			FailFast:    failFast,
			Verbose:     verbose,
			Quiet:       quiet,
		}
		if err := cli.RunBatch(args, opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("state", "s", "", "Path to a state document for path resolution")
	runCmd.Flags().StringP("targets", "t", "", "Path to a file listing target addresses")
	runCmd.Flags().IntP("variants", "n", 0, "Variants to request per target (0 uses the config)")
	runCmd.Flags().Bool("dry-run", false, "Generate and validate without touching the corpus")
	runCmd.Flags().Bool("fail-fast", false, "Stop the batch at the first failed target")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress banner and summary output")
}
