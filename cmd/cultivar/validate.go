package main

import (
	"fmt"
	"os"

	"github.com/rvielma/cultivar"
	"github.com/rvielma/cultivar/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [sequence]",
	Short: "Check the sequence graph for consistency",
	Long: `Crawls every sequence document and reports dangling transitions,
unreachable nodes, malformed content keys and cross-sequence jumps to
unknown destinations. With an argument only that sequence is checked.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if err := runValidate(configPath, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Sequence graph is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(configPath string, args []string) error {
	pipeline, err := cultivar.New(configPath)
	if err != nil {
		return fmt.Errorf("failed to init pipeline: %w", err)
	}

	var issues []validator.Issue
	if len(args) > 0 {
		issues, err = validator.ValidateSequence(pipeline.Loader(), args[0])
	} else {
		issues, err = validator.ValidateAll(pipeline.Loader())
	}
	if err != nil {
		return err
	}

	if len(issues) > 0 {
		for _, issue := range issues {
			fmt.Println(issue)
		}
		return fmt.Errorf("%s", validator.Summary(issues))
	}
	return nil
}
