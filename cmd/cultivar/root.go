package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cultivar",
	Short: "Cultivar grows phrasing variants for dialogue sequences",
	Long: `Cultivar resolves conversation paths through dialogue sequence graphs,
builds the surrounding context and asks a generation backend for new
phrasing variants, validating them before they join the content corpus.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the pipeline config document")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
