package main

import (
	"fmt"
	"os"

	"github.com/rvielma/cultivar/internal/cli"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <sequence:node>",
	Short: "Show the resolved path and context window for a target",
	Long: `Resolves a path to the target node and prints the context window the
generator would see, without calling the backend. With --mermaid the
target's sequence is printed as a Mermaid flowchart instead, the
resolved path highlighted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		statePath, _ := cmd.Flags().GetString("state")
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		opts := cli.PreviewOptions{
			ConfigPath: configPath,
			StatePath:  statePath,
			Mermaid:    mermaid,
			Verbose:    verbose,
		}
		if err := cli.RunPreview(args[0], opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringP("state", "s", "", "Path to a state document for path resolution")
	previewCmd.Flags().Bool("mermaid", false, "Print the sequence graph as a Mermaid flowchart")
}
