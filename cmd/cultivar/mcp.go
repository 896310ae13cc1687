package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rvielma/cultivar"
	"github.com/rvielma/cultivar/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the resolver and context builder as an MCP server over stdio.
This lets AI agents resolve conversation paths, preview context windows
and read corpora as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		pipeline, err := cultivar.New(configPath)
		if err != nil {
			log.Fatalf("Error initializing pipeline: %v", err)
		}

		// Configure logger on Stderr so JSON-RPC on Stdout stays clean.
		opts := &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)

		srv := mcp.NewServer(
			pipeline.Index(),
			pipeline.Resolver(),
			pipeline.Window(),
			pipeline.Loader(),
			pipeline.Corpus(),
		)

		slog.Info("Starting Cultivar MCP Server (Stdio)...")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP Server execution failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
