package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rvielma/cultivar"
	httpAdapter "github.com/rvielma/cultivar/internal/adapters/http"
	"github.com/rvielma/cultivar/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the graph inspection HTTP server",
	Long: `Starts a JSON API for resolving paths and previewing context windows,
for content authors inspecting the graph while writing sequences.
Prometheus metrics are exposed at /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetString("port")

		metrics := observability.New()
		registry := prometheus.NewRegistry()
		metrics.MustRegister(registry)

		pipeline, err := cultivar.New(configPath, cultivar.WithMetrics(metrics))
		if err != nil {
			fmt.Printf("Error initializing pipeline: %v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(
			pipeline.Index(),
			pipeline.Resolver(),
			pipeline.Window(),
			pipeline.Loader(),
			pipeline.Config().Context.Window,
			registry,
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Cultivar Server on %s\n", srv.Addr)
			fmt.Printf("Serving sequences from: %s\n", pipeline.Config().IO.SequencesDir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Cultivar Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
