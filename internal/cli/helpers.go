package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/rvielma/cultivar"
	adapterredis "github.com/rvielma/cultivar/internal/adapters/redis"
	"github.com/rvielma/cultivar/internal/config"
	"github.com/rvielma/cultivar/internal/logging"
	"github.com/rvielma/cultivar/pkg/domain"
)

// isTTY reports whether stdout is an interactive terminal. Banners and
// rendered markdown are suppressed when output is piped.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildPipeline loads the config, applies CLI overrides and assembles the
// pipeline. The --verbose flag and the config's io.verbose switch both raise
// the log level. The returned cleanup closes the variant cache connection
// when one was opened.
func buildPipeline(configPath string, verbose bool, mutate func(*config.Config)) (*cultivar.Pipeline, func(), error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if mutate != nil {
		mutate(&cfg)
	}

	logger := logging.FromVerbosity(verbose || cfg.IO.Verbose)

	opts := []cultivar.Option{cultivar.WithLogger(logger)}
	cleanup := func() {}

	if cfg.Cache.Enabled {
		cache := adapterredis.New(cfg.Cache.Address, cfg.Cache.Password, cfg.Cache.DB,
			adapterredis.WithTTL(cfg.Cache.TTL()))
		opts = append(opts, cultivar.WithVariantCache(cache))
		cleanup = func() { _ = cache.Close() }
	}

	p, err := cultivar.NewWithConfig(cfg, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}

// loadState reads the hypothetical user state, or a default spec when no
// path is given.
func loadState(path string) (domain.StateSpec, error) {
	if path == "" {
		return domain.NewStateSpec(""), nil
	}
	return config.LoadState(path, "")
}
