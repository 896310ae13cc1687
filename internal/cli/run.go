package cli

import (
	"fmt"

	"github.com/rvielma/cultivar"
	"github.com/rvielma/cultivar/internal/config"
	"github.com/rvielma/cultivar/internal/presentation/tui"
	"github.com/rvielma/cultivar/pkg/domain"
)

// RunOptions carries the flags of the run command.
type RunOptions struct {
	ConfigPath  string
	StatePath   string
	TargetsPath string
	Variants    int
	DryRun      bool
	FailFast    bool
	Verbose     bool
	Quiet       bool
}

// RunBatch generates variants for every target and appends the accepted
// ones to their corpora. Positional args are node addresses; a targets
// file adds more.
func RunBatch(args []string, opts RunOptions) error {
	if !opts.Quiet && isTTY() {
		tui.PrintBanner(cultivar.Version)
	}

	pipeline, cleanup, err := buildPipeline(opts.ConfigPath, opts.Verbose, func(cfg *config.Config) {
		if opts.DryRun {
			cfg.IO.DryRun = true
		}
		if opts.FailFast {
			cfg.IO.FailFast = true
		}
		if opts.Variants > 0 {
			cfg.Generation.Variants = opts.Variants
		}
	})
	if err != nil {
		return fmt.Errorf("error initializing pipeline: %w", err)
	}
	defer cleanup()

	state, err := loadState(opts.StatePath)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	targets, err := collectTargets(args, opts.TargetsPath, state.EntrySequence)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets given: pass node addresses or --targets")
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, runErr := pipeline.Run(ctx, targets, state)

	if !opts.Quiet {
		printReport(report)
	}
	return runErr
}

func collectTargets(args []string, path, defaultSequence string) ([]domain.NodeAddress, error) {
	var targets []domain.NodeAddress
	for _, arg := range args {
		addr, err := config.ParseAddress(arg, defaultSequence)
		if err != nil {
			return nil, err
		}
		targets = append(targets, addr)
	}
	if path != "" {
		fromFile, err := config.LoadTargets(path)
		if err != nil {
			return nil, err
		}
		targets = append(targets, fromFile...)
	}
	return targets, nil
}

func printReport(report domain.BatchReport) {
	printSystemMessage("%d target(s) processed, %d variant(s) accepted.", report.Succeeded, report.Accepted)
	for _, failure := range report.Failures {
		printSystemMessage("FAILED %s: %s", failure.Target, failure.Reason)
	}
}
