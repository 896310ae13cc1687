// Package pipeline orchestrates one generation run: resolve a path to the
// target, build its context window, drive the backend, validate the
// candidates, append the survivors and archive the full attempt.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/rvielma/cultivar/internal/config"
	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/internal/observability"
	"github.com/rvielma/cultivar/internal/resolver"
	"github.com/rvielma/cultivar/internal/validate"
	"github.com/rvielma/cultivar/internal/window"
	"github.com/rvielma/cultivar/pkg/contentkey"
	"github.com/rvielma/cultivar/pkg/domain"
	"github.com/rvielma/cultivar/pkg/ports"
)

// Deps are the collaborators a Runner needs. Cache and Metrics are
// optional.
type Deps struct {
	Index     *index.Index
	Resolver  *resolver.Resolver
	Window    *window.Builder
	Corpus    ports.CorpusStore
	Generator ports.Generator
	Archive   ports.ArchiveStore
	Cache     ports.VariantCache
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

// Runner processes targets one at a time. It holds no per-target state;
// the sequence index is the only thing reused across targets.
type Runner struct {
	cfg       config.Config
	deps      Deps
	validator *validate.Validator
	logger    *slog.Logger
}

// New creates a runner for the given configuration.
func New(cfg config.Config, deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		cfg:  cfg,
		deps: deps,
		validator: validate.New(
			validate.WithSeparator(cfg.Style.BubbleSeparator),
			validate.WithBubbleLimits(cfg.Style.MaxBubbles, cfg.Style.MaxBubbleChars),
			validate.WithThreshold(cfg.Safety.DedupThreshold),
			validate.WithBlocklist(cfg.Safety.Blocklist),
			validate.WithLogger(logger),
		),
		logger: logger,
	}
}

// Run processes each target in order. Per-target failures are counted and,
// unless fail-fast is set, do not stop the batch. The returned report is
// valid even when err is non-nil.
func (r *Runner) Run(ctx context.Context, targets []domain.NodeAddress, state domain.StateSpec) (domain.BatchReport, error) {
	var report domain.BatchReport
	for _, target := range targets {
		record, err := r.ProcessTarget(ctx, target, state)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, domain.TargetFailure{Target: target, Reason: err.Error()})
			r.count(observability.StatusFailed)
			r.logger.Error("target failed", "target", target, "err", err)
			if r.cfg.IO.FailFast {
				return report, fmt.Errorf("target %s: %w", target, err)
			}
			continue
		}
		report.Succeeded++
		report.Accepted += len(record.Accepted)
		r.count(observability.StatusOK)
		r.logger.Info("target done",
			"target", target,
			"accepted", len(record.Accepted),
			"dry_run", record.DryRun,
		)
	}
	if report.Failed > 0 {
		return report, fmt.Errorf("%d of %d targets failed", report.Failed, report.Failed+report.Succeeded)
	}
	return report, nil
}

// ProcessTarget runs the full pipeline for one target. The archive record
// is written even when the attempt fails, so every run stays inspectable.
func (r *Runner) ProcessTarget(ctx context.Context, target domain.NodeAddress, state domain.StateSpec) (*domain.ArchiveRecord, error) {
	if state.EntrySequence == "" {
		state.EntrySequence = target.Sequence
	}

	record := &domain.ArchiveRecord{
		Target: target,
		State:  state,
		DryRun: r.cfg.IO.DryRun,
	}
	if snapshot, err := json.Marshal(r.cfg); err == nil {
		record.Config = snapshot
	}

	err := r.process(ctx, target, state, record)
	if err != nil {
		record.Error = err.Error()
	}
	if r.deps.Archive != nil {
		if path, aerr := r.deps.Archive.Write(record); aerr != nil {
			r.logger.Error("archive write failed", "target", target, "err", aerr)
		} else {
			r.logger.Debug("archived", "path", path)
		}
	}
	if err != nil {
		return record, err
	}
	return record, nil
}

func (r *Runner) process(ctx context.Context, target domain.NodeAddress, state domain.StateSpec, record *domain.ArchiveRecord) error {
	node, err := r.deps.Index.Node(target.Sequence, target.ID)
	if err != nil {
		return fmt.Errorf("load target: %w", err)
	}
	if node.ContentKey == "" {
		return fmt.Errorf("target %s has no content key", target)
	}
	key, err := contentkey.Decode(node.ContentKey)
	if err != nil {
		return fmt.Errorf("target %s: %w", target, err)
	}
	record.ContentKey = node.ContentKey

	path, found, err := r.deps.Resolver.Resolve(state, target)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	record.Path = path
	record.PathFallback = !found
	if !found {
		r.logger.Warn("target unreachable from entry, using target-only context", "target", target)
	}

	existing, err := r.deps.Corpus.Lines(key.String())
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}

	prompt := r.buildPrompt(node, path, existing)
	record.Prompt = prompt

	result, err := r.generate(ctx, &prompt)
	if err != nil {
		return err
	}
	record.Result = result

	accepted := r.validator.Filter(result.Variants, existing)
	record.Accepted = accepted
	if m := r.deps.Metrics; m != nil {
		m.AcceptedVariants.Add(float64(len(accepted)))
		if rejected := len(result.Variants) - len(accepted); rejected > 0 {
			m.Rejections.WithLabelValues("any").Add(float64(rejected))
		}
	}

	if len(accepted) == 0 {
		r.logger.Warn("no variants survived validation", "target", target, "candidates", len(result.Variants))
		return nil
	}
	if r.cfg.IO.DryRun {
		return nil
	}
	if err := r.deps.Corpus.Append(key.String(), accepted); err != nil {
		return fmt.Errorf("append corpus: %w", err)
	}
	return nil
}

func (r *Runner) buildPrompt(node *domain.DialogueNode, path domain.ResolvedPath, existing []string) domain.GenerationPrompt {
	turns := r.deps.Window.Build(path, r.cfg.Context.Window)

	exemplars := existing
	if max := r.cfg.Context.Exemplars; max > 0 && len(exemplars) > max {
		exemplars = exemplars[len(exemplars)-max:]
	}
	if len(exemplars) == 0 {
		// Thin corpus: borrow style from neighboring keys instead.
		if sibs, err := r.deps.Corpus.Siblings(node.ContentKey, r.cfg.Context.Siblings); err == nil {
			exemplars = sibs
		}
	}

	return domain.GenerationPrompt{
		System:       r.cfg.Generation.System,
		Instructions: r.cfg.Generation.Instructions,
		TargetKey:    node.ContentKey,
		TargetText:   node.Text,
		Context:      turns,
		Exemplars:    exemplars,
		Variants:     r.cfg.Generation.Variants,
	}
}

// generate calls the backend, going through the variant cache when one is
// configured.
func (r *Runner) generate(ctx context.Context, prompt *domain.GenerationPrompt) (*domain.GenerationResult, error) {
	fingerprint := r.fingerprint(prompt)

	if r.deps.Cache != nil {
		cached, err := r.deps.Cache.Get(ctx, fingerprint)
		if err == nil {
			r.logger.Debug("variant cache hit", "fingerprint", fingerprint)
			if r.deps.Metrics != nil {
				r.deps.Metrics.CacheHits.Inc()
			}
			return cached, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			r.logger.Warn("variant cache unavailable", "err", err)
		}
	}

	start := time.Now()
	result, err := r.deps.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if r.deps.Metrics != nil {
		r.deps.Metrics.GenerationDuration.
			WithLabelValues(result.Provider).
			Observe(time.Since(start).Seconds())
	}

	if r.deps.Cache != nil {
		if err := r.deps.Cache.Put(ctx, fingerprint, result); err != nil {
			r.logger.Warn("variant cache store failed", "err", err)
		}
	}
	return result, nil
}

// fingerprint keys the cache by everything that affects the backend call.
func (r *Runner) fingerprint(prompt *domain.GenerationPrompt) string {
	h := xxhash.New()
	_, _ = h.WriteString(r.cfg.Provider.Name)
	_, _ = h.WriteString(r.cfg.Provider.Model)
	if data, err := json.Marshal(prompt); err == nil {
		_, _ = h.Write(data)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (r *Runner) count(status string) {
	if r.deps.Metrics != nil {
		r.deps.Metrics.Targets.WithLabelValues(status).Inc()
	}
}
