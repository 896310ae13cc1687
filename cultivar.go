package cultivar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rvielma/cultivar/internal/adapters"
	"github.com/rvielma/cultivar/internal/archive"
	"github.com/rvielma/cultivar/internal/config"
	"github.com/rvielma/cultivar/internal/generate"
	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/internal/logging"
	"github.com/rvielma/cultivar/internal/observability"
	"github.com/rvielma/cultivar/internal/pipeline"
	"github.com/rvielma/cultivar/internal/resolver"
	"github.com/rvielma/cultivar/internal/window"
	"github.com/rvielma/cultivar/pkg/domain"
	"github.com/rvielma/cultivar/pkg/ports"
)

// Version is the library and CLI version.
const Version = "0.3.0"

// Pipeline is the high-level entry point for the Cultivar library.
// It wraps the internal run pipeline and provides a simplified API for
// consumers.
type Pipeline struct {
	cfg       config.Config
	loader    ports.SequenceLoader
	corpus    ports.CorpusStore
	generator ports.Generator
	cache     ports.VariantCache
	archiver  ports.ArchiveStore
	metrics   *observability.Metrics
	logger    *slog.Logger

	index    *index.Index
	resolver *resolver.Resolver
	window   *window.Builder
	runner   *pipeline.Runner
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithLoader injects a custom sequence loader, bypassing the default
// filesystem one.
func WithLoader(loader ports.SequenceLoader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

// WithCorpus injects a custom corpus store.
func WithCorpus(corpus ports.CorpusStore) Option {
	return func(p *Pipeline) {
		p.corpus = corpus
	}
}

// WithGenerator injects a custom generation backend.
func WithGenerator(gen ports.Generator) Option {
	return func(p *Pipeline) {
		p.generator = gen
	}
}

// WithVariantCache attaches a cache for generation results.
func WithVariantCache(cache ports.VariantCache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithArchive injects a custom archive store.
func WithArchive(store ports.ArchiveStore) Option {
	return func(p *Pipeline) {
		p.archiver = store
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New initializes a Pipeline from a config document. An empty path means
// all defaults. Collaborators not injected through options are built from
// the config's I/O section: filesystem sequences and corpus, a
// date-sharded archive and the configured provider client (or the
// deterministic mock when the provider is "mock").
func New(configPath string, opts ...Option) (*Pipeline, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return NewWithConfig(cfg, opts...)
}

// NewWithConfig initializes a Pipeline from an already decoded
// configuration.
func NewWithConfig(cfg config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.loader == nil {
		p.loader = adapters.NewFileSequenceLoader(cfg.IO.SequencesDir)
	}
	if p.corpus == nil {
		p.corpus = adapters.NewFileCorpusStore(cfg.IO.ContentDir)
	}
	if p.archiver == nil {
		p.archiver = archive.NewWriter(cfg.IO.ArchiveDir, archive.WithLogger(p.logger))
	}
	if p.generator == nil {
		p.generator = buildGenerator(cfg, p.logger)
	}

	p.index = index.New(p.loader, index.WithLogger(p.logger))
	p.resolver = resolver.New(p.index, resolver.WithLogger(p.logger))
	p.window = window.New(p.index, window.WithCorpus(p.corpus), window.WithLogger(p.logger))

	p.runner = pipeline.New(cfg, pipeline.Deps{
		Index:     p.index,
		Resolver:  p.resolver,
		Window:    p.window,
		Corpus:    p.corpus,
		Generator: p.generator,
		Archive:   p.archiver,
		Cache:     p.cache,
		Metrics:   p.metrics,
		Logger:    p.logger,
	})
	return p, nil
}

func buildGenerator(cfg config.Config, logger *slog.Logger) ports.Generator {
	if cfg.Provider.Name == "mock" {
		return generate.NewMock()
	}
	return generate.NewClient(generate.Config{
		Provider:    cfg.Provider.Name,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Provider.Model,
		Timeout:     cfg.Provider.Timeout(),
		MaxRetries:  cfg.Retry.MaxRetries,
		Backoff:     cfg.Retry.Backoff(),
		Temperature: cfg.Provider.Temperature,
		TopP:        cfg.Provider.TopP,
		MaxTokens:   cfg.Provider.MaxTokens,
	}, generate.WithLogger(logger))
}

// Run processes every target in order and reports the batch outcome.
func (p *Pipeline) Run(ctx context.Context, targets []domain.NodeAddress, state domain.StateSpec) (domain.BatchReport, error) {
	return p.runner.Run(ctx, targets, state)
}

// ProcessTarget runs the full pipeline for a single target.
func (p *Pipeline) ProcessTarget(ctx context.Context, target domain.NodeAddress, state domain.StateSpec) (*domain.ArchiveRecord, error) {
	return p.runner.ProcessTarget(ctx, target, state)
}

// Resolve finds a path from the state's entry point to target.
func (p *Pipeline) Resolve(state domain.StateSpec, target domain.NodeAddress) (domain.ResolvedPath, bool, error) {
	if state.EntrySequence == "" {
		state.EntrySequence = target.Sequence
	}
	return p.resolver.Resolve(state, target)
}

// Preview resolves a target and returns both the path and the context
// window a generation run would see, without calling the backend.
func (p *Pipeline) Preview(state domain.StateSpec, target domain.NodeAddress) (domain.ResolvedPath, bool, []domain.ContextTurn, error) {
	path, found, err := p.Resolve(state, target)
	if err != nil {
		return nil, false, nil, fmt.Errorf("preview: %w", err)
	}
	return path, found, p.window.Build(path, p.cfg.Context.Window), nil
}

// Config returns the decoded configuration the pipeline runs with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Index exposes the sequence index for inspection tooling.
func (p *Pipeline) Index() *index.Index {
	return p.index
}

// Resolver exposes the path resolver.
func (p *Pipeline) Resolver() *resolver.Resolver {
	return p.resolver
}

// Window exposes the context window builder.
func (p *Pipeline) Window() *window.Builder {
	return p.window
}

// Loader returns the underlying sequence loader.
func (p *Pipeline) Loader() ports.SequenceLoader {
	return p.loader
}

// Corpus returns the underlying corpus store.
func (p *Pipeline) Corpus() ports.CorpusStore {
	return p.corpus
}
