package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopscan/shopscan/internal/config"
	"github.com/shopscan/shopscan/internal/crawler"
	"github.com/shopscan/shopscan/internal/model"
	"github.com/shopscan/shopscan/internal/sink"
)

// Run carries the shared state of a single crawl run through the pipeline.
// Steps read from and write to this state in sequence.
type Run struct {
	// Config is the validated run configuration.
	Config *config.Config

	// Driver walks the catalogue's pagination.
	Driver *crawler.Driver

	// Sink receives extracted records.
	Sink sink.Sink

	// Report accumulates the run summary.
	Report *model.CrawlReport

	// finalized guards Finalize against running twice.
	finalized bool
}

// NewRun creates the run state for a crawl into the given sink.
func NewRun(cfg *config.Config, driver *crawler.Driver, s sink.Sink) *Run {
	return &Run{
		Config: cfg,
		Driver: driver,
		Sink:   s,
		Report: model.NewCrawlReport(cfg.SeedURL, s.Label()),
	}
}

// Finalize flushes the sink and stamps the report with the final written
// count and duration. It must run on every exit path, success or failure,
// so crawled records are durable before the process exits. Calling it more
// than once is safe; only the first call has effect.
func (r *Run) Finalize() error {
	if r.finalized {
		return nil
	}
	r.finalized = true

	closeErr := r.Sink.Close()
	r.Report.Finish(r.Sink.Count())

	if closeErr != nil {
		if r.Report.Error == "" {
			r.Report.Error = closeErr.Error()
		}
		return fmt.Errorf("flush sink: %w", closeErr)
	}
	return nil
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the accumulated run state.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features
type Step interface {
	// Do executes the pipeline step. It receives the context for
	// cancellation and the run state to modify.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order, stopping at the
// first failure: a crawl that cannot fetch, parse, or store has no useful
// work left to do.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddSteps after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddSteps appends steps to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
// The first error stops the pipeline and is recorded in the run report;
// records already handed to the sink before the failure stay written.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps handle their own cancellation internally. This
// allows graceful cleanup between steps while still respecting cancellation.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			run.Report.Error = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"seed_url", run.Config.SeedURL,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			run.Report.Error = err.Error()
			return err
		}
	}

	return nil
}
