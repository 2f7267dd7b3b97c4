// Package app wires the store, case catalog, classifier and progress tracker
// into one game instance.
package app

import (
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/incidentlab/internal/casebook"
	"github.com/abhisek/incidentlab/internal/evaluation"
	"github.com/abhisek/incidentlab/internal/llm"
	"github.com/abhisek/incidentlab/internal/progress"
	"github.com/abhisek/incidentlab/internal/store"
)

// Options holds the dependencies of a game instance.
type Options struct {
	ProgressRepo store.ProgressRepo
	EventRepo    store.EventRepo
	Catalog      *casebook.Catalog // defaults to the embedded cases

	// LLMProvider is optional. Without it every submission is judged by
	// keyword matching.
	LLMProvider llm.Provider
	LLMConfig   evaluation.LLMConfig

	Tracer trace.Tracer // optional, defaults to the global tracer
	Logger *zap.Logger
}

// App is a wired game instance.
type App struct {
	Tracker   *progress.Tracker
	Catalog   *casebook.Catalog
	EventRepo store.EventRepo
	AIEnabled bool

	// LLMConfig is the evaluator configuration in effect.
	LLMConfig evaluation.LLMConfig
}

// New builds an App from opts.
func New(opts Options) (*App, error) {
	if opts.ProgressRepo == nil {
		return nil, errors.New("app: progress repo is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = casebook.Default()
	}
	if opts.LLMConfig == (evaluation.LLMConfig{}) {
		opts.LLMConfig = evaluation.DefaultLLMConfig()
	}

	rootCause, solution := Evaluators(opts.LLMProvider, opts.LLMConfig, opts.Tracer, opts.Logger)

	trackerOpts := progress.Options{
		Store:     progress.NewRepoStore(opts.ProgressRepo),
		Catalog:   opts.Catalog,
		RootCause: rootCause,
		Solution:  solution,
		Logger:    opts.Logger.Named("progress"),
	}
	if opts.EventRepo != nil {
		trackerOpts.Events = opts.EventRepo
	}
	tracker, err := progress.NewTracker(trackerOpts)
	if err != nil {
		return nil, err
	}

	return &App{
		Tracker:   tracker,
		Catalog:   opts.Catalog,
		EventRepo: opts.EventRepo,
		AIEnabled: opts.LLMProvider != nil,
		LLMConfig: opts.LLMConfig,
	}, nil
}

// EvaluatorConfig derives the evaluator settings from the classifier
// configuration. A zero Timeout keeps the evaluator default.
func EvaluatorConfig(cfg llm.Config) evaluation.LLMConfig {
	out := evaluation.DefaultLLMConfig()
	if cfg.Timeout > 0 {
		out.Timeout = cfg.Timeout
	}
	return out
}

// Evaluators returns the phase 1 and phase 2 evaluators. Each tries the
// classifier first, when there is one, and falls back to keyword matching.
func Evaluators(provider llm.Provider, cfg evaluation.LLMConfig, tracer trace.Tracer, logger *zap.Logger) (rootCause, solution evaluation.Evaluator) {
	if logger == nil {
		logger = zap.NewNop()
	}
	build := func(phase evaluation.Phase) evaluation.Evaluator {
		var primary evaluation.Evaluator
		if provider != nil {
			primary = evaluation.NewLLMEvaluator(provider, phase, cfg)
		}
		fe := evaluation.WithFallback(primary, evaluation.KeywordEvaluator{},
			logger.Named("evaluation").With(zap.Stringer("phase", phase)))
		if tracer != nil {
			fe = fe.WithTracer(tracer)
		}
		return fe
	}
	return build(evaluation.PhaseRootCause), build(evaluation.PhaseSolution)
}
