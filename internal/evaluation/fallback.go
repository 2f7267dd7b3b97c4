package evaluation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/abhisek/incidentlab/internal/evaluation"

// FallbackEvaluator tries a primary evaluator and, on any error, returns the
// fallback's result for the same inputs instead.
type FallbackEvaluator struct {
	primary  Evaluator
	fallback Evaluator
	logger   *zap.Logger
	tracer   trace.Tracer
}

// WithFallback composes primary and fallback. A nil primary means every
// call goes straight to the fallback, which is how the game runs without a
// configured classifier.
func WithFallback(primary, fallback Evaluator, logger *zap.Logger) *FallbackEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackEvaluator{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// WithTracer replaces the tracer taken from the global provider.
func (f *FallbackEvaluator) WithTracer(t trace.Tracer) *FallbackEvaluator {
	f.tracer = t
	return f
}

func (f *FallbackEvaluator) Evaluate(ctx context.Context, text string, rubric *Rubric) (*Result, error) {
	ctx, span := f.tracer.Start(ctx, "evaluation.Evaluate")
	defer span.End()

	if f.primary != nil {
		res, err := f.primary.Evaluate(ctx, text, rubric)
		if err == nil {
			span.SetAttributes(
				attribute.String("evaluation.path", "primary"),
				attribute.String("evaluation.verdict", string(res.Verdict)),
			)
			return res, nil
		}

		span.RecordError(err)
		f.logger.Warn("primary evaluator failed, using fallback", zap.Error(err))
	}

	res, err := f.fallback.Evaluate(ctx, text, rubric)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("evaluation.path", "fallback"),
		attribute.String("evaluation.verdict", string(res.Verdict)),
	)
	return res, nil
}
