package workflow

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var errNoTerminalEvent = errors.New("workflow finished without a terminal event")

// step is one stage of a workflow. run returns the event that reports its
// outcome: nil to continue silently, a step event to continue after emitting
// it, or a terminal event to finish the workflow.
type step struct {
	name     string
	progress string
	run      func(ctx context.Context) (*Event, error)
}

// pipeline runs steps strictly in order and stops at the first terminal
// event or error.
type pipeline struct {
	name   string
	steps  []step
	logger *zap.SugaredLogger
	tracer trace.Tracer
}

func (p *pipeline) run(ctx context.Context, em Emitter) error {
	for _, s := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Infow("workflow cancelled", "workflow", p.name, "before_step", s.name)
			return err
		}

		if s.progress != "" {
			if err := em.Emit(StepStarted(s.name, s.progress)); err != nil {
				return err
			}
		}

		ev, err := p.runStep(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Infow("workflow cancelled", "workflow", p.name, "step", s.name)
				return ctx.Err()
			}
			p.logger.Warnw("workflow step failed", "workflow", p.name, "step", s.name, "error", err)
			return em.Emit(Failure(s.name, userMessage(s.name, err)))
		}
		if ev == nil {
			continue
		}
		if err := em.Emit(*ev); err != nil {
			return err
		}
		if ev.IsTerminal() {
			return nil
		}
	}
	return errNoTerminalEvent
}

func (p *pipeline) runStep(ctx context.Context, s step) (*Event, error) {
	ctx, span := p.tracer.Start(ctx, "workflow.step."+s.name, trace.WithAttributes(
		attribute.String("workflow", p.name),
		attribute.String("step", s.name),
	))
	defer span.End()

	start := time.Now()
	ev, err := s.run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if ev != nil {
		if ev.Data != nil {
			if ev.Data.IngredientsCount != nil {
				span.SetAttributes(attribute.Int("ingredients.count", *ev.Data.IngredientsCount))
			}
			if ev.Data.RecipeCount != nil {
				span.SetAttributes(attribute.Int("recipes.count", *ev.Data.RecipeCount))
			}
		}
		if ev.Type == EventComplete {
			span.SetAttributes(attribute.Int("recipes.count", len(ev.Recipes)))
		}
	}
	p.logger.Debugw("workflow step finished", "workflow", p.name, "step", s.name, "duration", elapsed)
	return ev, nil
}
