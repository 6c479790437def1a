package workflow

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/pageza/fridgechef/backend/internal/service"
	"github.com/pageza/fridgechef/backend/internal/types"
)

const tracerName = "github.com/pageza/fridgechef/backend/internal/workflow"

// recipeKeywords mark a message as a recipe search when no classifier is
// available or it fails.
var recipeKeywords = []string{"recipe", "how to make", "how do i cook", "make", "prepare", "ingredients for"}

// Services are the collaborators the workflows call. Classifier is optional.
type Services struct {
	Vision     service.VisionModel
	Language   service.LanguageModel
	Classifier service.IntentClassifier
	Recipes    service.RecipeSearcher
	Images     service.ImageResolver
}

// Router picks the workflow for a chat request and runs it against an emitter
type Router struct {
	svc    Services
	logger *zap.SugaredLogger
	tracer trace.Tracer
}

// Option configures a Router
type Option func(*Router)

// WithTracerProvider sets the provider step spans are created from
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Router) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// NewRouter creates a Router. Spans go to the global provider unless
// WithTracerProvider is given.
func NewRouter(svc Services, logger *zap.SugaredLogger, opts ...Option) *Router {
	r := &Router{
		svc:    svc,
		logger: logger.Named("workflow"),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route runs the workflow selected by req. Exactly one terminal event is
// written to out unless ctx is cancelled first. The returned error reports
// stream or cancellation problems only; workflow failures are delivered as
// error events.
func (r *Router) Route(ctx context.Context, req *types.ChatRequest, out Emitter) (err error) {
	em := Guard(out)

	ctx, span := r.tracer.Start(ctx, "workflow.route")
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorw("workflow panicked", "panic", p, "stack", string(debug.Stack()))
			span.SetStatus(codes.Error, fmt.Sprint(p))
			if !em.Terminated() {
				err = em.Emit(Failure("", UnexpectedErrorMessage))
			}
		}
	}()

	if req.HasImage() {
		span.SetAttributes(attribute.String("intent", string(types.IntentFridgeImage)))
		return r.run(ctx, r.imagePipeline(req), em)
	}

	query := req.Query()
	if query == "" {
		span.SetAttributes(attribute.String("intent", "welcome"))
		return em.Emit(Complete(WelcomeMessage, nil, nil))
	}

	intent := r.classify(ctx, query)
	span.SetAttributes(attribute.String("intent", string(intent)))
	r.logger.Debugw("classified message", "intent", intent)

	switch intent {
	case types.IntentRecipeSearch:
		return r.run(ctx, r.queryPipeline(query), em)
	case types.IntentFridgeImage:
		return em.Emit(Failure(StepAnalyzeImage, NoImageMessage))
	default:
		return r.run(ctx, r.qaPipeline(query), em)
	}
}

func (r *Router) run(ctx context.Context, p *pipeline, em *GuardedEmitter) error {
	err := p.run(ctx, em)
	if errors.Is(err, errNoTerminalEvent) && !em.Terminated() {
		r.logger.Errorw("workflow ended without a result", "workflow", p.name)
		return em.Emit(Failure("", UnexpectedErrorMessage))
	}
	return err
}

// classify asks the configured classifier and falls back to keyword
// matching when there is none or it fails.
func (r *Router) classify(ctx context.Context, query string) types.Intent {
	if r.svc.Classifier != nil {
		intent, err := r.svc.Classifier.ClassifyIntent(ctx, query)
		if err == nil {
			return intent
		}
		r.logger.Warnw("intent classifier failed, using keyword fallback", "error", err)
	}
	return ClassifyByKeywords(query)
}

// ClassifyByKeywords labels a message recipe_search when it contains one of
// the recipe keywords, and general_qa otherwise.
func ClassifyByKeywords(query string) types.Intent {
	folded := cases.Fold().String(query)
	for _, kw := range recipeKeywords {
		if strings.Contains(folded, kw) {
			return types.IntentRecipeSearch
		}
	}
	return types.IntentGeneralQA
}

func (r *Router) newPipeline(name string, steps ...step) *pipeline {
	return &pipeline{name: name, steps: steps, logger: r.logger, tracer: r.tracer}
}

func (r *Router) qaPipeline(question string) *pipeline {
	return r.newPipeline("general_qa", step{
		name: StepAnswerQuestion,
		run: func(ctx context.Context) (*Event, error) {
			answer, err := r.svc.Language.AnswerQuestion(ctx, question)
			if err != nil {
				return nil, err
			}
			ev := Complete(answer, nil, nil)
			return &ev, nil
		},
	})
}
