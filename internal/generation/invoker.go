package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"autoposter/internal/form"
	"autoposter/internal/logging"
	"autoposter/internal/notifications"
	"autoposter/internal/services"
)

// Generator produces an artifact for a request. Client is the production
// implementation.
type Generator interface {
	Generate(ctx context.Context, flow Flow, req form.Request, requestID string) (Artifact, error)
}

// Recorder persists resolved runs.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}

// Outcome values for a resolved run.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Run describes one resolved invocation. Artifact is nil exactly when the
// run surfaced an error.
type Run struct {
	ID         string
	RequestID  string
	Flow       Flow
	Request    form.Request
	Artifact   *Artifact
	Fallback   bool
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Outcome classifies the run.
func (r Run) Outcome() string {
	switch {
	case r.Artifact == nil:
		return OutcomeError
	case r.Fallback:
		return OutcomeFallback
	default:
		return OutcomeSuccess
	}
}

// Duration is the wall time between start and resolution.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Invoker enforces the run rules on top of a Generator.
type Invoker struct {
	generator Generator
	recorder  Recorder
	notifier  notifications.Service
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	inFlight  atomic.Bool
}

// InvokerOption customizes an Invoker.
type InvokerOption func(*Invoker)

// WithRecorder stores every resolved run.
func WithRecorder(recorder Recorder) InvokerOption {
	return func(i *Invoker) {
		i.recorder = recorder
	}
}

// WithNotifier publishes run outcomes.
func WithNotifier(notifier notifications.Service) InvokerOption {
	return func(i *Invoker) {
		if notifier != nil {
			i.notifier = notifier
		}
	}
}

// WithInvokerLogger sets the invoker logger.
func WithInvokerLogger(logger *slog.Logger) InvokerOption {
	return func(i *Invoker) {
		i.logger = logging.NewComponentLogger(logger, "generation")
	}
}

// WithClock overrides the time source used for timestamps and fallback
// artifacts.
func WithClock(now func() time.Time) InvokerOption {
	return func(i *Invoker) {
		if now != nil {
			i.now = now
		}
	}
}

// WithIDGenerator overrides run and request id generation.
func WithIDGenerator(fn func() string) InvokerOption {
	return func(i *Invoker) {
		if fn != nil {
			i.newID = fn
		}
	}
}

// NewInvoker wraps generator.
func NewInvoker(generator Generator, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		generator: generator,
		notifier:  notifications.NewService(nil),
		logger:    logging.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// InFlight reports whether a run is active.
func (i *Invoker) InFlight() bool {
	return i.inFlight.Load()
}

// Validate runs the local pre-flight checks without touching the network.
func Validate(flow Flow, req form.Request) error {
	if strings.TrimSpace(req.Topic) == "" {
		return services.Wrap(services.ErrValidation, "generation", "validate", "topic is required", nil)
	}
	if !flow.Valid() {
		return services.Wrap(services.ErrValidation, "generation", "validate", fmt.Sprintf("unknown flow %q", flow), nil)
	}
	return nil
}

// Invoke performs one run. A blank topic or a concurrent run is rejected
// before any request is made. Backend failures resolve per flow: the legacy
// flow returns a fallback artifact with a nil error, the multi-step flow
// returns the run together with the failure.
func (i *Invoker) Invoke(ctx context.Context, flow Flow, req form.Request) (Run, error) {
	if err := Validate(flow, req); err != nil {
		return Run{}, err
	}
	if !i.inFlight.CompareAndSwap(false, true) {
		return Run{}, ErrInFlight
	}
	defer i.inFlight.Store(false)

	run := Run{
		ID:        i.newID(),
		RequestID: i.newID(),
		Flow:      flow,
		Request:   req,
		StartedAt: i.now().UTC(),
	}
	ctx = services.WithRunID(ctx, run.ID)
	ctx = services.WithFlow(ctx, string(flow))
	ctx = services.WithRequestID(ctx, run.RequestID)
	logger := logging.WithContext(ctx, i.logger)
	logger.Info("generation started",
		logging.String("topic", req.Topic),
		logging.String("endpoint", flow.Endpoint()),
	)

	artifact, err := i.generator.Generate(ctx, flow, req, run.RequestID)
	run.FinishedAt = i.now().UTC()
	after := context.WithoutCancel(ctx)

	switch {
	case err == nil:
		if artifact.GeneratedAt.IsZero() {
			artifact.GeneratedAt = run.FinishedAt
		}
		run.Artifact = &artifact
		logger.Info("generation completed",
			logging.String("title", artifact.Title),
			logging.Int("word_count", artifact.WordCount),
			logging.Duration("duration", run.Duration()),
		)
		i.publish(after, logger, notifications.EventArtifactReady, notifications.Payload{
			"title":     artifact.Title,
			"wordCount": artifact.WordCount,
			"seoScore":  artifact.SEOScore,
		})
	case flow == FlowLegacy && ctx.Err() == nil:
		placeholder := Fallback(req, run.FinishedAt)
		run.Artifact = &placeholder
		run.Fallback = true
		run.Err = err
		logging.WarnWithContext(logger, "generation failed; using placeholder article", "generation_fallback",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the backend at base_url is running"),
			logging.String(logging.FieldImpact, "placeholder content replaces the generated article"),
		)
		i.publish(after, logger, notifications.EventFallbackUsed, notifications.Payload{"topic": req.Topic})
	default:
		run.Err = err
		logging.ErrorWithContext(logger, "generation failed", "generation_failed",
			logging.Error(err),
			logging.String("error_kind", services.Kind(err)),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		if !errors.Is(err, context.Canceled) {
			i.publish(after, logger, notifications.EventGenerationFailed, notifications.Payload{
				"topic": req.Topic,
				"error": err,
			})
		}
	}

	if i.recorder != nil {
		if recErr := i.recorder.Record(after, run); recErr != nil {
			logger.Warn("failed to record run", logging.Error(recErr), logging.String(logging.FieldImpact, "run missing from history"))
		}
	}

	if run.Artifact == nil {
		return run, err
	}
	return run, nil
}

func (i *Invoker) publish(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := i.notifier.Publish(ctx, event, payload); err != nil {
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrTransport), errors.Is(err, services.ErrTimeout):
		return "check that the backend at base_url is reachable"
	case StatusCode(err) == 401 || StatusCode(err) == 403:
		return "check the bearer token in [auth]"
	case errors.Is(err, services.ErrConfiguration):
		return "fix the [api] or [auth] configuration"
	default:
		return "retry the run; see backend logs for details"
	}
}
