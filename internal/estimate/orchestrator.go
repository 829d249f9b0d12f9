package estimate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/oracle"
	"github.com/joelkehle/claimestimate/internal/storage"
)

const tracerName = "github.com/joelkehle/claimestimate/internal/estimate"

type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type EstimateRequest struct {
	Policies []claims.Policy
	Event    claims.MedicalEvent
	Language claims.Language
}

// Outcome always carries a well-formed Result. Cause is set when the
// transport failed or the run was cancelled; a reply that could not be
// parsed yields StateDegraded with a nil Cause.
type Outcome struct {
	Result         claims.EstimationResult
	State          State
	Cause          error
	Reconciliation Reconciliation
	Duration       time.Duration
}

// ResultCache receives the result of every run that was not cancelled.
type ResultCache interface {
	SaveLastEstimate(ctx context.Context, c storage.CachedEstimate) error
}

type ProgressFn func(stage, message string)

type Option func(*Orchestrator)

func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

func WithCache(c ResultCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

func WithProgress(fn ProgressFn) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// Orchestrator runs one estimation at a time. A call made while another is
// running fails with claims.ErrEstimationInFlight.
type Orchestrator struct {
	client   oracle.Client
	log      *zap.Logger
	tracer   trace.Tracer
	cache    ResultCache
	progress ProgressFn
	now      func() time.Time

	mu    sync.Mutex
	state State
}

func NewOrchestrator(client oracle.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		log:    zap.NewNop(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Estimate validates the input, makes exactly one oracle call and repairs the
// reply. The returned error is non-nil only for input problems and
// re-entrant calls, all of which happen before any oracle call.
func (o *Orchestrator) Estimate(ctx context.Context, req EstimateRequest) (Outcome, error) {
	lang := claims.ParseLanguage(string(req.Language))
	if len(req.Policies) == 0 {
		return Outcome{State: o.State()}, claims.NewError(claims.CodeEmptyPolicySet, "add at least one policy before estimating", nil)
	}
	oreq, err := oracle.Build(req.Policies, req.Event, lang)
	if err != nil {
		return Outcome{State: o.State()}, err
	}

	if !o.begin() {
		return Outcome{State: StateRunning}, claims.NewError(claims.CodeEstimationInFlight, "an estimation is already running", nil)
	}
	o.emit("build", "Preparing request...")

	ctx, span := o.tracer.Start(ctx, "estimate", trace.WithAttributes(
		attribute.Int("estimate.policies", len(req.Policies)),
		attribute.Int("estimate.attachments", len(oreq.Attachments)),
		attribute.String("estimate.language", string(lang)),
	))
	defer span.End()

	started := o.now()
	o.emit("send", "Waiting for the claim adjuster...")
	raw, sendErr := o.client.Send(ctx, oreq)

	out := Outcome{}
	switch {
	case sendErr != nil && ctx.Err() != nil:
		out.Result, out.State, out.Cause = Degraded(lang), StateDegraded, ctx.Err()
	case sendErr != nil:
		out.Result, out.State, out.Cause = Degraded(lang), StateDegraded, asTransportError(sendErr)
	default:
		o.emit("repair", "Checking the reply...")
		result, degraded := Inspect(raw, lang)
		out.Result, out.State = result, StateSucceeded
		if degraded {
			out.State = StateDegraded
		}
	}
	out.Duration = o.now().Sub(started)
	out.Reconciliation = Reconcile(out.Result)

	o.finish(out.State)
	o.record(span, out)

	if ctx.Err() == nil && o.cache != nil {
		entry := storage.CachedEstimate{
			Result:    out.Result,
			Degraded:  out.State == StateDegraded,
			Language:  lang,
			CreatedAt: o.now().UTC(),
		}
		if err := o.cache.SaveLastEstimate(ctx, entry); err != nil {
			o.log.Warn("could not cache estimate", zap.Error(err))
		}
	}
	return out, nil
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateRunning {
		return false
	}
	o.state = StateRunning
	return true
}

func (o *Orchestrator) finish(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) emit(stage, message string) {
	if o.progress != nil {
		o.progress(stage, message)
	}
}

func (o *Orchestrator) record(span trace.Span, out Outcome) {
	span.SetAttributes(
		attribute.String("estimate.state", out.State.String()),
		attribute.Int("estimate.items", len(out.Result.Items)),
		attribute.Bool("estimate.reconciled", out.Reconciliation.Consistent),
	)
	fields := []zap.Field{
		zap.String("state", out.State.String()),
		zap.Int("items", len(out.Result.Items)),
		zap.Float64("total", out.Result.TotalEstimatedAmount),
		zap.Duration("elapsed", out.Duration),
	}
	if out.Cause != nil {
		span.RecordError(out.Cause)
		desc := claims.CodeOf(out.Cause)
		if desc == "" {
			desc = out.Cause.Error()
		}
		span.SetStatus(codes.Error, desc)
		o.log.Warn("estimation degraded", append(fields, zap.Error(out.Cause))...)
	} else {
		o.log.Info("estimation finished", fields...)
	}
	if !out.Reconciliation.Consistent {
		o.log.Warn("reported total differs from item sum",
			zap.String("reported", out.Reconciliation.Reported.String()),
			zap.String("itemSum", out.Reconciliation.ItemSum.String()))
	}
}

func asTransportError(err error) error {
	var ce *claims.Error
	if errors.As(err, &ce) {
		return err
	}
	return claims.NewError(claims.CodeNetworkFailure, "oracle request failed", err)
}
