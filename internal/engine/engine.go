package engine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/osdldbt/dbt5-sub001/internal/frame"
	"github.com/osdldbt/dbt5-sub001/internal/metrics"
)

// Engine dispatches frame invocations by name.
//
// Thread-safety model:
//   - Invoke/Call: safe from any goroutine; each call runs on the caller's
//     goroutine inside the caller's transaction
//   - Engine holds no per-invocation state
type Engine struct {
	exec    *frame.Executor
	now     func() time.Time
	ids     IDGenerator
	seq     *Sequence
	metrics metrics.Recorder
	logger  *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithClock sets the wall clock frames use for history and exchange stamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator sets the invocation id generator.
// Default: UUIDv7Generator.
func WithIDGenerator(ids IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = ids
	}
}

// WithSequence sets the invocation sequence, e.g. to continue numbering.
func WithSequence(seq *Sequence) EngineOption {
	return func(e *Engine) {
		e.seq = seq
	}
}

// WithMetrics sets the invocation recorder.
// Default: metrics.Noop.
func WithMetrics(r metrics.Recorder) EngineOption {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithLogger sets the logger for invocation records.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine. Without options it stamps with time.Now, generates
// UUIDv7 ids, records no metrics and discards logs.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		now:     time.Now,
		ids:     UUIDv7Generator{},
		seq:     NewSequence(),
		metrics: metrics.Noop{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.exec = frame.NewExecutor(frame.WithClock(e.now), frame.WithLogger(e.logger))
	return e
}

// Executor returns the frame executor for callers that want the typed
// entry points.
func (e *Engine) Executor() *frame.Executor {
	return e.exec
}

// Invocation is the record of one dispatched frame call.
type Invocation struct {
	ID       string
	Seq      int64
	Frame    string
	Output   frame.Output
	Duration time.Duration
}

// Invoke runs frameID with positional args against q and returns its
// output row. Any error is a *frame.Error; the caller should roll back.
func (e *Engine) Invoke(ctx context.Context, q frame.Querier, frameID string, args frame.Args) (frame.Output, error) {
	inv, err := e.Call(ctx, q, frameID, args)
	return inv.Output, err
}

// Call is Invoke with the invocation's id, sequence number and duration.
func (e *Engine) Call(ctx context.Context, q frame.Querier, frameID string, args frame.Args) (Invocation, error) {
	inv := Invocation{
		ID:    e.ids.Generate(),
		Seq:   e.seq.Next(),
		Frame: frameID,
	}

	reg, ok := registry[frameID]
	if !ok {
		err := frame.NewUnknownFrameError(frameID)
		e.logger.Warn("frame invocation rejected",
			"invocation_id", inv.ID,
			"frame", frameID,
			"code", frame.CodeOf(err),
		)
		return inv, err
	}
	if msg := args.Check(reg.params); msg != "" {
		err := frame.NewInvalidArgumentsError(frameID, msg)
		e.logger.Warn("frame invocation rejected",
			"invocation_id", inv.ID,
			"frame", frameID,
			"code", frame.CodeOf(err),
		)
		e.metrics.ObserveInvocation(frameID, metrics.OutcomeError, 0)
		return inv, err
	}

	start := time.Now()
	out, err := reg.run(ctx, e.exec, q, args)
	inv.Duration = time.Since(start)

	if err != nil {
		e.metrics.ObserveInvocation(frameID, metrics.OutcomeError, inv.Duration)
		e.logger.Warn("frame invocation failed",
			"invocation_id", inv.ID,
			"seq", inv.Seq,
			"frame", frameID,
			"code", frame.CodeOf(err),
			"error", err,
		)
		return inv, err
	}

	inv.Output = out
	e.metrics.ObserveInvocation(frameID, metrics.OutcomeOK, inv.Duration)
	e.logger.Debug("frame invocation",
		"invocation_id", inv.ID,
		"seq", inv.Seq,
		"frame", frameID,
		"duration", inv.Duration,
	)
	return inv, nil
}
