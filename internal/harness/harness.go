package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/osdldbt/dbt5-sub001/internal/engine"
	"github.com/osdldbt/dbt5-sub001/internal/frame"
	"github.com/osdldbt/dbt5-sub001/internal/store"
	"github.com/osdldbt/dbt5-sub001/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and invocation ids so that
// traces and timestamps are reproducible.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger routes engine and harness logs to logger.
// Default: logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database with the frame schema
// 2. Execute setup scripts
// 3. Execute flow steps, one transaction each, with expect validation
// 4. Evaluate assertions against the final state
// 5. Return result with pass/fail, trace, and errors
//
// Run returns an error only when the scenario could not be executed;
// failed expectations are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(ctx, store.Options{
		Driver:       store.DriverSQLite,
		DSN:          ":memory:",
		CreateSchema: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}
	h.engine = engine.New(
		engine.WithClock(h.clock.Now),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.InvocationID)),
		engine.WithLogger(h.logger),
	)

	for i, script := range scenario.Setup {
		if err := st.ExecScript(ctx, script); err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, errMsg := range EvaluateAssertions(ctx, st, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(scenario.Flow),
		"pass", result.Pass,
	)
	return result, nil
}

// executeFlow runs every flow step in its own transaction, committing on
// success and rolling back on a frame error, and validates expect clauses.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		var args frame.Args
		if params, ok := engine.Params(step.Frame); ok {
			var err error
			if args, err = bindArgs(step.Args, params); err != nil {
				return fmt.Errorf("flow step %d: %w", i, err)
			}
		}

		var inv engine.Invocation
		err := h.store.RunInTx(ctx, func(tx *store.Tx) error {
			var err error
			inv, err = h.engine.Call(ctx, tx, step.Frame, args)
			return err
		})
		code := frame.CodeOf(err)
		if err != nil && code == "" {
			// Not a frame failure: the transaction itself broke.
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		ev := TraceEvent{
			Seq:          inv.Seq,
			InvocationID: inv.ID,
			Frame:        step.Frame,
			Args:         step.Args,
			Outcome:      OutcomeOK,
		}
		if err != nil {
			ev.Outcome = OutcomeError
			ev.Code = string(code)
		} else {
			ev.Output = inv.Output.Map()
		}
		result.AddTrace(ev)

		for _, msg := range checkExpect(step.Expect, inv.Output, err) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Frame, msg))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"frame", step.Frame,
			"invocation_id", inv.ID,
			"seq", inv.Seq,
			"outcome", ev.Outcome,
		)
	}
	return nil
}

// checkExpect compares a step's actual outcome with its expect clause.
// A step without an expect clause must succeed.
func checkExpect(expect *ExpectClause, out frame.Output, err error) []string {
	want := OutcomeOK
	if expect != nil {
		want = expect.Outcome
	}

	if err != nil {
		if want != OutcomeError {
			return []string{fmt.Sprintf("expected outcome ok, got error: %v", err)}
		}
		if expect.Code != "" && string(frame.CodeOf(err)) != expect.Code {
			return []string{fmt.Sprintf("expected code %s, got %s", expect.Code, frame.CodeOf(err))}
		}
		return nil
	}

	if want != OutcomeOK {
		return []string{"expected outcome error, got ok"}
	}
	if expect == nil {
		return nil
	}

	keys := make([]string, 0, len(expect.Output))
	for k := range expect.Output {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		actual, ok := out.Get(k)
		if !ok {
			msgs = append(msgs, fmt.Sprintf("output column %q not present in %v", k, out.Columns))
			continue
		}
		if expected := fmt.Sprint(expect.Output[k]); expected != actual {
			msgs = append(msgs, fmt.Sprintf("output %q = %q, want %q", k, actual, expected))
		}
	}
	return msgs
}
