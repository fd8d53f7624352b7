package harness

// TraceEvent records one frame invocation of a scenario flow.
type TraceEvent struct {
	Seq          int64             `json:"seq"`
	InvocationID string            `json:"invocation_id"`
	Frame        string            `json:"frame"`
	Args         map[string]any    `json:"args"`
	Outcome      string            `json:"outcome"`
	Code         string            `json:"code,omitempty"`
	Output       map[string]string `json:"output,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains all invocations in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an invocation to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
