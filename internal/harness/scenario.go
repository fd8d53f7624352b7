package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/osdldbt/dbt5-sub001/internal/engine"
)

// Scenario defines a frame conformance scenario.
// A scenario seeds a fresh database, runs a flow of frame invocations and
// asserts on their outcomes and on the rows they leave behind.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup holds SQL scripts run before the flow, outside any frame.
	// Each entry may contain several semicolon-separated statements.
	Setup []string `yaml:"setup,omitempty"`

	// Flow contains the frame invocations, each in its own transaction.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final database state.
	// Supported types: final_state, row_count
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// InvocationID is an optional fixed invocation id for deterministic traces.
	// If empty, defaults to "test-invocation".
	InvocationID string `yaml:"invocation_id,omitempty"`
}

// FlowStep invokes one frame with named arguments.
type FlowStep struct {
	// Frame is the frame name (e.g., "TradeCleanupFrame1").
	Frame string `yaml:"frame"`

	// Args maps parameter names to values. Every parameter of the frame
	// must be present; see engine.Params for names.
	Args map[string]any `yaml:"args"`

	// Expect specifies the expected outcome.
	// If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// Outcome is "ok" or "error".
	Outcome string `yaml:"outcome"`

	// Code is the expected error code (outcome error only).
	Code string `yaml:"code,omitempty"`

	// Output contains expected output columns.
	// This is a subset match - only specified columns are validated.
	Output map[string]any `yaml:"output,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": exactly one row matches Where and carries Expect
	// - "row_count": exactly Count rows match Where
	Type string `yaml:"type"`

	// Table is the table to query.
	Table string `yaml:"table"`

	// Where specifies equality filters. All fields must match.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of matching rows (used by row_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertRowCount   = "row_count"
)

// Expected outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Frame == "" {
			return fmt.Errorf("flow[%d]: frame is required", i)
		}
		if step.Args == nil {
			return fmt.Errorf("flow[%d]: args is required (use empty map if no args)", i)
		}
		// Unknown frames are allowed so scenarios can exercise rejection.
		if params, ok := engine.Params(step.Frame); ok {
			if err := checkArgNames(step.Args, params); err != nil {
				return fmt.Errorf("flow[%d]: %w", i, err)
			}
		}
		if step.Expect != nil {
			if err := validateExpect(step.Expect); err != nil {
				return fmt.Errorf("flow[%d].expect: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateExpect(e *ExpectClause) error {
	switch e.Outcome {
	case OutcomeOK:
		if e.Code != "" {
			return fmt.Errorf("code is only valid with outcome %q", OutcomeError)
		}
	case OutcomeError:
		if len(e.Output) > 0 {
			return fmt.Errorf("output is only valid with outcome %q", OutcomeOK)
		}
	case "":
		return fmt.Errorf("outcome is required")
	default:
		return fmt.Errorf("unknown outcome %q", e.Outcome)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Table == "" {
		return fmt.Errorf("assertions[%d]: table is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
