package testutil

// FixedIDGenerator returns the same invocation id every time.
//
// Scenario traces compare byte-for-byte against golden files, so every step
// shares the id set in the scenario YAML.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator returning id.
// If id is empty, Generate returns "test-invocation".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-invocation"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
//
// Implements engine.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
