package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSnapshot_Deterministic(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "snap",
		Pass:         true,
		Trace: []TraceEvent{{
			Seq:          1,
			InvocationID: "inv",
			Frame:        "TradeCleanupFrame1",
			Args:         map[string]any{"z": 1, "a": "x"},
			Outcome:      OutcomeOK,
			Output:       map[string]string{"status": "0"},
		}},
	}

	first, err := MarshalSnapshot(snapshot)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalSnapshot(snapshot)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	s := string(first)
	assert.Less(t, strings.Index(s, `"a"`), strings.Index(s, `"z"`), "map keys are sorted")
	assert.NotContains(t, s, `"code"`, "empty code is omitted")
	assert.Equal(t, byte('\n'), first[len(first)-1])
}
