package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_ObserveInvocation(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.ObserveInvocation("TradeCleanupFrame1", OutcomeOK, 10*time.Millisecond)
	p.ObserveInvocation("TradeCleanupFrame1", OutcomeOK, 20*time.Millisecond)
	p.ObserveInvocation("TradeCleanupFrame1", OutcomeError, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.invocations.WithLabelValues("TradeCleanupFrame1", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.invocations.WithLabelValues("TradeCleanupFrame1", OutcomeError)))

	expected := `
# HELP dbt5_frame_invocations_total Total frame invocations by outcome.
# TYPE dbt5_frame_invocations_total counter
dbt5_frame_invocations_total{frame="TradeCleanupFrame1",outcome="error"} 1
dbt5_frame_invocations_total{frame="TradeCleanupFrame1",outcome="ok"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dbt5_frame_invocations_total"))

	count, err := testutil.GatherAndCount(reg, "dbt5_frame_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	assert.NotPanics(t, func() {
		r.ObserveInvocation("BrokerVolumeFrame1", OutcomeOK, time.Second)
	})
}
