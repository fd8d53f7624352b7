package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchBrokerVolume(t *testing.T) {
	dsn := seededDB(t, brokerSeed)

	out, _, err := execute(t, "bench", "BrokerVolumeFrame1",
		"--dsn", dsn,
		"--format", "json",
		"-n", "8",
		"-c", "3",
		"--arg", "broker_names=Alice",
		"--arg", "broker_names=Bob",
		"--arg", "sector_name=Tech",
	)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   BenchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 8, resp.Data.Invocations)
	assert.Equal(t, 3, resp.Data.Concurrency)
	assert.Equal(t, 8, resp.Data.Succeeded)
	assert.Equal(t, 0, resp.Data.Failed)
	assert.Empty(t, resp.Data.Codes)
	assert.LessOrEqual(t, resp.Data.Latency.MinMS, resp.Data.Latency.MaxMS)
}

func TestBenchCountsFailuresByCode(t *testing.T) {
	dsn := seededDB(t)

	out, _, err := execute(t, "bench", "DataMaintenanceFrame1",
		"--dsn", dsn,
		"-n", "3",
		"--metrics-addr", "127.0.0.1:0",
		"--arg", "account_id=0",
		"--arg", "customer_id=0",
		"--arg", "company_id=0",
		"--arg", "day_of_month=1",
		"--arg", "symbol=",
		"--arg", "target_table=BOGUS",
		"--arg", "tax_id=",
		"--arg", "volume_increment=0",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "3 invocation(s) failed")
	assert.Contains(t, out, "succeeded = 0\n")
	assert.Contains(t, out, "failed = 3\n")
	assert.Contains(t, out, "failed[UNKNOWN_TARGET_TABLE] = 3\n")
}

func TestBenchRejectsBadCounts(t *testing.T) {
	_, _, err := execute(t, "bench", "BrokerVolumeFrame1", "-n", "0", "--arg", "sector_name=Tech")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSummarize(t *testing.T) {
	latencies := make([]time.Duration, 0, 20)
	for i := 20; i >= 1; i-- {
		latencies = append(latencies, time.Duration(i)*time.Millisecond)
	}

	stats := summarize(latencies)
	assert.Equal(t, LatencyStats{
		MinMS:  1,
		MeanMS: 10.5,
		P50MS:  10,
		P95MS:  19,
		MaxMS:  20,
	}, stats)

	assert.Equal(t, LatencyStats{}, summarize(nil))
}
