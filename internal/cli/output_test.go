package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osdldbt/dbt5-sub001/internal/frame"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("FRAME_STEP_FAILED", "frame failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "FRAME_STEP_FAILED", resp.Error.Code)
	assert.Equal(t, "frame failed", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"frame": "TradeCleanupFrame1", "step": "drain requests"}
	err := formatter.Error("INVALID_ARGUMENTS", "expected 4 arguments, got 3", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("schema applied")
	require.NoError(t, err)
	assert.Equal(t, "schema applied\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("FRAME_STEP_FAILED", "frame failed", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [FRAME_STEP_FAILED]")
	assert.Contains(t, buf.String(), "frame failed")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"frame": "TradeCleanupFrame1"}
	err := formatter.Error("FRAME_STEP_FAILED", "frame failed", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [FRAME_STEP_FAILED]")
	assert.Contains(t, buf.String(), "Details:")
}

type textResult struct{ n int }

func (r textResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "n = %d\n", r.n)
	return err
}

func TestOutputFormatter_TextWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(textResult{n: 3}))
	assert.Equal(t, "n = 3\n", buf.String())
}

func TestOutputFormatter_TraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.SuccessWithTrace(map[string]string{"status": "0"}, "inv-1"))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "inv-1", resp.TraceID)

	buf.Reset()
	formatter = &OutputFormatter{Format: "text", Writer: buf, Verbose: true}
	require.NoError(t, formatter.SuccessWithTrace(textResult{n: 1}, "inv-2"))
	assert.Equal(t, "trace_id = inv-2\nn = 1\n", buf.String())
}

func TestOutputFormatter_FrameError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.FrameError(frame.NewInvalidArgumentsError("TradeCleanupFrame1", "expected 4 arguments, got 1"), "inv-9")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "INVALID_ARGUMENTS", resp.Error.Code)
	assert.Equal(t, map[string]any{"frame": "TradeCleanupFrame1", "invocation_id": "inv-9"}, resp.Error.Details)
}

func TestOutputFormatter_FrameErrorNonFrame(t *testing.T) {
	formatter := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}
	err := formatter.FrameError(errors.New("disk full"), "")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("unknown flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "failed"))))
}
