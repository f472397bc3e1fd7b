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

	"github.com/roach88/sansstate/internal/param"
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

	err := formatter.Error("E003", "syntax error", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E003", resp.Error.Code)
	assert.Equal(t, "syntax error", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "sans2d.cue", "line": "42"}
	err := formatter.Error("E003", "expected a value", details)
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

	err := formatter.Success("configuration valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "configuration valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E003", "syntax error", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E003]")
	assert.Contains(t, buf.String(), "syntax error")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "sans2d.cue"}
	err := formatter.Error("E005", "expected a mapping", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E005]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextWriterPayload(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Success(ValidationResult{
		File:       "sans2d.yaml",
		Facility:   "ISIS",
		Instrument: "SANS2D",
		Concerns:   []string{"data", "move"},
		Hash:       "0123456789abcdef",
	})
	require.NoError(t, err)
	assert.Equal(t, "✓ sans2d.yaml valid (ISIS/SANS2D, 2 concerns, hash 0123456789ab)\n", buf.String())
}

func TestOutputFormatter_Problems(t *testing.T) {
	problems := []param.Problem{
		{Field: "save.user_specified_output_name", Message: "must be a bare file name", Code: "E250"},
		{Field: "reduction.detector_names.HAB", Message: "names differ", Code: "E291"},
	}

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, formatter.Problems("configuration invalid", problems))
		assert.Contains(t, buf.String(), "✗ configuration invalid")
		assert.Contains(t, buf.String(), "  E250 save.user_specified_output_name: must be a bare file name\n")
		assert.Contains(t, buf.String(), "  E291 reduction.detector_names.HAB: names differ\n")
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, formatter.Problems("configuration invalid", problems))

		var resp struct {
			Status string `json:"status"`
			Error  struct {
				Code    string          `json:"code"`
				Details []param.Problem `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "E250", resp.Error.Code)
		assert.Equal(t, problems, resp.Error.Details)
	})

	t.Run("empty", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, formatter.Problems("configuration invalid", nil))
		assert.Contains(t, buf.String(), ErrCodeInvalid)
	})
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", io.EOF))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, io.EOF)
	assert.Equal(t, "outer: inner: EOF", wrapped.Error())
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"concerns": 8},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E306",
		Message: "validation failed",
		Details: []string{"data.sample_scatter: missing"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E306", decoded.Code)
	assert.Equal(t, "validation failed", decoded.Message)
}
