package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sansstate/internal/loader"
	"github.com/roach88/sansstate/internal/param"
)

func TestValidateValidConfig(t *testing.T) {
	out, _, err := execute(t, nil, "validate", sans2dFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "✓ "+sans2dFile+" valid (ISIS/SANS2D, 8 concerns, hash "), out)
}

func TestValidateValidConfigJSON(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "validate", sans2dFile)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "SANS2D", resp.Data.Instrument)
	assert.Equal(t, []string{"compatibility", "data", "mask", "move", "reduction", "save", "scale", "wavelength"}, resp.Data.Concerns)
	assert.Len(t, resp.Data.Hash, 64)
}

func TestValidateHashMatchesAcrossFormats(t *testing.T) {
	hashOf := func(path string) string {
		out, _, err := execute(t, nil, "--format", "json", "validate", path)
		require.NoError(t, err, path)
		var resp struct {
			Data ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return resp.Data.Hash
	}
	want := hashOf(sans2dFile)
	assert.Equal(t, want, hashOf(strings.TrimSuffix(sans2dFile, ".yaml")+".cue"))
	assert.Equal(t, want, hashOf(strings.TrimSuffix(sans2dFile, ".yaml")+".json"))
}

func TestValidateInvalidConfig(t *testing.T) {
	path := writeConfig(t, "invalid.yaml", invalidConfig)

	out, _, err := execute(t, nil, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with")
	assert.Contains(t, out, "✗ "+path+": configuration invalid")
	assert.Contains(t, out, "E250 save.user_specified_output_name: ")
	assert.Contains(t, out, " data.sample_scatter: ")
}

func TestValidateInvalidConfigJSON(t *testing.T) {
	path := writeConfig(t, "invalid.yaml", invalidConfig)

	out, _, err := execute(t, nil, "--format", "json", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string          `json:"code"`
			Details []param.Problem `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, resp.Error.Details[0].Code, resp.Error.Code)

	fields := make([]string, len(resp.Error.Details))
	for i, p := range resp.Error.Details {
		fields[i] = p.Field
	}
	assert.Contains(t, fields, "save.user_specified_output_name")
}

func TestValidateCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode string
		wantOut  string
	}{
		{
			name:     "missing_file",
			path:     func(t *testing.T) string { return "/nonexistent/sans2d.yaml" },
			wantCode: loader.CodeRead,
			wantOut:  "no such file",
		},
		{
			name:     "unsupported_extension",
			path:     func(t *testing.T) string { return writeConfig(t, "sans2d.ini", "instrument=SANS2D") },
			wantCode: loader.CodeFormat,
			wantOut:  "unsupported extension",
		},
		{
			name: "rejected_value",
			path: func(t *testing.T) string {
				return writeConfig(t, "bad.yaml", "instrument: LOQ\nwavelength:\n  wavelength_step: fast\n")
			},
			wantCode: loader.CodeRejected,
			wantOut:  ":3:20: E006: wavelength: ",
		},
		{
			name:     "unknown_instrument",
			path:     func(t *testing.T) string { return writeConfig(t, "bad.yaml", "instrument: D22\n") },
			wantCode: loader.CodeShape,
			wantOut:  `unknown instrument "D22"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, nil, "validate", tt.path(t))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestValidateLogsToStderr(t *testing.T) {
	out, stderr, err := execute(t, nil, "--format", "json", "--verbose", "validate", sans2dFile)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"configuration assembled"`)
	assert.NotContains(t, out, "configuration assembled")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateRequiresOneArgument(t *testing.T) {
	_, _, err := execute(t, nil, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
