package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sansstate/internal/metadata"
)

// sans2dFile is the SANS2D merged-reduction fixture shared with the loader.
var sans2dFile = filepath.Join("..", "loader", "testdata", "sans2d.yaml")

const invalidConfig = `instrument: SANS2D
save:
  user_specified_output_name: out/reduced
`

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(metadata.EnvDir, "")
	if opts == nil {
		opts = &RootOptions{}
	}
	cmd := newRootCommand(opts)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// goldenFixture returns the contents of a golden file.
func goldenFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "golden", name+".golden"))
	require.NoError(t, err)
	return string(data)
}
