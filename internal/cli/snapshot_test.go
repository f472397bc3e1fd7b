package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sansstate/internal/store"
	"github.com/roach88/sansstate/internal/testutil"
)

func snapshotOpts() *RootOptions {
	return &RootOptions{RevisionIDs: testutil.NewRevisionIDs().Next}
}

func saveJSON(t *testing.T, opts *RootOptions, db string, args ...string) store.Snapshot {
	t.Helper()
	out, _, err := execute(t, opts, append([]string{"--format", "json", "save", "--db", db}, args...)...)
	require.NoError(t, err)
	var resp struct {
		Status string         `json:"status"`
		Data   store.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestSaveShowList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "configs.db")
	opts := snapshotOpts()

	snap := saveJSON(t, opts, db, "--label", "run-22024", sans2dFile)
	assert.Equal(t, "00000000-0000-7000-8000-000000000001", snap.ID)
	assert.Equal(t, int64(1), snap.Seq)
	assert.Equal(t, "run-22024", snap.Label)
	assert.Len(t, snap.Hash, 64)

	t.Run("show_by_hash", func(t *testing.T) {
		out, _, err := execute(t, opts, "show", "--db", db, snap.Hash)
		require.NoError(t, err)
		assert.Contains(t, out, "revision:   "+snap.ID+"\n")
		assert.Contains(t, out, "instrument: ISIS/SANS2D\n")
		assert.Contains(t, out, "label:      run-22024\n")
		golden := goldenFixture(t, "bag_nested")
		assert.Contains(t, out, "\n\n"+golden+"\n")
	})

	t.Run("show_by_revision_json", func(t *testing.T) {
		out, _, err := execute(t, opts, "--format", "json", "show", "--db", db, "--flat", snap.ID)
		require.NoError(t, err)
		var resp struct {
			Data struct {
				Snapshot store.Snapshot  `json:"snapshot"`
				Config   json.RawMessage `json:"config"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, snap, resp.Data.Snapshot)
		assert.JSONEq(t, goldenFixture(t, "bag_flat"), string(resp.Data.Config))
	})

	t.Run("list", func(t *testing.T) {
		out, _, err := execute(t, opts, "list", "--db", db)
		require.NoError(t, err)
		assert.Contains(t, out, "SEQ")
		assert.Contains(t, out, "run-22024")
		assert.Contains(t, out, snap.Hash[:12])
		assert.Contains(t, out, snap.ID)
	})
}

func TestSaveIsIdempotentPerLabel(t *testing.T) {
	db := filepath.Join(t.TempDir(), "configs.db")
	opts := snapshotOpts()

	first := saveJSON(t, opts, db, "--label", "a", sans2dFile)
	again := saveJSON(t, opts, db, "--label", "a", filepath.Join("..", "loader", "testdata", "sans2d.cue"))
	relabel := saveJSON(t, opts, db, "--label", "b", sans2dFile)

	assert.Equal(t, first, again)
	assert.Equal(t, first.Hash, relabel.Hash)
	assert.Equal(t, int64(2), relabel.Seq)

	out, _, err := execute(t, opts, "--format", "json", "list", "--db", db)
	require.NoError(t, err)
	var resp struct {
		Data []store.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, []string{"a", "b"}, []string{resp.Data[0].Label, resp.Data[1].Label})
}

func TestListFiltersByInstrument(t *testing.T) {
	db := filepath.Join(t.TempDir(), "configs.db")
	opts := snapshotOpts()
	saveJSON(t, opts, db, sans2dFile)
	saveJSON(t, opts, db, filepath.Join("..", "loader", "testdata", "loq"))

	out, _, err := execute(t, opts, "--format", "json", "list", "--db", db, "--instrument", "loq")
	require.NoError(t, err)
	var resp struct {
		Data []store.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "LOQ", string(resp.Data[0].Instrument))
	assert.Equal(t, int64(2), resp.Data[0].Seq)
}

func TestListEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "configs.db")

	out, _, err := execute(t, nil, "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "no snapshots\n", out)

	out, _, err = execute(t, nil, "--format", "json", "list", "--db", db)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":[]}`, out)
}

func TestSnapshotCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "configs.db")

	t.Run("show_unknown", func(t *testing.T) {
		out, _, err := execute(t, nil, "show", "--db", db, "deadbeef")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
	})

	t.Run("list_unknown_instrument", func(t *testing.T) {
		out, _, err := execute(t, nil, "list", "--db", db, "--instrument", "D22")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, `unknown instrument "D22"`)
	})

	t.Run("save_invalid_config", func(t *testing.T) {
		path := writeConfig(t, "invalid.yaml", invalidConfig)
		_, _, err := execute(t, nil, "save", "--db", db, path)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		out, _, err := execute(t, nil, "--format", "json", "list", "--db", db)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ok","data":[]}`, out)
	})

	t.Run("unopenable_database", func(t *testing.T) {
		out, _, err := execute(t, nil, "list", "--db", filepath.Join(t.TempDir(), "missing", "dir", "configs.db"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error ["+ErrCodeStore+"]")
	})

	t.Run("db_flag_required", func(t *testing.T) {
		_, _, err := execute(t, nil, "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
	})
}
