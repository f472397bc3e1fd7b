package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/pipeline"
	"github.com/roach88/sansstate/internal/state"
	"github.com/roach88/sansstate/internal/testutil"
)

func fixtureConfig(t *testing.T, inst instrument.Instrument) *pipeline.Config {
	t.Helper()
	cfg, err := pipeline.New(inst.Facility(), inst)
	require.NoError(t, err)
	for _, s := range testutil.States(inst) {
		require.NoError(t, cfg.Put(s))
	}
	return cfg
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithRevisionIDs(testutil.NewRevisionIDs().Next))
	cfg := fixtureConfig(t, instrument.SANS2D)

	snap, err := s.Save(ctx, cfg, "run 22024")
	require.NoError(t, err)
	want, err := cfg.Hash()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{
		ID:         "00000000-0000-7000-8000-000000000001",
		Hash:       want,
		Facility:   instrument.ISIS,
		Instrument: instrument.SANS2D,
		Label:      "run 22024",
		Seq:        1,
	}, snap)

	for _, ref := range []string{snap.Hash, snap.ID} {
		loaded, got, err := s.Load(ctx, ref)
		require.NoError(t, err, ref)
		assert.Equal(t, snap, got)
		assert.True(t, bag.Equal(cfg.ToBag(), loaded.ToBag()))
		assert.NoError(t, loaded.Validate())
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	cfg := fixtureConfig(t, instrument.LOQ)

	first, err := s.Save(ctx, cfg, "")
	require.NoError(t, err)
	again, err := s.Save(ctx, cfg.Clone(), "")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	relabelled, err := s.Save(ctx, cfg, "calibrated")
	require.NoError(t, err)
	assert.Equal(t, first.Hash, relabelled.Hash)
	assert.NotEqual(t, first.ID, relabelled.ID)
	assert.Equal(t, int64(2), relabelled.Seq)

	var configs int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM configs").Scan(&configs))
	assert.Equal(t, 1, configs)
}

func withScale(t *testing.T, cfg *pipeline.Config, factor float64) *pipeline.Config {
	t.Helper()
	b := testutil.StateBags(cfg.Instrument())[state.ConcernScale]
	b[state.ScaleFactor] = bag.Float(factor)
	sc, err := state.DecodeScale(cfg.Instrument(), b)
	require.NoError(t, err)
	out := cfg.Clone()
	require.NoError(t, out.Put(sc))
	return out
}

func TestListOrdersBySeq(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, WithRevisionIDs(testutil.NewRevisionIDs().Next))

	for _, cfg := range []*pipeline.Config{
		withScale(t, fixtureConfig(t, instrument.ZOOM), 0.5),
		fixtureConfig(t, instrument.LOQ),
		withScale(t, fixtureConfig(t, instrument.ZOOM), 1.5),
	} {
		_, err := s.Save(ctx, cfg, "")
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, snap := range all {
		assert.Equal(t, int64(i+1), snap.Seq)
	}
	assert.Equal(t, instrument.LOQ, all[1].Instrument)

	zoom, err := s.List(ctx, instrument.ZOOM)
	require.NoError(t, err)
	require.Len(t, zoom, 2)
	assert.NotEqual(t, zoom[0].Hash, zoom[1].Hash)

	none, err := s.List(ctx, instrument.LARMOR)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLoadNotFound(t *testing.T) {
	_, _, err := openTestStore(t).Load(context.Background(), "feedface")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorContains(t, err, `"feedface"`)
}

func TestLoadDetectsTamperedBody(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap, err := s.Save(ctx, fixtureConfig(t, instrument.LARMOR), "")
	require.NoError(t, err)

	other, err := fixtureConfig(t, instrument.ZOOM).MarshalJSON()
	require.NoError(t, err)
	_, err = s.db.Exec("UPDATE configs SET body = ? WHERE hash = ?", string(other), snap.Hash)
	require.NoError(t, err)

	_, _, err = s.Load(ctx, snap.Hash)
	var ie *IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, snap.Hash, ie.Hash)
}

func TestSaveDefaultIDsAreVersion7(t *testing.T) {
	snap, err := openTestStore(t).Save(context.Background(), fixtureConfig(t, instrument.ZOOM), "")
	require.NoError(t, err)
	assert.Len(t, snap.ID, 36)
	assert.Equal(t, byte('7'), snap.ID[14])
}
