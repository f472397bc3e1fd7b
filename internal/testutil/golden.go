package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sansstate/internal/bag"
)

// AssertGolden compares the canonical JSON of v with
// testdata/golden/{name}.golden in the calling package.
//
// To regenerate golden files, run:
//
//	go test ./internal/... -update
func AssertGolden(t *testing.T, name string, v bag.Value) {
	t.Helper()

	data, err := bag.MarshalCanonical(v)
	require.NoError(t, err, "canonical encoding of %s", name)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
