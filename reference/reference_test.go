package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypairGenerator_Unique(t *testing.T) {
	gen := KeypairGenerator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := gen.Generate()
		require.NoError(t, err)
		assert.False(t, ref.IsZero())
		assert.False(t, seen[ref.String()], "reference repeated within a session")
		seen[ref.String()] = true
	}
}

func TestKeypairGenerator_Base58Roundtrip(t *testing.T) {
	gen := KeypairGenerator{}

	ref, err := gen.Generate()
	require.NoError(t, err)

	// References travel as base58 strings inside order descriptors.
	s := ref.String()
	assert.NotEmpty(t, s)
	assert.GreaterOrEqual(t, len(s), 32)
	assert.LessOrEqual(t, len(s), 44)
}
