package txcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := New()

	code, err := g.Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(code, Prefix))
	assert.LessOrEqual(t, len(code), 20)
	assert.Len(t, code, len(Prefix)+codeLength)

	for _, r := range strings.TrimPrefix(code, Prefix) {
		assert.Contains(t, codeAlphabet, string(r))
	}
}

func TestGenerateNoRepeats(t *testing.T) {
	g := New()

	seen := make(map[string]struct{})
	for range 1000 {
		code, err := g.Generate()
		require.NoError(t, err)

		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
	}
}
