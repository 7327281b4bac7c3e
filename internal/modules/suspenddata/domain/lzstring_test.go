package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZStringRoundTrip(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"a",
		"hello hello hello hello",
		`{"v":1,"d":[{"n":"Resume","v":"0_6"}],"resume":"0_6"}`,
		"résumé ✓ 🙂 mixed unicode",
		strings.Repeat("abcabcabd", 200),
	}
	for _, in := range inputs {
		packed := CompressToBase64(in)
		assert.Zero(t, len(packed)%4, "base64 output must be padded: %q", packed)
		out, ok := DecompressFromBase64(packed)
		require.True(t, ok, "decompress %q", in)
		assert.Equal(t, in, out)
	}
}

func TestLZStringEmptyStream(t *testing.T) {
	t.Parallel()
	out, ok := DecompressFromBase64(CompressToBase64(""))
	require.True(t, ok)
	assert.Empty(t, out)

	_, ok = DecompressFromBase64("")
	assert.False(t, ok)
}

func TestLZStringRejectsBrokenStreams(t *testing.T) {
	t.Parallel()
	_, ok := DecompressFromBase64("!!!!!!!!")
	assert.False(t, ok)

	original := strings.Repeat("storyline suspend data ", 20)
	packed := CompressToBase64(original)
	out, ok := DecompressFromBase64(packed[:len(packed)/3])
	assert.False(t, ok && out == original)
}
