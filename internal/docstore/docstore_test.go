package docstore

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncateForEmbedding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"under cap", "short", 10, "short"},
		{"at cap", "exact", 5, "exact"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"cut inside two-byte rune", "abé", 3, "ab"},
		{"cut at rune boundary", "abé", 4, "abé"},
		{"cut inside four-byte rune", "a\U0001F600", 3, "a"},
		{"zero cap", "abc", 0, ""},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateForEmbedding(tt.text, tt.max)
			require.Equal(t, tt.want, got)
			require.True(t, utf8.ValidString(got))
			require.LessOrEqual(t, len(got), tt.max)
		})
	}
}

func TestTruncateForEmbeddingLongMultibyte(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("ü", 100) // 200 bytes
	got := TruncateForEmbedding(text, 101)
	require.Equal(t, 100, len(got), "odd cap backs off to the rune boundary")
	require.True(t, utf8.ValidString(got))
}
