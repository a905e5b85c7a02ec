package frontier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		base string
		want string
		ok   bool
	}{
		{
			name: "strips fragment",
			raw:  "https://ches.example.edu/programs/index.html#section-2",
			want: "https://ches.example.edu/programs/index.html",
			ok:   true,
		},
		{
			name: "resolves relative against base",
			raw:  "../admissions/apply.html",
			base: "https://ches.example.edu/programs/index.html",
			want: "https://ches.example.edu/admissions/apply.html",
			ok:   true,
		},
		{
			name: "lowercases scheme and host",
			raw:  "HTTPS://Example.EDU/About",
			want: "https://example.edu/About",
			ok:   true,
		},
		{
			name: "rejects mailto",
			raw:  "mailto:registrar@example.edu",
			ok:   false,
		},
		{
			name: "rejects javascript",
			raw:  "javascript:void(0)",
			ok:   false,
		},
		{
			name: "rejects malformed",
			raw:  "http://exa mple.edu/%zz",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw, tc.base)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFrontierEnqueueIsIdempotent(t *testing.T) {
	t.Parallel()

	f := New("//ches.example.edu")
	require.True(t, f.Enqueue("https://ches.example.edu/a.html"))
	require.False(t, f.Enqueue("https://ches.example.edu/a.html"), "second enqueue must be a no-op")
	require.Equal(t, 1, f.Len())
}

func TestFrontierScopeFilter(t *testing.T) {
	t.Parallel()

	f := New("/programs/")
	require.True(t, f.Enqueue("https://example.edu/programs/index.html"))
	require.False(t, f.Enqueue("https://example.edu/athletics/index.html"))
	require.Equal(t, 1, f.Len())
}

func TestFrontierVisitedNotRequeued(t *testing.T) {
	t.Parallel()

	f := New("example.edu")
	f.MarkVisited("https://example.edu/a.html")
	require.False(t, f.Enqueue("https://example.edu/a.html"))
	require.True(t, f.Visited("https://example.edu/a.html"))
	require.Equal(t, 0, f.Len())
}

func TestFrontierFIFOOrder(t *testing.T) {
	t.Parallel()

	f := New("example.edu")
	urls := []string{
		"https://example.edu/1",
		"https://example.edu/2",
		"https://example.edu/3",
	}
	for _, u := range urls {
		require.True(t, f.Enqueue(u))
	}
	for _, want := range urls {
		got, ok := f.Pop()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := f.Pop()
	require.False(t, ok)
}
