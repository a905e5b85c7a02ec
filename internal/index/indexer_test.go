package index

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/docstore"
	"github.com/campusqa/campusqa/internal/fetcher"
)

// memStore is an in-memory Store recording operations.
type memStore struct {
	docs       []docstore.Document
	deleteAlls int
}

func (m *memStore) Upsert(_ context.Context, docs []docstore.Document) error {
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *memStore) DeleteAll(context.Context) error {
	m.docs = nil
	m.deleteAlls++
	return nil
}

func (m *memStore) Query(_ context.Context, _ string, k int) ([]string, error) {
	var texts []string
	for _, d := range m.docs {
		if len(texts) == k {
			break
		}
		texts = append(texts, d.Text)
	}
	return texts, nil
}

func (m *memStore) Count(context.Context) (int, error) {
	return len(m.docs), nil
}

func (m *memStore) byURL() map[string]string {
	out := make(map[string]string, len(m.docs))
	for _, d := range m.docs {
		out[d.Metadata["url"]] = d.Text
	}
	return out
}

func pagesFixture() map[string]fetcher.Page {
	return map[string]fetcher.Page{
		"https://example.edu/a": {URL: "https://example.edu/a", Text: "A\n\nalpha"},
		"https://example.edu/b": {URL: "https://example.edu/b", Text: "B\n\nbeta"},
	}
}

func TestReindexFullReplace(t *testing.T) {
	t.Parallel()

	store := &memStore{docs: []docstore.Document{
		{ID: "1", Text: "stale", Metadata: map[string]string{"url": "https://example.edu/gone"}},
	}}
	ix := New(store, 30000, zap.NewNop())

	require.NoError(t, ix.Reindex(context.Background(), pagesFixture()))

	require.Equal(t, 1, store.deleteAlls)
	require.Len(t, store.docs, 2)
	require.NotContains(t, store.byURL(), "https://example.edu/gone", "stale URLs removed")
	require.Equal(t, "1", store.docs[0].ID)
	require.Equal(t, "2", store.docs[1].ID)
}

func TestReindexTruncatesToEmbedCap(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	ix := New(store, 10, zap.NewNop())

	pages := map[string]fetcher.Page{
		"https://example.edu/long": {Text: strings.Repeat("x", 100)},
	}
	require.NoError(t, ix.Reindex(context.Background(), pages))
	require.Len(t, store.docs[0].Text, 10)
}

func TestReindexTruncationKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	ix := New(store, 9, zap.NewNop())

	pages := map[string]fetcher.Page{
		"https://example.edu/umlaut": {Text: strings.Repeat("ü", 10)},
	}
	require.NoError(t, ix.Reindex(context.Background(), pages))
	require.Equal(t, strings.Repeat("ü", 4), store.docs[0].Text, "cap inside a rune backs off")
	require.True(t, utf8.ValidString(store.docs[0].Text))
}

func TestReindexIdempotent(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	ix := New(store, 30000, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, ix.Reindex(ctx, pagesFixture()))
	first := store.byURL()
	require.NoError(t, ix.Reindex(ctx, pagesFixture()))
	second := store.byURL()

	require.Equal(t, first, second, "content-by-url identical across rebuilds")
	require.Len(t, store.docs, 2)
}

func TestReindexEmptyCrawl(t *testing.T) {
	t.Parallel()

	store := &memStore{docs: []docstore.Document{{ID: "1", Text: "old"}}}
	ix := New(store, 30000, zap.NewNop())

	require.NoError(t, ix.Reindex(context.Background(), nil))
	require.Empty(t, store.docs)
}
