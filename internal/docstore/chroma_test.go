package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i])), 0.5}
	}
	return vectors, nil
}

// fakeChromaServer emulates the subset of the REST API the client uses.
type fakeChromaServer struct {
	ids       []string
	documents []string
}

func (s *fakeChromaServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Name)
		writeJSON(t, w, map[string]string{"id": "col-1"})
	})
	mux.HandleFunc("POST /api/v1/collections/col-1/add", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs        []string    `json:"ids"`
			Documents  []string    `json:"documents"`
			Embeddings [][]float32 `json:"embeddings"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Embeddings, len(req.IDs))
		s.ids = append(s.ids, req.IDs...)
		s.documents = append(s.documents, req.Documents...)
		writeJSON(t, w, true)
	})
	mux.HandleFunc("POST /api/v1/collections/col-1/get", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"ids": s.ids})
	})
	mux.HandleFunc("POST /api/v1/collections/col-1/delete", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		s.ids = nil
		s.documents = nil
		writeJSON(t, w, req.IDs)
	})
	mux.HandleFunc("POST /api/v1/collections/col-1/query", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			NResults int `json:"n_results"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		n := min(req.NResults, len(s.documents))
		writeJSON(t, w, map[string]any{"documents": [][]string{s.documents[:n]}})
	})
	mux.HandleFunc("GET /api/v1/collections/col-1/count", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, len(s.ids))
	})
	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func newTestStore(t *testing.T) (*Chroma, *fakeChromaServer) {
	t.Helper()
	fake := &fakeChromaServer{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	store, err := NewChroma(context.Background(), ChromaConfig{
		BaseURL:    srv.URL,
		Collection: "campus-docs",
	}, fakeEmbedder{})
	require.NoError(t, err)
	return store, fake
}

func TestChromaUpsertAndCount(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "1", Text: "page one", Metadata: map[string]string{"url": "https://example.edu/1"}},
		{ID: "2", Text: "page two", Metadata: map[string]string{"url": "https://example.edu/2"}},
	}
	require.NoError(t, store.Upsert(ctx, docs))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestChromaQueryRankedOrder(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	var docs []Document
	for i := 1; i <= 5; i++ {
		docs = append(docs, Document{ID: fmt.Sprint(i), Text: fmt.Sprintf("doc %d", i)})
	}
	require.NoError(t, store.Upsert(ctx, docs))

	got, err := store.Query(ctx, "anything", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"doc 1", "doc 2", "doc 3"}, got, "server rank order preserved")
}

func TestChromaQueryEmptyStore(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	got, err := store.Query(context.Background(), "anything", 20)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestChromaDeleteAll(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []Document{{ID: "1", Text: "x"}}))
	require.NoError(t, store.DeleteAll(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	// Deleting an empty collection is a no-op.
	require.NoError(t, store.DeleteAll(ctx))
}
