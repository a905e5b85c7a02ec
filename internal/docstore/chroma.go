package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Embedder converts texts to vectors. The store embeds on write and query so
// the index only ever sees vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ChromaConfig locates the Chroma-compatible vector store server.
type ChromaConfig struct {
	BaseURL    string
	Collection string
	Timeout    time.Duration
}

// Chroma implements Store against a Chroma-style REST API.
type Chroma struct {
	cfg          ChromaConfig
	client       *http.Client
	embedder     Embedder
	collectionID string
}

// NewChroma connects to the server and resolves (creating if necessary) the
// configured collection.
func NewChroma(ctx context.Context, cfg ChromaConfig, embedder Embedder) (*Chroma, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("store base url must be set")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("store collection must be set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Chroma{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		embedder: embedder,
	}
	if err := c.resolveCollection(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chroma) resolveCollection(ctx context.Context) error {
	var resp struct {
		ID string `json:"id"`
	}
	err := c.post(ctx, "/api/v1/collections", map[string]any{
		"name":          c.cfg.Collection,
		"get_or_create": true,
	}, &resp)
	if err != nil {
		return fmt.Errorf("resolve collection %q: %w", c.cfg.Collection, err)
	}
	if resp.ID == "" {
		return fmt.Errorf("resolve collection %q: empty id in response", c.cfg.Collection)
	}
	c.collectionID = resp.ID
	return nil
}

// Upsert embeds the document texts and adds them to the collection.
func (c *Chroma) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	metadatas := make([]map[string]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		texts[i] = doc.Text
		metadatas[i] = doc.Metadata
	}
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	path := fmt.Sprintf("/api/v1/collections/%s/add", c.collectionID)
	err = c.post(ctx, path, map[string]any{
		"ids":        ids,
		"embeddings": vectors,
		"documents":  texts,
		"metadatas":  metadatas,
	}, nil)
	if err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// DeleteAll removes every document in the collection.
func (c *Chroma) DeleteAll(ctx context.Context) error {
	var got struct {
		IDs []string `json:"ids"`
	}
	getPath := fmt.Sprintf("/api/v1/collections/%s/get", c.collectionID)
	if err := c.post(ctx, getPath, map[string]any{"include": []string{}}, &got); err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(got.IDs) == 0 {
		return nil
	}
	delPath := fmt.Sprintf("/api/v1/collections/%s/delete", c.collectionID)
	if err := c.post(ctx, delPath, map[string]any{"ids": got.IDs}, nil); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// Query embeds the text and returns up to k document texts, ranked
// most-similar-first by the server.
func (c *Chroma) Query(ctx context.Context, text string, k int) ([]string, error) {
	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	var resp struct {
		Documents [][]string `json:"documents"`
	}
	path := fmt.Sprintf("/api/v1/collections/%s/query", c.collectionID)
	err = c.post(ctx, path, map[string]any{
		"query_embeddings": vectors,
		"n_results":        k,
		"include":          []string{"documents"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	if len(resp.Documents) == 0 {
		return nil, nil
	}
	return resp.Documents[0], nil
}

// Count returns the number of stored documents.
func (c *Chroma) Count(ctx context.Context) (int, error) {
	path := fmt.Sprintf("/api/v1/collections/%s/count", c.collectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("build count request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("count request: unexpected status %d", resp.StatusCode)
	}
	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return count, nil
}

func (c *Chroma) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, detail)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
