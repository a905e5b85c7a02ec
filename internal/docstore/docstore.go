// Package docstore abstracts the external vector-similarity document store.
package docstore

import (
	"context"
	"unicode/utf8"
)

// Document is one indexed text unit. IDs are assigned by the indexer as a
// strictly increasing counter, unique within one index generation.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Store is the boundary to the external vector index. Embedding and
// nearest-neighbor search happen behind this interface; this service only
// supplies length-capped text.
type Store interface {
	// Upsert inserts documents with their metadata.
	Upsert(ctx context.Context, docs []Document) error
	// DeleteAll removes every document in the collection.
	DeleteAll(ctx context.Context) error
	// Query returns up to k document texts ranked most-similar-first.
	// An empty result is valid, not an error.
	Query(ctx context.Context, text string, k int) ([]string, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// TruncateForEmbedding caps text at max bytes without splitting a rune.
// A cut that would land inside a multi-byte sequence backs off to the
// preceding rune boundary so the embedding service never sees invalid UTF-8.
func TruncateForEmbedding(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
