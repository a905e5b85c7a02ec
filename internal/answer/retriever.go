// Package answer composes retrieval, prompt assembly, and completion into
// the question-answering pipeline.
package answer

import (
	"context"
	"fmt"

	"github.com/campusqa/campusqa/internal/docstore"
)

// Retriever selects prior documents relevant to a question.
type Retriever struct {
	store       docstore.Store
	maxEmbedLen int
}

// NewRetriever constructs a Retriever. maxEmbedLen caps the query text sent
// to the embedding service.
func NewRetriever(store docstore.Store, maxEmbedLen int) *Retriever {
	return &Retriever{
		store:       store,
		maxEmbedLen: maxEmbedLen,
	}
}

// Retrieve returns up to k document texts ranked most-similar-first. The
// store's ranking is trusted as-is; no re-ranking. An empty result is valid.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]string, error) {
	question = docstore.TruncateForEmbedding(question, r.maxEmbedLen)
	docs, err := r.store.Query(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	return docs, nil
}
