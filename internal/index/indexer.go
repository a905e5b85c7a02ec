// Package index rebuilds the document store from crawl output.
package index

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/docstore"
	"github.com/campusqa/campusqa/internal/fetcher"
)

// Indexer repopulates the document store from a crawl result.
type Indexer struct {
	store       docstore.Store
	maxEmbedLen int
	logger      *zap.Logger
}

// New constructs an Indexer. maxEmbedLen caps document text length before
// embedding.
func New(store docstore.Store, maxEmbedLen int, logger *zap.Logger) *Indexer {
	return &Indexer{
		store:       store,
		maxEmbedLen: maxEmbedLen,
		logger:      logger,
	}
}

// Reindex is a full replace: it clears the store, then inserts one document
// per page with ids counting up from the store's post-clear count plus one.
// Stale URLs absent from the latest crawl disappear with the clear. Callers
// must not serve retrieval queries while a reindex is in flight.
func (ix *Indexer) Reindex(ctx context.Context, pages map[string]fetcher.Page) error {
	if err := ix.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}

	count, err := ix.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("read store count: %w", err)
	}

	urls := make([]string, 0, len(pages))
	for url := range pages {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	docs := make([]docstore.Document, 0, len(pages))
	for i, url := range urls {
		text := docstore.TruncateForEmbedding(pages[url].Text, ix.maxEmbedLen)
		docs = append(docs, docstore.Document{
			ID:       strconv.Itoa(count + i + 1),
			Text:     text,
			Metadata: map[string]string{"url": url},
		})
	}

	if err := ix.store.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}

	ix.logger.Info("reindex complete", zap.Int("documents", len(docs)))
	return nil
}
