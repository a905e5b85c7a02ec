// Package crawler drives the breadth-first crawl over the URL frontier.
package crawler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/fetcher"
	"github.com/campusqa/campusqa/internal/frontier"
	"github.com/campusqa/campusqa/internal/metrics"
)

// Config controls a crawl run.
type Config struct {
	// Seeds are the starting URLs.
	Seeds []string
	// Scope is the substring filter restricting which discovered links are
	// eligible for crawling.
	Scope string
	// MaxPages caps stored pages; zero means unbounded. The in-scope graph
	// bounds termination either way.
	MaxPages int
}

// Crawler walks the in-scope link graph breadth-first, one fetch in flight.
// Dedup and traversal order depend on processing the frontier sequentially.
type Crawler struct {
	fetch  fetcher.Fetcher
	cfg    Config
	logger *zap.Logger
}

// New constructs a Crawler.
func New(fetch fetcher.Fetcher, cfg Config, logger *zap.Logger) *Crawler {
	return &Crawler{
		fetch:  fetch,
		cfg:    cfg,
		logger: logger,
	}
}

// Run crawls from the seeds until the frontier empties and returns the
// resolved-URL to Page map. Individual fetch failures are logged and
// skipped; only context cancellation aborts the crawl.
func (c *Crawler) Run(ctx context.Context) (map[string]fetcher.Page, error) {
	front := frontier.New(c.cfg.Scope)
	for _, seed := range c.cfg.Seeds {
		canonical, err := frontier.Normalize(seed, "")
		if err != nil {
			return nil, fmt.Errorf("normalize seed %q: %w", seed, err)
		}
		front.Enqueue(canonical)
	}

	pages := make(map[string]fetcher.Page)

	for {
		if err := ctx.Err(); err != nil {
			return pages, fmt.Errorf("crawl canceled: %w", err)
		}
		url, ok := front.Pop()
		if !ok {
			break
		}
		if c.cfg.MaxPages > 0 && len(pages) >= c.cfg.MaxPages {
			break
		}

		c.logger.Info("fetching", zap.String("url", url))

		page, err := c.fetch.Fetch(ctx, url)
		switch {
		case errors.Is(err, fetcher.ErrSkippedResource):
			c.logger.Info("skipping non-text resource", zap.String("url", url))
			metrics.ObserveCrawlPage("skipped")
			continue
		case errors.Is(err, fetcher.ErrContentUnavailable):
			c.logger.Warn("content region never appeared", zap.String("url", url))
			metrics.ObserveCrawlPage("failed")
			continue
		case err != nil:
			c.logger.Warn("fetch failed", zap.String("url", url), zap.Error(err))
			metrics.ObserveCrawlPage("failed")
			continue
		}

		// Redirects dedup on the resolved URL, not the requested one.
		if _, seen := pages[page.URL]; seen {
			c.logger.Debug("already stored", zap.String("url", page.URL))
			metrics.ObserveCrawlPage("duplicate")
			continue
		}
		pages[page.URL] = page
		metrics.ObserveCrawlPage("stored")
		front.MarkVisited(page.URL)
		front.MarkVisited(url)

		c.logger.Info("stored page",
			zap.String("url", page.URL),
			zap.String("title", page.Title),
			zap.Int("chars", len(page.Text)),
		)

		for _, link := range page.Links {
			canonical, err := frontier.Normalize(link, page.URL)
			if err != nil {
				continue
			}
			if front.Enqueue(canonical) {
				c.logger.Debug("queued link", zap.String("url", canonical))
			}
		}
	}

	c.logger.Info("crawl finished", zap.Int("pages", len(pages)))
	return pages, nil
}
