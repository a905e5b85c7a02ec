package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/app"
	"github.com/campusqa/campusqa/internal/crawler"
	"github.com/campusqa/campusqa/internal/fetcher"
	"github.com/campusqa/campusqa/internal/index"
)

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the configured site and rebuild the index",
		Long: `Walks the configured seed pages breadth-first with a headless browser,
collects rendered page text, writes a local snapshot, and replaces the
vector store collection with the fresh content.`,
		RunE: runCrawl,
	}
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	browser, err := fetcher.NewBrowser(fetcher.Config{
		ContentSelector:   cfg.Crawl.ContentSelector,
		ContentTimeout:    cfg.Crawl.ContentTimeout(),
		NavigationTimeout: cfg.Crawl.NavTimeout(),
		UserAgent:         cfg.Crawl.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("init browser: %w", err)
	}
	defer browser.Close()

	pages, err := crawler.New(browser, crawler.Config{
		Seeds:    cfg.Crawl.Seeds,
		Scope:    cfg.Crawl.Scope,
		MaxPages: cfg.Crawl.MaxPages,
	}, logger).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}
	logger.Info("crawl finished", zap.Int("pages", len(pages)))

	if path := cfg.Crawl.SnapshotPath; path != "" {
		if err := crawler.WriteSnapshot(path, pages); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written", zap.String("path", path))
	}

	store, err := app.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	if err := index.New(store, cfg.Store.MaxEmbedLen, logger).Reindex(ctx, pages); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	logger.Info("index rebuilt", zap.Int("documents", len(pages)))
	return nil
}
