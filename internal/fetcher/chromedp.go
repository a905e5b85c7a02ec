package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/campusqa/campusqa/internal/frontier"
)

// Config controls the behavior of the browser fetcher.
type Config struct {
	// ContentSelector is the CSS selector of the page region holding the
	// main content, e.g. ".main-content".
	ContentSelector string
	// ContentTimeout bounds the wait for the content region to appear.
	ContentTimeout time.Duration
	// NavigationTimeout bounds the whole navigation including rendering.
	NavigationTimeout time.Duration
	UserAgent         string
}

// Browser implements Fetcher using chromedp and headless Chrome.
type Browser struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewBrowser creates a browser fetcher backed by chromedp.
func NewBrowser(cfg Config) (*Browser, error) {
	if cfg.ContentSelector == "" {
		return nil, fmt.Errorf("content selector must be set")
	}
	if cfg.ContentTimeout <= 0 {
		cfg.ContentTimeout = 15 * time.Second
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close cancels the allocator context, shutting down the browser.
func (b *Browser) Close() {
	b.allocCancel()
}

// Fetch navigates to the URL, waits for the content region, and extracts
// title, region text, and outbound anchor targets. The returned Page is
// keyed by the resolved post-redirect URL, not the requested one.
func (b *Browser) Fetch(ctx context.Context, url string) (Page, error) {
	if SkippableResource(url) {
		return Page{}, fmt.Errorf("%q: %w", url, ErrSkippedResource)
	}

	taskCtx, taskCancel := chromedp.NewContext(b.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, b.cfg.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var finalURL string
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.Location(&finalURL),
	); err != nil {
		return Page{}, fmt.Errorf("navigate %s: %w", url, err)
	}

	if err := b.awaitContent(taskCtx); err != nil {
		return Page{}, fmt.Errorf("%s: %w", url, ErrContentUnavailable)
	}

	var (
		title string
		text  string
		doc   string
	)
	if err := chromedp.Run(taskCtx,
		chromedp.Location(&finalURL),
		chromedp.Title(&title),
		chromedp.Text(b.cfg.ContentSelector, &text, chromedp.ByQuery),
		chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
	); err != nil {
		return Page{}, fmt.Errorf("extract %s: %w", url, err)
	}

	resolved, err := frontier.Normalize(finalURL, "")
	if err != nil {
		return Page{}, fmt.Errorf("normalize resolved url %q: %w", finalURL, err)
	}

	return Page{
		URL:   resolved,
		Title: title,
		Text:  title + "\n\n" + text,
		Links: ExtractLinks(doc),
	}, nil
}

func (b *Browser) awaitContent(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, b.cfg.ContentTimeout)
	defer cancel()
	return chromedp.Run(waitCtx,
		chromedp.WaitReady(b.cfg.ContentSelector, chromedp.ByQuery),
	)
}
