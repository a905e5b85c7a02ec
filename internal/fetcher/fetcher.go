// Package fetcher loads URLs in a rendering browser and extracts page text.
package fetcher

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors classifying unfetchable pages. Both are recoverable: the
// crawl skips the page and continues.
var (
	// ErrSkippedResource marks URLs whose extension identifies a binary or
	// media resource that text extraction does not handle. No network fetch
	// is attempted.
	ErrSkippedResource = errors.New("skipped non-text resource")

	// ErrContentUnavailable marks pages whose content region never became
	// present within the readiness window.
	ErrContentUnavailable = errors.New("content region unavailable")
)

// Page is the extracted content of one successfully rendered URL.
// URL is the resolved location after redirects, fragment stripped.
type Page struct {
	URL   string
	Title string
	Text  string
	Links []string
}

// Fetcher renders a URL and extracts its content region.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

var skippedExtensions = []string{".pdf", ".mp4", ".mp3"}

// SkippableResource reports whether the URL names a resource type that is
// never fetched. The check is case-insensitive on the final path extension.
func SkippableResource(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
