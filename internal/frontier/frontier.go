// Package frontier maintains the crawl queue and visited set.
package frontier

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize resolves raw against base and strips the fragment, returning the
// canonical form used for scheduling and dedup. Base may be empty for
// absolute URLs.
func Normalize(raw, base string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if base != "" {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parse base url: %w", err)
		}
		u = b.ResolveReference(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// InScope reports whether the canonical URL passes the substring scope filter.
func InScope(canonical, scope string) bool {
	return strings.Contains(canonical, scope)
}

// Frontier is a FIFO crawl queue with set-membership dedup. URLs are
// scheduled at most once: enqueueing an already-queued or already-visited
// URL is a no-op. Not safe for concurrent use; the crawl loop is single
// threaded by design.
type Frontier struct {
	scope   string
	queue   []string
	seen    map[string]struct{}
	visited map[string]struct{}
}

// New returns an empty Frontier restricted to URLs containing scope.
func New(scope string) *Frontier {
	return &Frontier{
		scope:   scope,
		seen:    make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
}

// Enqueue schedules the canonical URL if it is in scope and not already
// queued or visited. It reports whether the URL was accepted.
func (f *Frontier) Enqueue(canonical string) bool {
	if !InScope(canonical, f.scope) {
		return false
	}
	if _, ok := f.seen[canonical]; ok {
		return false
	}
	f.seen[canonical] = struct{}{}
	f.queue = append(f.queue, canonical)
	return true
}

// Pop removes and returns the front of the queue.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	return u, true
}

// MarkVisited records that content for the canonical URL has been stored.
// Resolved URLs can differ from requested URLs after redirects, so callers
// mark the resolved form in addition to the requested one.
func (f *Frontier) MarkVisited(canonical string) {
	f.visited[canonical] = struct{}{}
	f.seen[canonical] = struct{}{}
}

// Visited reports whether content for the canonical URL was already stored.
func (f *Frontier) Visited(canonical string) bool {
	_, ok := f.visited[canonical]
	return ok
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	return len(f.queue)
}
