// Package messaging delivers answers over a size-limited outbound channel.
package messaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/metrics"
)

const (
	continuationPrefix = "..."
	truncationSuffix   = "... [continued]"
)

// Sender submits one outbound message and returns once the channel has
// acknowledged it. Chunker relies on that acknowledgment for ordering;
// implementations must not return before the submission is accepted.
type Sender interface {
	Send(ctx context.Context, recipient, body string) error
}

// Chunker splits oversized answers into ordered, size-bounded segments.
type Chunker struct {
	sender Sender
	// limit is the maximum core text per segment, marker overhead excluded.
	limit  int
	logger *zap.Logger
}

// NewChunker constructs a Chunker with the given segment limit.
func NewChunker(sender Sender, limit int, logger *zap.Logger) *Chunker {
	return &Chunker{
		sender: sender,
		limit:  limit,
		logger: logger,
	}
}

// Deliver sends the answer to the recipient as sequential segments. Each
// segment after the first carries a continuation prefix; each segment that
// was cut carries a truncation suffix. Segments cover the answer exactly
// once, left to right; stripping markers and concatenating reconstructs it.
//
// Sends are strictly sequential: each segment is submitted only after the
// previous send returned, because the channel may reorder concurrent
// submissions. On a send failure the remaining segments are abandoned and
// the partial-delivery condition is surfaced; re-sending could duplicate
// already-delivered segments.
func (c *Chunker) Deliver(ctx context.Context, answer, recipient string) error {
	remaining := answer
	sent := 0
	for len(remaining) > c.limit {
		body := remaining[:c.limit] + truncationSuffix
		if sent > 0 {
			body = continuationPrefix + body
		}
		if err := c.sender.Send(ctx, recipient, body); err != nil {
			return fmt.Errorf("send segment %d (aborting %d remaining chars): %w",
				sent+1, len(remaining), err)
		}
		remaining = remaining[c.limit:]
		sent++
		metrics.ObserveSegmentSent()
		c.logger.Debug("sent segment",
			zap.Int("index", sent),
			zap.Int("remaining_chars", len(remaining)),
		)
	}

	body := remaining
	if sent > 0 {
		body = continuationPrefix + body
	}
	if err := c.sender.Send(ctx, recipient, body); err != nil {
		return fmt.Errorf("send final segment %d: %w", sent+1, err)
	}
	metrics.ObserveSegmentSent()
	c.logger.Info("delivery complete",
		zap.Int("segments", sent+1),
		zap.Int("chars", len(answer)),
	)
	return nil
}
