package answer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/metrics"
)

// ErrExhaustedRetries is the terminal error returned after the transient
// retry budget runs out. Callers surface TerminalUserMessage instead of the
// raw provider error.
var ErrExhaustedRetries = errors.New("completion retries exhausted")

// TerminalUserMessage is the user-facing text shown when the completion
// service stays unavailable through every retry.
const TerminalUserMessage = "Oops! Something went wrong while answering your question. " +
	"It's not your fault - please try again in a few minutes. " +
	"If the problem persists, contact support."

// Backend performs a single completion invocation. Implementations report
// whether a failure is transient via IsTransient.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
	// IsTransient classifies an error from Complete. Transient errors
	// (rate limit, overload) are retried; everything else propagates.
	IsTransient(err error) bool
}

// RetryPolicy bounds transient-failure retries.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls, first attempt included.
	MaxAttempts int
	// Delay is the fixed inter-attempt wait.
	Delay time.Duration
	// Jitter adds up to half of Delay of random extra wait per attempt.
	Jitter bool
}

// Backoff returns the wait before the next attempt.
func (p RetryPolicy) Backoff() time.Duration {
	if !p.Jitter {
		return p.Delay
	}
	return p.Delay + randomJitter(p.Delay/2)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

// CompletionClient invokes the completion backend with bounded retries.
type CompletionClient struct {
	backend Backend
	policy  RetryPolicy
	logger  *zap.Logger
}

// NewCompletionClient constructs a CompletionClient.
func NewCompletionClient(backend Backend, policy RetryPolicy, logger *zap.Logger) *CompletionClient {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &CompletionClient{
		backend: backend,
		policy:  policy,
		logger:  logger,
	}
}

// Complete invokes the backend, retrying transient failures up to the
// policy's attempt cap with the policy's delay. Non-transient errors
// propagate immediately: they indicate a defect, not load.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		text, err := c.backend.Complete(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		if !c.backend.IsTransient(err) {
			return "", fmt.Errorf("completion failed: %w", err)
		}
		lastErr = err
		metrics.ObserveCompletionRetry()
		c.logger.Warn("transient completion failure",
			zap.Int("attempt", attempt),
			zap.Int("remaining", c.policy.MaxAttempts-attempt),
			zap.Error(err),
		)
		if attempt == c.policy.MaxAttempts {
			break
		}
		if err := sleep(ctx, c.policy.Backoff()); err != nil {
			return "", fmt.Errorf("completion wait: %w", err)
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrExhaustedRetries, c.policy.MaxAttempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
