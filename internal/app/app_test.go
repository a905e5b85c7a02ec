package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/answer"
	"github.com/campusqa/campusqa/internal/docstore"
)

func TestExtractQuestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
		ok      bool
	}{
		{"keyword and question", "askbot when do classes start?", "when do classes start?", true},
		{"case-insensitive keyword", "AskBot when do classes start?", "when do classes start?", true},
		{"leading whitespace", "  askbot where is the office?", "where is the office?", true},
		{"keyword alone", "askbot", "", false},
		{"keyword with only spaces", "askbot   ", "", false},
		{"no separator space", "askbotwhere?", "", false},
		{"missing keyword", "when do classes start?", "", false},
		{"keyword mid-message", "hey askbot question", "", false},
		{"empty message", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractQuestion(tt.message, "askbot")
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

type emptyStore struct{}

func (emptyStore) Upsert(context.Context, []docstore.Document) error { return nil }
func (emptyStore) DeleteAll(context.Context) error                   { return nil }
func (emptyStore) Count(context.Context) (int, error)                { return 0, nil }
func (emptyStore) Query(context.Context, string, int) ([]string, error) {
	return nil, nil
}

type stubBackend struct {
	reply string
	err   error
}

func (b stubBackend) Complete(context.Context, string) (string, error) { return b.reply, b.err }
func (b stubBackend) IsTransient(error) bool                           { return false }

func testService(backend answer.Backend) *answer.Service {
	completion := answer.NewCompletionClient(backend, answer.RetryPolicy{MaxAttempts: 1}, zap.NewNop())
	return answer.NewService(
		answer.NewRetriever(emptyStore{}, 30000),
		completion,
		answer.ServiceConfig{TopK: 20, Instruction: "Answer from context.", Budget: 50000},
	)
}

func TestReplyForAnswers(t *testing.T) {
	t.Parallel()

	svc := testService(stubBackend{reply: "Orientation is in September."})
	reply, err := ReplyFor(context.Background(), svc, "askbot when is orientation?", "askbot")
	require.NoError(t, err)
	require.Equal(t, "Orientation is in September.", reply)
}

func TestReplyForUsageHint(t *testing.T) {
	t.Parallel()

	svc := testService(stubBackend{reply: "never asked"})
	reply, err := ReplyFor(context.Background(), svc, "hello there", "askbot")
	require.NoError(t, err)
	require.Contains(t, reply, "askbot")
	require.NotEqual(t, "never asked", reply)
}

func TestReplyForTerminalError(t *testing.T) {
	t.Parallel()

	svc := testService(stubBackend{err: fmt.Errorf("boom: %w", answer.ErrExhaustedRetries)})
	reply, err := ReplyFor(context.Background(), svc, "askbot anything?", "askbot")
	require.NoError(t, err)
	require.Equal(t, answer.TerminalUserMessage, reply)
}
