package answer

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestOpenAIBackendIsTransient(t *testing.T) {
	t.Parallel()

	b := &OpenAIBackend{}

	require.True(t, b.IsTransient(&openai.APIError{HTTPStatusCode: 429}), "rate limit")
	require.True(t, b.IsTransient(&openai.APIError{HTTPStatusCode: 529}), "overloaded")
	require.True(t, b.IsTransient(fmt.Errorf("wrapped: %w", &openai.APIError{HTTPStatusCode: 500})))
	require.True(t, b.IsTransient(&openai.RequestError{HTTPStatusCode: 503}))

	require.False(t, b.IsTransient(&openai.APIError{HTTPStatusCode: 401}), "auth is a defect")
	require.False(t, b.IsTransient(&openai.APIError{HTTPStatusCode: 400}), "malformed request is a defect")
	require.False(t, b.IsTransient(errors.New("connection refused")))
}
