// Package app initializes and holds long-lived services, acting as the
// dependency injection container for the serve and crawl commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/answer"
	"github.com/campusqa/campusqa/internal/config"
	"github.com/campusqa/campusqa/internal/docstore"
	"github.com/campusqa/campusqa/internal/embedding"
	"github.com/campusqa/campusqa/internal/messaging"
	"github.com/campusqa/campusqa/internal/work"
)

// App holds the shared services behind the question-answering paths. The
// store handle is constructed once here and passed by reference into the
// indexer, retriever, and answer service; there is no hidden global.
type App struct {
	Logger     *zap.Logger
	Config     config.Config
	Store      docstore.Store
	Service    *answer.Service
	Chunker    *messaging.Chunker
	Dispatcher *work.Dispatcher
}

// NewStore connects the vector store with its embedding client. Used by
// both the crawl path (indexing) and the serve path (retrieval).
func NewStore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	embedder, err := embedding.New(embedding.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}
	store, err := docstore.NewChroma(ctx, docstore.ChromaConfig{
		BaseURL:    cfg.Store.BaseURL,
		Collection: cfg.Store.Collection,
	}, embedder)
	if err != nil {
		return nil, fmt.Errorf("init document store: %w", err)
	}
	return store, nil
}

// New builds the serving application: store, answer pipeline, outbound
// messaging, and the async dispatch pool. It fails fast if any collaborator
// cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := answer.NewOpenAIBackend(answer.OpenAIConfig{
		APIKey:     cfg.Completion.APIKey,
		BaseURL:    cfg.Completion.BaseURL,
		Model:      cfg.Completion.Model,
		MaxTokens:  cfg.Completion.MaxTokens,
		StopMarker: cfg.Completion.StopMarker,
	})
	if err != nil {
		return nil, fmt.Errorf("init completion backend: %w", err)
	}
	completion := answer.NewCompletionClient(backend, answer.RetryPolicy{
		MaxAttempts: cfg.Completion.MaxAttempts,
		Delay:       cfg.Completion.RetryDelay(),
		Jitter:      cfg.Completion.RetryJitter,
	}, logger)

	svc := answer.NewService(
		answer.NewRetriever(store, cfg.Store.MaxEmbedLen),
		completion,
		answer.ServiceConfig{
			TopK:        cfg.Retrieval.TopK,
			Instruction: cfg.Prompt.Instruction,
			Budget:      cfg.Prompt.Budget,
		},
	)

	sender, err := messaging.NewTwilioSender(messaging.TwilioConfig{
		AccountSID: cfg.Messaging.AccountSID,
		AuthToken:  cfg.Messaging.AuthToken,
		FromNumber: cfg.Messaging.FromNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("init message sender: %w", err)
	}
	chunker := messaging.NewChunker(sender, cfg.Messaging.SegmentLimit, logger)

	a := &App{
		Logger:  logger,
		Config:  cfg,
		Store:   store,
		Service: svc,
		Chunker: chunker,
	}
	a.Dispatcher = work.New(cfg.Worker.Count, cfg.Worker.QueueDepth, a.handleJob, logger)
	return a, nil
}

// handleJob answers one dispatched SMS question and delivers the reply in
// ordered segments. A terminal completion failure still sends the generic
// user-facing message; any other error propagates to the dispatcher's log.
func (a *App) handleJob(ctx context.Context, job work.Job) error {
	reply, err := ReplyFor(ctx, a.Service, job.Question, a.Config.Messaging.Keyword)
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}
	if err := a.Chunker.Deliver(ctx, reply, job.Recipient); err != nil {
		return fmt.Errorf("deliver reply: %w", err)
	}
	return nil
}

// ReplyFor computes the reply text for a raw inbound message. Messages must
// start with the keyword followed by the question; anything else gets a
// usage hint without invoking the pipeline.
func ReplyFor(ctx context.Context, svc *answer.Service, message, keyword string) (string, error) {
	question, ok := extractQuestion(message, keyword)
	if !ok {
		return fmt.Sprintf("Type %q followed by your question about our programs.", keyword), nil
	}
	reply, err := svc.Ask(ctx, question)
	if errors.Is(err, answer.ErrExhaustedRetries) {
		return answer.TerminalUserMessage, nil
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

func extractQuestion(message, keyword string) (string, bool) {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) <= len(keyword) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(keyword)], keyword) {
		return "", false
	}
	rest := strings.TrimSpace(trimmed[len(keyword):])
	if rest == "" || trimmed[len(keyword)] != ' ' {
		return "", false
	}
	return rest, true
}
