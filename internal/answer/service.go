package answer

import (
	"context"
	"fmt"
)

// ServiceConfig fixes the pipeline's retrieval and prompt parameters.
type ServiceConfig struct {
	TopK        int
	Instruction string
	Budget      int
}

// Service answers a question by retrieval-augmented completion. It owns no
// state and is safe for concurrent calls while the store is read-only.
type Service struct {
	retriever  *Retriever
	completion *CompletionClient
	cfg        ServiceConfig
}

// NewService composes the pipeline.
func NewService(retriever *Retriever, completion *CompletionClient, cfg ServiceConfig) *Service {
	return &Service{
		retriever:  retriever,
		completion: completion,
		cfg:        cfg,
	}
}

// Ask retrieves relevant documents, builds the bounded prompt, and invokes
// the completion client. Terminal completion errors propagate unchanged.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	docs, err := s.retriever.Retrieve(ctx, question, s.cfg.TopK)
	if err != nil {
		return "", fmt.Errorf("retrieve documents: %w", err)
	}
	prompt := BuildPrompt(question, docs, s.cfg.Instruction, s.cfg.Budget)
	return s.completion.Complete(ctx, prompt)
}
