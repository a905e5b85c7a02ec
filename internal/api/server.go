// Package api exposes the HTTP interface for the question-answering service.
package api

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/answer"
	"github.com/campusqa/campusqa/internal/config"
	"github.com/campusqa/campusqa/internal/metrics"
	"github.com/campusqa/campusqa/internal/work"
)

// Asker answers one question synchronously.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// JobQueue accepts async ask-and-deliver jobs.
type JobQueue interface {
	Enqueue(job work.Job) error
}

// WebhookValidator checks inbound webhook authenticity.
type WebhookValidator interface {
	Validate(url string, params map[string]string, signature string) bool
}

// Server wires HTTP handlers to the answer service and dispatch queue.
type Server struct {
	router    chi.Router
	svc       Asker
	queue     JobQueue
	validator WebhookValidator
	cfg       config.Config
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes. validator may be
// nil when signature validation is disabled in config.
func NewServer(svc Asker, queue JobQueue, validator WebhookValidator, cfg config.Config, logger *zap.Logger) *Server {
	s := &Server{
		svc:       svc,
		queue:     queue,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/", s.index)
	r.Post("/ask", s.ask)
	r.Post("/sms", s.incomingSMS)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ready")
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Program Questions</title></head>
<body>
<h2>Ask a question about our programs</h2>
<form action="/ask" method="post">
<input type="text" name="question" size="80">
<input type="submit" value="Ask">
</form>
</body>
</html>
`

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(indexPage)); err != nil {
		s.logger.Error("write index failed", zap.Error(err))
	}
}

// ask handles the synchronous web path: the caller blocks until the answer
// (or the terminal-error message) is ready.
func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	question := r.FormValue("question")
	if question == "" {
		metrics.ObserveQuestion("web", "bad_request")
		writeText(w, http.StatusBadRequest, "missing question")
		return
	}

	reply, err := s.svc.Ask(r.Context(), question)
	switch {
	case errors.Is(err, answer.ErrExhaustedRetries):
		metrics.ObserveQuestion("web", "terminal")
		writeText(w, http.StatusServiceUnavailable, answer.TerminalUserMessage)
		return
	case err != nil:
		metrics.ObserveQuestion("web", "error")
		s.logger.Error("ask failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.ObserveQuestion("web", "answered")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := fmt.Sprintf("<h3>%s</h3>\n<p style=\"white-space: pre-wrap;\">\n%s\n</p>\n<a href=\"/\">Ask another question</a>\n",
		html.EscapeString(question), html.EscapeString(reply))
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.Error("write answer failed", zap.Error(err))
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg + "\n"))
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", zap.Any("panic", rec))
					writeText(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
