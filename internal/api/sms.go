package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusqa/campusqa/internal/metrics"
	"github.com/campusqa/campusqa/internal/work"
)

// incomingSMS handles the asynchronous webhook path. Answering can take far
// longer than the webhook timeout (the completion retry budget alone may run
// for minutes), so the handler only validates, enqueues, and acknowledges;
// the dispatched job answers and delivers out of band.
func (s *Server) incomingSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		metrics.ObserveQuestion("sms", "bad_request")
		writeText(w, http.StatusBadRequest, "malformed form")
		return
	}

	if s.cfg.Messaging.ValidateSignatures && !s.validSignature(r) {
		metrics.ObserveQuestion("sms", "invalid_signature")
		writeText(w, http.StatusForbidden, "invalid signature")
		return
	}

	body := r.PostFormValue("Body")
	from := r.PostFormValue("From")
	if from == "" {
		metrics.ObserveQuestion("sms", "bad_request")
		writeText(w, http.StatusBadRequest, "missing sender")
		return
	}

	job := work.Job{
		ID:        uuid.NewString(),
		Question:  body,
		Recipient: from,
	}
	if err := s.queue.Enqueue(job); err != nil {
		metrics.ObserveQuestion("sms", "rejected")
		s.logger.Warn("sms job rejected", zap.String("from", from), zap.Error(err))
		writeText(w, http.StatusServiceUnavailable, "busy, try again shortly")
		return
	}

	metrics.ObserveQuestion("sms", "dispatched")
	s.logger.Info("sms job dispatched", zap.String("job_id", job.ID))

	// Acknowledge immediately with empty TwiML so the channel does not
	// time out waiting for the answer.
	w.Header().Set("Content-Type", "text/xml")
	if _, err := w.Write([]byte("<Response></Response>")); err != nil {
		s.logger.Error("write twiml failed", zap.Error(err))
	}
}

func (s *Server) validSignature(r *http.Request) bool {
	if s.validator == nil {
		return false
	}
	params := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	url := s.webhookURL(r)
	signature := r.Header.Get("X-Twilio-Signature")
	return s.validator.Validate(url, params, signature)
}

// webhookURL reconstructs the public URL the channel signed. Behind a proxy
// the request's own URL is not it, so a configured base takes precedence.
func (s *Server) webhookURL(r *http.Request) string {
	if base := s.cfg.Messaging.WebhookBaseURL; base != "" {
		return strings.TrimSuffix(base, "/") + r.URL.RequestURI()
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
