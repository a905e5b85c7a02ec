package messaging

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioConfig holds outbound SMS credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// TwilioSender implements Sender over the Twilio messages API. CreateMessage
// returns after Twilio accepts the message, which provides the per-send
// acknowledgment Chunker's ordering depends on.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a sender.
func NewTwilioSender(cfg TwilioConfig) (*TwilioSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio credentials must be set")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("twilio from number must be set")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{
		client: client,
		from:   cfg.FromNumber,
	}, nil
}

// NewWebhookValidator returns the signature validator for inbound webhooks.
func NewWebhookValidator(authToken string) twilioclient.RequestValidator {
	return twilioclient.NewRequestValidator(authToken)
}

// Send submits one message to the recipient.
func (s *TwilioSender) Send(_ context.Context, recipient, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(s.from)
	params.SetBody(body)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}
