package events

import (
	"time"

	"github.com/spec-kit/survey-share/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventShareLinksIssued   EventType = "share_links_issued"
	EventShareTokenConsumed EventType = "share_token_consumed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SurveyID  string      `json:"survey_id"`
	Issuer    *string     `json:"issuer_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssuedRecipient describes one personalized link without its secret.
type IssuedRecipient struct {
	TokenID         string  `json:"token_id"`
	RecipientEmail  *string `json:"recipient_email,omitempty"`
	RecipientMobile *string `json:"recipient_mobile,omitempty"`
}

// ShareLinksIssuedPayload payload.
type ShareLinksIssuedPayload struct {
	ShareType  domain.ShareType  `json:"share_type"`
	Recipients []IssuedRecipient `json:"recipients,omitempty"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
}

// ShareTokenConsumedPayload payload.
type ShareTokenConsumedPayload struct {
	TokenID        string  `json:"token_id"`
	RecipientEmail *string `json:"recipient_email,omitempty"`
}
