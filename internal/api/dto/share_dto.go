package dto

import (
	"encoding/json"
	"time"
)

// RecipientRequest identifies one personalized share recipient.
type RecipientRequest struct {
	Email    *string `json:"email"`
	MobileNo *string `json:"mobile_no"`
}

// ShareRequest payload for POST /share/:surveyId.
type ShareRequest struct {
	ShareType  string             `json:"shareType"`
	Recipients []RecipientRequest `json:"recipients"`
}

// PublicShareResponse is returned for public shares.
type PublicShareResponse struct {
	Type string `json:"type"`
	Link string `json:"link"`
}

// PersonalizedLinkResponse is one recipient's link.
type PersonalizedLinkResponse struct {
	Email     *string   `json:"email"`
	MobileNo  *string   `json:"mobile_no"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PersonalizedShareResponse is returned for personalized shares.
type PersonalizedShareResponse struct {
	Type    string                     `json:"type"`
	Message string                     `json:"message"`
	Links   []PersonalizedLinkResponse `json:"links"`
}

// TokenRequest carries a presented share secret.
type TokenRequest struct {
	Token    string `json:"token"`
	SurveyID string `json:"survey_id,omitempty"`
}

// ValidateTokenResponse is returned for a valid token.
type ValidateTokenResponse struct {
	Valid          bool    `json:"valid"`
	SurveyID       string  `json:"surveyId"`
	RecipientEmail *string `json:"recipient_email"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// QuestionResponse renders one survey question.
type QuestionResponse struct {
	ID           string          `json:"id"`
	QuestionType string          `json:"question_type"`
	QuestionText string          `json:"question_text"`
	Options      json.RawMessage `json:"options,omitempty"`
	Media        json.RawMessage `json:"media,omitempty"`
}

// SurveyResponse renders a survey opened from a share link.
type SurveyResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description,omitempty"`
	FlowType    *string            `json:"flow_type,omitempty"`
	Settings    json.RawMessage    `json:"settings,omitempty"`
	Questions   []QuestionResponse `json:"questions"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SurveyByTokenResponse is returned by GET /share/survey.
type SurveyByTokenResponse struct {
	Survey    SurveyResponse `json:"survey"`
	Recipient *string        `json:"recipient"`
}
