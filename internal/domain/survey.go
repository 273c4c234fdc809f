package domain

import (
	"encoding/json"
	"time"
)

// Survey is the resource a share token grants access to.
type Survey struct {
	ID          string
	OwnerID     string
	Title       string
	Description *string
	FlowType    *string
	Settings    json.RawMessage
	Questions   []Question
	CreatedAt   time.Time
}

// Question is rendered alongside a survey opened from a share link.
type Question struct {
	ID           string
	SurveyID     string
	QuestionType string
	QuestionText string
	Options      json.RawMessage
	Media        json.RawMessage
	CreatedAt    time.Time
}
