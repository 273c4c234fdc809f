package service

import (
	"net/url"
	"strings"
)

// LinkBuilder renders frontend URLs for shared surveys.
type LinkBuilder struct {
	baseURL string
}

// NewLinkBuilder trims any trailing slash from baseURL.
func NewLinkBuilder(baseURL string) *LinkBuilder {
	return &LinkBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Public returns the deterministic, token-less survey URL.
func (b *LinkBuilder) Public(surveyID string) string {
	return b.baseURL + "/survey/" + url.PathEscape(surveyID)
}

// Personalized embeds secret as the token query parameter.
func (b *LinkBuilder) Personalized(surveyID, secret string) string {
	return b.Public(surveyID) + "?" + url.Values{"token": []string{secret}}.Encode()
}
