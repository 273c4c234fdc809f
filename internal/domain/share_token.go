package domain

import "time"

// ShareTokenTTL is the validity window applied at issuance.
const ShareTokenTTL = 7 * 24 * time.Hour

// ShareToken is a persisted personalized share credential. Only the digest of
// the issued secret is stored.
type ShareToken struct {
	ID              string
	SurveyID        string
	RecipientEmail  *string
	RecipientMobile *string
	SecretDigest    string
	ExpiresAt       time.Time
	Used            bool
	CreatedAt       time.Time
}

// ExpiredAt reports whether the token is past its expiry at the given instant.
func (t *ShareToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
