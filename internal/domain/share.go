package domain

// ShareType is the wire discriminator for share requests.
type ShareType string

const (
	ShareTypePublic       ShareType = "public"
	ShareTypePersonalized ShareType = "personalized"
)

// Recipient identifies who a personalized link is meant for. Both fields are
// informational only.
type Recipient struct {
	Email  *string
	Mobile *string
}

// ShareRequest is the closed set of share variants: PublicShare or
// PersonalizedShare.
type ShareRequest interface {
	Type() ShareType
	isShareRequest()
}

// PublicShare requests an anonymous, token-less link.
type PublicShare struct{}

// Type implements ShareRequest.
func (PublicShare) Type() ShareType { return ShareTypePublic }
func (PublicShare) isShareRequest() {}

// PersonalizedShare requests one single-use link per recipient.
type PersonalizedShare struct {
	Recipients []Recipient
}

// Type implements ShareRequest.
func (PersonalizedShare) Type() ShareType { return ShareTypePersonalized }
func (PersonalizedShare) isShareRequest() {}
