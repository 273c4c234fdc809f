package domain

// IssuerRole classifies authenticated callers allowed to issue share links.
type IssuerRole string

const (
	IssuerRoleUser  IssuerRole = "USER"
	IssuerRoleAdmin IssuerRole = "ADMIN"
)

// Issuer is the authenticated identity behind a share request.
type Issuer struct {
	ID   string
	Role IssuerRole
}
