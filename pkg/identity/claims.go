package identity

import (
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated subject extracted from a verified token.
// Subject is the identity provider's stable external id; name and email
// are the provider-asserted profile hints used for lazy provisioning.
type Identity struct {
	Subject  string
	FullName string
	Email    string
}

// AccessTokenClaims is the typed JWT issued by the identity provider.
type AccessTokenClaims struct {
	FullName string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the transport-independent form.
func (c *AccessTokenClaims) Identity() Identity {
	return Identity{
		Subject:  c.Subject,
		FullName: c.FullName,
		Email:    c.Email,
	}
}
