package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// newToken builds an oauth2.Token for a stored pair.
func newToken(access, refresh string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Expiry:       TokenExpiry(access),
	}
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The server
// stays the authority on validity; this is for display and logging only.
// Non-JWT tokens and tokens without exp yield the zero time.
func TokenExpiry(tok string) time.Time {
	if tok == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
