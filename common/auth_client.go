package common

import (
	"context"

	"golang.org/x/oauth2"
)

// AuthClient defines the ability to exchange a refresh token for a new pair.
// Implementations must not attach a bearer credential or run any 401 handling
// of their own; the refresh call is the one request that bypasses interception.
type AuthClient interface {
	// RefreshToken attempts to refresh using the given refresh token string.
	// Returns a new *oauth2.Token carrying both access and refresh tokens on success.
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}
