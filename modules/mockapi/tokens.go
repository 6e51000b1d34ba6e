package mockapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/guarzo/talentiq/common/model"
)

const tokenTypeRefresh = "refresh"

type claims struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

type userKey struct{}

// IssueTokens signs a fresh access/refresh pair for u.
func (s *Server) IssueTokens(u model.User) (model.AuthResponse, error) {
	now := s.opts.Now()

	access, err := s.sign(claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.AccessTTL)),
		},
	})
	if err != nil {
		return model.AuthResponse{}, err
	}
	refresh, err := s.sign(claims{
		Email: u.Email,
		Type:  tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.RefreshTTL)),
		},
	})
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := u
	return model.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		User:         &user,
	}, nil
}

func (s *Server) sign(c claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.opts.Secret)
}

func (s *Server) verify(tok string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(tok, c, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.opts.Now),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// requireAccess rejects requests without a valid, unrevoked access token.
func (s *Server) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearer(r)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c, err := s.verify(tok)
		if err != nil || c.Type == tokenTypeRefresh {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		revoked := s.revoked[tok]
		u := s.userByID(c.Subject)
		s.mu.Unlock()

		if revoked || u == nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u.User)))
	})
}

func bearer(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(auth[len(prefix):])
	return tok, tok != ""
}

func currentUser(r *http.Request) (model.User, error) {
	u, ok := r.Context().Value(userKey{}).(model.User)
	if !ok {
		return model.User{}, errors.New("no user in context")
	}
	return u, nil
}

// userByID must be called with s.mu held.
func (s *Server) userByID(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
