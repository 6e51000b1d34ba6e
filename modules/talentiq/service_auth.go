package talentiq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/common/model"
)

// This file holds the auth endpoints. Login and register persist the returned pair.

// Register creates an account and stores the returned session.
func (s *service) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	if req.Role == "" {
		req.Role = model.RoleCandidate
	}
	return s.authenticate(ctx, PathAuthRegister, req)
}

// Login authenticates and stores the returned session.
func (s *service) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	return s.authenticate(ctx, PathAuthLogin, req)
}

func (s *service) authenticate(ctx context.Context, path string, payload interface{}) (*model.AuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	// a 401 here means wrong credentials, not an expired token
	data, err := s.client.Do(ctx, Request{
		Method:      http.MethodPost,
		Endpoint:    path,
		Body:        body,
		ContentType: "application/json",
		NoRefresh:   true,
	})
	if err != nil {
		return nil, err
	}

	var out model.AuthResponse
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}
	if err := s.client.Session().Save(tokenFromResponse(&out), out.User); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh forces a refresh of the stored pair. It shares the in-flight refresh with
// any 401 recovery that is already running. On failure the session is cleared.
func (s *service) Refresh(ctx context.Context) (*oauth2.Token, error) {
	tok, err := s.client.Session().Refresh(ctx, "", s.auth.RefreshToken)
	if err != nil {
		return nil, &RefreshError{Err: err}
	}
	return tok, nil
}

// Logout tells the API (best effort) and then always clears the local session.
func (s *service) Logout(ctx context.Context) error {
	_, err := s.client.Do(ctx, Request{
		Method:    http.MethodPost,
		Endpoint:  PathAuthLogout,
		NoRefresh: true,
	})
	if err != nil {
		common.LoggerFrom(ctx, nil).Warn("logout call failed, clearing session anyway", slog.String("err", err.Error()))
	}
	return s.client.Session().Clear()
}
