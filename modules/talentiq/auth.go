package talentiq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/common/model"
	"github.com/guarzo/talentiq/modules/session"
)

// authClient performs the dedicated refresh call. It deliberately bypasses the
// ApiClient: no bearer, no 401 handling.
type authClient struct {
	baseURL    string
	httpClient common.HttpClient
}

// NewAuthClient returns a common.AuthClient that refreshes against baseURL.
func NewAuthClient(baseURL string, httpClient common.HttpClient) common.AuthClient {
	return &authClient{baseURL: baseURL, httpClient: httpClient}
}

// RefreshToken exchanges refreshToken for a new pair via POST /api/v1/auth/refresh.
func (a *authClient) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	urlStr, err := buildURL(a.baseURL, PathAuthRefresh)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(model.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &common.HTTPError{StatusCode: resp.StatusCode, Body: data}
	}

	var out model.AuthResponse
	if err := model.JSONUnmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	return tokenFromResponse(&out), nil
}

func tokenFromResponse(r *model.AuthResponse) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       session.TokenExpiry(r.AccessToken),
	}
}
