// Package session owns the client-side login state: the credential pair, the
// session user, and the single in-flight refresh shared by concurrent callers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/common/model"
)

// LoginPath is where the presentation layer should send the user once the
// session can no longer be recovered.
const LoginPath = "/login"

// RefreshFunc exchanges a refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

// InvalidatedFunc is told that the session was cleared after a failed refresh.
type InvalidatedFunc func(loginPath string, cause error)

// Options configures a Session.
type Options struct {
	Logger        *slog.Logger
	OnInvalidated InvalidatedFunc
}

// Session is the explicit replacement for a global "current bearer".
type Session struct {
	store         common.Store
	log           *slog.Logger
	onInvalidated InvalidatedFunc

	mu     sync.RWMutex
	bearer string
	// failed remembers the access token whose refresh failed and why, so late
	// 401s for that token get the same answer without a second invalidation.
	failed failure

	group singleflight.Group
}

type failure struct {
	access string
	cause  error
}

// New builds a Session over store.
func New(store common.Store, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		store:         store,
		log:           log.With(slog.String("component", "session")),
		onInvalidated: opts.OnInvalidated,
	}
}

// AccessToken returns the stored access token, or "" when there is none.
// A failing store is logged and falls back to the last bearer this session saw;
// it never blocks a request.
func (s *Session) AccessToken() string {
	v, found, err := s.store.Get(common.KeyAccessToken)
	if err != nil {
		s.log.Warn("access token read failed", slog.String("err", err.Error()))
		return s.currentBearer()
	}
	if !found {
		return ""
	}
	tok := string(v)
	s.setBearer(tok)
	return tok
}

// RefreshToken returns the stored refresh token.
func (s *Session) RefreshToken() (string, error) {
	v, found, err := s.store.Get(common.KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("reading refresh token: %w", err)
	}
	if !found || len(v) == 0 {
		return "", common.ErrNoRefreshToken
	}
	return string(v), nil
}

// Token returns the stored pair, with Expiry filled from the access JWT when possible.
// It returns nil when nothing is stored.
func (s *Session) Token() (*oauth2.Token, error) {
	access := s.AccessToken()
	refresh, err := s.RefreshToken()
	if err != nil && !errors.Is(err, common.ErrNoRefreshToken) {
		return nil, err
	}
	if access == "" && refresh == "" {
		return nil, nil
	}
	return newToken(access, refresh), nil
}

// Save stores the pair and, when non-nil, the user in a single write.
// The access and refresh tokens are never written one without the other.
func (s *Session) Save(tok *oauth2.Token, user *model.User) error {
	if tok == nil || tok.AccessToken == "" || tok.RefreshToken == "" {
		return errors.New("token pair is incomplete")
	}
	values := map[string][]byte{
		common.KeyAccessToken:  []byte(tok.AccessToken),
		common.KeyRefreshToken: []byte(tok.RefreshToken),
	}
	if user != nil {
		blob, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encoding session user: %w", err)
		}
		values[common.KeyUser] = blob
	}
	if err := s.store.SetAll(values); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	s.mu.Lock()
	s.bearer = tok.AccessToken
	s.failed = failure{}
	s.mu.Unlock()
	return nil
}

// Clear removes the pair and the session user.
func (s *Session) Clear() error {
	s.setBearer("")
	if err := s.store.Delete(common.SessionKeys...); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// User decodes the stored session user.
func (s *Session) User() (*model.User, error) {
	return LoadUser(s.store)
}

// LoadUser decodes the session user blob straight from a store.
func LoadUser(store common.Store) (*model.User, error) {
	blob, found, err := store.Get(common.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("reading session user: %w", err)
	}
	if !found {
		return nil, common.ErrNoUser
	}
	var u model.User
	if err := json.Unmarshal(blob, &u); err != nil {
		return nil, fmt.Errorf("decoding session user: %w", err)
	}
	return &u, nil
}

// Refresh renews the pair after staleAccess was rejected.
//
// All concurrent callers share one refresh call. If the stored access token
// already differs from staleAccess, someone else refreshed in the meantime and
// the current pair is returned without a network call.
//
// On failure the session is cleared and OnInvalidated fires once, and the
// refresh error is returned. Callers still holding the invalidated access
// token get that same error back without another refresh.
func (s *Session) Refresh(ctx context.Context, staleAccess string, refresh RefreshFunc) (*oauth2.Token, error) {
	if err := s.failedFor(staleAccess); err != nil {
		return nil, err
	}
	if tok, ok := s.rotatedSince(staleAccess); ok {
		return tok, nil
	}

	// detach so one caller giving up doesn't fail the refresh for every waiter
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan("refresh", func() (interface{}, error) {
		return s.doRefresh(shared, staleAccess, refresh)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) doRefresh(ctx context.Context, staleAccess string, refresh RefreshFunc) (*oauth2.Token, error) {
	if err := s.failedFor(staleAccess); err != nil {
		return nil, err
	}
	if tok, ok := s.rotatedSince(staleAccess); ok {
		return tok, nil
	}

	log := common.LoggerFrom(ctx, s.log)

	// the token this refresh replaces; an explicit refresh passes no staleAccess
	replacing := s.AccessToken()
	if replacing == "" {
		replacing = staleAccess
	}
	invalidate := func(cause error) error {
		return s.invalidate(log, replacing, cause)
	}

	rt, err := s.RefreshToken()
	if err != nil {
		return nil, invalidate(err)
	}

	log.Info("refreshing session", slog.String("refresh_token", common.RedactToken(rt)))

	tok, err := refresh(ctx, rt)
	if err != nil {
		return nil, invalidate(err)
	}
	if tok == nil || tok.AccessToken == "" || tok.RefreshToken == "" {
		return nil, invalidate(errors.New("refresh response is missing tokens"))
	}

	if err := s.Save(tok, nil); err != nil {
		return nil, err
	}
	log.Info("session refreshed", slog.String("access_token", common.RedactToken(tok.AccessToken)))
	return newToken(tok.AccessToken, tok.RefreshToken), nil
}

// rotatedSince reports whether the stored pair has moved on from staleAccess.
func (s *Session) rotatedSince(staleAccess string) (*oauth2.Token, bool) {
	if staleAccess == "" {
		return nil, false
	}
	cur := s.AccessToken()
	if cur == "" || cur == staleAccess {
		return nil, false
	}
	rt, err := s.RefreshToken()
	if err != nil {
		return nil, false
	}
	return newToken(cur, rt), true
}

// failedFor returns the recorded refresh error when staleAccess is the token
// a failed refresh already invalidated.
func (s *Session) failedFor(staleAccess string) error {
	if staleAccess == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failed.access == staleAccess {
		return s.failed.cause
	}
	return nil
}

// invalidate records the failure before clearing, so a 401 racing the clear
// already sees it.
func (s *Session) invalidate(log *slog.Logger, replacing string, cause error) error {
	log.Warn("session refresh failed, clearing credentials", slog.String("err", cause.Error()))
	if replacing != "" {
		s.mu.Lock()
		s.failed = failure{access: replacing, cause: cause}
		s.mu.Unlock()
	}
	if err := s.Clear(); err != nil {
		log.Error("session clear failed", slog.String("err", err.Error()))
	}
	if s.onInvalidated != nil {
		s.onInvalidated(LoginPath, cause)
	}
	return cause
}

func (s *Session) currentBearer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bearer
}

func (s *Session) setBearer(tok string) {
	s.mu.Lock()
	s.bearer = tok
	s.mu.Unlock()
}
