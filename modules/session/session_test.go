package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/common/model"
	"github.com/guarzo/talentiq/modules/session"
	"github.com/guarzo/talentiq/modules/store"
)

type invalidation struct {
	path  string
	cause error
}

func newSession(t *testing.T) (*session.Session, common.Store, *[]invalidation) {
	t.Helper()
	st := store.NewMemory()
	var got []invalidation
	var mu sync.Mutex
	s := session.New(st, session.Options{
		OnInvalidated: func(path string, cause error) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, invalidation{path, cause})
		},
	})
	return s, st, &got
}

func TestSession_SaveAndClear(t *testing.T) {
	s, st, _ := newSession(t)

	user := &model.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: model.RoleRecruiter}
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}, user))

	require.Equal(t, "a1", s.AccessToken())
	rt, err := s.RefreshToken()
	require.NoError(t, err)
	require.Equal(t, "r1", rt)

	got, err := s.User()
	require.NoError(t, err)
	require.Equal(t, user, got)

	require.NoError(t, s.Clear())
	require.Equal(t, "", s.AccessToken())
	for _, k := range common.SessionKeys {
		_, found, err := st.Get(k)
		require.NoError(t, err)
		require.False(t, found)
	}
	_, err = s.User()
	require.ErrorIs(t, err, common.ErrNoUser)
}

func TestSession_SaveRejectsHalfPair(t *testing.T) {
	s, st, _ := newSession(t)

	require.Error(t, s.Save(&oauth2.Token{AccessToken: "a1"}, nil))
	_, found, _ := st.Get(common.KeyAccessToken)
	require.False(t, found, "access token must not be written without its refresh token")
}

func TestSession_Refresh_Success(t *testing.T) {
	s, _, inv := newSession(t)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}, nil))

	var gotRT string
	tok, err := s.Refresh(context.Background(), "a1", func(_ context.Context, rt string) (*oauth2.Token, error) {
		gotRT = rt
		return &oauth2.Token{AccessToken: "a2", RefreshToken: "r2"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "r1", gotRT)
	require.Equal(t, "a2", tok.AccessToken)
	require.Equal(t, "r2", tok.RefreshToken)

	require.Equal(t, "a2", s.AccessToken())
	rt, err := s.RefreshToken()
	require.NoError(t, err)
	require.Equal(t, "r2", rt)
	require.Empty(t, *inv)
}

func TestSession_Refresh_FailureClearsAndInvalidates(t *testing.T) {
	s, st, inv := newSession(t)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}, &model.User{ID: "u1"}))

	refreshErr := errors.New("refresh rejected")
	_, err := s.Refresh(context.Background(), "a1", func(context.Context, string) (*oauth2.Token, error) {
		return nil, refreshErr
	})
	require.ErrorIs(t, err, refreshErr)

	for _, k := range common.SessionKeys {
		_, found, _ := st.Get(k)
		require.False(t, found, "expected %q cleared", k)
	}
	require.Len(t, *inv, 1)
	require.Equal(t, session.LoginPath, (*inv)[0].path)
	require.ErrorIs(t, (*inv)[0].cause, refreshErr)
}

func TestSession_Refresh_LateCallerGetsRecordedFailure(t *testing.T) {
	s, _, inv := newSession(t)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}, nil))

	var calls int32
	refreshErr := errors.New("refresh rejected")
	refresh := func(context.Context, string) (*oauth2.Token, error) {
		atomic.AddInt32(&calls, 1)
		return nil, refreshErr
	}

	_, err := s.Refresh(context.Background(), "a1", refresh)
	require.ErrorIs(t, err, refreshErr)

	// a request sent with a1 before the clear comes back 401 afterwards
	_, err = s.Refresh(context.Background(), "a1", refresh)
	require.ErrorIs(t, err, refreshErr)
	require.NotErrorIs(t, err, common.ErrNoRefreshToken)

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Len(t, *inv, 1)
}

func TestSession_Refresh_SaveForgetsRecordedFailure(t *testing.T) {
	s, _, inv := newSession(t)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}, nil))

	_, err := s.Refresh(context.Background(), "a1", func(context.Context, string) (*oauth2.Token, error) {
		return nil, errors.New("refresh rejected")
	})
	require.Error(t, err)

	// logging in again may hand back the same access token
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r9"}, nil))
	var gotRT string
	tok, err := s.Refresh(context.Background(), "a1", func(_ context.Context, rt string) (*oauth2.Token, error) {
		gotRT = rt
		return &oauth2.Token{AccessToken: "a2", RefreshToken: "r10"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "r9", gotRT)
	require.Equal(t, "a2", tok.AccessToken)
	require.Len(t, *inv, 1)
}

func TestSession_Refresh_NoRefreshToken(t *testing.T) {
	s, _, inv := newSession(t)

	called := false
	_, err := s.Refresh(context.Background(), "", func(context.Context, string) (*oauth2.Token, error) {
		called = true
		return nil, nil
	})
	require.ErrorIs(t, err, common.ErrNoRefreshToken)
	require.False(t, called)
	require.Len(t, *inv, 1)
}

func TestSession_Refresh_SkipsWhenAlreadyRotated(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a2", RefreshToken: "r2"}, nil))

	tok, err := s.Refresh(context.Background(), "a1", func(context.Context, string) (*oauth2.Token, error) {
		t.Fatal("refresh must not be called once the pair has rotated")
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, "a2", tok.AccessToken)
}

func TestSession_Refresh_ConcurrentCallersShareOneCall(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}, nil))

	var calls int32
	release := make(chan struct{})
	refresh := func(context.Context, string) (*oauth2.Token, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &oauth2.Token{AccessToken: "a2", RefreshToken: "r2"}, nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := s.Refresh(context.Background(), "a1", refresh)
			errs[i] = err
			if tok != nil {
				results[i] = tok.AccessToken
			}
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "a2", results[i])
	}
}

func TestSession_Refresh_WaiterHonoursOwnContext(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}, nil))

	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Refresh(ctx, "a1", func(context.Context, string) (*oauth2.Token, error) {
		<-release
		return &oauth2.Token{AccessToken: "a2", RefreshToken: "r2"}, nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.True(t, exp.Equal(session.TokenExpiry(signed)))
	require.True(t, session.TokenExpiry("not-a-jwt").IsZero())
	require.True(t, session.TokenExpiry("").IsZero())
}

func TestSession_TokenCarriesExpiry(t *testing.T) {
	s, _, _ := newSession(t)

	tok, err := s.Token()
	require.NoError(t, err)
	require.Nil(t, tok)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, s.Save(&oauth2.Token{AccessToken: access, RefreshToken: "r1"}, nil))

	tok, err = s.Token()
	require.NoError(t, err)
	require.True(t, tok.Valid())
	require.True(t, exp.Equal(tok.Expiry))
}
