package common

import "errors"

// Persisted session keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// SessionKeys lists every key cleared on logout or refresh failure.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

var (
	// ErrNoRefreshToken is returned when a refresh is needed but none is stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrNoUser is returned when the session user blob is missing.
	ErrNoUser = errors.New("no session user stored")
)

// Store is a minimal key/value store for session state. It stands in for
// browser local storage; values are raw []byte.
//
// Backends in this repo:
//   - an in-memory go-cache (modules/store.NewMemory)
//   - a bbolt file (modules/store.NewBolt)
//   - Redis (modules/store.NewRedis)
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	// SetAll writes every entry in one atomic operation.
	SetAll(values map[string][]byte) error
	Delete(keys ...string) error
}
