package store_test

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/modules/store"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s common.Store) {
	t.Helper()

	_, found, err := s.Get(common.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, found)

	// 1) SetAll + Get
	require.NoError(t, s.SetAll(map[string][]byte{
		common.KeyAccessToken:  []byte("a1"),
		common.KeyRefreshToken: []byte("r1"),
		common.KeyUser:         []byte(`{"id":"u1"}`),
	}))

	val, found, err := s.Get(common.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a1", string(val))

	val, found, err = s.Get(common.KeyRefreshToken)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "r1", string(val))

	// 2) overwrite
	require.NoError(t, s.SetAll(map[string][]byte{
		common.KeyAccessToken:  []byte("a2"),
		common.KeyRefreshToken: []byte("r2"),
	}))
	val, _, err = s.Get(common.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "a2", string(val))

	// 3) Delete
	require.NoError(t, s.Delete(common.SessionKeys...))
	for _, k := range common.SessionKeys {
		_, found, err = s.Get(k)
		require.NoError(t, err)
		require.False(t, found, "expected %q to be deleted", k)
	}

	// deleting missing keys is fine
	require.NoError(t, s.Delete("missing"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, store.NewMemory())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := store.NewMemory()
	buf := []byte("a1")
	require.NoError(t, s.SetAll(map[string][]byte{common.KeyAccessToken: buf}))
	buf[0] = 'x'

	val, _, err := s.Get(common.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "a1", string(val))
}

func TestBoltStore(t *testing.T) {
	s, err := store.NewBolt(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	exerciseStore(t, s)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := store.NewBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.SetAll(map[string][]byte{common.KeyAccessToken: []byte("a1")}))
	require.NoError(t, s.Close())

	s, err = store.NewBolt(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	val, found, err := s.Get(common.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a1", string(val))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.NewRedis(client, "talentiq:")
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestRedisStore_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.NewRedis(client, "tiq:")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SetAll(map[string][]byte{common.KeyAccessToken: []byte("a1")}))

	got, err := mr.Get("tiq:access_token")
	require.NoError(t, err)
	require.Equal(t, "a1", got)
}
