package store

import (
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/guarzo/talentiq/common"
)

var bktSession = []byte("session")

var _ common.Store = (*BoltStore)(nil)

// BoltStore persists session state in a bbolt file, the on-disk
// equivalent of browser local storage.
type BoltStore struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the store file at path.
func NewBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening bolt store %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bktSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating session bucket")
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bktSession).Get([]byte(key))
		if v != nil {
			// bolt memory is only valid inside the tx
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", key)
	}
	return value, value != nil, nil
}

func (s *BoltStore) SetAll(values map[string][]byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktSession)
		for k, v := range values {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "writing session")
}

func (s *BoltStore) Delete(keys ...string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bktSession)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "deleting session keys")
}
