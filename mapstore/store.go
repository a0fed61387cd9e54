/*
	Package mapstore persists named ArrayMaps in an embedded Badger database so
	a relabeling computed once can be re-applied to other fields later.
*/
package mapstore

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/segbase/seglib/seglib"
	"github.com/segbase/seglib/segment"
)

// ErrMapNotFound is returned by Get for names with no stored map.
var ErrMapNotFound = errors.New("map not found")

// Store is a Badger-backed collection of named ArrayMaps.  Stored values are
// the map's binary encoding wrapped in the standard serialization format
// (snappy + CRC32).
type Store struct {
	path string
	db   *badger.DB
}

// Open opens or creates a map store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("unable to open map store at %s: %v", path, err)
	}
	seglib.Infof("Opened map store @ %s\n", path)
	return &Store{path: path, db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a map under the given name, replacing any previous map.
func (s *Store) Put(name string, m *segment.ArrayMap) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	serialization, err := seglib.SerializeData(b, seglib.Snappy, seglib.CRC32)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(name), serialization)
	})
}

// Get returns the map stored under the given name.
func (s *Store) Get(name string) (*segment.ArrayMap, error) {
	var serialization []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %q", ErrMapNotFound, name)
		}
		if err != nil {
			return err
		}
		serialization, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	b, _, err := seglib.DeserializeData(serialization, true)
	if err != nil {
		return nil, fmt.Errorf("corrupted map %q in store: %v", name, err)
	}
	var m segment.ArrayMap
	if err := m.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("corrupted map %q in store: %v", name, err)
	}
	return &m, nil
}

// Delete removes the map stored under the given name, if any.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(name))
	})
}

// List returns the names of all stored maps in key order.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
