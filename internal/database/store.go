package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// UsersCollection is the collection owned by the user directory
	UsersCollection = "users"
	// ContactsCollection is the collection owned by the contact log
	ContactsCollection = "contacts"
)

// StorageError reports a read or write of a collection document that could
// not complete (disk full, permission denied, ...).
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store keeps each named collection as a JSON array in <dir>/<name>.json.
// Writes replace the whole document through a temp file and rename, and are
// serialized per collection.
type Store struct {
	dir string
	log zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open creates dir if needed and initializes every listed collection to an
// empty array when its document does not exist yet.
func Open(dir string, log zerolog.Logger, collections ...string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "open", Collection: dir, Err: err}
	}

	s := &Store{
		dir:   dir,
		log:   log.With().Str("component", "store").Logger(),
		locks: make(map[string]*sync.Mutex),
	}

	for _, name := range collections {
		_, err := os.Stat(s.path(name))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &StorageError{Op: "stat", Collection: name, Err: err}
		}
		if err := s.write(name, []struct{}{}); err != nil {
			return nil, err
		}
		s.log.Info().Str("collection", name).Msg("initialized empty collection")
	}

	return s, nil
}

// Dir returns the directory holding the collection documents.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *Store) lock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

// write must be called with the collection lock held (or before the store is
// shared, as in Open).
func (s *Store) write(collection string, v any) (err error) {
	tmp, err := os.CreateTemp(s.dir, "."+collection+"-*.tmp")
	if err != nil {
		return &StorageError{Op: "save", Collection: collection, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	if err = enc.Encode(v); err != nil {
		return &StorageError{Op: "encode", Collection: collection, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &StorageError{Op: "save", Collection: collection, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &StorageError{Op: "save", Collection: collection, Err: err}
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return &StorageError{Op: "save", Collection: collection, Err: err}
	}
	if err = os.Rename(tmp.Name(), s.path(collection)); err != nil {
		return &StorageError{Op: "save", Collection: collection, Err: err}
	}
	return nil
}

// Collection is a typed view over one named collection of a Store.
type Collection[T any] struct {
	store *Store
	name  string
}

// NewCollection binds the collection name to the record type T.
func NewCollection[T any](store *Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Load returns the records in stored order. A missing or unparsable document
// yields an empty slice; only a failed read is reported as an error.
func (c *Collection[T]) Load() ([]T, error) {
	records, err := c.load()
	var se *StorageError
	if errors.As(err, &se) && se.Op == "decode" {
		c.store.log.Warn().Err(se.Err).Str("collection", c.name).Msg("unparsable collection document, treating as empty")
		return []T{}, nil
	}
	return records, err
}

// load is Load without the empty fallback: an unparsable document is a
// *StorageError with Op "decode".
func (c *Collection[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.store.path(c.name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, &StorageError{Op: "load", Collection: c.name, Err: err}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &StorageError{Op: "decode", Collection: c.name, Err: err}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save overwrites the whole collection with records.
func (c *Collection[T]) Save(records []T) error {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()
	return c.save(records)
}

func (c *Collection[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}
	return c.store.write(c.name, records)
}

// Update runs load, fn and save while holding the collection's write lock so
// concurrent read-modify-write cycles do not lose each other's changes. If fn
// returns an error nothing is written and the error is returned as is. An
// unparsable document is never overwritten: Update fails with a "decode"
// StorageError and leaves the file for an operator to repair.
func (c *Collection[T]) Update(fn func(records []T) ([]T, error)) error {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	return c.save(records)
}
