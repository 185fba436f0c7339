package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
)

type Config struct {
	dataDir string
}

func NewConfig(dataDir string) Config {
	return Config{
		dataDir: dataDir,
	}
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		dataDir: env.GetVariableOrDefault(ctx, "DATA_DIR", "/opt/tourism/data"),
	}
}

var (
	ErrNotExist    = errors.New("document does not exist")
	ErrInvalidName = errors.New("invalid document name")
	ErrReadFailed  = errors.New("could not read document")
	ErrWriteFailed = errors.New("could not write document")
)

var validDocumentName = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Store reads and writes named JSON documents below a single directory.
// Writers to the same document are serialized so a read-modify-write
// sequence cannot lose an update; documents remain independent.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(ctx context.Context, config Config) (*Store, error) {
	if config.dataDir == "" {
		return nil, fmt.Errorf("no data directory configured")
	}

	return &Store{
		dir:   config.dataDir,
		locks: map[string]*sync.Mutex{},
	}, nil
}

// Preflight verifies that the storage location is usable and that the
// named documents, where present, can be read. A document that has not
// been created yet is not an error.
func (s *Store) Preflight(ctx context.Context, names ...string) error {
	err := os.MkdirAll(s.dir, 0o755)
	if err != nil {
		return fmt.Errorf("storage location %s is unreachable: %w", s.dir, err)
	}

	for _, name := range names {
		_, err := s.Read(ctx, name)
		if err != nil && !errors.Is(err, ErrNotExist) {
			return err
		}
	}

	return nil
}

func (s *Store) Exists(ctx context.Context, name string) bool {
	if !validDocumentName.MatchString(name) {
		return false
	}

	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	if !validDocumentName.MatchString(name) {
		return nil, ErrInvalidName
	}

	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("%w: %s", ErrReadFailed, err.Error())
	}

	return b, nil
}

// Write replaces the document's entire contents. The data is written to
// a temporary file first and renamed into place, so concurrent readers
// never observe a partially written document.
func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	if !validDocumentName.MatchString(name) {
		return ErrInvalidName
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return s.write(name, data)
}

// Update runs fn under the document's write lock, with the current
// contents (nil and exists == false when the document has never been
// written), and replaces the document with fn's result.
func (s *Store) Update(ctx context.Context, name string, fn func(current []byte, exists bool) ([]byte, error)) error {
	if !validDocumentName.MatchString(name) {
		return ErrInvalidName
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.Read(ctx, name)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotExist) {
		return err
	}

	next, err := fn(current, exists)
	if err != nil {
		return err
	}

	return s.write(name, next)
}

func (s *Store) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWriteFailed, err.Error())
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s", ErrWriteFailed, err.Error())
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWriteFailed, err.Error())
	}

	err = os.Rename(tmp.Name(), filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWriteFailed, err.Error())
	}

	return nil
}

func (s *Store) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}

	return lock
}

// ReadDocument reads and unmarshals a named document. A missing
// document is reported as ErrNotExist, corrupt JSON as ErrReadFailed.
func ReadDocument[T any](ctx context.Context, s *Store, name string) (T, error) {
	t := *new(T)

	b, err := s.Read(ctx, name)
	if err != nil {
		return t, err
	}

	err = json.Unmarshal(b, &t)
	if err != nil {
		return *new(T), fmt.Errorf("%w: %s", ErrReadFailed, err.Error())
	}

	return t, nil
}

// WriteDocument marshals t and replaces the named document. Documents
// are written indented to stay diffable when maintained out of band.
func WriteDocument[T any](ctx context.Context, s *Store, name string, t T) error {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWriteFailed, err.Error())
	}

	return s.Write(ctx, name, b)
}
