// internal/app/store/tokens/store.go
package tokens

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/securecookie"
)

// storageKey is the fixed name the token is encoded under.
const storageKey = "dojo_access_token"

// ErrCorrupt means a persisted token exists but cannot be decoded.
var ErrCorrupt = errors.New("tokens: persisted token is unreadable")

// Store persists the single session token.
// Load returns "" and a nil error when nothing is stored.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the token in one file, signed and encrypted with
// securecookie so it is not readable or forgeable at rest.
type FileStore struct {
	path  string
	codec *securecookie.SecureCookie
}

// NewFileStore returns a FileStore at path. When hashKey is empty the keys
// are read from (or generated into) a sibling "<path>.key" file, and
// blockKey must be empty too.
func NewFileStore(path string, hashKey, blockKey []byte) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("tokens: empty path")
	}
	path = expandHome(path)

	if len(hashKey) == 0 {
		if len(blockKey) > 0 {
			return nil, errors.New("tokens: a block key needs a hash key")
		}
		var err error
		hashKey, blockKey, err = loadOrCreateKeys(path + ".key")
		if err != nil {
			return nil, err
		}
	}
	if len(blockKey) == 0 {
		// securecookie enables encryption for any non-nil block key.
		blockKey = nil
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(0) // the server decides when a token expires
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &FileStore{path: path, codec: codec}, nil
}

// Path returns the token file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokens: read %s: %w", s.path, err)
	}

	var token string
	if err := s.codec.Decode(storageKey, strings.TrimSpace(string(data)), &token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return token, nil
}

func (s *FileStore) Save(token string) error {
	encoded, err := s.codec.Encode(storageKey, token)
	if err != nil {
		return fmt.Errorf("tokens: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("tokens: mkdir: %w", err)
	}
	return os.WriteFile(s.path, []byte(encoded), 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("tokens: remove %s: %w", s.path, err)
	}
	return nil
}

// loadOrCreateKeys reads a 64-byte hash key followed by a 32-byte block key.
func loadOrCreateKeys(path string) (hashKey, blockKey []byte, err error) {
	data, err := os.ReadFile(path)
	if err == nil && len(data) == 96 {
		return data[:64], data[64:], nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("tokens: read key file: %w", err)
	}

	hashKey = securecookie.GenerateRandomKey(64)
	blockKey = securecookie.GenerateRandomKey(32)
	if hashKey == nil || blockKey == nil {
		return nil, nil, errors.New("tokens: could not generate keys")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("tokens: mkdir: %w", err)
	}
	if err := os.WriteFile(path, append(append([]byte{}, hashKey...), blockKey...), 0o600); err != nil {
		return nil, nil, fmt.Errorf("tokens: write key file: %w", err)
	}
	return hashKey, blockKey, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// MemoryStore keeps the token in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a MemoryStore holding token ("" for none).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save("")
}
