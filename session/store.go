package session

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// MemoryTokenStore keeps the token in process memory. Zero value is
// ready to use.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func (s *MemoryTokenStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *MemoryTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileTokenStore persists the token to a file so a restarted client can
// resume its session, the way browser localStorage does.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

var _ TokenStore = (*FileTokenStore)(nil)

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	token := strings.TrimSpace(string(raw))
	return token, token != ""
}

func (s *FileTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
