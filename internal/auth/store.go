package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// CredentialFile is the fixed name of the persisted credential.
const CredentialFile = "credential.yaml"

// CredentialStore persists exactly one credential.
type CredentialStore interface {
	// Load returns nil, nil when nothing is stored.
	Load() (*Credential, error)
	Save(c *Credential) error
	Delete() error
}

// FileStore keeps the credential as YAML in Dir.
type FileStore struct {
	Dir string
}

// NewFileStore creates a file-backed credential store.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the credential file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.Dir, CredentialFile)
}

// Save writes the credential through a temp file and rename, so a reader
// never observes a partial file.
func (s *FileStore) Save(c *Credential) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, CredentialFile+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close credential: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("commit credential: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credential: %w", err)
	}

	var c Credential
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse credential: %w", err)
	}
	if c.Token == "" {
		return nil, nil
	}
	return &c, nil
}

func (s *FileStore) Delete() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	cred *Credential
}

// NewMemoryStore creates a store, optionally pre-seeded.
func NewMemoryStore(c *Credential) *MemoryStore {
	return &MemoryStore{cred: c}
}

func (s *MemoryStore) Load() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *MemoryStore) Save(c *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.cred = &cp
	return nil
}

func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}
