package threadly

import (
	"context"
	"sync"
)

// Credentials pairs a session token with its decoded identity. The two are
// always written together so a reader never observes one without the other.
type Credentials struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}

// CredentialStore persists credentials across process restarts. The
// SessionManager is the only writer; everything else reads through the
// manager. Load returns ErrNoCredentials when nothing is persisted.
type CredentialStore interface {
	Save(ctx context.Context, creds Credentials) error
	Load(ctx context.Context) (Credentials, error)
	Clear(ctx context.Context) error
}

// MemoryCredentialStore is an in-process CredentialStore for tests and
// ephemeral sessions that should not outlive the process.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	creds *Credentials
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Save(_ context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
	return nil
}

func (s *MemoryCredentialStore) Load(_ context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return Credentials{}, ErrNoCredentials
	}
	return *s.creds, nil
}

func (s *MemoryCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return nil
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)
