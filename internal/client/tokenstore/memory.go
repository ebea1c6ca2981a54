package tokenstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
)

// MemoryStore keeps entries in process memory. It backs ephemeral runs and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	user    *models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, tokens models.TokenPair, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = tokens.AccessToken, tokens.RefreshToken
	m.user = &user
	return nil
}

func (m *MemoryStore) UpdateTokens(_ context.Context, tokens models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = tokens.AccessToken
	if tokens.RefreshToken != "" {
		m.refresh = tokens.RefreshToken
	}
	return nil
}

func (m *MemoryStore) AccessToken(context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, m.access != ""
}

func (m *MemoryStore) RefreshToken(context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh, m.refresh != ""
}

func (m *MemoryStore) User(context.Context) (*models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, false
	}
	u := *m.user
	return &u, true
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.user = "", "", nil
	return nil
}
