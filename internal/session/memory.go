package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/groblegark/dockhand/internal/model"
)

// Memory is an in-process Store for single-node deployments and tests.
// Sessions are stored serialized so that Get always returns an independent
// copy, the same way an external cache would.
type Memory struct {
	mu        sync.RWMutex
	sessions  map[string][]byte
	secondary map[string][]byte // operator + "/" + key
}

// Compile-time check that Memory implements Store.
var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{
		sessions:  make(map[string][]byte),
		secondary: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, operator string) (*model.Session, error) {
	m.mu.RLock()
	blob, ok := m.sessions[operator]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var s model.Session
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("decode session for %s: %w", operator, err)
	}
	return &s, nil
}

func (m *Memory) Put(_ context.Context, s *model.Session) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session for %s: %w", s.Operator, err)
	}
	m.mu.Lock()
	m.sessions[s.Operator] = blob
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, operator string) error {
	m.mu.Lock()
	delete(m.sessions, operator)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutSecondary(_ context.Context, operator, key string, payload any) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload for %s: %w", key, operator, err)
	}
	m.mu.Lock()
	m.secondary[operator+"/"+key] = blob
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetSecondary(_ context.Context, operator, key string, dest any) error {
	m.mu.RLock()
	blob, ok := m.secondary[operator+"/"+key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(blob, dest)
}

func (m *Memory) DeleteSecondary(_ context.Context, operator, key string) error {
	m.mu.Lock()
	delete(m.secondary, operator+"/"+key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
