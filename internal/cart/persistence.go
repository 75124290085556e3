package cart

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Persister is the durable storage contract for cart state. Load reports
// found=false for sessions with no persisted cart; that is not an error.
type Persister interface {
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryPersister keeps serialized cart state in process memory. Used in
// tests and single-instance dev setups.
type MemoryPersister struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryPersister builds an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(_ context.Context, sessionID string) (State, bool, error) {
	m.mu.RLock()
	payload, ok := m.data[sessionID]
	m.mu.RUnlock()
	if !ok {
		return State{}, false, nil
	}
	state, err := DecodeState(payload)
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (m *MemoryPersister) Save(_ context.Context, sessionID string, state State) error {
	payload, err := EncodeState(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[sessionID] = payload
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.data, sessionID)
	m.mu.Unlock()
	return nil
}

// MirrorPersister fans writes out to every backend and reads from the first
// one that has the session. Write errors are combined so a partial failure
// still surfaces for logging while healthy backends stay current.
type MirrorPersister struct {
	backends []Persister
}

// NewMirrorPersister combines the given backends; order sets read priority.
func NewMirrorPersister(backends ...Persister) *MirrorPersister {
	kept := make([]Persister, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			kept = append(kept, b)
		}
	}
	return &MirrorPersister{backends: kept}
}

func (m *MirrorPersister) Load(ctx context.Context, sessionID string) (State, bool, error) {
	var errs error
	for _, backend := range m.backends {
		state, found, err := backend.Load(ctx, sessionID)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if found {
			return state, true, nil
		}
	}
	return State{}, false, errs
}

func (m *MirrorPersister) Save(ctx context.Context, sessionID string, state State) error {
	var errs error
	for _, backend := range m.backends {
		errs = multierr.Append(errs, backend.Save(ctx, sessionID, state))
	}
	return errs
}

func (m *MirrorPersister) Delete(ctx context.Context, sessionID string) error {
	var errs error
	for _, backend := range m.backends {
		errs = multierr.Append(errs, backend.Delete(ctx, sessionID))
	}
	return errs
}
