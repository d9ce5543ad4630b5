package access

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryActorStore is an in-memory ActorStore for scaffolding and tests.
type MemoryActorStore struct {
	mu     sync.RWMutex
	actors map[uuid.UUID]*Actor
	err    error
}

// NewMemoryActorStore creates an empty in-memory actor store.
func NewMemoryActorStore() *MemoryActorStore {
	return &MemoryActorStore{
		actors: make(map[uuid.UUID]*Actor),
	}
}

// Put inserts or replaces an actor.
func (m *MemoryActorStore) Put(actor *Actor) {
	if actor == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors[actor.ID] = cloneActor(actor)
}

// SetActive flips the active flag for an existing actor.
func (m *MemoryActorStore) SetActive(id uuid.UUID, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if actor, ok := m.actors[id]; ok {
		actor.Active = active
	}
}

// Fail configures the store to return the supplied error on subsequent lookups.
func (m *MemoryActorStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetActor resolves an actor by identifier.
func (m *MemoryActorStore) GetActor(_ context.Context, id uuid.UUID) (*Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	actor, ok := m.actors[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneActor(actor), nil
}

func cloneActor(src *Actor) *Actor {
	if src == nil {
		return nil
	}
	copied := *src
	if len(src.RoleIDs) > 0 {
		copied.RoleIDs = append([]string(nil), src.RoleIDs...)
	}
	return &copied
}
