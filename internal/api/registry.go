package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/echomate/internal/persona"
)

// entry serializes access to one session; persona.Session itself holds no locks.
type entry struct {
	mu      sync.Mutex
	session *persona.Session
}

type registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

func newRegistry() *registry {
	return &registry{sessions: make(map[uuid.UUID]*entry)}
}

func (r *registry) add(s *persona.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = &entry{session: s}
}

func (r *registry) get(id uuid.UUID) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	return e, ok
}

func (r *registry) remove(id uuid.UUID) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return e, ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
