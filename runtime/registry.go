// Package runtime wires transports, the session worker and the event fanout.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"callsign-relay/contract"
	"callsign-relay/domain"
	"sync"

	"github.com/samber/lo"
)

var _ contract.IRegistry = (*Registry)(nil)

// Registry maps every live connection to the sink its transport reads from.
// It is shared between transport goroutines and the fanout worker.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ConnectionID]contract.EventSink)}
}

// Subscribe registers the sink of a connection, replacing a previous one with the same id.
func (r *Registry) Subscribe(id domain.ConnectionID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = sink
}

func (r *Registry) Unsubscribe(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Sink(id domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[id]
	return sink, ok
}

// Sinks returns every connected sink. Returns nil when nobody is connected.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.sessions) == 0 {
		return nil
	}
	return lo.Values(r.sessions)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
