package flow

import (
	"sync"
	"time"
)

// Registry holds one flow per visitor. Flows are transient UI state; idle
// instances are swept after flowTTL so abandoned registrations don't pile
// up in memory.
type Registry struct {
	svc Service

	mu    sync.Mutex
	flows map[string]*entry
}

type entry struct {
	flow    *Flow
	touched time.Time
}

const flowTTL = 30 * time.Minute

func NewRegistry(svc Service) *Registry {
	return &Registry{svc: svc, flows: make(map[string]*entry)}
}

// Get returns the visitor's flow, creating a fresh one at ChooseType if
// none exists.
func (r *Registry) Get(visitorID string) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.flows[visitorID]; ok {
		e.touched = time.Now()
		return e.flow
	}
	f := New(r.svc)
	r.flows[visitorID] = &entry{flow: f, touched: time.Now()}
	return f
}

// Drop removes the visitor's flow entirely (cancel, or successful finish).
func (r *Registry) Drop(visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.flows[visitorID]; ok {
		e.flow.Cancel()
		delete(r.flows, visitorID)
	}
}

// Sweep removes flows idle longer than the TTL. Run it periodically from
// the entrypoint.
func (r *Registry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-flowTTL)
	for id, e := range r.flows {
		if e.touched.Before(cutoff) {
			delete(r.flows, id)
		}
	}
}
