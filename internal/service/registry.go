package service

import "sync"

// Registry maps live room codes to their session actors.
type Registry struct {
	mu     sync.RWMutex
	actors map[string]*Actor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actors: make(map[string]*Actor),
	}
}

// Put registers an actor under a room code.
func (r *Registry) Put(code string, a *Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actors[code] = a
}

// Get returns the actor for a room code, if the room is live.
func (r *Registry) Get(code string) (*Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[code]
	return a, ok
}

// Remove stops and deregisters a room's actor.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	a, ok := r.actors[code]
	delete(r.actors, code)
	r.mu.Unlock()
	if ok {
		a.Stop()
	}
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}
