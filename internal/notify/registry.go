// Package notify holds the registry that maps callback identifiers to the
// notification payloads shown when a post button is pressed. Entries are
// derived data: the post store rebuilds them from button lists on every save,
// delete and full reload.
package notify

import (
	"sync"

	"postbot/internal/models"
)

// Registry is safe for concurrent use. Lookups may run concurrently with
// rebuilds; a rebuild swaps in a complete replacement map so readers never
// observe a partially cleared registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]models.Notification
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]models.Notification)}
}

// Register upserts the notification for a callback id. Registering an empty
// id is a no-op.
func (r *Registry) Register(callbackID string, n models.Notification) {
	if callbackID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[callbackID] = n
}

// Lookup returns the notification registered for a callback id.
func (r *Registry) Lookup(callbackID string) (models.Notification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.entries[callbackID]
	return n, ok
}

// Unregister removes the entry for a callback id if present.
func (r *Registry) Unregister(callbackID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, callbackID)
}

// Reset replaces the whole registry with the given entries in one step.
func (r *Registry) Reset(entries map[string]models.Notification) {
	if entries == nil {
		entries = make(map[string]models.Notification)
	}
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// Len returns the number of registered notifications.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
