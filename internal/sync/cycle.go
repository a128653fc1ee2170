package sync

import (
	"sync"

	"github.com/tillworks/till/internal/models"
)

// Cycle carries the state shared by all entity drivers within one sync run:
// the id-remap tables (backend id ↔ local id, per entity type) built as
// records are pushed and pulled, plus fallback lookups into the stores for
// records synced in earlier runs. A fresh Cycle is built for every run and
// discarded afterwards; the remap tables never outlive it.
type Cycle struct {
	mu sync.Mutex

	// remoteToLocal and localToRemote accumulate mappings observed during
	// this run.
	remoteToLocal map[models.Entity]map[string]string
	localToRemote map[models.Entity]map[string]string

	// storeRemoteID consults the entity's store for mappings established
	// in earlier runs. Registered per entity by the orchestrator.
	storeRemoteID map[models.Entity]func(localID string) (string, error)
}

// NewCycle creates an empty cycle.
func NewCycle() *Cycle {
	return &Cycle{
		remoteToLocal: make(map[models.Entity]map[string]string),
		localToRemote: make(map[models.Entity]map[string]string),
		storeRemoteID: make(map[models.Entity]func(string) (string, error)),
	}
}

// RegisterStoreLookup wires the store-backed local→remote lookup for one
// entity type.
func (c *Cycle) RegisterStoreLookup(entity models.Entity, fn func(localID string) (string, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeRemoteID[entity] = fn
}

// AddMapping records that a local record now corresponds to a backend id.
func (c *Cycle) AddMapping(entity models.Entity, localID, remoteID string) {
	if localID == "" || remoteID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remoteToLocal[entity] == nil {
		c.remoteToLocal[entity] = make(map[string]string)
		c.localToRemote[entity] = make(map[string]string)
	}
	c.remoteToLocal[entity][remoteID] = localID
	c.localToRemote[entity][localID] = remoteID
}

// RemoteIDFor resolves a local id to its backend id: first from this cycle's
// table, then from the entity's store.
func (c *Cycle) RemoteIDFor(entity models.Entity, localID string) (string, bool) {
	c.mu.Lock()
	remoteID, ok := c.localToRemote[entity][localID]
	lookup := c.storeRemoteID[entity]
	c.mu.Unlock()

	if ok {
		return remoteID, true
	}
	if lookup == nil {
		return "", false
	}

	remoteID, err := lookup(localID)
	if err != nil || remoteID == "" {
		return "", false
	}
	c.AddMapping(entity, localID, remoteID)
	return remoteID, true
}

// LocalIDFor resolves a backend id to the local id it maps to in this cycle.
func (c *Cycle) LocalIDFor(entity models.Entity, remoteID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	localID, ok := c.remoteToLocal[entity][remoteID]
	return localID, ok
}

// MergeRemap folds a store-built remap table (remote id → local id) into the
// cycle, as the download phase does before walking the remote record set.
func (c *Cycle) MergeRemap(entity models.Entity, remap map[string]string) {
	for remoteID, localID := range remap {
		c.AddMapping(entity, localID, remoteID)
	}
}
