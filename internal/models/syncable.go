// Package models defines the core data structures for Till.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity identifies one synchronized record collection.
type Entity string

// Entity types, in no particular order. Sync ordering is owned by the
// orchestrator, not by this package.
const (
	EntityBusiness Entity = "business"
	EntityEmployee Entity = "employee"
	EntityCustomer Entity = "customer"
	EntityCategory Entity = "category"
	EntityProduct  Entity = "product"
	EntityOrder    Entity = "order"
	EntityRack     Entity = "rack"
)

// AllEntities lists every synchronized entity type.
var AllEntities = []Entity{
	EntityBusiness,
	EntityEmployee,
	EntityCustomer,
	EntityCategory,
	EntityProduct,
	EntityOrder,
	EntityRack,
}

// idPrefixes maps each entity type to the prefix used in locally
// generated identifiers, e.g. "cus_5f3a...".
var idPrefixes = map[Entity]string{
	EntityBusiness: "biz",
	EntityEmployee: "emp",
	EntityCustomer: "cus",
	EntityCategory: "cat",
	EntityProduct:  "prd",
	EntityOrder:    "ord",
	EntityRack:     "rck",
}

// NewID generates a stable, type-prefixed local identifier.
func NewID(entity Entity) string {
	prefix, ok := idPrefixes[entity]
	if !ok {
		prefix = "rec"
	}
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

// Syncable provides the bookkeeping fields shared by every record that
// participates in synchronization. It gets embedded in each domain type.
//
// Lifecycle: a record created on the device starts with IsLocalOnly=true and
// no RemoteID. A successful push sets RemoteID, clears IsLocalOnly and stamps
// LastSyncedAt. Any later local edit flips IsLocalOnly back to true. A record
// downloaded from the backend is created directly in the synced state.
type Syncable struct {
	ID           string     `gorm:"primaryKey;size:40" json:"id"`
	RemoteID     string     `gorm:"size:64;index" json:"remote_id,omitempty"`
	IsLocalOnly  bool       `gorm:"default:true;index" json:"is_local_only"`
	IsDeleted    bool       `gorm:"default:false;index" json:"is_deleted"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Meta returns the embedded sync bookkeeping. It exists so generic code can
// reach the shared fields through an interface without reflection.
func (s *Syncable) Meta() *Syncable { return s }

// Touch advances UpdatedAt. Call on every local mutation.
func (s *Syncable) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Init stamps a fresh record: new local id, both timestamps set to now,
// local-only by default.
func (s *Syncable) Init(entity Entity) {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = NewID(entity)
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.RemoteID == "" {
		s.IsLocalOnly = true
	}
}

// MarkDeleted soft-deletes the record. Physical removal is deferred until the
// deletion has propagated to the backend (or immediately, for records the
// backend never saw).
func (s *Syncable) MarkDeleted() {
	s.IsDeleted = true
	s.Touch()
}

// NeedsUpload reports whether the record is a push candidate: either it holds
// local edits the backend has not seen, or it is a pending remote deletion.
func (s *Syncable) NeedsUpload() bool {
	if s.IsDeleted {
		return s.RemoteID != ""
	}
	return s.IsLocalOnly
}

// Record is implemented by every syncable domain type (on the pointer
// receiver). It gives generic store and sync code access to the shared
// bookkeeping plus the per-type facts it cannot derive.
type Record interface {
	Meta() *Syncable
	Entity() Entity
	// NaturalKey returns the domain-unique value used for duplicate
	// detection on push (e.g. a product SKU). Empty means the type has no
	// usable natural key.
	NaturalKey() string
	// NormalizeMoney rounds every monetary field, including nested ones,
	// to an exact multiple of 0.01. Types without monetary fields provide
	// a no-op.
	NormalizeMoney()
}

// RefSetter is implemented by record types that carry foreign keys. The sync
// engine's repair pass uses it to rewrite references after parents gain their
// durable remote identity.
type RefSetter interface {
	// Refs returns the current foreign keys as entity → local id.
	Refs() map[Entity]string
	// SetRef rewrites one foreign key to a new local id.
	SetRef(entity Entity, localID string)
}
