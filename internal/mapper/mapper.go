// Package mapper translates between local record shapes and the remote wire
// shapes, in both directions. Mappers are stateless; foreign-key resolution
// is delegated to caller-supplied functions so the mappers never touch the
// store or the id-remap tables themselves.
package mapper

import (
	"time"

	"github.com/tillworks/till/internal/models"
)

// Resolver maps a foreign key's local id to the parent's backend id.
// ok=false means the parent has not been pushed yet; the mapper then omits
// the field and the repair pass deals with it after the parent syncs.
type Resolver func(entity models.Entity, localID string) (remoteID string, ok bool)

// Lookup is the inverse: it maps a parent's backend id to its local id
// during download. ok=false leaves the foreign key empty for the repair
// pass.
type Lookup func(entity models.Entity, remoteID string) (localID string, ok bool)

// syncedMeta builds the bookkeeping for a freshly downloaded record: synced
// state, backend id adopted, timestamps taken from the backend.
func syncedMeta(remoteID string, createdAt, updatedAt time.Time) models.Syncable {
	now := time.Now().UTC()
	return models.Syncable{
		RemoteID:     remoteID,
		IsLocalOnly:  false,
		IsDeleted:    false,
		LastSyncedAt: &now,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// resolveRef runs one foreign key through the resolver, returning "" when the
// parent has no backend id yet.
func resolveRef(resolve Resolver, entity models.Entity, localID string) string {
	if localID == "" {
		return ""
	}
	if remoteID, ok := resolve(entity, localID); ok {
		return remoteID
	}
	return ""
}

// lookupRef runs one downloaded foreign key through the reverse lookup,
// returning "" when no local counterpart of the parent exists yet.
func lookupRef(lookup Lookup, entity models.Entity, remoteID string) string {
	if remoteID == "" {
		return ""
	}
	if localID, ok := lookup(entity, remoteID); ok {
		return localID
	}
	return ""
}
