package models

import "time"

// Sync metadata keys.
const (
	SyncMetaLastFullSync  = "last_full_sync"
	SyncMetaSchemaVersion = "schema_version"
)

// SyncMeta is a key/value row for sync bookkeeping that doesn't belong to any
// one record (last full sync timestamp, per-entity download cursors).
type SyncMeta struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"size:255" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncMeta) TableName() string { return "sync_meta" }

// LastDownloadKey returns the sync_meta key holding the last download cursor
// for one entity type.
func LastDownloadKey(entity Entity) string {
	return "last_download_" + string(entity)
}
