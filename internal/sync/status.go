package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/tillworks/till/internal/db"
	"github.com/tillworks/till/internal/models"
)

// Status is the read-only snapshot the CLI polls. It never blocks on an
// in-flight sync.
type Status struct {
	IsUploading   bool              `json:"is_uploading"`
	IsDownloading bool              `json:"is_downloading"`
	LastFullSync  *time.Time        `json:"last_full_sync,omitempty"`
	Counts        map[string]int64  `json:"counts"`
	Unsynced      int64             `json:"unsynced"`
	LastDownloads map[string]string `json:"last_downloads,omitempty"`
}

// Snapshot collects sync state from the local database alone: last full sync
// timestamp, live record counts, download cursors and the number of push
// candidates. It needs no backend, so the CLI can report on an offline
// register.
func Snapshot(database *db.DB) (*Status, error) {
	st := &Status{LastDownloads: make(map[string]string)}

	stats, err := database.GetStats()
	if err != nil {
		return nil, err
	}
	st.Counts = stats.Counts
	st.Unsynced = stats.Unsynced

	if raw, err := database.GetSyncMeta(models.SyncMetaLastFullSync); err == nil && raw != "" {
		if ts, perr := time.Parse(time.RFC3339, raw); perr == nil {
			st.LastFullSync = &ts
		}
	}

	for _, entity := range models.AllEntities {
		key := models.LastDownloadKey(entity)
		if raw, err := database.GetSyncMeta(key); err == nil && raw != "" {
			st.LastDownloads[string(entity)] = raw
		}
	}

	return st, nil
}

// Status adds the in-flight flags of this orchestrator to a database
// snapshot.
func (o *Orchestrator) Status() (*Status, error) {
	st, err := Snapshot(o.database)
	if err != nil {
		return nil, err
	}
	st.IsUploading = o.uploading.Load()
	st.IsDownloading = o.downloading.Load()
	return st, nil
}

// ResetCursors clears the sync bookkeeping: the last full sync timestamp and
// every per-entity download cursor. Record data and remote ids are untouched,
// so the next cycle re-reconciles everything instead of trusting stale
// cursors.
func ResetCursors(database *db.DB) error {
	meta, err := database.GetAllSyncMeta()
	if err != nil {
		return fmt.Errorf("read sync meta: %w", err)
	}

	for key := range meta {
		if key != models.SyncMetaLastFullSync && !strings.HasPrefix(key, "last_download_") {
			continue
		}
		if err := database.DeleteSyncMeta(key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
