// Package store implements the per-entity record store: CRUD plus the
// sync-state transitions every synchronized record goes through.
package store

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tillworks/till/internal/db"
	"github.com/tillworks/till/internal/models"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrMarkSyncedFailed is returned when the synced flag did not persist even
// after a retry.
var ErrMarkSyncedFailed = errors.New("mark synced: flag did not persist")

// flagRetryDelay is the backoff before re-reading a just-written sync flag.
// A bounded retry replaces the fixed settling sleep some storage engines
// need for read-after-write visibility.
const flagRetryDelay = 50 * time.Millisecond

// Store is the record store for one entity type T. PT is the pointer type of
// T and carries the Record methods.
type Store[T any, PT interface {
	models.Record
	*T
}] struct {
	db  *db.DB
	log *zap.Logger
}

// New creates a store for one entity type.
func New[T any, PT interface {
	models.Record
	*T
}](database *db.DB, log *zap.Logger) *Store[T, PT] {
	var zero PT = new(T)
	return &Store[T, PT]{
		db:  database,
		log: log.Named("store").With(zap.String("entity", string(zero.Entity()))),
	}
}

// FindByID returns one record by local id, soft-deleted included.
func (s *Store[T, PT]) FindByID(id string) (PT, error) {
	var rec T
	err := s.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return &rec, nil
}

// FindAll returns every record that is not soft-deleted, in insertion order.
func (s *Store[T, PT]) FindAll() ([]T, error) {
	var recs []T
	if err := s.db.Where("is_deleted = ?", false).Order("created_at").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}
	return recs, nil
}

// FindByRemoteID returns the record holding the given backend id, or
// ErrNotFound.
func (s *Store[T, PT]) FindByRemoteID(remoteID string) (PT, error) {
	var rec T
	err := s.db.First(&rec, "remote_id = ?", remoteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: remote %s", ErrNotFound, remoteID)
	}
	if err != nil {
		return nil, fmt.Errorf("find by remote id: %w", err)
	}
	return &rec, nil
}

// Create persists a locally created record: assigns a type-prefixed id and
// timestamps, defaults the record to local-only, and normalizes monetary
// fields before the write. The download path uses CreateSynced instead.
func (s *Store[T, PT]) Create(rec PT) error {
	rec.Meta().Init(rec.Entity())
	rec.Meta().IsLocalOnly = true
	rec.NormalizeMoney()

	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	s.log.Debug("created", zap.String("id", rec.Meta().ID))
	return nil
}

// CreateSynced persists a record downloaded from the backend: it starts in
// the synced state, skipping the local-only default.
func (s *Store[T, PT]) CreateSynced(rec PT) error {
	meta := rec.Meta()
	if meta.ID == "" {
		meta.ID = models.NewID(rec.Entity())
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	meta.IsLocalOnly = false
	meta.IsDeleted = false
	now := time.Now().UTC()
	meta.LastSyncedAt = &now
	rec.NormalizeMoney()

	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("create synced: %w", err)
	}
	s.log.Debug("created from remote",
		zap.String("id", meta.ID), zap.String("remote_id", meta.RemoteID))
	return nil
}

// Update persists a local edit. The whole record is written (whole-record
// overwrite is the sync granularity), UpdatedAt advances and the record
// becomes a push candidate again.
func (s *Store[T, PT]) Update(rec PT) error {
	rec.Meta().Touch()
	rec.Meta().IsLocalOnly = true
	rec.NormalizeMoney()

	if err := s.db.Save(rec).Error; err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// ApplyRemote overwrites a local record with freshly downloaded state,
// bypassing the local-only flip that Update performs. The caller has already
// decided the remote copy wins; UpdatedAt is taken from the remote record.
// The write goes through UpdateColumns so GORM does not stamp UpdatedAt with
// the local wall clock, which would corrupt later last-write-wins checks.
func (s *Store[T, PT]) ApplyRemote(rec PT) error {
	meta := rec.Meta()
	meta.IsLocalOnly = false
	now := time.Now().UTC()
	meta.LastSyncedAt = &now
	rec.NormalizeMoney()

	res := s.db.Model(rec).Select("*").UpdateColumns(rec)
	if res.Error != nil {
		return fmt.Errorf("apply remote: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, meta.ID)
	}
	s.log.Debug("applied remote state",
		zap.String("id", meta.ID), zap.String("remote_id", meta.RemoteID))
	return nil
}

// SoftDelete marks a record deleted. If the backend never saw the record it
// is removed immediately: there is nothing to propagate.
func (s *Store[T, PT]) SoftDelete(id string) error {
	rec, err := s.FindByID(id)
	if err != nil {
		return err
	}

	meta := rec.Meta()
	if meta.RemoteID == "" && meta.IsLocalOnly {
		return s.Delete(id)
	}

	meta.MarkDeleted()
	if err := s.db.Save(rec).Error; err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	s.log.Debug("soft deleted", zap.String("id", id))
	return nil
}

// Restore clears the soft-delete marker.
func (s *Store[T, PT]) Restore(id string) error {
	rec, err := s.FindByID(id)
	if err != nil {
		return err
	}

	meta := rec.Meta()
	meta.IsDeleted = false
	meta.Touch()
	meta.IsLocalOnly = true
	if err := s.db.Save(rec).Error; err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// Delete removes the row for good. Used once a remote deletion is confirmed,
// or for records that never existed remotely.
func (s *Store[T, PT]) Delete(id string) error {
	var zero T
	if err := s.db.Delete(&zero, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	s.log.Debug("deleted", zap.String("id", id))
	return nil
}

// FindUnsynced returns the push candidates: live records with local edits,
// plus soft-deleted records whose deletion still has to reach the backend.
// Insertion order, so upload results are deterministic.
func (s *Store[T, PT]) FindUnsynced() ([]T, error) {
	var recs []T
	err := s.db.
		Where("(is_deleted = ? AND is_local_only = ?) OR (is_deleted = ? AND remote_id <> '')",
			false, true, true).
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find unsynced: %w", err)
	}
	return recs, nil
}

// MarkSynced records a successful push or pull for one record: clears the
// local-only flag, stamps LastSyncedAt, and stores the backend id when one
// was just assigned. Idempotent.
//
// The flag write is verified with a re-read; certain storage backends have
// been observed dropping it under load, so a failed verification gets one
// bounded retry before the error surfaces to the caller.
func (s *Store[T, PT]) MarkSynced(id, remoteID string) error {
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			s.log.Warn("sync flag retry", zap.String("id", id))
			time.Sleep(flagRetryDelay)
		}

		if err := s.writeSyncMarkers(id, remoteID); err != nil {
			return err
		}

		rec, err := s.FindByID(id)
		if err != nil {
			return fmt.Errorf("verify mark synced: %w", err)
		}
		if !rec.Meta().IsLocalOnly {
			s.log.Debug("marked synced",
				zap.String("id", id), zap.String("remote_id", rec.Meta().RemoteID))
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMarkSyncedFailed, id)
}

func (s *Store[T, PT]) writeSyncMarkers(id, remoteID string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"is_local_only":  false,
		"last_synced_at": now,
		"updated_at":     now,
	}
	if remoteID != "" {
		updates["remote_id"] = remoteID
	}

	var zero T
	res := s.db.Model(&zero).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("mark synced: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// SaveRepaired persists a foreign-key rewrite from the repair pass. The sync
// flags and UpdatedAt are left untouched: the rewrite aligns the record with
// remote state, it is not a local edit that needs pushing.
func (s *Store[T, PT]) SaveRepaired(rec PT) error {
	res := s.db.Model(rec).Select("*").UpdateColumns(rec)
	if res.Error != nil {
		return fmt.Errorf("save repaired: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.Meta().ID)
	}
	s.log.Debug("repair applied", zap.String("id", rec.Meta().ID))
	return nil
}

// RemapTable returns remote id → local id for every record of this type that
// already holds a backend id. Built fresh each sync cycle.
func (s *Store[T, PT]) RemapTable() (map[string]string, error) {
	var recs []T
	if err := s.db.Where("remote_id <> ''").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("remap table: %w", err)
	}

	remap := make(map[string]string, len(recs))
	for i := range recs {
		meta := PT(&recs[i]).Meta()
		remap[meta.RemoteID] = meta.ID
	}
	return remap, nil
}

// RemoteIDFor resolves one local id to its backend id. Empty when the record
// has not been pushed yet.
func (s *Store[T, PT]) RemoteIDFor(localID string) (string, error) {
	rec, err := s.FindByID(localID)
	if err != nil {
		return "", err
	}
	return rec.Meta().RemoteID, nil
}
