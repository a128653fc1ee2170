// Package sync implements the synchronization engine: per-entity upload and
// download drivers, the orchestrator that sequences them in dependency
// order, and the foreign-key repair pass that runs after each full cycle.
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tillworks/till/internal/mapper"
	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/remote"
	"github.com/tillworks/till/internal/store"
)

// remoteRecord is satisfied by every downloaded wire record (they all embed
// remote.Meta).
type remoteRecord interface {
	RemoteMeta() remote.Meta
}

// Spec wires the per-entity pieces a driver cannot derive: the gateway
// resource path, the natural-key query field used for duplicate recovery,
// and the mapper functions.
type Spec[T any, PT interface {
	models.Record
	*T
}, R remoteRecord] struct {
	Path            string
	NaturalKeyField string
	ToRemote        func(PT, mapper.Resolver) interface{}
	ToLocal         func(R, mapper.Lookup) PT
	// RemoteRefs extracts the backend-side foreign keys of a downloaded
	// record. Nil for entity types without outgoing references; those are
	// skipped by the repair pass.
	RemoteRefs func(R) map[models.Entity]string
}

// Driver synchronizes one entity type against the gateway. Records are
// processed strictly in sequence; a record is fully committed or failed
// before the next one starts, so an interrupted run never leaves a record
// claiming a success that did not happen.
type Driver[T any, PT interface {
	models.Record
	*T
}, R remoteRecord] struct {
	entity models.Entity
	store  *store.Store[T, PT]
	gw     remote.Gateway
	spec   Spec[T, PT, R]
	log    *zap.Logger
}

// NewDriver creates the sync driver for one entity type.
func NewDriver[T any, PT interface {
	models.Record
	*T
}, R remoteRecord](st *store.Store[T, PT], gw remote.Gateway, log *zap.Logger, spec Spec[T, PT, R]) *Driver[T, PT, R] {
	var zero PT = new(T)
	entity := zero.Entity()
	return &Driver[T, PT, R]{
		entity: entity,
		store:  st,
		gw:     gw,
		spec:   spec,
		log:    log.Named("sync").With(zap.String("entity", string(entity))),
	}
}

// Entity returns the entity type this driver owns.
func (d *Driver[T, PT, R]) Entity() models.Entity { return d.entity }

func (d *Driver[T, PT, R]) registerLookup(cycle *Cycle) {
	cycle.RegisterStoreLookup(d.entity, d.store.RemoteIDFor)
}

func (d *Driver[T, PT, R]) decode(raw json.RawMessage) (R, error) {
	var rec R
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode %s record: %w", d.entity, err)
	}
	return rec, nil
}

// Upload pushes every unsynced record of this entity type: pending remote
// deletions first-class among them, new records via create with natural-key
// duplicate recovery, previously synced records via whole-record update.
// Per-record failures accumulate in the result and never abort the batch.
func (d *Driver[T, PT, R]) Upload(ctx context.Context, cycle *Cycle) Result {
	res := Result{Entity: string(d.entity)}

	recs, err := d.store.FindUnsynced()
	if err != nil {
		res.addError("query", err)
		return res
	}
	res.Total = len(recs)

	resolve := func(entity models.Entity, localID string) (string, bool) {
		return cycle.RemoteIDFor(entity, localID)
	}

	for i := range recs {
		rec := PT(&recs[i])
		meta := rec.Meta()

		if meta.IsDeleted {
			d.uploadDelete(ctx, rec, &res)
			continue
		}

		payload := d.spec.ToRemote(rec, resolve)
		if meta.RemoteID == "" {
			d.uploadCreate(ctx, rec, payload, cycle, &res)
		} else {
			d.uploadUpdate(ctx, rec, payload, cycle, &res)
		}
	}

	return res
}

// uploadDelete propagates a pending soft delete, then hard-removes the local
// row. The local write happens strictly after the remote call succeeds. A
// not-found answer counts as success: the backend already forgot the record.
func (d *Driver[T, PT, R]) uploadDelete(ctx context.Context, rec PT, res *Result) {
	meta := rec.Meta()

	err := d.gw.Delete(ctx, d.spec.Path, meta.RemoteID)
	if err != nil && !remote.IsKind(err, remote.KindNotFound) {
		res.addError(meta.ID, err)
		return
	}

	if err := d.store.Delete(meta.ID); err != nil {
		res.addError(meta.ID, err)
		return
	}

	res.Uploaded++
	d.log.Info("delete propagated",
		zap.String("id", meta.ID), zap.String("remote_id", meta.RemoteID))
}

// uploadCreate pushes a record the backend has never seen. When the backend
// answers "duplicate", a previous push from this or another device already
// created the row; the natural-key lookup adopts its id instead of creating
// a second remote record.
func (d *Driver[T, PT, R]) uploadCreate(ctx context.Context, rec PT, payload interface{}, cycle *Cycle, res *Result) {
	meta := rec.Meta()

	raw, err := d.gw.Create(ctx, d.spec.Path, payload)
	if err != nil {
		if !remote.IsKind(err, remote.KindDuplicate) {
			res.addError(meta.ID, err)
			return
		}

		raw, err = d.gw.FindByNaturalKey(ctx, d.spec.Path, d.spec.NaturalKeyField, rec.NaturalKey())
		if err != nil {
			res.addError(meta.ID, fmt.Errorf("duplicate recovery: %w", err))
			return
		}
		d.log.Info("adopted existing remote record",
			zap.String("id", meta.ID),
			zap.String("natural_key", rec.NaturalKey()))
	}

	remoteRec, err := d.decode(raw)
	if err != nil {
		res.addError(meta.ID, err)
		return
	}

	remoteID := remoteRec.RemoteMeta().ID
	if err := d.store.MarkSynced(meta.ID, remoteID); err != nil {
		res.addError(meta.ID, err)
		return
	}

	cycle.AddMapping(d.entity, meta.ID, remoteID)
	res.Uploaded++
}

// uploadUpdate overwrites the remote copy with the full current field set.
// No partial-field merge happens on the backend.
func (d *Driver[T, PT, R]) uploadUpdate(ctx context.Context, rec PT, payload interface{}, cycle *Cycle, res *Result) {
	meta := rec.Meta()

	if _, err := d.gw.Update(ctx, d.spec.Path, meta.RemoteID, payload); err != nil {
		res.addError(meta.ID, err)
		return
	}

	if err := d.store.MarkSynced(meta.ID, ""); err != nil {
		res.addError(meta.ID, err)
		return
	}

	cycle.AddMapping(d.entity, meta.ID, meta.RemoteID)
	res.Uploaded++
}

// Download pulls the tenant-scoped remote record set and reconciles it with
// the local store: known records are overwritten only when the remote copy
// is strictly newer, unknown records are created directly in the synced
// state. Ties and "local newer" keep the local copy, on the assumption the
// pending edits were pushed by the upload phase that precedes download in a
// full cycle.
func (d *Driver[T, PT, R]) Download(ctx context.Context, cycle *Cycle, tenantID string) Result {
	res := Result{Entity: string(d.entity)}

	items, err := d.gw.List(ctx, d.spec.Path, tenantID)
	if err != nil {
		res.addError("list", err)
		return res
	}
	res.Total = len(items)

	remap, err := d.store.RemapTable()
	if err != nil {
		res.addError("remap", err)
		return res
	}
	cycle.MergeRemap(d.entity, remap)

	lookup := func(entity models.Entity, remoteID string) (string, bool) {
		return cycle.LocalIDFor(entity, remoteID)
	}

	for _, raw := range items {
		remoteRec, err := d.decode(raw)
		if err != nil {
			res.addError("download", err)
			continue
		}
		rmeta := remoteRec.RemoteMeta()

		localID, known := remap[rmeta.ID]
		if !known {
			mapped := d.spec.ToLocal(remoteRec, lookup)
			if err := d.store.CreateSynced(mapped); err != nil {
				res.addError(rmeta.ID, err)
				continue
			}
			cycle.AddMapping(d.entity, mapped.Meta().ID, rmeta.ID)
			res.Downloaded++
			continue
		}

		local, err := d.store.FindByID(localID)
		if err != nil {
			res.addError(localID, err)
			continue
		}

		if !rmeta.UpdatedAt.After(local.Meta().UpdatedAt) {
			if local.Meta().IsLocalOnly {
				// Outside a full cycle this can silently shadow a
				// remote update; make the degradation visible.
				d.log.Warn("keeping local copy with pending edits",
					zap.String("id", localID),
					zap.String("remote_id", rmeta.ID))
			}
			continue
		}

		mapped := d.spec.ToLocal(remoteRec, lookup)
		mapped.Meta().ID = localID
		mapped.Meta().CreatedAt = local.Meta().CreatedAt
		if err := d.store.ApplyRemote(mapped); err != nil {
			res.addError(localID, err)
			continue
		}
		res.Downloaded++
	}

	return res
}

// Repair rewrites local foreign keys that went stale because a record was
// created before its parent had a backend id. Each synced record's remote
// counterpart is re-fetched; its backend-side references are mapped through
// the cycle's remap tables and compared against the local ones. Repair is
// best effort: individual failures are logged and reported but never fail
// the sync.
func (d *Driver[T, PT, R]) Repair(ctx context.Context, cycle *Cycle) []error {
	if d.spec.RemoteRefs == nil {
		return nil
	}

	recs, err := d.store.FindAll()
	if err != nil {
		return []error{fmt.Errorf("repair %s: %w", d.entity, err)}
	}

	var errs []error
	for i := range recs {
		rec := PT(&recs[i])
		meta := rec.Meta()
		if meta.RemoteID == "" {
			continue
		}

		refRec, ok := models.Record(rec).(models.RefSetter)
		if !ok {
			continue
		}

		raw, err := d.gw.Get(ctx, d.spec.Path, meta.RemoteID)
		if err != nil {
			errs = append(errs, fmt.Errorf("repair %s %s: %w", d.entity, meta.ID, err))
			continue
		}

		remoteRec, err := d.decode(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		localRefs := refRec.Refs()
		changed := false
		for entity, remoteFK := range d.spec.RemoteRefs(remoteRec) {
			if remoteFK == "" {
				continue
			}
			wantLocal, known := cycle.LocalIDFor(entity, remoteFK)
			if !known || localRefs[entity] == wantLocal {
				continue
			}
			refRec.SetRef(entity, wantLocal)
			changed = true
			d.log.Info("repaired foreign key",
				zap.String("id", meta.ID),
				zap.String("ref_entity", string(entity)),
				zap.String("new_local_id", wantLocal))
		}

		if !changed {
			continue
		}
		if err := d.store.SaveRepaired(rec); err != nil {
			errs = append(errs, fmt.Errorf("repair %s %s: %w", d.entity, meta.ID, err))
		}
	}

	return errs
}
