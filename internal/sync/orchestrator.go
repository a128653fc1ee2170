package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tillworks/till/internal/db"
	"github.com/tillworks/till/internal/mapper"
	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/remote"
	"github.com/tillworks/till/internal/session"
	"github.com/tillworks/till/internal/store"
)

// ErrSyncInProgress is returned when an upload or download is requested
// while one is already running. The new request is rejected synchronously;
// nothing is queued and the in-flight run is not touched.
var ErrSyncInProgress = errors.New("sync already in progress")

// runner is the entity-type-agnostic view of a Driver the orchestrator
// sequences.
type runner interface {
	Entity() models.Entity
	Upload(ctx context.Context, cycle *Cycle) Result
	Download(ctx context.Context, cycle *Cycle, tenantID string) Result
	Repair(ctx context.Context, cycle *Cycle) []error
	registerLookup(cycle *Cycle)
}

// Orchestrator sequences the entity drivers in dependency order: parents
// before the records referencing them. It owns the global in-progress
// guards and the cumulative status surface the CLI polls.
type Orchestrator struct {
	database *db.DB
	tenants  session.Provider
	runners  []runner
	log      *zap.Logger

	uploading   atomic.Bool
	downloading atomic.Bool
}

// NewOrchestrator builds the full driver chain. Each driver gets only the
// store and mapper wiring it needs; nothing here is shared process-global
// state.
func NewOrchestrator(database *db.DB, gw remote.Gateway, tenants session.Provider, log *zap.Logger) *Orchestrator {
	runners := []runner{
		NewDriver(store.New[models.Business](database, log), gw, log, Spec[models.Business, *models.Business, remote.BusinessRecord]{
			Path:            "businesses",
			NaturalKeyField: "code",
			ToRemote: func(b *models.Business, r mapper.Resolver) interface{} {
				return mapper.BusinessToRemote(b, r)
			},
			ToLocal: mapper.BusinessToLocal,
		}),
		NewDriver(store.New[models.Employee](database, log), gw, log, Spec[models.Employee, *models.Employee, remote.EmployeeRecord]{
			Path:            "employees",
			NaturalKeyField: "email",
			ToRemote: func(e *models.Employee, r mapper.Resolver) interface{} {
				return mapper.EmployeeToRemote(e, r)
			},
			ToLocal:    mapper.EmployeeToLocal,
			RemoteRefs: mapper.EmployeeRemoteRefs,
		}),
		NewDriver(store.New[models.Customer](database, log), gw, log, Spec[models.Customer, *models.Customer, remote.CustomerRecord]{
			Path:            "customers",
			NaturalKeyField: "phone",
			ToRemote: func(c *models.Customer, r mapper.Resolver) interface{} {
				return mapper.CustomerToRemote(c, r)
			},
			ToLocal: mapper.CustomerToLocal,
		}),
		NewDriver(store.New[models.Category](database, log), gw, log, Spec[models.Category, *models.Category, remote.CategoryRecord]{
			Path:            "categories",
			NaturalKeyField: "name",
			ToRemote: func(c *models.Category, r mapper.Resolver) interface{} {
				return mapper.CategoryToRemote(c, r)
			},
			ToLocal:    mapper.CategoryToLocal,
			RemoteRefs: mapper.CategoryRemoteRefs,
		}),
		NewDriver(store.New[models.Product](database, log), gw, log, Spec[models.Product, *models.Product, remote.ProductRecord]{
			Path:            "products",
			NaturalKeyField: "sku",
			ToRemote: func(p *models.Product, r mapper.Resolver) interface{} {
				return mapper.ProductToRemote(p, r)
			},
			ToLocal:    mapper.ProductToLocal,
			RemoteRefs: mapper.ProductRemoteRefs,
		}),
		NewDriver(store.New[models.Order](database, log), gw, log, Spec[models.Order, *models.Order, remote.OrderRecord]{
			Path:            "orders",
			NaturalKeyField: "number",
			ToRemote: func(o *models.Order, r mapper.Resolver) interface{} {
				return mapper.OrderToRemote(o, r)
			},
			ToLocal:    mapper.OrderToLocal,
			RemoteRefs: mapper.OrderRemoteRefs,
		}),
		NewDriver(store.New[models.RackAssignment](database, log), gw, log, Spec[models.RackAssignment, *models.RackAssignment, remote.RackRecord]{
			Path:            "racks",
			NaturalKeyField: "slot",
			ToRemote: func(ra *models.RackAssignment, r mapper.Resolver) interface{} {
				return mapper.RackToRemote(ra, r)
			},
			ToLocal:    mapper.RackToLocal,
			RemoteRefs: mapper.RackRemoteRefs,
		}),
	}

	return &Orchestrator{
		database: database,
		tenants:  tenants,
		runners:  runners,
		log:      log.Named("orchestrator"),
	}
}

func (o *Orchestrator) newCycle() *Cycle {
	cycle := NewCycle()
	for _, r := range o.runners {
		r.registerLookup(cycle)
	}
	return cycle
}

// UploadAll pushes unsynced records for every entity type, parents first.
func (o *Orchestrator) UploadAll(ctx context.Context) (*Report, error) {
	if !o.uploading.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("upload: %w", ErrSyncInProgress)
	}
	defer o.uploading.Store(false)

	cycle := o.newCycle()
	report := o.uploadPhase(ctx, cycle)
	return report, nil
}

// DownloadAll pulls remote state for every entity type, parents first. The
// tenant context is resolved up front; without it nothing is fetched.
func (o *Orchestrator) DownloadAll(ctx context.Context) (*Report, error) {
	if !o.downloading.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("download: %w", ErrSyncInProgress)
	}
	defer o.downloading.Store(false)

	tenantID, err := o.tenants.CurrentTenantID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	cycle := o.newCycle()
	report := o.downloadPhase(ctx, cycle, tenantID)
	return report, nil
}

// FullSync runs a complete cycle: upload everything, download everything,
// then repair foreign keys using the remap tables the cycle accumulated.
// The upload phase strictly precedes download so pending local edits win
// the pull-side timestamp comparison legitimately.
func (o *Orchestrator) FullSync(ctx context.Context) (*Report, error) {
	if !o.uploading.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("full sync: %w", ErrSyncInProgress)
	}
	defer o.uploading.Store(false)
	if !o.downloading.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("full sync: %w", ErrSyncInProgress)
	}
	defer o.downloading.Store(false)

	tenantID, err := o.tenants.CurrentTenantID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	cycle := o.newCycle()
	report := &Report{Success: true}

	up := o.uploadPhase(ctx, cycle)
	down := o.downloadPhase(ctx, cycle, tenantID)
	for _, res := range up.Results {
		report.add(res)
	}
	for _, res := range down.Results {
		report.add(res)
	}

	o.repairPhase(ctx, cycle)

	if err := o.database.SetSyncMeta(models.SyncMetaLastFullSync, time.Now().UTC().Format(time.RFC3339)); err != nil {
		o.log.Warn("record last full sync", zap.Error(err))
	}

	o.log.Info("full sync finished",
		zap.Bool("success", report.Success),
		zap.Int("uploaded", report.TotalUploaded()),
		zap.Int("downloaded", report.TotalDownloaded()),
		zap.Int("errors", len(report.Errors)))

	return report, nil
}

func (o *Orchestrator) uploadPhase(ctx context.Context, cycle *Cycle) *Report {
	report := &Report{Success: true}
	for _, r := range o.runners {
		res := r.Upload(ctx, cycle)
		report.add(res)
		o.log.Info("upload phase",
			zap.String("entity", string(r.Entity())),
			zap.Int("total", res.Total),
			zap.Int("uploaded", res.Uploaded),
			zap.Int("failed", res.Failed))
	}
	return report
}

func (o *Orchestrator) downloadPhase(ctx context.Context, cycle *Cycle, tenantID string) *Report {
	report := &Report{Success: true}
	for _, r := range o.runners {
		res := r.Download(ctx, cycle, tenantID)
		report.add(res)
		o.log.Info("download phase",
			zap.String("entity", string(r.Entity())),
			zap.Int("total", res.Total),
			zap.Int("downloaded", res.Downloaded),
			zap.Int("failed", res.Failed))

		if key := models.LastDownloadKey(r.Entity()); res.OK() {
			if err := o.database.SetSyncMeta(key, time.Now().UTC().Format(time.RFC3339)); err != nil {
				o.log.Warn("record download cursor", zap.Error(err))
			}
		}
	}
	return report
}

// repairPhase is best effort: errors are logged, never escalated.
func (o *Orchestrator) repairPhase(ctx context.Context, cycle *Cycle) {
	for _, r := range o.runners {
		for _, err := range r.Repair(ctx, cycle) {
			o.log.Warn("foreign key repair", zap.Error(err))
		}
	}
}
