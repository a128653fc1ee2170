package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tillworks/till/internal/db"
	"github.com/tillworks/till/internal/mapper"
	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/remote"
	"github.com/tillworks/till/internal/store"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(db.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})

	return database
}

func customerSpec() Spec[models.Customer, *models.Customer, remote.CustomerRecord] {
	return Spec[models.Customer, *models.Customer, remote.CustomerRecord]{
		Path:            "customers",
		NaturalKeyField: "phone",
		ToRemote: func(c *models.Customer, r mapper.Resolver) interface{} {
			return mapper.CustomerToRemote(c, r)
		},
		ToLocal: mapper.CustomerToLocal,
	}
}

func newCustomerDriver(t *testing.T, gw remote.Gateway) (*Driver[models.Customer, *models.Customer, remote.CustomerRecord], *store.Store[models.Customer, *models.Customer]) {
	t.Helper()

	database := testDB(t)
	st := store.New[models.Customer](database, zap.NewNop())
	return NewDriver(st, gw, zap.NewNop(), customerSpec()), st
}

func testCycle(d interface{ registerLookup(*Cycle) }) *Cycle {
	cycle := NewCycle()
	d.registerLookup(cycle)
	return cycle
}

func TestUpload_CreateMarksSynced(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May", LastName: "Lin"}
	require.NoError(t, st.Create(c))

	res := driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Uploaded)

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.RemoteID)
	assert.False(t, got.IsLocalOnly)
	require.NotNil(t, got.LastSyncedAt)

	// The backend holds exactly one customer.
	items, err := gw.List(context.Background(), "customers", "t1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpload_SecondRunIsNoop(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	require.NoError(t, st.Create(&models.Customer{Phone: "555-0100", FirstName: "May"}))

	res := driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)

	res = driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 1, gw.createCalls["customers"])
}

func TestUpload_DuplicateAdoptsExistingRemote(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	// Another device already pushed this customer.
	gw.seed("customers", "r77", map[string]interface{}{
		"phone":      "555-0100",
		"first_name": "May",
		"last_name":  "Lin",
	})

	c := &models.Customer{Phone: "555-0100", FirstName: "May", LastName: "Lin"}
	require.NoError(t, st.Create(c))

	res := driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Uploaded)

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "r77", got.RemoteID)
	assert.False(t, got.IsLocalOnly)

	// No second remote record was created.
	items, err := gw.List(context.Background(), "customers", "t1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpload_UpdatePushesFullRecord(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May", LastName: "Lin"}
	require.NoError(t, st.Create(c))
	require.Empty(t, driver.Upload(context.Background(), testCycle(driver)).Errors)

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)
	got.Notes = "no starch on collars"
	require.NoError(t, st.Update(got))

	res := driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Uploaded)

	raw, err := gw.Get(context.Background(), "customers", got.RemoteID)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "no starch on collars")

	got, err = st.FindByID(c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLocalOnly)
}

func TestUpload_DeletePropagatesExactlyOnce(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May"}
	require.NoError(t, st.Create(c))
	require.Empty(t, driver.Upload(context.Background(), testCycle(driver)).Errors)

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)
	remoteID := got.RemoteID

	require.NoError(t, st.SoftDelete(c.ID))

	res := driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, 1, gw.deleteCalls["customers/"+remoteID])

	// Tombstone is gone; a second run has nothing to push.
	_, err = st.FindByID(c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	res = driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 1, gw.deleteCalls["customers/"+remoteID])
}

func TestUpload_DeleteRemoteAlreadyGone(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May"}
	require.NoError(t, st.Create(c))
	require.Empty(t, driver.Upload(context.Background(), testCycle(driver)).Errors)

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)

	// The backend forgot the record between runs.
	require.NoError(t, gw.Delete(context.Background(), "customers", got.RemoteID))

	require.NoError(t, st.SoftDelete(c.ID))
	res := driver.Upload(context.Background(), testCycle(driver))
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Uploaded)

	_, err = st.FindByID(c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpload_FailureDoesNotAbortBatch(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	require.NoError(t, st.Create(&models.Customer{Phone: "555-0100", FirstName: "A"}))
	require.NoError(t, st.Create(&models.Customer{Phone: "555-0101", FirstName: "B"}))

	gw.failCreate["customers"] = &remote.Error{Kind: remote.KindValidation, Message: "bad phone", StatusCode: 422}

	res := driver.Upload(context.Background(), testCycle(driver))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
}

func TestDownload_CreatesSyncedRecords(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	gw.seed("customers", "r1", map[string]interface{}{
		"phone":      "555-0100",
		"first_name": "May",
		"last_name":  "Lin",
	})

	res := driver.Download(context.Background(), testCycle(driver), "t1")
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Downloaded)

	got, err := st.FindByRemoteID("r1")
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Phone)
	assert.False(t, got.IsLocalOnly)
	assert.NotNil(t, got.LastSyncedAt)
	assert.NotEmpty(t, got.ID)
	assert.NotEqual(t, "r1", got.ID)
}

func TestDownload_AppliesStrictlyNewerRemote(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May"}
	require.NoError(t, st.Create(c))
	require.NoError(t, st.MarkSynced(c.ID, "r1"))

	gw.seed("customers", "r1", map[string]interface{}{
		"phone":      "555-0100",
		"first_name": "Maybelle",
		"updated_at": time.Now().UTC().Add(time.Hour).Format(time.RFC3339Nano),
	})

	res := driver.Download(context.Background(), testCycle(driver), "t1")
	require.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Downloaded)

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maybelle", got.FirstName)
	assert.Equal(t, c.ID, got.ID)
	assert.False(t, got.IsLocalOnly)
}

func TestDownload_StoresRemoteTimestamp(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May"}
	require.NoError(t, st.Create(c))
	require.NoError(t, st.MarkSynced(c.ID, "r1"))

	remoteTime := time.Now().UTC().Add(30 * time.Minute)
	gw.seed("customers", "r1", map[string]interface{}{
		"phone":      "555-0100",
		"first_name": "Maybelle",
		"updated_at": remoteTime.Format(time.RFC3339Nano),
	})

	res := driver.Download(context.Background(), testCycle(driver), "t1")
	require.Empty(t, res.Errors)
	require.Equal(t, 1, res.Downloaded)

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, remoteTime, got.UpdatedAt, time.Second)

	// The same unchanged remote copy must not win again on the next cycle.
	res = driver.Download(context.Background(), testCycle(driver), "t1")
	require.Empty(t, res.Errors)
	assert.Equal(t, 0, res.Downloaded)
}

func TestDownload_KeepsLocalOnTie(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May"}
	require.NoError(t, st.Create(c))
	require.NoError(t, st.MarkSynced(c.ID, "r1"))

	got, err := st.FindByID(c.ID)
	require.NoError(t, err)

	gw.seed("customers", "r1", map[string]interface{}{
		"phone":      "555-0100",
		"first_name": "Maybelle",
		"updated_at": got.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})

	res := driver.Download(context.Background(), testCycle(driver), "t1")
	require.Empty(t, res.Errors)
	assert.Equal(t, 0, res.Downloaded)

	got, err = st.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "May", got.FirstName)
}

func TestDownload_KeepsPendingLocalEdits(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May"}
	require.NoError(t, st.Create(c))
	require.NoError(t, st.MarkSynced(c.ID, "r1"))

	gw.seed("customers", "r1", map[string]interface{}{
		"phone":      "555-0100",
		"first_name": "Maybelle",
		"updated_at": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano),
	})

	// Edit after the last sync; the record is pending upload again.
	got, err := st.FindByID(c.ID)
	require.NoError(t, err)
	got.Notes = "press only"
	require.NoError(t, st.Update(got))

	res := driver.Download(context.Background(), testCycle(driver), "t1")
	require.Empty(t, res.Errors)
	assert.Equal(t, 0, res.Downloaded)

	got, err = st.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "press only", got.Notes)
	assert.True(t, got.IsLocalOnly)
}

func TestDownload_DoesNotResurrectPendingDelete(t *testing.T) {
	gw := newFakeGateway()
	driver, st := newCustomerDriver(t, gw)

	c := &models.Customer{Phone: "555-0100", FirstName: "May"}
	require.NoError(t, st.Create(c))
	require.NoError(t, st.MarkSynced(c.ID, "r1"))
	require.NoError(t, st.SoftDelete(c.ID))

	gw.seed("customers", "r1", map[string]interface{}{
		"phone":      "555-0100",
		"first_name": "May",
		"updated_at": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339Nano),
	})

	res := driver.Download(context.Background(), testCycle(driver), "t1")
	require.Empty(t, res.Errors)
	assert.Equal(t, 0, res.Downloaded)

	// Still a tombstone waiting for the next upload.
	unsynced, err := st.FindUnsynced()
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.True(t, unsynced[0].IsDeleted)
}
