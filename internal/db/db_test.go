package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/till/internal/models"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := New(Config{
		Path:        dbPath,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	})
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})

	return db
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "till.db")

	db, err := New(DefaultConfig(dbPath))
	require.NoError(t, err)
	defer func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
	}()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	assert.Equal(t, dbPath, db.Path())
}

func TestNew_SeedsSyncMeta(t *testing.T) {
	db := testDB(t)

	version, err := db.GetSyncMeta(models.SyncMetaSchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	lastSync, err := db.GetSyncMeta(models.SyncMetaLastFullSync)
	require.NoError(t, err)
	assert.Empty(t, lastSync)
}

func TestSyncMeta_SetGet(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.SetSyncMeta("last_download_customer", "2026-01-02T15:04:05Z"))

	got, err := db.GetSyncMeta("last_download_customer")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T15:04:05Z", got)

	// Upsert overwrites.
	require.NoError(t, db.SetSyncMeta("last_download_customer", "2026-02-01T00:00:00Z"))
	got, err = db.GetSyncMeta("last_download_customer")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01T00:00:00Z", got)
}

func TestGetSyncMeta_MissingKeyIsEmpty(t *testing.T) {
	db := testDB(t)

	got, err := db.GetSyncMeta("nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetAllSyncMeta(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.SetSyncMeta("a", "1"))
	require.NoError(t, db.SetSyncMeta("b", "2"))

	all, err := db.GetAllSyncMeta()
	require.NoError(t, err)
	assert.Equal(t, "1", all["a"])
	assert.Equal(t, "2", all["b"])
}

func TestGetStats(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.Create(&models.Customer{
		Syncable: models.Syncable{ID: "cus_1", IsLocalOnly: true},
		Phone:    "555-0100",
	}).Error)

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Counts["customers"])
	assert.Equal(t, int64(0), stats.Counts["orders"])
	assert.Equal(t, int64(1), stats.Unsynced)
	assert.Greater(t, stats.DBSizeBytes, int64(0))
}

func TestTransaction_RollsBack(t *testing.T) {
	db := testDB(t)

	err := db.Transaction(func(tx *DB) error {
		if err := tx.Create(&models.Customer{
			Syncable: models.Syncable{ID: "cus_tx"},
			Phone:    "555-0101",
		}).Error; err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
