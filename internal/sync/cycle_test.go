package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/till/internal/models"
)

func TestCycle_AddMappingBothDirections(t *testing.T) {
	c := NewCycle()
	c.AddMapping(models.EntityCustomer, "cus_1", "r1")

	remoteID, ok := c.RemoteIDFor(models.EntityCustomer, "cus_1")
	require.True(t, ok)
	assert.Equal(t, "r1", remoteID)

	localID, ok := c.LocalIDFor(models.EntityCustomer, "r1")
	require.True(t, ok)
	assert.Equal(t, "cus_1", localID)
}

func TestCycle_IgnoresEmptyIDs(t *testing.T) {
	c := NewCycle()
	c.AddMapping(models.EntityCustomer, "", "r1")
	c.AddMapping(models.EntityCustomer, "cus_1", "")

	_, ok := c.LocalIDFor(models.EntityCustomer, "r1")
	assert.False(t, ok)
	_, ok = c.RemoteIDFor(models.EntityCustomer, "cus_1")
	assert.False(t, ok)
}

func TestCycle_MappingsAreScopedPerEntity(t *testing.T) {
	c := NewCycle()
	c.AddMapping(models.EntityCustomer, "cus_1", "r1")

	_, ok := c.LocalIDFor(models.EntityProduct, "r1")
	assert.False(t, ok)
}

func TestCycle_StoreLookupFallback(t *testing.T) {
	c := NewCycle()

	calls := 0
	c.RegisterStoreLookup(models.EntityCustomer, func(localID string) (string, error) {
		calls++
		if localID == "cus_1" {
			return "r1", nil
		}
		return "", errors.New("not found")
	})

	remoteID, ok := c.RemoteIDFor(models.EntityCustomer, "cus_1")
	require.True(t, ok)
	assert.Equal(t, "r1", remoteID)

	// Second resolve hits the cycle table, not the store.
	_, ok = c.RemoteIDFor(models.EntityCustomer, "cus_1")
	require.True(t, ok)
	assert.Equal(t, 1, calls)

	_, ok = c.RemoteIDFor(models.EntityCustomer, "cus_2")
	assert.False(t, ok)
}

func TestCycle_MergeRemap(t *testing.T) {
	c := NewCycle()
	c.MergeRemap(models.EntityProduct, map[string]string{
		"r1": "prd_1",
		"r2": "prd_2",
	})

	localID, ok := c.LocalIDFor(models.EntityProduct, "r2")
	require.True(t, ok)
	assert.Equal(t, "prd_2", localID)
}
