package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewID_Prefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewID(EntityCustomer), "cus_"))
	assert.True(t, strings.HasPrefix(NewID(EntityProduct), "prd_"))
	assert.True(t, strings.HasPrefix(NewID(EntityRack), "rck_"))
	assert.True(t, strings.HasPrefix(NewID(Entity("bogus")), "rec_"))
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID(EntityOrder)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSyncable_Init(t *testing.T) {
	var s Syncable
	s.Init(EntityCustomer)

	assert.NotEmpty(t, s.ID)
	assert.True(t, s.IsLocalOnly)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)
	assert.Nil(t, s.LastSyncedAt)
}

func TestSyncable_TouchAdvances(t *testing.T) {
	var s Syncable
	s.Init(EntityCustomer)
	before := s.UpdatedAt

	time.Sleep(time.Millisecond)
	s.Touch()
	assert.True(t, s.UpdatedAt.After(before))
}

func TestSyncable_NeedsUpload(t *testing.T) {
	tests := []struct {
		name string
		s    Syncable
		want bool
	}{
		{"fresh local record", Syncable{IsLocalOnly: true}, true},
		{"synced record", Syncable{IsLocalOnly: false, RemoteID: "r1"}, false},
		{"edited synced record", Syncable{IsLocalOnly: true, RemoteID: "r1"}, true},
		{"pending remote delete", Syncable{IsDeleted: true, RemoteID: "r1"}, true},
		{"deleted never-synced record", Syncable{IsDeleted: true, IsLocalOnly: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.NeedsUpload())
		})
	}
}

func TestOrder_NormalizeMoney_Nested(t *testing.T) {
	o := Order{
		Subtotal: 19.999999999,
		Tax:      1.6500000001,
		Total:    21.649999999,
		Items: []OrderItem{
			{Name: "Dress Shirt", Quantity: 4, UnitPrice: 4.999999999, Total: 19.999999999},
		},
	}

	o.NormalizeMoney()

	assert.Equal(t, 20.0, o.Subtotal)
	assert.Equal(t, 1.65, o.Tax)
	assert.Equal(t, 21.65, o.Total)
	assert.Equal(t, 5.0, o.Items[0].UnitPrice)
	assert.Equal(t, 20.0, o.Items[0].Total)
}

func TestRefs_RoundTrip(t *testing.T) {
	p := &Product{CategoryID: "cat_a"}
	assert.Equal(t, map[Entity]string{EntityCategory: "cat_a"}, p.Refs())

	p.SetRef(EntityCategory, "cat_b")
	assert.Equal(t, "cat_b", p.CategoryID)

	// Unknown entities are ignored.
	p.SetRef(EntityBusiness, "biz_x")
	assert.Equal(t, "cat_b", p.CategoryID)
}
