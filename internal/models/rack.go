package models

import "time"

// RackAssignment records which conveyor slot holds a finished order. The slot
// label is unique per business while occupied, so it doubles as the natural
// key for duplicate detection.
type RackAssignment struct {
	Syncable

	OrderID    string `gorm:"size:40;index" json:"order_id"`
	CustomerID string `gorm:"size:40;index" json:"customer_id"`

	Slot         string     `gorm:"size:16;uniqueIndex" json:"slot"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

func (RackAssignment) TableName() string { return "rack_assignments" }

func (r *RackAssignment) Entity() Entity { return EntityRack }
func (r *RackAssignment) NaturalKey() string { return r.Slot }
func (r *RackAssignment) NormalizeMoney() {}

func (r *RackAssignment) Refs() map[Entity]string {
	return map[Entity]string{
		EntityOrder:    r.OrderID,
		EntityCustomer: r.CustomerID,
	}
}

func (r *RackAssignment) SetRef(entity Entity, localID string) {
	switch entity {
	case EntityOrder:
		r.OrderID = localID
	case EntityCustomer:
		r.CustomerID = localID
	}
}
