package models

import "time"

// Order statuses.
const (
	OrderOpen     = "open"
	OrderReady    = "ready"
	OrderPickedUp = "picked_up"
	OrderVoided   = "voided"
)

// OrderItem is one line on a ticket. Items live inside the order row as a
// JSON column; they are not independently synchronized. ProductID is a local
// product id and is remapped alongside the order's own foreign keys.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Order is one drop-off ticket.
type Order struct {
	Syncable

	CustomerID string `gorm:"size:40;index" json:"customer_id"`
	EmployeeID string `gorm:"size:40;index" json:"employee_id"`

	// Number is the human-facing ticket number, unique per business.
	Number   string      `gorm:"size:32;uniqueIndex" json:"number"`
	Status   string      `gorm:"size:20;default:open;index" json:"status"`
	Items    []OrderItem `gorm:"serializer:json" json:"items"`
	Subtotal float64     `gorm:"default:0" json:"subtotal"`
	Tax      float64     `gorm:"default:0" json:"tax"`
	Total    float64     `gorm:"default:0" json:"total"`

	PromisedAt *time.Time `json:"promised_at,omitempty"`
	PickedUpAt *time.Time `json:"picked_up_at,omitempty"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) Entity() Entity { return EntityOrder }
func (o *Order) NaturalKey() string { return o.Number }

func (o *Order) NormalizeMoney() {
	o.Subtotal = NormalizeMoney(o.Subtotal)
	o.Tax = NormalizeMoney(o.Tax)
	o.Total = NormalizeMoney(o.Total)
	for i := range o.Items {
		o.Items[i].UnitPrice = NormalizeMoney(o.Items[i].UnitPrice)
		o.Items[i].Total = NormalizeMoney(o.Items[i].Total)
	}
}

func (o *Order) Refs() map[Entity]string {
	return map[Entity]string{
		EntityCustomer: o.CustomerID,
		EntityEmployee: o.EmployeeID,
	}
}

func (o *Order) SetRef(entity Entity, localID string) {
	switch entity {
	case EntityCustomer:
		o.CustomerID = localID
	case EntityEmployee:
		o.EmployeeID = localID
	}
}
