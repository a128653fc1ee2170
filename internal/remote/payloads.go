package remote

import "time"

// Remote payload shapes, one explicit struct per entity type. Payloads are
// produced only by the field mappers; nothing in the engine builds remote
// request bodies ad hoc. Foreign keys in payloads hold backend ids, never
// local ones.

// Meta is the backend-owned envelope every downloaded record carries.
type Meta struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemoteMeta returns the envelope. Record types embed Meta, so generic sync
// code can reach the backend id and timestamps through this one method.
func (m Meta) RemoteMeta() Meta { return m }

// BusinessPayload is the remote shape of a business.
type BusinessPayload struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Address string  `json:"address,omitempty"`
	TaxRate float64 `json:"tax_rate"`
}

// BusinessRecord is a business as returned by the backend.
type BusinessRecord struct {
	Meta
	BusinessPayload
}

// EmployeePayload is the remote shape of an employee.
type EmployeePayload struct {
	BusinessID string `json:"business_id,omitempty"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	PinHash    string `json:"pin_hash,omitempty"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
}

// EmployeeRecord is an employee as returned by the backend.
type EmployeeRecord struct {
	Meta
	EmployeePayload
}

// CustomerPayload is the remote shape of a customer.
type CustomerPayload struct {
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Starch    string `json:"starch,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// CustomerRecord is a customer as returned by the backend.
type CustomerRecord struct {
	Meta
	CustomerPayload
}

// CategoryPayload is the remote shape of a category.
type CategoryPayload struct {
	BusinessID string `json:"business_id,omitempty"`
	Name       string `json:"name"`
	SortOrder  int    `json:"sort_order"`
}

// CategoryRecord is a category as returned by the backend.
type CategoryRecord struct {
	Meta
	CategoryPayload
}

// ProductPayload is the remote shape of a product.
type ProductPayload struct {
	CategoryID  string  `json:"category_id,omitempty"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	CostPrice   float64 `json:"cost_price"`
	TaxExempt   bool    `json:"tax_exempt"`
	IsActive    bool    `json:"is_active"`
}

// ProductRecord is a product as returned by the backend.
type ProductRecord struct {
	Meta
	ProductPayload
}

// OrderItemPayload is one ticket line in the remote shape. ProductID holds
// the product's backend id.
type OrderItemPayload struct {
	ProductID string  `json:"product_id,omitempty"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// OrderPayload is the remote shape of an order.
type OrderPayload struct {
	CustomerID string             `json:"customer_id,omitempty"`
	EmployeeID string             `json:"employee_id,omitempty"`
	Number     string             `json:"number"`
	Status     string             `json:"status"`
	Items      []OrderItemPayload `json:"items"`
	Subtotal   float64            `json:"subtotal"`
	Tax        float64            `json:"tax"`
	Total      float64            `json:"total"`
	PromisedAt *time.Time         `json:"promised_at,omitempty"`
	PickedUpAt *time.Time         `json:"picked_up_at,omitempty"`
}

// OrderRecord is an order as returned by the backend.
type OrderRecord struct {
	Meta
	OrderPayload
}

// RackPayload is the remote shape of a rack assignment.
type RackPayload struct {
	OrderID      string     `json:"order_id,omitempty"`
	CustomerID   string     `json:"customer_id,omitempty"`
	Slot         string     `json:"slot"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

// RackRecord is a rack assignment as returned by the backend.
type RackRecord struct {
	Meta
	RackPayload
}

// Session is the backend's description of the authenticated device.
type Session struct {
	TenantID string `json:"tenant_id"`
	Device   string `json:"device,omitempty"`
}
