package mapper

import (
	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/remote"
)

// Business

// BusinessToRemote maps a local business to its remote payload.
func BusinessToRemote(b *models.Business, _ Resolver) remote.BusinessPayload {
	return remote.BusinessPayload{
		Code:    b.Code,
		Name:    b.Name,
		Phone:   b.Phone,
		Address: b.Address,
		TaxRate: b.TaxRate,
	}
}

// BusinessToLocal maps a downloaded business to a local record in the synced
// state.
func BusinessToLocal(r remote.BusinessRecord, _ Lookup) *models.Business {
	return &models.Business{
		Syncable: syncedMeta(r.ID, r.CreatedAt, r.UpdatedAt),
		Code:     r.Code,
		Name:     r.Name,
		Phone:    r.Phone,
		Address:  r.Address,
		TaxRate:  r.TaxRate,
	}
}

// Employee

func EmployeeToRemote(e *models.Employee, resolve Resolver) remote.EmployeePayload {
	return remote.EmployeePayload{
		BusinessID: resolveRef(resolve, models.EntityBusiness, e.BusinessID),
		Email:      e.Email,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		PinHash:    e.PinHash,
		Role:       e.Role,
		IsActive:   e.IsActive,
	}
}

func EmployeeToLocal(r remote.EmployeeRecord, lookup Lookup) *models.Employee {
	return &models.Employee{
		Syncable:   syncedMeta(r.ID, r.CreatedAt, r.UpdatedAt),
		BusinessID: lookupRef(lookup, models.EntityBusiness, r.BusinessID),
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		PinHash:    r.PinHash,
		Role:       r.Role,
		IsActive:   r.IsActive,
	}
}

// EmployeeRemoteRefs exposes the backend-side foreign keys of a downloaded
// employee for the repair pass.
func EmployeeRemoteRefs(r remote.EmployeeRecord) map[models.Entity]string {
	return map[models.Entity]string{models.EntityBusiness: r.BusinessID}
}

// Customer

func CustomerToRemote(c *models.Customer, _ Resolver) remote.CustomerPayload {
	return remote.CustomerPayload{
		Phone:     c.Phone,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Starch:    c.Starch,
		Notes:     c.Notes,
	}
}

func CustomerToLocal(r remote.CustomerRecord, _ Lookup) *models.Customer {
	return &models.Customer{
		Syncable:  syncedMeta(r.ID, r.CreatedAt, r.UpdatedAt),
		Phone:     r.Phone,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Starch:    r.Starch,
		Notes:     r.Notes,
	}
}

// Category

func CategoryToRemote(c *models.Category, resolve Resolver) remote.CategoryPayload {
	return remote.CategoryPayload{
		BusinessID: resolveRef(resolve, models.EntityBusiness, c.BusinessID),
		Name:       c.Name,
		SortOrder:  c.SortOrder,
	}
}

func CategoryToLocal(r remote.CategoryRecord, lookup Lookup) *models.Category {
	return &models.Category{
		Syncable:   syncedMeta(r.ID, r.CreatedAt, r.UpdatedAt),
		BusinessID: lookupRef(lookup, models.EntityBusiness, r.BusinessID),
		Name:       r.Name,
		SortOrder:  r.SortOrder,
	}
}

func CategoryRemoteRefs(r remote.CategoryRecord) map[models.Entity]string {
	return map[models.Entity]string{models.EntityBusiness: r.BusinessID}
}

// Product

func ProductToRemote(p *models.Product, resolve Resolver) remote.ProductPayload {
	return remote.ProductPayload{
		CategoryID:  resolveRef(resolve, models.EntityCategory, p.CategoryID),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   models.NormalizeMoney(p.UnitPrice),
		CostPrice:   models.NormalizeMoney(p.CostPrice),
		TaxExempt:   p.TaxExempt,
		IsActive:    p.IsActive,
	}
}

func ProductToLocal(r remote.ProductRecord, lookup Lookup) *models.Product {
	return &models.Product{
		Syncable:    syncedMeta(r.ID, r.CreatedAt, r.UpdatedAt),
		CategoryID:  lookupRef(lookup, models.EntityCategory, r.CategoryID),
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		UnitPrice:   models.NormalizeMoney(r.UnitPrice),
		CostPrice:   models.NormalizeMoney(r.CostPrice),
		TaxExempt:   r.TaxExempt,
		IsActive:    r.IsActive,
	}
}

func ProductRemoteRefs(r remote.ProductRecord) map[models.Entity]string {
	return map[models.Entity]string{models.EntityCategory: r.CategoryID}
}

// Order

func OrderToRemote(o *models.Order, resolve Resolver) remote.OrderPayload {
	items := make([]remote.OrderItemPayload, len(o.Items))
	for i, item := range o.Items {
		items[i] = remote.OrderItemPayload{
			ProductID: resolveRef(resolve, models.EntityProduct, item.ProductID),
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: models.NormalizeMoney(item.UnitPrice),
			Total:     models.NormalizeMoney(item.Total),
		}
	}

	return remote.OrderPayload{
		CustomerID: resolveRef(resolve, models.EntityCustomer, o.CustomerID),
		EmployeeID: resolveRef(resolve, models.EntityEmployee, o.EmployeeID),
		Number:     o.Number,
		Status:     o.Status,
		Items:      items,
		Subtotal:   models.NormalizeMoney(o.Subtotal),
		Tax:        models.NormalizeMoney(o.Tax),
		Total:      models.NormalizeMoney(o.Total),
		PromisedAt: o.PromisedAt,
		PickedUpAt: o.PickedUpAt,
	}
}

func OrderToLocal(r remote.OrderRecord, lookup Lookup) *models.Order {
	items := make([]models.OrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = models.OrderItem{
			ProductID: lookupRef(lookup, models.EntityProduct, item.ProductID),
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: models.NormalizeMoney(item.UnitPrice),
			Total:     models.NormalizeMoney(item.Total),
		}
	}

	return &models.Order{
		Syncable:   syncedMeta(r.ID, r.CreatedAt, r.UpdatedAt),
		CustomerID: lookupRef(lookup, models.EntityCustomer, r.CustomerID),
		EmployeeID: lookupRef(lookup, models.EntityEmployee, r.EmployeeID),
		Number:     r.Number,
		Status:     r.Status,
		Items:      items,
		Subtotal:   models.NormalizeMoney(r.Subtotal),
		Tax:        models.NormalizeMoney(r.Tax),
		Total:      models.NormalizeMoney(r.Total),
		PromisedAt: r.PromisedAt,
		PickedUpAt: r.PickedUpAt,
	}
}

func OrderRemoteRefs(r remote.OrderRecord) map[models.Entity]string {
	return map[models.Entity]string{
		models.EntityCustomer: r.CustomerID,
		models.EntityEmployee: r.EmployeeID,
	}
}

// Rack assignment

func RackToRemote(ra *models.RackAssignment, resolve Resolver) remote.RackPayload {
	return remote.RackPayload{
		OrderID:      resolveRef(resolve, models.EntityOrder, ra.OrderID),
		CustomerID:   resolveRef(resolve, models.EntityCustomer, ra.CustomerID),
		Slot:         ra.Slot,
		CheckedInAt:  ra.CheckedInAt,
		CheckedOutAt: ra.CheckedOutAt,
	}
}

func RackToLocal(r remote.RackRecord, lookup Lookup) *models.RackAssignment {
	return &models.RackAssignment{
		Syncable:     syncedMeta(r.ID, r.CreatedAt, r.UpdatedAt),
		OrderID:      lookupRef(lookup, models.EntityOrder, r.OrderID),
		CustomerID:   lookupRef(lookup, models.EntityCustomer, r.CustomerID),
		Slot:         r.Slot,
		CheckedInAt:  r.CheckedInAt,
		CheckedOutAt: r.CheckedOutAt,
	}
}

func RackRemoteRefs(r remote.RackRecord) map[models.Entity]string {
	return map[models.Entity]string{
		models.EntityOrder:    r.OrderID,
		models.EntityCustomer: r.CustomerID,
	}
}
