package models

// Business is the tenant: one dry-cleaning shop. Every other entity hangs off
// a business either directly or through its parents.
type Business struct {
	Syncable

	// Code is the backend-unique shop code, e.g. "TW-0042".
	Code    string  `gorm:"size:32;uniqueIndex" json:"code"`
	Name    string  `gorm:"size:255" json:"name"`
	Phone   string  `gorm:"size:32" json:"phone"`
	Address string  `gorm:"size:500" json:"address"`
	TaxRate float64 `gorm:"default:0" json:"tax_rate"`
}

func (Business) TableName() string { return "businesses" }

func (b *Business) Entity() Entity { return EntityBusiness }
func (b *Business) NaturalKey() string { return b.Code }
func (b *Business) NormalizeMoney() {}
