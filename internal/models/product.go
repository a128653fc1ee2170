package models

// Product is a priced service item ("Dress Shirt", "Queen Comforter").
type Product struct {
	Syncable

	CategoryID string `gorm:"size:40;index" json:"category_id"`

	SKU         string  `gorm:"size:64;uniqueIndex" json:"sku"`
	Name        string  `gorm:"size:255;index" json:"name"`
	Description string  `gorm:"size:1000" json:"description"`
	UnitPrice   float64 `gorm:"default:0" json:"unit_price"`
	CostPrice   float64 `gorm:"default:0" json:"cost_price"`
	TaxExempt   bool    `gorm:"default:false" json:"tax_exempt"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}

func (Product) TableName() string { return "products" }

func (p *Product) Entity() Entity { return EntityProduct }
func (p *Product) NaturalKey() string { return p.SKU }

func (p *Product) NormalizeMoney() {
	p.UnitPrice = NormalizeMoney(p.UnitPrice)
	p.CostPrice = NormalizeMoney(p.CostPrice)
}

func (p *Product) Refs() map[Entity]string {
	return map[Entity]string{EntityCategory: p.CategoryID}
}

func (p *Product) SetRef(entity Entity, localID string) {
	if entity == EntityCategory {
		p.CategoryID = localID
	}
}
