package models

// Category groups products, e.g. "Shirts" or "Comforters". The name is unique
// within a business, which makes business code + name the natural key.
type Category struct {
	Syncable

	BusinessID string `gorm:"size:40;index;uniqueIndex:idx_category_name" json:"business_id"`
	Name       string `gorm:"size:100;uniqueIndex:idx_category_name" json:"name"`
	SortOrder  int    `gorm:"default:0" json:"sort_order"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) Entity() Entity { return EntityCategory }
func (c *Category) NaturalKey() string { return c.Name }
func (c *Category) NormalizeMoney() {}

func (c *Category) Refs() map[Entity]string {
	return map[Entity]string{EntityBusiness: c.BusinessID}
}

func (c *Category) SetRef(entity Entity, localID string) {
	if entity == EntityBusiness {
		c.BusinessID = localID
	}
}
