package models

// Employee roles.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleClerk   = "clerk"
)

// Employee is a register operator, scoped to one business.
type Employee struct {
	Syncable

	BusinessID string `gorm:"size:40;index" json:"business_id"`

	Email     string `gorm:"size:255;uniqueIndex" json:"email"`
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	PinHash   string `gorm:"size:128" json:"-"`
	Role      string `gorm:"size:20;default:clerk" json:"role"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}

func (Employee) TableName() string { return "employees" }

func (e *Employee) Entity() Entity { return EntityEmployee }
func (e *Employee) NaturalKey() string { return e.Email }
func (e *Employee) NormalizeMoney() {}

func (e *Employee) Refs() map[Entity]string {
	return map[Entity]string{EntityBusiness: e.BusinessID}
}

func (e *Employee) SetRef(entity Entity, localID string) {
	if entity == EntityBusiness {
		e.BusinessID = localID
	}
}
