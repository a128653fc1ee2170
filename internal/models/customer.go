package models

// Starch preferences carried on customer profiles.
const (
	StarchNone   = "none"
	StarchLight  = "light"
	StarchMedium = "medium"
	StarchHeavy  = "heavy"
)

// Customer is a walk-in or account customer. The phone number is the natural
// key: two devices creating the same customer offline converge on one backend
// record through it.
type Customer struct {
	Syncable

	Phone     string `gorm:"size:32;uniqueIndex" json:"phone"`
	FirstName string `gorm:"size:100;index" json:"first_name"`
	LastName  string `gorm:"size:100;index" json:"last_name"`
	Email     string `gorm:"size:255" json:"email"`
	Starch    string `gorm:"size:20;default:none" json:"starch"`
	Notes     string `gorm:"size:1000" json:"notes"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) Entity() Entity { return EntityCustomer }
func (c *Customer) NaturalKey() string { return c.Phone }
func (c *Customer) NormalizeMoney() {}
