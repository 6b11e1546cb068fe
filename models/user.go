package models

import (
	"encoding/json"
	"time"
)

type User struct {
	UserID    uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName string     `gorm:"column:first_name" json:"first_name"`
	LastName  string     `gorm:"column:last_name" json:"last_name"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	IsManager bool       `gorm:"column:is_manager" json:"is_manager"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Legacy direct partner link. Budget attribution still reads this
	// column; ProjectMember.PartnerID is the canonical membership link.
	PartnerID *uint `gorm:"column:partner_id" json:"partner_id,omitempty"`
}

// UserAvailability holds one user's capacity (days available) per
// calendar month for one year. Capacities is a JSON array of 12 ints,
// index 0 = January.
type UserAvailability struct {
	AvailabilityID uint       `gorm:"primaryKey;column:availability_id" json:"availability_id"`
	UserID         uint       `gorm:"column:user_id;index:idx_availability_user_year,unique" json:"user_id"`
	Year           int        `gorm:"column:year;index:idx_availability_user_year,unique" json:"year"`
	Capacities     string     `gorm:"column:capacities;type:text" json:"-"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
}

// CapacityList decodes the per-month capacities. Malformed or missing
// data yields twelve zeroes, never an error.
func (a *UserAvailability) CapacityList() [12]int {
	var caps [12]int
	if a.Capacities == "" {
		return caps
	}
	var raw []int
	if err := json.Unmarshal([]byte(a.Capacities), &raw); err != nil {
		return caps
	}
	for i := 0; i < len(raw) && i < 12; i++ {
		caps[i] = raw[i]
	}
	return caps
}

// CapacityFor returns the capacity for a 1-based calendar month.
func (a *UserAvailability) CapacityFor(month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return a.CapacityList()[month-1]
}

// SetCapacities encodes the per-month capacities.
func (a *UserAvailability) SetCapacities(caps [12]int) error {
	data, err := json.Marshal(caps[:])
	if err != nil {
		return err
	}
	a.Capacities = string(data)
	return nil
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (UserAvailability) TableName() string {
	return "user_availabilities"
}
