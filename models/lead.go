package models

import (
	"fmt"
	"time"
)

// Lead status values. Status is derived: logging an interaction moves a lead
// to contacted, and to converted once an interaction carries an order.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
)

// Lead represents a sales lead in the relational directory.
type Lead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name           string `gorm:"not null;index" json:"name"`
	Address        string `gorm:"not null" json:"address"`
	Zipcode        string `gorm:"not null" json:"zipcode"`
	State          string `gorm:"not null" json:"state"`
	Country        string `gorm:"not null" json:"country"`
	AreaOfInterest string `gorm:"not null" json:"area_of_interest"`
	Status         string `gorm:"default:new" json:"status"`

	// IANA zone identifier the lead declared, e.g. "America/New_York".
	Timezone string `gorm:"not null" json:"timezone"`

	// Relations
	Contacts []PointOfContact `gorm:"foreignKey:LeadID" json:"contacts,omitempty"`
	Calls    []Call           `gorm:"foreignKey:LeadID" json:"calls,omitempty"`
}

// PointOfContact is a person reachable at a lead. A lead has many POCs.
type PointOfContact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	LeadID      uint   `gorm:"not null;index" json:"lead_id"`
	Name        string `gorm:"not null" json:"name"`
	Role        string `gorm:"not null" json:"role"`
	Email       string `json:"email"`
	PhoneNumber string `gorm:"not null" json:"phone_number"`
}

// Call tracks the contact cadence for one lead/POC pair. Dates and times are
// canonical-zone wall clock values stored without zone information.
type Call struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	LeadID uint `gorm:"not null;index" json:"lead_id"`
	POCID  uint `gorm:"column:poc_id;not null;index" json:"poc_id"`

	// Days between calls, >= 1.
	Frequency int `gorm:"not null" json:"frequency"`

	// Nil until the first call is logged.
	LastCallDate *time.Time `json:"last_call_date"`

	NextCallDate time.Time `gorm:"not null;index" json:"next_call_date"`
	NextCallTime string    `gorm:"not null" json:"next_call_time"` // "15:04:05"
}

// NextCallAt combines the scheduled date and time-of-day into one instant. A
// next_call_time that does not parse is surfaced, never defaulted, since a
// silent midnight could move the call across a day-window boundary.
func (c Call) NextCallAt() (time.Time, error) {
	t, err := time.Parse("15:04:05", c.NextCallTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: next_call_time %q", ErrInvalidInput, c.NextCallTime)
	}
	d := c.NextCallDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

// CallSummary is a call joined with the display fields the call list needs.
type CallSummary struct {
	Call
	LeadName   string `json:"lead_name"`
	POCName    string `json:"poc_name"`
	POCContact string `json:"poc_contact"`
}
