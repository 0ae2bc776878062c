package models

import (
	"time"
)

// DateLayout is the storage and wire format of date-only values.
const DateLayout = "2006-01-02"

// Reservation represents one guest stay. CheckIn and CheckOut carry no
// time-of-day and are always midnight UTC.
type Reservation struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	HousingUnitID   string    `json:"housing_unit_id"`
	HousingUnitName string    `json:"housing_unit_name,omitempty"`
	GuestName       string    `json:"guest_name"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	GuestCount      int       `json:"guest_count"`
	Platform        string    `json:"platform"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Reservation status constants
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Platform constants
const (
	PlatformAirbnb  = "airbnb"
	PlatformBooking = "booking"
	PlatformDirect  = "direct"
	PlatformOther   = "other"
)

// ReservationKey is the natural key used to reconcile imported events.
type ReservationKey struct {
	TenantID      string
	HousingUnitID string
	CheckIn       time.Time
	CheckOut      time.Time
}

// ReservationFields are the columns the importer writes on every reconcile.
type ReservationFields struct {
	GuestName  string
	GuestCount int
	Platform   string
	Status     string
	Notes      string
}

// ReconcileOutcome tells whether a reconcile inserted or updated a row.
type ReconcileOutcome int

const (
	OutcomeCreated ReconcileOutcome = iota + 1
	OutcomeUpdated
)

func (o ReconcileOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// DateOnly drops the time-of-day of t in its own location and returns the
// date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights between check-in and check-out.
func (r Reservation) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}
