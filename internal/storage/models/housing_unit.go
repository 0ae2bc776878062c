package models

import (
	"time"
)

// HousingUnit is a rentable unit owned by a tenant. ICalURL is empty when no
// external feed is configured.
type HousingUnit struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Name         string     `json:"name"`
	ICalURL      string     `json:"ical_url,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasFeed reports whether the unit has an external calendar configured.
func (u HousingUnit) HasFeed() bool {
	return u.ICalURL != ""
}
