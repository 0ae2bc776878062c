package models

import (
	"time"
)

// Mission is an operational task scheduled on a housing unit.
type Mission struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	HousingUnitID   string    `json:"housing_unit_id"`
	HousingUnitName string    `json:"housing_unit_name,omitempty"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Mission type constants
const (
	MissionCleaning    = "cleaning"
	MissionCheckIn     = "checkin"
	MissionCheckOut    = "checkout"
	MissionMaintenance = "maintenance"
	MissionInspection  = "inspection"
)

// Mission status constants
const (
	MissionTodo       = "todo"
	MissionInProgress = "in_progress"
	MissionDone       = "done"
	MissionCancelled  = "cancelled"
)

var missionLabels = map[string]string{
	MissionCleaning:    "Cleaning",
	MissionCheckIn:     "Check-in",
	MissionCheckOut:    "Check-out",
	MissionMaintenance: "Maintenance",
	MissionInspection:  "Inspection",
}

// TypeLabel returns the human-readable label of the mission type.
func (m Mission) TypeLabel() string {
	if label, ok := missionLabels[m.Type]; ok {
		return label
	}
	return m.Type
}
