// Package models contains the domain models for the application.
package models

import (
	"time"
)

// SourceEvent is one VEVENT from an external feed, captured at the parser
// boundary. It is never persisted.
type SourceEvent struct {
	UID    string    `json:"uid"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`
}

// ImportResult contains the counters of a single housing unit import.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// UnitSyncError records the failure of one housing unit during a sync run.
type UnitSyncError struct {
	UnitID string `json:"unit_id"`
	Unit   string `json:"unit"`
	Error  string `json:"error"`
}

// SyncReport is the consolidated result of syncing every unit of a tenant.
type SyncReport struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	TenantID string          `json:"tenant_id"`
	Units    int             `json:"units"`
	Created  int             `json:"created"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
	Errors   []UnitSyncError `json:"errors"`
	SyncedAt time.Time       `json:"synced_at"`
}
