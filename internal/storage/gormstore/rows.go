package gormstore

import (
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

type housingUnitRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	TenantID     string `gorm:"size:64;not null;index"`
	Name         string `gorm:"not null"`
	ICalURL      string `gorm:"column:ical_url;not null;default:''"`
	LastSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (housingUnitRow) TableName() string { return "housing_units" }

func (r housingUnitRow) model() models.HousingUnit {
	unit := models.HousingUnit{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Name:      r.Name,
		ICalURL:   r.ICalURL,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.LastSyncedAt != nil {
		t := r.LastSyncedAt.UTC()
		unit.LastSyncedAt = &t
	}
	return unit
}

// Dates are kept as YYYY-MM-DD strings so the column compares the same way
// on every dialect.
type reservationRow struct {
	ID            string `gorm:"primaryKey;size:36"`
	TenantID      string `gorm:"size:64;not null;index:idx_reservations_natural_key,priority:1"`
	HousingUnitID string `gorm:"size:36;not null;index:idx_reservations_natural_key,priority:2"`
	GuestName     string `gorm:"not null"`
	CheckIn       string `gorm:"size:10;not null;index:idx_reservations_natural_key,priority:3"`
	CheckOut      string `gorm:"size:10;not null;index:idx_reservations_natural_key,priority:4"`
	GuestCount    int    `gorm:"not null;default:1"`
	Platform      string `gorm:"size:32;not null"`
	Status        string `gorm:"size:32;not null;index"`
	Notes         string `gorm:"not null;default:''"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	HousingUnit housingUnitRow `gorm:"foreignKey:HousingUnitID"`
}

func (reservationRow) TableName() string { return "reservations" }

func (r reservationRow) model() (models.Reservation, error) {
	checkIn, err := time.Parse(models.DateLayout, r.CheckIn)
	if err != nil {
		return models.Reservation{}, err
	}
	checkOut, err := time.Parse(models.DateLayout, r.CheckOut)
	if err != nil {
		return models.Reservation{}, err
	}
	return models.Reservation{
		ID:              r.ID,
		TenantID:        r.TenantID,
		HousingUnitID:   r.HousingUnitID,
		HousingUnitName: r.HousingUnit.Name,
		GuestName:       r.GuestName,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      r.GuestCount,
		Platform:        r.Platform,
		Status:          r.Status,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}, nil
}

type missionRow struct {
	ID            string    `gorm:"primaryKey;size:36"`
	TenantID      string    `gorm:"size:64;not null;index"`
	HousingUnitID string    `gorm:"size:36;not null"`
	Type          string    `gorm:"size:32;not null"`
	Status        string    `gorm:"size:32;not null;index"`
	ScheduledAt   time.Time `gorm:"not null"`
	Notes         string    `gorm:"not null;default:''"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	HousingUnit housingUnitRow `gorm:"foreignKey:HousingUnitID"`
}

func (missionRow) TableName() string { return "missions" }

func (r missionRow) model() models.Mission {
	return models.Mission{
		ID:              r.ID,
		TenantID:        r.TenantID,
		HousingUnitID:   r.HousingUnitID,
		HousingUnitName: r.HousingUnit.Name,
		Type:            r.Type,
		Status:          r.Status,
		ScheduledAt:     r.ScheduledAt.UTC(),
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}
