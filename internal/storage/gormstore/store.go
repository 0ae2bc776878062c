// Package gormstore implements the record store on top of GORM, for
// deployments backed by PostgreSQL. It reconciles imported reservations
// with a lookup followed by an insert or an update inside one transaction.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/rentalsync/backend/internal/storage/models"
)

// Store provides data access for housing units, reservations and missions.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New wraps an opened GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// OpenPostgres connects to PostgreSQL using the given DSN.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return New(db), nil
}

// Migrate creates or updates the tables used by the store.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&housingUnitRow{}, &reservationRow{}, &missionRow{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// PingContext checks the underlying connection.
func (s *Store) PingContext(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// CreateHousingUnit inserts a new housing unit.
func (s *Store) CreateHousingUnit(ctx context.Context, unit *models.HousingUnit) error {
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	unit.CreatedAt = s.timestamp()
	unit.UpdatedAt = unit.CreatedAt

	row := housingUnitRow{
		ID:           unit.ID,
		TenantID:     unit.TenantID,
		Name:         unit.Name,
		ICalURL:      unit.ICalURL,
		LastSyncedAt: unit.LastSyncedAt,
		CreatedAt:    unit.CreatedAt,
		UpdatedAt:    unit.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting housing unit: %w", err)
	}
	return nil
}

// GetByID retrieves a housing unit by its ID. It returns nil when no unit
// matches.
func (s *Store) GetByID(ctx context.Context, id string) (*models.HousingUnit, error) {
	var row housingUnitRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying housing unit: %w", err)
	}
	unit := row.model()
	return &unit, nil
}

// ListWithFeed retrieves the tenant's units that have an external calendar
// configured, oldest sync first.
func (s *Store) ListWithFeed(ctx context.Context, tenantID string) ([]models.HousingUnit, error) {
	var rows []housingUnitRow
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND ical_url <> ''", tenantID).
		Order("last_synced_at ASC NULLS FIRST").Order("name").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying housing units with feed: %w", err)
	}

	units := make([]models.HousingUnit, 0, len(rows))
	for _, row := range rows {
		units = append(units, row.model())
	}
	return units, nil
}

// ListTenantsWithFeeds returns every tenant owning at least one unit with a
// configured feed.
func (s *Store) ListTenantsWithFeeds(ctx context.Context) ([]string, error) {
	var tenants []string
	err := s.db.WithContext(ctx).Model(&housingUnitRow{}).
		Where("ical_url <> ''").
		Distinct("tenant_id").Order("tenant_id").
		Pluck("tenant_id", &tenants).Error
	if err != nil {
		return nil, fmt.Errorf("querying tenants with feeds: %w", err)
	}
	return tenants, nil
}

// MarkSynced sets the last-synced timestamp of a unit.
func (s *Store) MarkSynced(ctx context.Context, id string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&housingUnitRow{}).Where("id = ?", id).
		Updates(map[string]any{"last_synced_at": at.UTC(), "updated_at": s.timestamp()})
	if result.Error != nil {
		return fmt.Errorf("updating last synced: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("housing unit not found: %s", id)
	}
	return nil
}

// CreateReservation inserts a reservation entered by a user.
func (s *Store) CreateReservation(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	res.CreatedAt = s.timestamp()
	res.UpdatedAt = res.CreatedAt

	row := reservationRow{
		ID:            res.ID,
		TenantID:      res.TenantID,
		HousingUnitID: res.HousingUnitID,
		GuestName:     res.GuestName,
		CheckIn:       res.CheckIn.Format(models.DateLayout),
		CheckOut:      res.CheckOut.Format(models.DateLayout),
		GuestCount:    res.GuestCount,
		Platform:      res.Platform,
		Status:        res.Status,
		Notes:         res.Notes,
		CreatedAt:     res.CreatedAt,
		UpdatedAt:     res.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}
	return nil
}

// Reconcile looks the natural key up and updates the matching reservation
// in place, or inserts a new one when none exists.
func (s *Store) Reconcile(ctx context.Context, key models.ReservationKey, fields models.ReservationFields) (models.ReconcileOutcome, error) {
	checkIn := key.CheckIn.Format(models.DateLayout)
	checkOut := key.CheckOut.Format(models.DateLayout)
	now := s.timestamp()

	var outcome models.ReconcileOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing reservationRow
		err := tx.Where("tenant_id = ? AND housing_unit_id = ? AND check_in = ? AND check_out = ?",
			key.TenantID, key.HousingUnitID, checkIn, checkOut).
			Order("created_at").Order("id").
			Take(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := reservationRow{
				ID:            uuid.NewString(),
				TenantID:      key.TenantID,
				HousingUnitID: key.HousingUnitID,
				GuestName:     fields.GuestName,
				CheckIn:       checkIn,
				CheckOut:      checkOut,
				GuestCount:    fields.GuestCount,
				Platform:      fields.Platform,
				Status:        fields.Status,
				Notes:         fields.Notes,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return fmt.Errorf("inserting reservation: %w", err)
			}
			outcome = models.OutcomeCreated
			return nil
		case err != nil:
			return fmt.Errorf("looking up reservation: %w", err)
		}

		err = tx.Model(&reservationRow{}).Where("id = ?", existing.ID).Updates(map[string]any{
			"guest_name":  fields.GuestName,
			"guest_count": fields.GuestCount,
			"platform":    fields.Platform,
			"status":      fields.Status,
			"notes":       fields.Notes,
			"updated_at":  now,
		}).Error
		if err != nil {
			return fmt.Errorf("updating reservation: %w", err)
		}
		outcome = models.OutcomeUpdated
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

// ListByUnit retrieves every reservation of a housing unit ordered by check-in.
func (s *Store) ListByUnit(ctx context.Context, unitID string) ([]models.Reservation, error) {
	var rows []reservationRow
	err := s.db.WithContext(ctx).Preload("HousingUnit").
		Where("housing_unit_id = ?", unitID).
		Order("check_in").Order("check_out").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	return reservationModels(rows)
}

// ListReservationsForFeed retrieves the tenant's pending and confirmed
// reservations ordered by check-in.
func (s *Store) ListReservationsForFeed(ctx context.Context, tenantID string) ([]models.Reservation, error) {
	var rows []reservationRow
	err := s.db.WithContext(ctx).Preload("HousingUnit").
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]string{models.ReservationPending, models.ReservationConfirmed}).
		Order("check_in").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying feed reservations: %w", err)
	}
	return reservationModels(rows)
}

func reservationModels(rows []reservationRow) ([]models.Reservation, error) {
	out := make([]models.Reservation, 0, len(rows))
	for _, row := range rows {
		res, err := row.model()
		if err != nil {
			return nil, fmt.Errorf("decoding reservation %s: %w", row.ID, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// CreateMission inserts a new mission.
func (s *Store) CreateMission(ctx context.Context, m *models.Mission) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = s.timestamp()
	m.UpdatedAt = m.CreatedAt

	row := missionRow{
		ID:            m.ID,
		TenantID:      m.TenantID,
		HousingUnitID: m.HousingUnitID,
		Type:          m.Type,
		Status:        m.Status,
		ScheduledAt:   m.ScheduledAt.UTC(),
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting mission: %w", err)
	}
	return nil
}

// ListMissionsForFeed retrieves the tenant's actionable missions ordered by
// scheduled time.
func (s *Store) ListMissionsForFeed(ctx context.Context, tenantID string) ([]models.Mission, error) {
	var rows []missionRow
	err := s.db.WithContext(ctx).Preload("HousingUnit").
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]string{models.MissionTodo, models.MissionInProgress}).
		Order("scheduled_at").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying feed missions: %w", err)
	}

	missions := make([]models.Mission, 0, len(rows))
	for _, row := range rows {
		missions = append(missions, row.model())
	}
	return missions, nil
}
