package storage

import (
	"context"
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

// Store bundles the SQLite repositories behind the record store interface
// used by the calendar services.
type Store struct {
	db           *DB
	Units        *HousingUnitRepository
	Reservations *ReservationRepository
	Missions     *MissionRepository
}

// NewStore creates the repositories on db.
func NewStore(db *DB) *Store {
	return &Store{
		db:           db,
		Units:        NewHousingUnitRepository(db),
		Reservations: NewReservationRepository(db),
		Missions:     NewMissionRepository(db),
	}
}

// GetByID retrieves a housing unit by its ID.
func (s *Store) GetByID(ctx context.Context, id string) (*models.HousingUnit, error) {
	return s.Units.GetByID(ctx, id)
}

// ListWithFeed lists a tenant's housing units with a feed configured.
func (s *Store) ListWithFeed(ctx context.Context, tenantID string) ([]models.HousingUnit, error) {
	return s.Units.ListWithFeed(ctx, tenantID)
}

// ListTenantsWithFeeds lists tenants owning at least one feed.
func (s *Store) ListTenantsWithFeeds(ctx context.Context) ([]string, error) {
	return s.Units.ListTenantsWithFeeds(ctx)
}

// MarkSynced records a successful import of a housing unit.
func (s *Store) MarkSynced(ctx context.Context, id string, at time.Time) error {
	return s.Units.MarkSynced(ctx, id, at)
}

// Reconcile upserts one imported reservation.
func (s *Store) Reconcile(ctx context.Context, key models.ReservationKey, fields models.ReservationFields) (models.ReconcileOutcome, error) {
	return s.Reservations.Reconcile(ctx, key, fields)
}

// ListReservationsForFeed lists the reservations of the export feed.
func (s *Store) ListReservationsForFeed(ctx context.Context, tenantID string) ([]models.Reservation, error) {
	return s.Reservations.ListReservationsForFeed(ctx, tenantID)
}

// ListMissionsForFeed lists the missions of the export feed.
func (s *Store) ListMissionsForFeed(ctx context.Context, tenantID string) ([]models.Mission, error) {
	return s.Missions.ListMissionsForFeed(ctx, tenantID)
}

// PingContext checks the database connection.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
