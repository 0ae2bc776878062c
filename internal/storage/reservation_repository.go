package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentalsync/backend/internal/storage/models"
)

// ReservationRepository provides data access for reservations.
type ReservationRepository struct {
	BaseRepository
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const reservationColumns = `r.id, r.tenant_id, r.housing_unit_id, u.name, r.guest_name, r.check_in, r.check_out,
	r.guest_count, r.platform, r.status, r.notes, r.created_at, r.updated_at`

// Create inserts a reservation entered by a user.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = GenerateID()
	}
	res.CreatedAt = r.Now()
	res.UpdatedAt = res.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO reservations (
			id, tenant_id, housing_unit_id, guest_name, check_in, check_out,
			guest_count, platform, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.ID, res.TenantID, res.HousingUnitID, res.GuestName,
		formatDate(res.CheckIn), formatDate(res.CheckOut),
		res.GuestCount, res.Platform, res.Status, res.Notes,
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}

	return nil
}

// Reconcile inserts the reservation identified by key or updates the one
// already holding it, in a single statement. The returned id tells which
// branch SQLite took: a fresh id means the row was inserted.
func (r *ReservationRepository) Reconcile(ctx context.Context, key models.ReservationKey, fields models.ReservationFields) (models.ReconcileOutcome, error) {
	newID := GenerateID()
	now := r.Now()

	var id string
	err := r.DB().QueryRowContext(ctx, `
		INSERT INTO reservations (
			id, tenant_id, housing_unit_id, guest_name, check_in, check_out,
			guest_count, platform, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, housing_unit_id, check_in, check_out) DO UPDATE SET
			guest_name = excluded.guest_name,
			guest_count = excluded.guest_count,
			platform = excluded.platform,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at
		RETURNING id
	`,
		newID, key.TenantID, key.HousingUnitID, fields.GuestName,
		formatDate(key.CheckIn), formatDate(key.CheckOut),
		fields.GuestCount, fields.Platform, fields.Status, fields.Notes,
		now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting reservation: %w", err)
	}

	if id == newID {
		return models.OutcomeCreated, nil
	}
	return models.OutcomeUpdated, nil
}

// GetByKey retrieves the reservation holding the natural key, or nil.
func (r *ReservationRepository) GetByKey(ctx context.Context, key models.ReservationKey) (*models.Reservation, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r JOIN housing_units u ON u.id = r.housing_unit_id
		WHERE r.tenant_id = ? AND r.housing_unit_id = ? AND r.check_in = ? AND r.check_out = ?
	`, key.TenantID, key.HousingUnitID, formatDate(key.CheckIn), formatDate(key.CheckOut))
	if err != nil {
		return nil, fmt.Errorf("querying reservation by key: %w", err)
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, nil
	}
	return &reservations[0], nil
}

// ListByUnit retrieves every reservation of a housing unit ordered by check-in.
func (r *ReservationRepository) ListByUnit(ctx context.Context, unitID string) ([]models.Reservation, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r JOIN housing_units u ON u.id = r.housing_unit_id
		WHERE r.housing_unit_id = ?
		ORDER BY r.check_in, r.check_out, r.id
	`, unitID)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListReservationsForFeed retrieves the tenant's pending and confirmed reservations
// ordered by check-in.
func (r *ReservationRepository) ListReservationsForFeed(ctx context.Context, tenantID string) ([]models.Reservation, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r JOIN housing_units u ON u.id = r.housing_unit_id
		WHERE r.tenant_id = ? AND r.status IN (?, ?)
		ORDER BY r.check_in, r.id
	`, tenantID, models.ReservationPending, models.ReservationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("querying feed reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

func scanReservations(rows *sql.Rows) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		var checkIn, checkOut string
		if err := rows.Scan(
			&res.ID, &res.TenantID, &res.HousingUnitID, &res.HousingUnitName,
			&res.GuestName, &checkIn, &checkOut, &res.GuestCount,
			&res.Platform, &res.Status, &res.Notes, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}

		var err error
		if res.CheckIn, err = parseDate(checkIn); err != nil {
			return nil, err
		}
		if res.CheckOut, err = parseDate(checkOut); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservations: %w", err)
	}
	return reservations, nil
}
