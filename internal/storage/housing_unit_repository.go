package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

// HousingUnitRepository provides data access for housing units.
type HousingUnitRepository struct {
	BaseRepository
}

// NewHousingUnitRepository creates a new housing unit repository.
func NewHousingUnitRepository(db *DB) *HousingUnitRepository {
	return &HousingUnitRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const housingUnitColumns = `id, tenant_id, name, ical_url, last_synced_at, created_at, updated_at`

// Create inserts a new housing unit.
func (r *HousingUnitRepository) Create(ctx context.Context, unit *models.HousingUnit) error {
	if unit.ID == "" {
		unit.ID = GenerateID()
	}
	unit.CreatedAt = r.Now()
	unit.UpdatedAt = unit.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO housing_units (`+housingUnitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		unit.ID, unit.TenantID, unit.Name, unit.ICalURL,
		unit.LastSyncedAt, unit.CreatedAt, unit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting housing unit: %w", err)
	}

	return nil
}

// GetByID retrieves a housing unit by its ID. It returns nil when no unit
// matches.
func (r *HousingUnitRepository) GetByID(ctx context.Context, id string) (*models.HousingUnit, error) {
	row := r.DB().QueryRowContext(ctx, `
		SELECT `+housingUnitColumns+` FROM housing_units WHERE id = ?
	`, id)

	unit, err := scanHousingUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying housing unit: %w", err)
	}

	return unit, nil
}

// ListWithFeed retrieves the tenant's units that have an external calendar
// configured, oldest sync first.
func (r *HousingUnitRepository) ListWithFeed(ctx context.Context, tenantID string) ([]models.HousingUnit, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+housingUnitColumns+`
		FROM housing_units
		WHERE tenant_id = ? AND ical_url != ''
		ORDER BY last_synced_at ASC NULLS FIRST, name, id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying housing units with feed: %w", err)
	}
	defer rows.Close()

	var units []models.HousingUnit
	for rows.Next() {
		unit, err := scanHousingUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning housing unit: %w", err)
		}
		units = append(units, *unit)
	}

	return units, rows.Err()
}

// ListTenantsWithFeeds returns every tenant owning at least one unit with a
// configured feed.
func (r *HousingUnitRepository) ListTenantsWithFeeds(ctx context.Context) ([]string, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT DISTINCT tenant_id FROM housing_units WHERE ical_url != '' ORDER BY tenant_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tenants with feeds: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("scanning tenant ID: %w", err)
		}
		tenants = append(tenants, tenantID)
	}

	return tenants, rows.Err()
}

// MarkSynced sets the last-synced timestamp of a unit.
func (r *HousingUnitRepository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	at = at.UTC()
	result, err := r.DB().ExecContext(ctx, `
		UPDATE housing_units SET last_synced_at = ?, updated_at = ? WHERE id = ?
	`, at, r.Now(), id)
	if err != nil {
		return fmt.Errorf("updating last synced: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("housing unit not found: %s", id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHousingUnit(row rowScanner) (*models.HousingUnit, error) {
	var unit models.HousingUnit
	var lastSynced sql.NullTime
	if err := row.Scan(
		&unit.ID, &unit.TenantID, &unit.Name, &unit.ICalURL,
		&lastSynced, &unit.CreatedAt, &unit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastSynced.Valid {
		t := lastSynced.Time.UTC()
		unit.LastSyncedAt = &t
	}
	return &unit, nil
}
