package storage

import (
	"context"
	"fmt"

	"github.com/rentalsync/backend/internal/storage/models"
)

// MissionRepository provides data access for operational missions.
type MissionRepository struct {
	BaseRepository
}

// NewMissionRepository creates a new mission repository.
func NewMissionRepository(db *DB) *MissionRepository {
	return &MissionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new mission.
func (r *MissionRepository) Create(ctx context.Context, m *models.Mission) error {
	if m.ID == "" {
		m.ID = GenerateID()
	}
	m.CreatedAt = r.Now()
	m.UpdatedAt = m.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO missions (
			id, tenant_id, housing_unit_id, type, status, scheduled_at, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID, m.TenantID, m.HousingUnitID, m.Type, m.Status,
		m.ScheduledAt.UTC(), m.Notes, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting mission: %w", err)
	}

	return nil
}

// ListMissionsForFeed retrieves the tenant's actionable missions (to do or in
// progress) ordered by scheduled time.
func (r *MissionRepository) ListMissionsForFeed(ctx context.Context, tenantID string) ([]models.Mission, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT m.id, m.tenant_id, m.housing_unit_id, u.name, m.type, m.status,
		       m.scheduled_at, m.notes, m.created_at, m.updated_at
		FROM missions m JOIN housing_units u ON u.id = m.housing_unit_id
		WHERE m.tenant_id = ? AND m.status IN (?, ?)
		ORDER BY m.scheduled_at, m.id
	`, tenantID, models.MissionTodo, models.MissionInProgress)
	if err != nil {
		return nil, fmt.Errorf("querying feed missions: %w", err)
	}
	defer rows.Close()

	var missions []models.Mission
	for rows.Next() {
		var m models.Mission
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.HousingUnitID, &m.HousingUnitName, &m.Type, &m.Status,
			&m.ScheduledAt, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning mission: %w", err)
		}
		m.ScheduledAt = m.ScheduledAt.UTC()
		missions = append(missions, m)
	}

	return missions, rows.Err()
}
