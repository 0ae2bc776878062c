package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

// ErrUnitNotFound is returned when a single-unit sync names an unknown unit.
var ErrUnitNotFound = errors.New("housing unit not found")

// NoFeedsMessage is reported when a tenant has nothing to sync.
const NoFeedsMessage = "no housing units with a calendar feed configured"

// UnitImporter imports one housing unit's feed.
type UnitImporter interface {
	ImportForUnit(ctx context.Context, unit models.HousingUnit) (models.ImportResult, error)
}

// Orchestrator runs the importer over every housing unit of a tenant.
type Orchestrator struct {
	units    UnitStore
	importer UnitImporter
	notifier SyncNotifier
	now      func() time.Time
}

// NewOrchestrator creates a sync orchestrator. notifier may be nil.
func NewOrchestrator(units UnitStore, importer UnitImporter, notifier SyncNotifier) *Orchestrator {
	return &Orchestrator{
		units:    units,
		importer: importer,
		notifier: notifier,
		now:      time.Now,
	}
}

// SyncAll imports every unit of the tenant that has a feed configured.
// Units run one after the other; a failing unit is recorded in the report
// and does not stop the others. Only units that succeed contribute to the
// counters. The returned error is reserved for failing to list the units.
func (o *Orchestrator) SyncAll(ctx context.Context, tenantID string) (*models.SyncReport, error) {
	units, err := o.units.ListWithFeed(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing housing units: %w", err)
	}

	report := o.newReport(tenantID)
	if len(units) == 0 {
		report.Message = NoFeedsMessage
		return report, nil
	}

	for _, unit := range units {
		o.syncUnit(ctx, unit, report)
	}

	report.Message = fmt.Sprintf("synced %d of %d housing units", len(units)-len(report.Errors), len(units))
	if o.notifier != nil {
		o.notifier.SyncCompleted(*report)
	}

	return report, nil
}

// SyncUnit imports a single housing unit of the tenant.
func (o *Orchestrator) SyncUnit(ctx context.Context, tenantID, unitID string) (*models.SyncReport, error) {
	unit, err := o.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("getting housing unit: %w", err)
	}
	if unit == nil || unit.TenantID != tenantID {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	if !unit.HasFeed() {
		return nil, fmt.Errorf("%w: %s", ErrNoFeedURL, unitID)
	}

	report := o.newReport(tenantID)
	o.syncUnit(ctx, *unit, report)
	if o.notifier != nil {
		o.notifier.SyncCompleted(*report)
	}
	return report, nil
}

// SyncAllTenants runs SyncAll for every tenant owning a configured feed.
func (o *Orchestrator) SyncAllTenants(ctx context.Context) ([]models.SyncReport, error) {
	tenants, err := o.units.ListTenantsWithFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}

	reports := make([]models.SyncReport, 0, len(tenants))
	for _, tenantID := range tenants {
		report, err := o.SyncAll(ctx, tenantID)
		if err != nil {
			log.Printf("Calendar sync failed for tenant %s: %v", tenantID, err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func (o *Orchestrator) newReport(tenantID string) *models.SyncReport {
	return &models.SyncReport{
		Success:  true,
		TenantID: tenantID,
		Errors:   []models.UnitSyncError{},
		SyncedAt: o.now().UTC(),
	}
}

// syncUnit runs one import inside its own failure boundary and folds the
// outcome into report.
func (o *Orchestrator) syncUnit(ctx context.Context, unit models.HousingUnit, report *models.SyncReport) {
	report.Units++
	log.Printf("Syncing unit %s (%s)", unit.ID, unit.Name)

	result, err := o.importUnit(ctx, unit)
	if err != nil {
		log.Printf("Calendar sync failed for unit %s: %v", unit.ID, err)
		report.Errors = append(report.Errors, models.UnitSyncError{
			UnitID: unit.ID,
			Unit:   unit.Name,
			Error:  err.Error(),
		})
		if o.notifier != nil {
			o.notifier.UnitSyncFailed(unit, err)
		}
		return
	}

	log.Printf("Calendar sync completed for unit %s: %d created, %d updated, %d skipped",
		unit.ID, result.Created, result.Updated, result.Skipped)

	report.Created += result.Created
	report.Updated += result.Updated
	report.Skipped += result.Skipped
	if o.notifier != nil {
		o.notifier.UnitSynced(unit, result)
	}
}

// importUnit converts a panic in the importer into an error so one unit
// cannot abort the whole run.
func (o *Orchestrator) importUnit(ctx context.Context, unit models.HousingUnit) (result models.ImportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import panicked: %v", r)
		}
	}()
	return o.importer.ImportForUnit(ctx, unit)
}
