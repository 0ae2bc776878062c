package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

// ErrNoFeedURL is returned when a housing unit has no external calendar.
var ErrNoFeedURL = errors.New("housing unit has no calendar feed configured")

// importedNotesFormat annotates imported reservations with the source UID so
// operators can trace a booking back to its feed entry.
const importedNotesFormat = "Imported from external calendar (UID: %s)"

// FeedSource fetches and parses one external feed.
type FeedSource interface {
	FetchAndParse(ctx context.Context, url string) ([]models.SourceEvent, error)
}

// UnitSyncMarker records a successful sync on a housing unit.
type UnitSyncMarker interface {
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

// Importer pulls one housing unit's external feed into its reservations.
type Importer struct {
	feeds        FeedSource
	reservations ReservationReconciler
	units        UnitSyncMarker
	now          func() time.Time
}

// NewImporter creates a new feed importer.
func NewImporter(feeds FeedSource, reservations ReservationReconciler, units UnitSyncMarker) *Importer {
	return &Importer{
		feeds:        feeds,
		reservations: reservations,
		units:        units,
		now:          time.Now,
	}
}

// ImportForUnit fetches the unit's feed and reconciles every current event
// against the unit's reservations. Events are applied sequentially in feed
// order since two of them may share the same natural key.
func (i *Importer) ImportForUnit(ctx context.Context, unit models.HousingUnit) (models.ImportResult, error) {
	var result models.ImportResult

	if !unit.HasFeed() {
		return result, fmt.Errorf("%w: %s", ErrNoFeedURL, unit.ID)
	}

	events, err := i.feeds.FetchAndParse(ctx, unit.ICalURL)
	if err != nil {
		return result, err
	}

	now := i.now().UTC()
	for _, event := range events {
		if event.End.Before(now) {
			result.Skipped++
			continue
		}

		outcome, err := i.reconcile(ctx, unit, event)
		if err != nil {
			log.Printf("Error importing event %s for unit %s: %v", event.UID, unit.ID, err)
			result.Skipped++
			continue
		}

		switch outcome {
		case models.OutcomeCreated:
			result.Created++
		case models.OutcomeUpdated:
			result.Updated++
		}
	}

	if err := i.units.MarkSynced(ctx, unit.ID, now); err != nil {
		return result, fmt.Errorf("marking unit synced: %w", err)
	}

	return result, nil
}

func (i *Importer) reconcile(ctx context.Context, unit models.HousingUnit, event models.SourceEvent) (models.ReconcileOutcome, error) {
	key := models.ReservationKey{
		TenantID:      unit.TenantID,
		HousingUnitID: unit.ID,
		CheckIn:       models.DateOnly(event.Start),
		CheckOut:      models.DateOnly(event.End),
	}
	fields := models.ReservationFields{
		GuestName:  event.Title,
		GuestCount: 1,
		Platform:   models.PlatformOther,
		Status:     models.ReservationConfirmed,
		Notes:      fmt.Sprintf(importedNotesFormat, event.UID),
	}
	return i.reservations.Reconcile(ctx, key, fields)
}
