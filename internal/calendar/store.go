package calendar

import (
	"context"
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

// UnitStore is the housing unit side of the record store used by sync.
type UnitStore interface {
	GetByID(ctx context.Context, id string) (*models.HousingUnit, error)
	ListWithFeed(ctx context.Context, tenantID string) ([]models.HousingUnit, error)
	ListTenantsWithFeeds(ctx context.Context) ([]string, error)
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

// ReservationReconciler writes one imported booking, keyed on its natural
// key. Implementations either upsert natively or look the key up and then
// insert or update; both must leave the same row behind.
type ReservationReconciler interface {
	Reconcile(ctx context.Context, key models.ReservationKey, fields models.ReservationFields) (models.ReconcileOutcome, error)
}

// ReservationLister lists the reservations published in the export feed.
type ReservationLister interface {
	ListReservationsForFeed(ctx context.Context, tenantID string) ([]models.Reservation, error)
}

// MissionLister lists the missions published in the export feed.
type MissionLister interface {
	ListMissionsForFeed(ctx context.Context, tenantID string) ([]models.Mission, error)
}

// SyncNotifier receives sync outcomes as they happen. A nil notifier is
// allowed everywhere one is accepted.
type SyncNotifier interface {
	UnitSynced(unit models.HousingUnit, result models.ImportResult)
	UnitSyncFailed(unit models.HousingUnit, err error)
	SyncCompleted(report models.SyncReport)
}
