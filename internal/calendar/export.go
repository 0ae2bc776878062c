package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Exporter renders a tenant's open missions and active reservations as an
// iCalendar document.
type Exporter struct {
	missions     MissionLister
	reservations ReservationLister
	now          func() time.Time
}

// NewExporter creates a feed exporter.
func NewExporter(missions MissionLister, reservations ReservationLister) *Exporter {
	return &Exporter{
		missions:     missions,
		reservations: reservations,
		now:          time.Now,
	}
}

// Export builds the whole document in memory. On error nothing is returned,
// so callers never write a truncated feed.
func (e *Exporter) Export(ctx context.Context, tenantID string) ([]byte, error) {
	missions, err := e.missions.ListMissionsForFeed(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing missions: %w", err)
	}

	reservations, err := e.reservations.ListReservationsForFeed(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}

	sort.SliceStable(missions, func(i, j int) bool {
		if !missions[i].ScheduledAt.Equal(missions[j].ScheduledAt) {
			return missions[i].ScheduledAt.Before(missions[j].ScheduledAt)
		}
		return missions[i].ID < missions[j].ID
	})
	sort.SliceStable(reservations, func(i, j int) bool {
		if !reservations[i].CheckIn.Equal(reservations[j].CheckIn) {
			return reservations[i].CheckIn.Before(reservations[j].CheckIn)
		}
		return reservations[i].ID < reservations[j].ID
	})

	return []byte(writeCalendar(missions, reservations, e.now())), nil
}
