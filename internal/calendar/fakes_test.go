package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rentalsync/backend/internal/storage/models"
)

// staticFeeds serves parsed events per URL.
type staticFeeds struct {
	events map[string][]models.SourceEvent
	errs   map[string]error
}

func (f *staticFeeds) FetchAndParse(_ context.Context, url string) ([]models.SourceEvent, error) {
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return f.events[url], nil
}

// memoryReservations reconciles into a map keyed like the unique index.
type memoryReservations struct {
	mu     sync.Mutex
	rows   map[string]models.Reservation
	failOn map[string]bool // guest names rejected by the store
	nextID int
}

func newMemoryReservations() *memoryReservations {
	return &memoryReservations{rows: make(map[string]models.Reservation), failOn: make(map[string]bool)}
}

func keyString(k models.ReservationKey) string {
	return fmt.Sprintf("%s|%s|%s|%s", k.TenantID, k.HousingUnitID,
		k.CheckIn.Format(models.DateLayout), k.CheckOut.Format(models.DateLayout))
}

func (m *memoryReservations) Reconcile(_ context.Context, key models.ReservationKey, fields models.ReservationFields) (models.ReconcileOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOn[fields.GuestName] {
		return 0, errors.New("constraint failed")
	}

	k := keyString(key)
	row, exists := m.rows[k]
	if !exists {
		m.nextID++
		row = models.Reservation{
			ID:            fmt.Sprintf("res-%d", m.nextID),
			TenantID:      key.TenantID,
			HousingUnitID: key.HousingUnitID,
			CheckIn:       key.CheckIn,
			CheckOut:      key.CheckOut,
		}
	}
	row.GuestName = fields.GuestName
	row.GuestCount = fields.GuestCount
	row.Platform = fields.Platform
	row.Status = fields.Status
	row.Notes = fields.Notes
	m.rows[k] = row

	if exists {
		return models.OutcomeUpdated, nil
	}
	return models.OutcomeCreated, nil
}

func (m *memoryReservations) all() []models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Reservation, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return keyString(keyOf(out[i])) < keyString(keyOf(out[j])) })
	return out
}

func keyOf(r models.Reservation) models.ReservationKey {
	return models.ReservationKey{TenantID: r.TenantID, HousingUnitID: r.HousingUnitID, CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// memoryUnits is an in-memory UnitStore.
type memoryUnits struct {
	mu      sync.Mutex
	units   []models.HousingUnit
	synced  map[string]time.Time
	markErr error
	listErr error
}

func newMemoryUnits(units ...models.HousingUnit) *memoryUnits {
	return &memoryUnits{units: units, synced: make(map[string]time.Time)}
}

func (m *memoryUnits) GetByID(_ context.Context, id string) (*models.HousingUnit, error) {
	for _, u := range m.units {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memoryUnits) ListWithFeed(_ context.Context, tenantID string) ([]models.HousingUnit, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.HousingUnit
	for _, u := range m.units {
		if u.TenantID == tenantID && u.HasFeed() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryUnits) ListTenantsWithFeeds(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, u := range m.units {
		if u.HasFeed() && !seen[u.TenantID] {
			seen[u.TenantID] = true
			out = append(out, u.TenantID)
		}
	}
	return out, nil
}

func (m *memoryUnits) MarkSynced(_ context.Context, id string, at time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced[id] = at
	return nil
}

// recordingNotifier captures sync notifications.
type recordingNotifier struct {
	synced    []string
	failed    []string
	completed []models.SyncReport
}

func (n *recordingNotifier) UnitSynced(unit models.HousingUnit, _ models.ImportResult) {
	n.synced = append(n.synced, unit.ID)
}

func (n *recordingNotifier) UnitSyncFailed(unit models.HousingUnit, _ error) {
	n.failed = append(n.failed, unit.ID)
}

func (n *recordingNotifier) SyncCompleted(report models.SyncReport) {
	n.completed = append(n.completed, report)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
