package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rentalsync/backend/internal/storage"
	"github.com/rentalsync/backend/internal/storage/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "gorm.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fields(title, uid string) models.ReservationFields {
	return models.ReservationFields{
		GuestName:  title,
		GuestCount: 1,
		Platform:   models.PlatformOther,
		Status:     models.ReservationConfirmed,
		Notes:      "Imported from external calendar (UID: " + uid + ")",
	}
}

func TestStore_ReconcileFallback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	unit := models.HousingUnit{TenantID: "tenant-1", Name: "Loft", ICalURL: "https://feeds.example.com/loft.ics"}
	require.NoError(t, s.CreateHousingUnit(ctx, &unit))

	key := models.ReservationKey{TenantID: "tenant-1", HousingUnitID: unit.ID, CheckIn: date("2026-03-01"), CheckOut: date("2026-03-05")}

	outcome, err := s.Reconcile(ctx, key, fields("J. Doe", "x1"))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeCreated, outcome)

	outcome, err = s.Reconcile(ctx, key, fields("John Doe", "x1"))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUpdated, outcome)

	rows, err := s.ListByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "John Doe", rows[0].GuestName)
	assert.Equal(t, "Loft", rows[0].HousingUnitName)
	assert.Equal(t, date("2026-03-01"), rows[0].CheckIn)
	assert.Equal(t, date("2026-03-05"), rows[0].CheckOut)
}

func TestStore_Units(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := models.HousingUnit{TenantID: "tenant-1", Name: "B", ICalURL: "https://feeds.example.com/b.ics"}
	a := models.HousingUnit{TenantID: "tenant-1", Name: "A", ICalURL: "https://feeds.example.com/a.ics"}
	bare := models.HousingUnit{TenantID: "tenant-1", Name: "Bare"}
	other := models.HousingUnit{TenantID: "tenant-2", Name: "Other", ICalURL: "https://feeds.example.com/o.ics"}
	for _, u := range []*models.HousingUnit{&b, &a, &bare, &other} {
		require.NoError(t, s.CreateHousingUnit(ctx, u))
	}

	syncedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkSynced(ctx, a.ID, syncedAt))
	assert.Error(t, s.MarkSynced(ctx, "missing", syncedAt))

	units, err := s.ListWithFeed(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, b.ID, units[0].ID)
	assert.Equal(t, a.ID, units[1].ID)
	require.NotNil(t, units[1].LastSyncedAt)
	assert.True(t, units[1].LastSyncedAt.Equal(syncedAt))

	tenants, err := s.ListTenantsWithFeeds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant-1", "tenant-2"}, tenants)

	got, err := s.GetByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_FeedListings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	unit := models.HousingUnit{TenantID: "tenant-1", Name: "Loft"}
	require.NoError(t, s.CreateHousingUnit(ctx, &unit))

	for _, r := range []models.Reservation{
		{GuestName: "Later", CheckIn: date("2026-03-10"), CheckOut: date("2026-03-12"), Status: models.ReservationPending},
		{GuestName: "Sooner", CheckIn: date("2026-03-01"), CheckOut: date("2026-03-03"), Status: models.ReservationConfirmed},
		{GuestName: "Cancelled", CheckIn: date("2026-03-05"), CheckOut: date("2026-03-06"), Status: models.ReservationCancelled},
	} {
		r.TenantID, r.HousingUnitID, r.GuestCount, r.Platform = "tenant-1", unit.ID, 1, models.PlatformBooking
		require.NoError(t, s.CreateReservation(ctx, &r))
	}

	reservations, err := s.ListReservationsForFeed(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, reservations, 2)
	assert.Equal(t, "Sooner", reservations[0].GuestName)
	assert.Equal(t, "Loft", reservations[0].HousingUnitName)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, m := range []models.Mission{
		{Type: models.MissionCleaning, Status: models.MissionTodo, ScheduledAt: base.Add(time.Hour)},
		{Type: models.MissionCheckOut, Status: models.MissionInProgress, ScheduledAt: base},
		{Type: models.MissionInspection, Status: models.MissionDone, ScheduledAt: base},
	} {
		m.TenantID, m.HousingUnitID = "tenant-1", unit.ID
		require.NoError(t, s.CreateMission(ctx, &m))
	}

	missions, err := s.ListMissionsForFeed(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Equal(t, models.MissionCheckOut, missions[0].Type)
	assert.Equal(t, "Loft", missions[0].HousingUnitName)
}

// reconciledRow is the part of a reservation both stores must agree on.
type reconciledRow struct {
	CheckIn    string
	CheckOut   string
	GuestName  string
	Platform   string
	Status     string
	Notes      string
	GuestCount int
}

func snapshot(rows []models.Reservation) []reconciledRow {
	out := make([]reconciledRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, reconciledRow{
			CheckIn:    r.CheckIn.Format(models.DateLayout),
			CheckOut:   r.CheckOut.Format(models.DateLayout),
			GuestName:  r.GuestName,
			Platform:   r.Platform,
			Status:     r.Status,
			Notes:      r.Notes,
			GuestCount: r.GuestCount,
		})
	}
	return out
}

type reconcileStep struct {
	checkIn, checkOut, title, uid string
}

func TestReconcile_NativeAndFallbackAgree(t *testing.T) {
	ctx := context.Background()
	steps := []reconcileStep{
		{"2026-03-01", "2026-03-05", "J. Doe", "x1"},
		{"2026-03-05", "2026-03-08", "A. Smith", "x2"},
		{"2026-03-01", "2026-03-05", "J. Doe (changed)", "x1"},
		{"2026-03-10", "2026-03-10", "Day use", "x3"},
		{"2026-03-05", "2026-03-08", "A. Smith", "x2"},
	}

	// fallback path
	gs := newTestStore(t)
	gUnit := models.HousingUnit{ID: "unit-1", TenantID: "tenant-1", Name: "Loft"}
	require.NoError(t, gs.CreateHousingUnit(ctx, &gUnit))

	// native upsert path
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "native.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(ctx, db))
	native := storage.NewStore(db)
	nUnit := models.HousingUnit{ID: "unit-1", TenantID: "tenant-1", Name: "Loft"}
	require.NoError(t, native.Units.Create(ctx, &nUnit))

	for _, step := range steps {
		key := models.ReservationKey{TenantID: "tenant-1", HousingUnitID: "unit-1", CheckIn: date(step.checkIn), CheckOut: date(step.checkOut)}

		gOutcome, err := gs.Reconcile(ctx, key, fields(step.title, step.uid))
		require.NoError(t, err)
		nOutcome, err := native.Reconcile(ctx, key, fields(step.title, step.uid))
		require.NoError(t, err)

		assert.Equal(t, nOutcome, gOutcome, "outcome for %v", step)
	}

	gRows, err := gs.ListByUnit(ctx, "unit-1")
	require.NoError(t, err)
	nRows, err := native.Reservations.ListByUnit(ctx, "unit-1")
	require.NoError(t, err)

	assert.Len(t, gRows, 3)
	assert.Equal(t, snapshot(nRows), snapshot(gRows))
}
