package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"solarops/fieldstore/internal/db/repositories"
	"solarops/fieldstore/internal/models"
)

func newViewsService(gdb *gorm.DB, bus *ChangeBus) *ViewsService {
	return NewViewsService(
		repositories.NewSiteRepository(gdb),
		repositories.NewScheduleRepository(gdb),
		repositories.NewActivityRepository(gdb),
		repositories.NewFormRepository(gdb),
		repositories.NewPerformanceRepository(gdb),
		bus,
		nil,
	)
}

func createSiteRow(t *testing.T, gdb *gorm.DB, id, name string) {
	t.Helper()
	require.NoError(t, gdb.Create(&models.Site{
		ID: id, Name: name, Capacity: "100 MW", Latitude: 27.5, Longitude: 71.9,
	}).Error)
}

func TestViews_ActiveSitesMemoized(t *testing.T) {
	gdb := setupTestDB(t)
	views := newViewsService(gdb, nil)
	defer views.Close()
	ctx := context.Background()

	createSiteRow(t, gdb, "site-001", "Bhadla Solar Park")

	sites, err := views.ActiveSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	// A write that bypasses the change bus is invisible until the
	// cache is dropped.
	createSiteRow(t, gdb, "site-002", "Pavagada Solar Park")

	sites, err = views.ActiveSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1, "memoized view should not see the silent write")

	views.Refresh()

	sites, err = views.ActiveSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
}

func TestViews_ChangeEventInvalidates(t *testing.T) {
	gdb := setupTestDB(t)
	bus := NewChangeBus()
	views := newViewsService(gdb, bus)
	defer views.Close()
	ctx := context.Background()

	createSiteRow(t, gdb, "site-001", "Bhadla Solar Park")

	sites, err := views.ActiveSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	createSiteRow(t, gdb, "site-002", "Pavagada Solar Park")
	bus.Publish(ChangeEvent{Kind: KindSite, ID: "site-002"})

	require.Eventually(t, func() bool {
		sites, err := views.ActiveSites(ctx)
		return err == nil && len(sites) == 2
	}, 2*time.Second, 10*time.Millisecond, "site change event should drop the memoized view")
}

func TestViews_ScheduleEventLeavesSiteViewAlone(t *testing.T) {
	gdb := setupTestDB(t)
	bus := NewChangeBus()
	views := newViewsService(gdb, bus)
	defer views.Close()
	ctx := context.Background()

	createSiteRow(t, gdb, "site-001", "Bhadla Solar Park")

	sites, err := views.ActiveSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	createSiteRow(t, gdb, "site-002", "Pavagada Solar Park")
	bus.Publish(ChangeEvent{Kind: KindSchedule})

	// Give the watcher time to process, then confirm the site view
	// survived a schedule-only invalidation.
	time.Sleep(50 * time.Millisecond)
	sites, err = views.ActiveSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
}

func TestViews_SubscribeForwardsEvents(t *testing.T) {
	gdb := setupTestDB(t)
	bus := NewChangeBus()
	views := newViewsService(gdb, bus)
	defer views.Close()

	events := views.Subscribe()
	bus.Publish(ChangeEvent{Kind: KindForm, ID: "form-001"})

	select {
	case event := <-events:
		require.Equal(t, KindForm, event.Kind)
		require.Equal(t, "form-001", event.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the forwarded event")
	}
}

func TestViews_SchedulesForDate(t *testing.T) {
	gdb := setupTestDB(t)
	views := newViewsService(gdb, nil)
	defer views.Close()
	ctx := context.Background()

	createSiteRow(t, gdb, "site-001", "Bhadla Solar Park")
	siteID := "site-001"
	for _, row := range []*models.Schedule{
		{ID: "s1", SiteID: &siteID, Date: "2025-03-01", Time: "02:00 PM", Title: "Afternoon", Status: "scheduled"},
		{ID: "s2", SiteID: &siteID, Date: "2025-03-01", Time: "09:00 AM", Title: "Morning", Status: "scheduled"},
		{ID: "s3", SiteID: &siteID, Date: "2025-03-02", Time: "09:00 AM", Title: "Next day", Status: "scheduled"},
	} {
		require.NoError(t, gdb.Create(row).Error)
	}

	schedules, err := views.SchedulesForDate(ctx, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	require.Equal(t, "s2", schedules[0].ID, "09:00 AM must list before 02:00 PM")
	require.Equal(t, "s1", schedules[1].ID)
}

func TestViews_ActivityFeedLimit(t *testing.T) {
	gdb := setupTestDB(t)
	views := newViewsService(gdb, nil)
	defer views.Close()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, gdb.Create(&models.Activity{
			ID:        fmt.Sprintf("act-%d", i),
			Type:      "inspection",
			Title:     "Inspected",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	feed, err := views.ActivityFeed(ctx, nil, 3)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	require.True(t, feed[0].Timestamp.After(feed[2].Timestamp), "feed should be newest first")

	// A different limit is a different view; the limit-3 entry must
	// not be served for it.
	feed, err = views.ActivityFeed(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	feed, err = views.ActivityFeed(ctx, nil, 5)
	require.NoError(t, err)
	require.Len(t, feed, 5)
}
