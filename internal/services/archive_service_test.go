package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/models"
)

// seedSiteGraph inserts a site with one row in every child table and
// returns the site id.
func seedSiteGraph(t *testing.T, gdb *gorm.DB, siteID string, userCreated bool) string {
	t.Helper()
	site := &models.Site{
		ID:            siteID,
		Name:          "Site " + siteID,
		Capacity:      "100 MW",
		Latitude:      27.5,
		Longitude:     71.9,
		IsUserCreated: userCreated,
	}
	if err := gdb.Create(site).Error; err != nil {
		t.Fatalf("Failed to create site: %v", err)
	}

	rows := []interface{}{
		&models.Activity{ID: siteID + "-act", Type: "inspection", Title: "Inspected", SiteID: &site.ID, Timestamp: time.Now().UTC()},
		&models.Schedule{ID: siteID + "-sched", SiteID: &site.ID, Date: "2025-03-01", Time: "09:00 AM", Title: "Visit"},
		&models.MaintenanceForm{ID: siteID + "-form", FormID: "MF-" + siteID, SiteID: site.ID, UserID: "user-001", TechnicianName: "Tech", Timestamp: time.Now().UTC()},
		&models.PerformanceRecord{ID: siteID + "-perf", SiteID: site.ID, Date: "2025-02-10", EnergyGeneratedKwh: 45, Status: "normal"},
	}
	for _, row := range rows {
		if err := gdb.Create(row).Error; err != nil {
			t.Fatalf("Failed to create child row: %v", err)
		}
	}
	return site.ID
}

func archivedCounts(t *testing.T, gdb *gorm.DB, siteID string) map[string]int64 {
	t.Helper()
	counts := map[string]int64{}
	for _, child := range cascadeChildren() {
		var n int64
		err := gdb.Model(child.model).
			Where("site_id = ? AND archived = ?", siteID, true).
			Count(&n).Error
		if err != nil {
			t.Fatalf("Failed to count %s: %v", child.name, err)
		}
		counts[child.name] = n
	}
	return counts
}

func TestArchiveSite_CascadesToAllChildTables(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewArchiveService(gdb, nil, nil)

	siteID := seedSiteGraph(t, gdb, "site-a", false)
	otherID := seedSiteGraph(t, gdb, "site-b", false)

	if err := svc.ArchiveSite(context.Background(), siteID); err != nil {
		t.Fatalf("ArchiveSite: %v", err)
	}

	var site models.Site
	if err := gdb.Where("id = ?", siteID).First(&site).Error; err != nil {
		t.Fatalf("Failed to fetch site: %v", err)
	}
	if !site.Archived || site.ArchivedAt == nil {
		t.Errorf("site archived=%v archived_at=%v, want true and non-nil", site.Archived, site.ArchivedAt)
	}
	if site.Synced {
		t.Error("archive must clear the synced flag")
	}

	for name, n := range archivedCounts(t, gdb, siteID) {
		if n != 1 {
			t.Errorf("%s: %d archived rows for %s, want 1", name, n, siteID)
		}
	}
	for name, n := range archivedCounts(t, gdb, otherID) {
		if n != 0 {
			t.Errorf("%s: cascade leaked onto %s (%d rows)", name, otherID, n)
		}
	}
}

func TestUnarchiveSite_RestoresCascade(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewArchiveService(gdb, nil, nil)

	siteID := seedSiteGraph(t, gdb, "site-a", false)
	otherID := seedSiteGraph(t, gdb, "site-b", false)

	// A pre-archived row on an unrelated site must survive the
	// round-trip untouched.
	if err := gdb.Model(&models.Schedule{}).Where("id = ?", otherID+"-sched").Update("archived", true).Error; err != nil {
		t.Fatalf("Failed to pre-archive: %v", err)
	}

	if err := svc.ArchiveSite(context.Background(), siteID); err != nil {
		t.Fatalf("ArchiveSite: %v", err)
	}
	if err := svc.UnarchiveSite(context.Background(), siteID); err != nil {
		t.Fatalf("UnarchiveSite: %v", err)
	}

	var site models.Site
	if err := gdb.Where("id = ?", siteID).First(&site).Error; err != nil {
		t.Fatalf("Failed to fetch site: %v", err)
	}
	if site.Archived || site.ArchivedAt != nil {
		t.Errorf("site archived=%v archived_at=%v after restore, want false and nil", site.Archived, site.ArchivedAt)
	}

	for name, n := range archivedCounts(t, gdb, siteID) {
		if n != 0 {
			t.Errorf("%s: %d rows still archived after restore", name, n)
		}
	}

	var other models.Schedule
	if err := gdb.Where("id = ?", otherID+"-sched").First(&other).Error; err != nil {
		t.Fatalf("Failed to fetch unrelated schedule: %v", err)
	}
	if !other.Archived {
		t.Error("restore must not touch rows of other sites")
	}
}

func TestArchiveSite_Idempotent(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewArchiveService(gdb, nil, nil)
	siteID := seedSiteGraph(t, gdb, "site-a", false)

	if err := svc.ArchiveSite(context.Background(), siteID); err != nil {
		t.Fatalf("first ArchiveSite: %v", err)
	}
	if err := svc.ArchiveSite(context.Background(), siteID); err != nil {
		t.Fatalf("second ArchiveSite: %v", err)
	}

	for name, n := range archivedCounts(t, gdb, siteID) {
		if n != 1 {
			t.Errorf("%s: %d archived rows after double archive, want 1", name, n)
		}
	}
}

func TestArchiveSite_NotFound(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewArchiveService(gdb, nil, nil)

	if err := svc.ArchiveSite(context.Background(), "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ArchiveSite(missing) = %v, want ErrNotFound", err)
	}
	if err := svc.UnarchiveSite(context.Background(), "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("UnarchiveSite(missing) = %v, want ErrNotFound", err)
	}
}

func TestCascadeDeleteSite_BundledRejected(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewArchiveService(gdb, nil, nil)
	siteID := seedSiteGraph(t, gdb, "site-a", false)

	err := svc.CascadeDeleteSite(context.Background(), siteID)
	if !errors.Is(err, apperrors.ErrIllegalState) {
		t.Fatalf("CascadeDeleteSite(bundled) = %v, want ErrIllegalState", err)
	}

	var count int64
	if err := gdb.Model(&models.Site{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count sites: %v", err)
	}
	if count != 1 {
		t.Errorf("bundled site was deleted")
	}
}

func TestCascadeDeleteSite_RemovesGraph(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewArchiveService(gdb, nil, nil)

	siteID := seedSiteGraph(t, gdb, "site-a", true)
	otherID := seedSiteGraph(t, gdb, "site-b", true)

	if err := svc.CascadeDeleteSite(context.Background(), siteID); err != nil {
		t.Fatalf("CascadeDeleteSite: %v", err)
	}

	var count int64
	if err := gdb.Model(&models.Site{}).Where("id = ?", siteID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Error("site row survived hard delete")
	}
	for _, child := range cascadeChildren() {
		if err := gdb.Model(child.model).Where("site_id = ?", siteID).Count(&count).Error; err != nil {
			t.Fatalf("Failed to count %s: %v", child.name, err)
		}
		if count != 0 {
			t.Errorf("%s rows survived hard delete", child.name)
		}
		if err := gdb.Model(child.model).Where("site_id = ?", otherID).Count(&count).Error; err != nil {
			t.Fatalf("Failed to count %s: %v", child.name, err)
		}
		if count != 1 {
			t.Errorf("%s: delete leaked onto %s", child.name, otherID)
		}
	}
}

func TestArchiveSite_PublishesChangeEvents(t *testing.T) {
	gdb := setupTestDB(t)
	bus := NewChangeBus()
	events := bus.Subscribe()
	svc := NewArchiveService(gdb, bus, nil)

	siteID := seedSiteGraph(t, gdb, "site-a", false)
	if err := svc.ArchiveSite(context.Background(), siteID); err != nil {
		t.Fatalf("ArchiveSite: %v", err)
	}

	seen := map[EntityKind]bool{}
	for i := 0; i < 5; i++ {
		select {
		case event := <-events:
			seen[event.Kind] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for change events")
		}
	}
	for _, kind := range []EntityKind{KindSite, KindSchedule, KindActivity, KindForm, KindPerformance} {
		if !seen[kind] {
			t.Errorf("no change event for kind %s", kind)
		}
	}
}
