package repositories

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"solarops/fieldstore/internal/apperrors"
	fsdb "solarops/fieldstore/internal/db"
	"solarops/fieldstore/internal/models"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(fsdb.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return gdb
}

func strPtr(s string) *string { return &s }

func TestSiteCreate_ForcesUserCreated(t *testing.T) {
	repo := NewSiteRepository(setupTestDB(t))
	ctx := context.Background()

	site := &models.Site{Name: "Rooftop Array", Capacity: "2 MW", Latitude: 12.97, Longitude: 77.59}
	if err := repo.Create(ctx, site); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if site.ID == "" {
		t.Error("Create must assign an id")
	}
	if !site.IsUserCreated {
		t.Error("technician-created sites must be marked user-created")
	}
}

func TestSiteCreate_RejectsBadCoordinates(t *testing.T) {
	repo := NewSiteRepository(setupTestDB(t))
	ctx := context.Background()

	cases := []models.Site{
		{Name: "North of the pole", Latitude: 91, Longitude: 0},
		{Name: "Off the map", Latitude: 0, Longitude: -181},
	}
	for _, site := range cases {
		err := repo.Create(ctx, &site)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Create(%s) = %v, want ErrValidation", site.Name, err)
		}
	}
}

func TestSiteUpdate_BundledImmutable(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewSiteRepository(gdb)
	ctx := context.Background()

	bundled := &models.Site{ID: "site-001", Name: "Bhadla Solar Park", Capacity: "2245 MW", Latitude: 27.5, Longitude: 71.9}
	if err := repo.CreateBundled(ctx, bundled); err != nil {
		t.Fatalf("CreateBundled: %v", err)
	}

	_, err := repo.Update(ctx, "site-001", func(s *models.Site) error {
		s.Name = "Renamed"
		return nil
	})
	if !errors.Is(err, apperrors.ErrIllegalState) {
		t.Fatalf("Update(bundled) = %v, want ErrIllegalState", err)
	}

	fetched, err := repo.GetByID(ctx, "site-001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Name != "Bhadla Solar Park" {
		t.Errorf("bundled site name changed to %q", fetched.Name)
	}
}

func TestSiteUpdate_MutatesUserSite(t *testing.T) {
	repo := NewSiteRepository(setupTestDB(t))
	ctx := context.Background()

	site := &models.Site{Name: "Rooftop Array", Capacity: "2 MW", Latitude: 12.97, Longitude: 77.59}
	if err := repo.Create(ctx, site); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := repo.Update(ctx, site.ID, func(s *models.Site) error {
		s.Capacity = "3 MW"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Capacity != "3 MW" {
		t.Errorf("capacity = %q, want 3 MW", updated.Capacity)
	}

	if _, err := repo.Update(ctx, "missing", func(s *models.Site) error { return nil }); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}
}

func TestSiteUpdate_RejectsBadCoordinates(t *testing.T) {
	repo := NewSiteRepository(setupTestDB(t))
	ctx := context.Background()

	site := &models.Site{Name: "Rooftop Array", Capacity: "2 MW", Latitude: 12.97, Longitude: 77.59}
	if err := repo.Create(ctx, site); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := repo.Update(ctx, site.ID, func(s *models.Site) error {
		s.Latitude = 120
		return nil
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Update(lat=120) = %v, want ErrValidation", err)
	}

	// The rejected mutation must not have been persisted.
	fetched, err := repo.GetByID(ctx, site.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Latitude != 12.97 {
		t.Errorf("latitude = %f, want the original value", fetched.Latitude)
	}
}

func TestSiteList_Filters(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewSiteRepository(gdb)
	ctx := context.Background()

	if err := repo.CreateBundled(ctx, &models.Site{ID: "site-b", Name: "Zeta Park", Latitude: 1, Longitude: 1}); err != nil {
		t.Fatalf("CreateBundled: %v", err)
	}
	if err := repo.Create(ctx, &models.Site{ID: "site-u", Name: "Alpha Rooftop", Latitude: 1, Longitude: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := gdb.Model(&models.Site{}).Where("id = ?", "site-b").Update("archived", true).Error; err != nil {
		t.Fatalf("Failed to archive: %v", err)
	}

	active, err := repo.List(ctx, SiteFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 1 || active[0].ID != "site-u" {
		t.Errorf("default list = %+v, want only the active site", active)
	}

	archived, err := repo.List(ctx, SiteFilter{ArchivedOnly: true})
	if err != nil {
		t.Fatalf("List archived: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != "site-b" {
		t.Errorf("archived list = %+v", archived)
	}

	all, err := repo.List(ctx, SiteFilter{IncludeArchived: true})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("full list = %d rows, want 2", len(all))
	}
	if all[0].Name != "Alpha Rooftop" {
		t.Errorf("list not sorted by name: first is %q", all[0].Name)
	}

	userOnly, err := repo.List(ctx, SiteFilter{IncludeArchived: true, UserCreatedOnly: true})
	if err != nil {
		t.Fatalf("List user-created: %v", err)
	}
	if len(userOnly) != 1 || userOnly[0].ID != "site-u" {
		t.Errorf("user-created list = %+v", userOnly)
	}
}

func TestSiteMarkSynced(t *testing.T) {
	repo := NewSiteRepository(setupTestDB(t))
	ctx := context.Background()

	site := &models.Site{Name: "Rooftop Array", Latitude: 1, Longitude: 1}
	if err := repo.Create(ctx, site); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.MarkSynced(ctx, site.ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	fetched, err := repo.GetByID(ctx, site.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !fetched.Synced {
		t.Error("synced flag not set")
	}

	if err := repo.MarkSynced(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("MarkSynced(missing) = %v, want ErrNotFound", err)
	}
}
