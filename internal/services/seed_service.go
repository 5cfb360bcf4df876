package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/constants"
	"solarops/fieldstore/internal/db/repositories"
	"solarops/fieldstore/internal/logging"
	"solarops/fieldstore/internal/metrics"
	"solarops/fieldstore/internal/models"
	"solarops/fieldstore/internal/seeddata"
)

// SeedService transfers the bundled static reference data into the
// local store. The pipeline is idempotent: the overall run is gated by
// the migration-complete flag plus a live site row count, and every
// stage re-checks its own table before inserting.
type SeedService struct {
	flags       *repositories.FlagsRepository
	users       *repositories.UserRepository
	sites       *repositories.SiteRepository
	schedules   *repositories.ScheduleRepository
	performance *repositories.PerformanceRepository
	metrics     *metrics.MetricsRegistry
}

func NewSeedService(
	flags *repositories.FlagsRepository,
	users *repositories.UserRepository,
	sites *repositories.SiteRepository,
	schedules *repositories.ScheduleRepository,
	performance *repositories.PerformanceRepository,
	reg *metrics.MetricsRegistry,
) *SeedService {
	return &SeedService{
		flags:       flags,
		users:       users,
		sites:       sites,
		schedules:   schedules,
		performance: performance,
		metrics:     reg,
	}
}

// NeedsMigration reports whether the bundled data transfer must run:
// only when the site table is empty.
func (s *SeedService) NeedsMigration(ctx context.Context) (bool, error) {
	count, err := s.sites.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Run executes every seed stage and stamps the migration-complete
// flag. Any stage failing aborts the pipeline and leaves the flag
// unset; the caller must treat that as a fatal startup error.
func (s *SeedService) Run(ctx context.Context) error {
	complete, err := s.flags.Get(ctx, constants.FlagMigrationComplete)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	needs, err := s.NeedsMigration(ctx)
	if err != nil {
		return err
	}
	if complete == "true" && !needs {
		logging.Debug("Seed pipeline already complete, skipping")
		return nil
	}

	if err := s.seedUsers(ctx); err != nil {
		return fmt.Errorf("seed stage users: %w", err)
	}
	if err := s.seedSites(ctx); err != nil {
		return fmt.Errorf("seed stage sites: %w", err)
	}
	if err := s.seedSchedules(ctx); err != nil {
		return fmt.Errorf("seed stage schedules: %w", err)
	}
	if err := s.seedPerformance(ctx); err != nil {
		return fmt.Errorf("seed stage performance: %w", err)
	}

	if err := s.flags.Set(ctx, constants.FlagMigrationComplete, "true"); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SeedRunsTotal.Inc()
	}
	logging.Info("Seed pipeline complete",
		"sites", len(seeddata.Sites),
		"schedules", len(seeddata.Schedules),
		"performance_days", len(seeddata.Generation),
	)
	return nil
}

func (s *SeedService) seedUsers(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, seed := range seeddata.Users {
		digest, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to digest password for %s: %w", seed.Username, err)
		}
		email := seed.Email
		user := &models.User{
			ID:           seed.ID,
			Username:     seed.Username,
			PasswordHash: string(digest),
			FullName:     seed.FullName,
			Role:         seed.Role,
			Email:        &email,
			IsActive:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
	}
	s.countRows("users", len(seeddata.Users))
	return nil
}

func (s *SeedService) seedSites(ctx context.Context) error {
	count, err := s.sites.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, seed := range seeddata.Sites {
		site := &models.Site{
			ID:        seed.ID,
			Name:      seed.Name,
			Capacity:  seed.Capacity,
			Latitude:  seed.Latitude,
			Longitude: seed.Longitude,
		}
		if err := s.sites.CreateBundled(ctx, site); err != nil {
			return err
		}
	}
	s.countRows("sites", len(seeddata.Sites))
	return nil
}

func (s *SeedService) seedSchedules(ctx context.Context) error {
	count, err := s.schedules.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, seed := range seeddata.Schedules {
		siteID := seed.SiteID
		schedule := &models.Schedule{
			ID:     seed.ID,
			SiteID: &siteID,
			Date:   seed.Date,
			Time:   seed.Time,
			Title:  seed.Title,
			Status: constants.ScheduleStatusScheduled,
		}
		if seed.Description != "" {
			desc := seed.Description
			schedule.Description = &desc
		}
		if err := s.schedules.Create(ctx, schedule); err != nil {
			return err
		}
	}
	s.countRows("schedules", len(seeddata.Schedules))
	return nil
}

// seedPerformance attributes the entire bundled generation series to
// the first seeded site. The bundled chart data carries no per-site
// breakdown; this is a known limitation of the shipped data set.
func (s *SeedService) seedPerformance(ctx context.Context) error {
	count, err := s.performance.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	first, err := s.sites.First(ctx)
	if err != nil {
		return err
	}
	logging.Warn("Attributing bundled generation series to a single site",
		"site_id", first.ID,
		"days", len(seeddata.Generation),
	)

	records := make([]models.PerformanceRecord, 0, len(seeddata.Generation))
	for _, day := range seeddata.Generation {
		peak := day.PeakPower
		efficiency := day.Efficiency
		records = append(records, models.PerformanceRecord{
			SiteID:               first.ID,
			Date:                 day.Date,
			EnergyGeneratedKwh:   day.EnergyKwh,
			PeakPower:            &peak,
			EfficiencyPercentage: &efficiency,
			Status:               models.DerivePerformanceStatus(day.EnergyKwh),
		})
	}
	if err := s.performance.CreateBatch(ctx, records); err != nil {
		return err
	}
	s.countRows("performance_records", len(records))
	return nil
}

func (s *SeedService) countRows(table string, n int) {
	if s.metrics != nil {
		s.metrics.SeedRowsInserted.WithLabelValues(table).Add(float64(n))
	}
}
