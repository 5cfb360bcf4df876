package api

import (
	"gorm.io/gorm"

	"solarops/fieldstore/internal/config"
	"solarops/fieldstore/internal/db/repositories"
	"solarops/fieldstore/internal/devices"
	"solarops/fieldstore/internal/metrics"
	"solarops/fieldstore/internal/services"
)

type Repositories struct {
	Flags       *repositories.FlagsRepository
	Users       *repositories.UserRepository
	Sites       *repositories.SiteRepository
	Schedules   *repositories.ScheduleRepository
	Activities  *repositories.ActivityRepository
	Forms       *repositories.FormRepository
	Performance *repositories.PerformanceRepository
}

type Services struct {
	Archive   *services.ArchiveService
	Conflicts *services.ConflictService
	Schedules *services.ScheduleService
	CheckIn   *services.CheckInService
	Seed      *services.SeedService
	Views     *services.ViewsService
}

type Dependencies struct {
	DB       *gorm.DB
	Repo     *Repositories
	Services *Services
	Bus      *services.ChangeBus
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires every component onto one store handle. The
// calendar exporter may be nil when the host platform offers none.
func InitDependencies(gdb *gorm.DB, cfg *config.Config, reg *metrics.MetricsRegistry, calendar devices.CalendarExporter) *Dependencies {
	repos := &Repositories{
		Flags:       repositories.NewFlagsRepository(gdb),
		Users:       repositories.NewUserRepository(gdb),
		Sites:       repositories.NewSiteRepository(gdb),
		Schedules:   repositories.NewScheduleRepository(gdb),
		Activities:  repositories.NewActivityRepository(gdb),
		Forms:       repositories.NewFormRepository(gdb),
		Performance: repositories.NewPerformanceRepository(gdb),
	}

	bus := services.NewChangeBus()
	conflicts := services.NewConflictService(repos.Schedules, reg)

	svcs := &Services{
		Archive:   services.NewArchiveService(gdb, bus, reg),
		Conflicts: conflicts,
		Schedules: services.NewScheduleService(repos.Schedules, repos.Sites, repos.Activities, conflicts, calendar, bus),
		CheckIn:   services.NewCheckInService(gdb, cfg.Store.GeofenceRadiusMeters, bus, reg),
		Seed:      services.NewSeedService(repos.Flags, repos.Users, repos.Sites, repos.Schedules, repos.Performance, reg),
		Views:     services.NewViewsService(repos.Sites, repos.Schedules, repos.Activities, repos.Forms, repos.Performance, bus, reg),
	}

	return &Dependencies{DB: gdb, Repo: repos, Services: svcs, Bus: bus, Metrics: reg}
}
