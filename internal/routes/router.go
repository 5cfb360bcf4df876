package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"solarops/fieldstore/internal/api"
	"solarops/fieldstore/internal/logging"
	"solarops/fieldstore/internal/middleware"
)

// RegisterRoutes builds the bridge router the presentation layer
// calls. The bridge binds to localhost only; CORS mirrors that.
func RegisterRoutes(gdb *gorm.DB, deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	if deps.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.Metrics))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(gdb, upSince))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sites", api.ListSitesHandler(deps))
		r.Get("/schedules", api.ListSchedulesHandler(deps))
		r.Get("/activities", api.ListActivitiesHandler(deps))
		r.Get("/forms", api.ListFormsHandler(deps))
		r.Get("/performance", api.ListPerformanceHandler(deps))
		r.Post("/schedules/validate", api.ValidateSlotHandler(deps))

		// Mutations are rate limited.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitMiddleware)

			r.Post("/sites", api.CreateSiteHandler(deps))
			r.Put("/sites/{siteID}", api.UpdateSiteHandler(deps))
			r.Post("/sites/{siteID}/archive", api.ArchiveSiteHandler(deps))
			r.Post("/sites/{siteID}/unarchive", api.UnarchiveSiteHandler(deps))
			r.Delete("/sites/{siteID}", api.DeleteSiteHandler(deps))

			r.Post("/schedules", api.CreateScheduleHandler(deps))
			r.Post("/schedules/{scheduleID}/checkin", api.CheckInHandler(deps))
			r.Post("/schedules/{scheduleID}/checkout", api.CheckOutHandler(deps))
			r.Post("/schedules/{scheduleID}/cancel", api.CancelScheduleHandler(deps))
			r.Delete("/schedules/{scheduleID}", api.DeleteScheduleHandler(deps))

			r.Post("/forms", api.CreateFormHandler(deps))
			r.Put("/forms/{formID}", api.UpdateFormHandler(deps))
			r.Post("/forms/{formID}/photos", api.AddFormPhotoHandler(deps))
			r.Post("/forms/{formID}/synced", api.MarkFormSyncedHandler(deps))

			r.Post("/activities/{activityID}/synced", api.MarkActivitySyncedHandler(deps))
			r.Post("/refresh", api.RefreshViewsHandler(deps))
		})
	})

	logging.Info("Bridge router initialized")
	return r
}
