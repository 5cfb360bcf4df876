package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListActivitiesHandler handles GET /api/v1/activities
func ListActivitiesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var activityType *string
		if t := query.Get("type"); t != "" {
			activityType = &t
		}
		limit := 50
		if raw := query.Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		activities, err := deps.Services.Views.ActivityFeed(r.Context(), activityType, limit)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &activities)
	}
}

// MarkActivitySyncedHandler handles POST /api/v1/activities/{activityID}/synced
func MarkActivitySyncedHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activityID := chi.URLParam(r, "activityID")
		if err := deps.Repo.Activities.MarkSynced(r.Context(), activityID); err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &activityID)
	}
}
