package api

import "net/http"

// ListPerformanceHandler handles GET /api/v1/performance?siteId=...
func ListPerformanceHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := r.URL.Query().Get("siteId")
		if siteID == "" {
			respondWithError(w, http.StatusBadRequest, "siteId query parameter required")
			return
		}
		records, err := deps.Services.Views.PerformanceSeries(r.Context(), siteID)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

// RefreshViewsHandler handles POST /api/v1/refresh, the manual
// pull-to-refresh signal from the presentation layer.
func RefreshViewsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Services.Views.Refresh()
		ok := "refreshed"
		respondWithSuccess(w, http.StatusOK, &ok)
	}
}
