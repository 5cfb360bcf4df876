package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"solarops/fieldstore/internal/models"
	"solarops/fieldstore/internal/services"
)

type createSiteRequest struct {
	Name            string  `json:"name"`
	Capacity        string  `json:"capacity"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	CreatedByUserID *string `json:"createdByUserId,omitempty"`
}

type updateSiteRequest struct {
	Name     *string  `json:"name,omitempty"`
	Capacity *string  `json:"capacity,omitempty"`
	Latitude *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ListSitesHandler handles GET /api/v1/sites
func ListSitesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			sites []models.Site
			err   error
		)
		if r.URL.Query().Get("archived") == "true" {
			sites, err = deps.Services.Views.ArchivedSites(r.Context())
		} else {
			sites, err = deps.Services.Views.ActiveSites(r.Context())
		}
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &sites)
	}
}

// CreateSiteHandler handles POST /api/v1/sites
func CreateSiteHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSiteRequest
		if !decodeBody(w, r, &req) {
			return
		}

		site := &models.Site{
			Name:            req.Name,
			Capacity:        req.Capacity,
			Latitude:        req.Latitude,
			Longitude:       req.Longitude,
			CreatedByUserID: req.CreatedByUserID,
		}
		if err := deps.Repo.Sites.Create(r.Context(), site); err != nil {
			respondWithAppError(w, err)
			return
		}
		deps.Bus.Publish(services.ChangeEvent{Kind: services.KindSite, ID: site.ID})
		respondWithSuccess(w, http.StatusCreated, site)
	}
}

// UpdateSiteHandler handles PUT /api/v1/sites/{siteID}
func UpdateSiteHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")
		var req updateSiteRequest
		if !decodeBody(w, r, &req) {
			return
		}

		site, err := deps.Repo.Sites.Update(r.Context(), siteID, func(s *models.Site) error {
			if req.Name != nil {
				s.Name = *req.Name
			}
			if req.Capacity != nil {
				s.Capacity = *req.Capacity
			}
			if req.Latitude != nil {
				s.Latitude = *req.Latitude
			}
			if req.Longitude != nil {
				s.Longitude = *req.Longitude
			}
			return nil
		})
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		deps.Bus.Publish(services.ChangeEvent{Kind: services.KindSite, ID: siteID})
		respondWithSuccess(w, http.StatusOK, site)
	}
}

// ArchiveSiteHandler handles POST /api/v1/sites/{siteID}/archive
func ArchiveSiteHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")
		if err := deps.Services.Archive.ArchiveSite(r.Context(), siteID); err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &siteID)
	}
}

// UnarchiveSiteHandler handles POST /api/v1/sites/{siteID}/unarchive
func UnarchiveSiteHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")
		if err := deps.Services.Archive.UnarchiveSite(r.Context(), siteID); err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &siteID)
	}
}

// DeleteSiteHandler handles DELETE /api/v1/sites/{siteID}. Only
// user-created sites may be hard-deleted, and the delete cascades.
func DeleteSiteHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := chi.URLParam(r, "siteID")
		if err := deps.Services.Archive.CascadeDeleteSite(r.Context(), siteID); err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &siteID)
	}
}
