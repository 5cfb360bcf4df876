package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"solarops/fieldstore/internal/models"
	"solarops/fieldstore/internal/services"
)

type createFormRequest struct {
	FormID         string `json:"formId"`
	SiteID         string `json:"siteId"`
	UserID         string `json:"userId"`
	TechnicianName string `json:"technicianName"`
}

type updateFormRequest struct {
	InverterSerial    *string  `json:"inverterSerial,omitempty"`
	CurrentGeneration *string  `json:"currentGeneration,omitempty"`
	PanelCondition    *string  `json:"panelCondition,omitempty"`
	WiringIntegrity   *string  `json:"wiringIntegrity,omitempty"`
	IssuesObserved    []string `json:"issuesObserved,omitempty"`
	SitePhotoURI      *string  `json:"sitePhotoUri,omitempty"`
	Documents         []string `json:"documents,omitempty"`
	Completed         *bool    `json:"completed,omitempty"`
}

type addPhotoRequest struct {
	PhotoURI  string  `json:"photoUri"`
	PhotoType string  `json:"photoType"`
	Caption   *string `json:"caption,omitempty"`
}

// ListFormsHandler handles GET /api/v1/forms?siteId=...
func ListFormsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := r.URL.Query().Get("siteId")
		if siteID == "" {
			respondWithError(w, http.StatusBadRequest, "siteId query parameter required")
			return
		}
		forms, err := deps.Services.Views.FormsForSite(r.Context(), siteID)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &forms)
	}
}

// CreateFormHandler handles POST /api/v1/forms
func CreateFormHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFormRequest
		if !decodeBody(w, r, &req) {
			return
		}

		form := &models.MaintenanceForm{
			FormID:         req.FormID,
			SiteID:         req.SiteID,
			UserID:         req.UserID,
			TechnicianName: req.TechnicianName,
			Timestamp:      time.Now().UTC(),
		}
		if err := deps.Repo.Forms.Create(r.Context(), form); err != nil {
			respondWithAppError(w, err)
			return
		}
		deps.Bus.Publish(services.ChangeEvent{Kind: services.KindForm, ID: form.ID})
		respondWithSuccess(w, http.StatusCreated, form)
	}
}

// UpdateFormHandler handles PUT /api/v1/forms/{formID}, applying the
// incrementally-filled inspection fields.
func UpdateFormHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "formID")
		var req updateFormRequest
		if !decodeBody(w, r, &req) {
			return
		}

		form, err := deps.Repo.Forms.Update(r.Context(), formID, func(f *models.MaintenanceForm) error {
			if req.InverterSerial != nil {
				f.InverterSerial = req.InverterSerial
			}
			if req.CurrentGeneration != nil {
				f.CurrentGeneration = req.CurrentGeneration
			}
			if req.PanelCondition != nil {
				f.PanelCondition = req.PanelCondition
			}
			if req.WiringIntegrity != nil {
				f.WiringIntegrity = req.WiringIntegrity
			}
			if req.IssuesObserved != nil {
				f.IssuesObserved = req.IssuesObserved
			}
			if req.SitePhotoURI != nil {
				f.SitePhotoURI = req.SitePhotoURI
			}
			if req.Documents != nil {
				f.Documents = req.Documents
			}
			if req.Completed != nil {
				f.Completed = *req.Completed
			}
			return nil
		})
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		deps.Bus.Publish(services.ChangeEvent{Kind: services.KindForm, ID: formID})
		respondWithSuccess(w, http.StatusOK, form)
	}
}

// AddFormPhotoHandler handles POST /api/v1/forms/{formID}/photos
func AddFormPhotoHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "formID")
		var req addPhotoRequest
		if !decodeBody(w, r, &req) {
			return
		}

		photo := &models.FormPhoto{
			FormID:    formID,
			PhotoURI:  req.PhotoURI,
			PhotoType: req.PhotoType,
			Caption:   req.Caption,
			Timestamp: time.Now().UTC(),
		}
		if err := deps.Repo.Forms.AddPhoto(r.Context(), photo); err != nil {
			respondWithAppError(w, err)
			return
		}
		deps.Bus.Publish(services.ChangeEvent{Kind: services.KindForm, ID: formID})
		respondWithSuccess(w, http.StatusCreated, photo)
	}
}

// MarkFormSyncedHandler handles POST /api/v1/forms/{formID}/synced
func MarkFormSyncedHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "formID")
		if err := deps.Repo.Forms.MarkSynced(r.Context(), formID); err != nil {
			respondWithAppError(w, err)
			return
		}
		deps.Bus.Publish(services.ChangeEvent{Kind: services.KindForm, ID: formID})
		respondWithSuccess(w, http.StatusOK, &formID)
	}
}
