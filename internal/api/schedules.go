package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"solarops/fieldstore/internal/devices"
	"solarops/fieldstore/internal/models"
	"solarops/fieldstore/internal/services"
)

type createScheduleRequest struct {
	SiteID          *string `json:"siteId,omitempty"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	AssignedUserID  *string `json:"assignedUserId,omitempty"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	IsRequiem       bool    `json:"isRequiem,omitempty"`
	RequiemReason   *string `json:"requiemReason,omitempty"`
	LinkedSiteID    *string `json:"linkedSiteId,omitempty"`
}

type validateSlotRequest struct {
	UserID            string  `json:"userId"`
	Date              string  `json:"date"`
	Time              string  `json:"time"`
	DurationMinutes   int     `json:"durationMinutes,omitempty"`
	ExcludeScheduleID *string `json:"excludeScheduleId,omitempty"`
}

type checkInRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type scheduleWithConflict struct {
	Schedule *models.Schedule         `json:"schedule,omitempty"`
	Conflict *services.ConflictResult `json:"conflict,omitempty"`
}

// ListSchedulesHandler handles GET /api/v1/schedules
func ListSchedulesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			schedules []models.Schedule
			err       error
		)
		query := r.URL.Query()
		switch {
		case query.Get("siteId") != "" && query.Get("archived") == "true":
			schedules, err = deps.Services.Views.ArchivedSchedulesForSite(r.Context(), query.Get("siteId"))
		case query.Get("siteId") != "":
			schedules, err = deps.Services.Views.SchedulesForSite(r.Context(), query.Get("siteId"))
		case query.Get("date") != "":
			schedules, err = deps.Services.Views.SchedulesForDate(r.Context(), query.Get("date"))
		default:
			respondWithError(w, http.StatusBadRequest, "siteId or date query parameter required")
			return
		}
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &schedules)
	}
}

// CreateScheduleHandler handles POST /api/v1/schedules. A slot
// conflict is a 409 carrying the typed conflict result, not a plain
// error string.
func CreateScheduleHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createScheduleRequest
		if !decodeBody(w, r, &req) {
			return
		}

		schedule, conflict, err := deps.Services.Schedules.CreateSchedule(r.Context(), services.CreateScheduleInput{
			SiteID:          req.SiteID,
			Date:            req.Date,
			Time:            req.Time,
			Title:           req.Title,
			Description:     req.Description,
			AssignedUserID:  req.AssignedUserID,
			DurationMinutes: req.DurationMinutes,
			IsRequiem:       req.IsRequiem,
			RequiemReason:   req.RequiemReason,
			LinkedSiteID:    req.LinkedSiteID,
		})
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		if conflict != nil {
			respondWithSuccess(w, http.StatusConflict, &scheduleWithConflict{Conflict: conflict})
			return
		}
		respondWithSuccess(w, http.StatusCreated, &scheduleWithConflict{Schedule: schedule})
	}
}

// ValidateSlotHandler handles POST /api/v1/schedules/validate
func ValidateSlotHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateSlotRequest
		if !decodeBody(w, r, &req) {
			return
		}

		result, err := deps.Services.Conflicts.ValidateSchedule(
			r.Context(), req.UserID, req.Date, req.Time, req.DurationMinutes, req.ExcludeScheduleID)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, result)
	}
}

// CheckInHandler handles POST /api/v1/schedules/{scheduleID}/checkin.
// The presentation layer resolves GPS itself and hands coordinates
// across the bridge.
func CheckInHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID := chi.URLParam(r, "scheduleID")
		var req checkInRequest
		if !decodeBody(w, r, &req) {
			return
		}

		schedule, err := deps.Services.CheckIn.CheckIn(r.Context(), scheduleID,
			devices.StaticLocation{Lat: req.Latitude, Lng: req.Longitude})
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, schedule)
	}
}

// CheckOutHandler handles POST /api/v1/schedules/{scheduleID}/checkout
func CheckOutHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID := chi.URLParam(r, "scheduleID")
		schedule, err := deps.Services.CheckIn.CheckOut(r.Context(), scheduleID)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, schedule)
	}
}

// CancelScheduleHandler handles POST /api/v1/schedules/{scheduleID}/cancel
func CancelScheduleHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID := chi.URLParam(r, "scheduleID")
		schedule, err := deps.Services.Schedules.Cancel(r.Context(), scheduleID)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, schedule)
	}
}

// DeleteScheduleHandler handles DELETE /api/v1/schedules/{scheduleID}
func DeleteScheduleHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID := chi.URLParam(r, "scheduleID")
		if err := deps.Services.Schedules.Delete(r.Context(), scheduleID); err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &scheduleID)
	}
}
