// Package devices declares the opaque device-API boundary. The data
// core consumes these interfaces; concrete implementations live in the
// host application. Device failures never touch store state because
// they are resolved before any mutation begins.
package devices

import (
	"context"
	"fmt"
	"math"
	"time"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/models"
)

// Location is a resolved device position fix.
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp time.Time
}

// LocationProvider acquires the current position. May block for
// several seconds; honors ctx cancellation.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (*Location, error)
}

// CameraPicker returns a local file URI for a captured or chosen
// photo, or an error on failure/cancel.
type CameraPicker interface {
	PickPhoto(ctx context.Context) (string, error)
}

// CalendarExporter inserts a schedule into the device calendar.
// Failures are non-fatal to the core and never affect persisted state.
type CalendarExporter interface {
	ExportSchedule(ctx context.Context, schedule *models.Schedule) error
}

// Device failure reasons, all wrapping ErrTransportUnavailable.
var (
	ErrPermissionDenied = fmt.Errorf("permission denied: %w", apperrors.ErrTransportUnavailable)
	ErrServicesDisabled = fmt.Errorf("location services disabled: %w", apperrors.ErrTransportUnavailable)
	ErrTimeout          = fmt.Errorf("device request timed out: %w", apperrors.ErrTransportUnavailable)
)

const earthRadiusMeters = 6371000

// DistanceMeters computes the haversine great-circle distance between
// two coordinate pairs.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// StaticLocation is a LocationProvider backed by an already-resolved
// fix, used when the presentation layer acquires GPS itself and hands
// coordinates across the bridge.
type StaticLocation struct {
	Lat float64
	Lng float64
}

func (s StaticLocation) CurrentLocation(ctx context.Context) (*Location, error) {
	if s.Lat < -90 || s.Lat > 90 || s.Lng < -180 || s.Lng > 180 {
		return nil, fmt.Errorf("coordinates out of range (%f, %f): %w", s.Lat, s.Lng, apperrors.ErrValidation)
	}
	return &Location{Latitude: s.Lat, Longitude: s.Lng, Timestamp: time.Now().UTC()}, nil
}
