package tracker

import (
	"context"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

/*=========================Remote Store===========================*/

// StoreClient is the remote store. Every call returns the authoritative geofence list.
type StoreClient interface {
	GetData(ctx context.Context) ([]models.Geofence, error)
	UpdateLocation(ctx context.Context, update models.LocationUpdate, mode types.NotifyMode) ([]models.Geofence, error)
	AddGeofence(ctx context.Context, in models.GeofenceInput, origin *models.Coordinate) ([]models.Geofence, error)
	EditGeofence(ctx context.Context, in models.GeofenceInput, origin *models.Coordinate) ([]models.Geofence, error)
	DeleteGeofence(ctx context.Context, id string, origin *models.Coordinate) ([]models.Geofence, error)
	ToggleGeofence(ctx context.Context, id string, enabled bool, origin *models.Coordinate) ([]models.Geofence, error)
	CheckIn(ctx context.Context, at models.Coordinate, mode types.NotifyMode) ([]models.Geofence, error)
	SendSOS(ctx context.Context, message string, at *models.Coordinate, mode types.NotifyMode) ([]models.Geofence, error)
	SetSettings(ctx context.Context, mode types.NotifyMode) ([]models.Geofence, error)
}

/*=======================Location Provider========================*/

// SampleSink receives samples and terminal errors from a location provider.
type SampleSink interface {
	HandleSample(ctx context.Context, p models.Position)
	HandleProviderError(ctx context.Context, err error)
}

// LocationProvider delivers samples one at a time to the sink until stopped.
type LocationProvider interface {
	Start(ctx context.Context, sink SampleSink) error
	Stop() error
}

/*==========================Render Surface========================*/

type ViewSink interface {
	RenderViews(ctx context.Context, snapshot models.TrackerSnapshot)
	RenderTransition(ctx context.Context, event models.TransitionEvent)
}

/*============================Publisher===========================*/

type EventPublisher interface {
	PublishTransition(ctx context.Context, event models.GeofenceEvent) error
}

type nopViews struct{}

func (nopViews) RenderViews(context.Context, models.TrackerSnapshot)      {}
func (nopViews) RenderTransition(context.Context, models.TransitionEvent) {}

type nopPublisher struct{}

func (nopPublisher) PublishTransition(context.Context, models.GeofenceEvent) error { return nil }
