package store

import (
	"context"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
)

/*=================Geofence Repository======================*/

type GeofenceRepo interface {
	List(ctx context.Context, deviceID string) ([]models.Geofence, error)
	Get(ctx context.Context, deviceID, id string) (models.Geofence, error)
	Create(ctx context.Context, deviceID string, g models.Geofence) error
	Update(ctx context.Context, deviceID string, g models.Geofence) error
	Delete(ctx context.Context, deviceID, id string) error
	SetEnabled(ctx context.Context, deviceID, id string, enabled bool) error
}

/*=================Location Repository======================*/

type LocationRepo interface {
	Save(ctx context.Context, loc models.DeviceLocation) error
	Last(ctx context.Context, deviceID string) (models.DeviceLocation, error)
}

/*=================Settings Repository======================*/

type SettingsRepo interface {
	Save(ctx context.Context, s models.Settings) error
	Get(ctx context.Context, deviceID string) (models.Settings, error)
}

/*========================Publisher===============================*/

type Publisher interface {
	PublishTransition(ctx context.Context, ev models.GeofenceEvent) error
	PublishDeviceEvent(ctx context.Context, ev models.DeviceEvent) error
}
