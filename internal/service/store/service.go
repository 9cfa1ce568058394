package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	geocalc "github.com/Temutjin2k/geopulse/internal/service/calculator"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
	"github.com/Temutjin2k/geopulse/pkg/trm"
)

const serviceName = "store"

/*
Service is the reference remote store. Every action answers with the device's full
geofence list, annotated with distance and membership relative to the request origin.
*/
type Service struct {
	repos     repos
	publisher Publisher
	trm       trm.TxManager
	now       func() time.Time
	l         logger.Logger
}

type repos struct {
	geofence GeofenceRepo
	location LocationRepo
	settings SettingsRepo
}

func New(geofenceRepo GeofenceRepo, locationRepo LocationRepo, settingsRepo SettingsRepo, publisher Publisher, trm trm.TxManager, l logger.Logger) *Service {
	return &Service{
		repos: repos{
			geofence: geofenceRepo,
			location: locationRepo,
			settings: settingsRepo,
		},
		publisher: publisher,
		trm:       trm,
		now:       time.Now,
		l:         l,
	}
}

// Handle dispatches a store request for the authenticated device.
func (s *Service) Handle(ctx context.Context, deviceID string, req models.StoreRequest) (list []models.Geofence, err error) {
	const op = "Service.Handle"
	ctx = wrap.WithAction(ctx, "store_"+string(req.Action))

	start := s.now()
	defer func() {
		metrics.RecordDatabaseQuery(serviceName, string(req.Action), err, time.Since(start))
	}()

	switch req.Action {
	case types.ActionGetData:
		list, err = s.getData(ctx, deviceID)
	case types.ActionUpdateLocation:
		list, err = s.updateLocation(ctx, deviceID, req)
	case types.ActionAddGeofence:
		list, err = s.addGeofence(ctx, deviceID, req)
	case types.ActionEditGeofence:
		list, err = s.editGeofence(ctx, deviceID, req)
	case types.ActionDeleteGeofence:
		list, err = s.deleteGeofence(ctx, deviceID, req)
	case types.ActionToggleGeofence:
		list, err = s.toggleGeofence(ctx, deviceID, req)
	case types.ActionCheckIn:
		list, err = s.checkIn(ctx, deviceID, req)
	case types.ActionSendSOS:
		list, err = s.sendSOS(ctx, deviceID, req)
	case types.ActionSetSettings:
		list, err = s.setSettings(ctx, deviceID, req)
	default:
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %q", op, types.ErrUnknownAction, req.Action))
	}

	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return list, nil
}

func (s *Service) getData(ctx context.Context, deviceID string) ([]models.Geofence, error) {
	return s.list(ctx, deviceID, s.lastOrigin(ctx, deviceID))
}

func (s *Service) updateLocation(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "Service.updateLocation"

	origin := req.Origin()
	if origin == nil {
		return nil, fmt.Errorf("%s: %w: lat and lng are required", op, types.ErrInvalidInput)
	}

	var (
		list []models.Geofence
		prev *models.Coordinate
	)
	err := s.trm.Do(ctx, func(ctx context.Context) error {
		last, err := s.repos.location.Last(ctx, deviceID)
		switch {
		case err == nil:
			c := models.Coordinate{Lat: last.Lat, Lng: last.Lng}
			prev = &c
		case !errors.Is(err, types.ErrNoPosition):
			return err
		}

		if err := s.repos.location.Save(ctx, models.DeviceLocation{
			DeviceID:  deviceID,
			Lat:       origin.Lat,
			Lng:       origin.Lng,
			SpeedKmh:  req.Speed,
			Accuracy:  req.Accuracy,
			UpdatedAt: s.now(),
		}); err != nil {
			return err
		}

		list, err = s.repos.geofence.List(ctx, deviceID)
		return err
	})
	if err != nil {
		s.l.Error(wrap.ErrorCtx(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), err), "failed to update location", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publishDevice(ctx, models.DeviceEvent{
		DeviceID:   deviceID,
		Type:       types.EventLocationUpdated,
		NotifyMode: req.NotifyMode,
		Location:   origin,
		SpeedKmh:   req.Speed,
	})
	s.publishTransitions(ctx, deviceID, list, prev, *origin)

	return annotate(list, origin), nil
}

func (s *Service) addGeofence(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "Service.addGeofence"

	if req.Payload == nil {
		return nil, fmt.Errorf("%s: %w: payload is required", op, types.ErrInvalidGeofence)
	}

	g := req.Payload.Geofence(uuid.NewString())
	if err := s.repos.geofence.Create(ctx, deviceID, g); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.l.Info(wrap.WithGeofenceID(ctx, g.ID), "geofence created", "device_id", deviceID, "name", g.Name)
	return s.list(ctx, deviceID, s.originOf(ctx, deviceID, req))
}

func (s *Service) editGeofence(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "Service.editGeofence"

	if req.Payload == nil {
		return nil, fmt.Errorf("%s: %w: payload is required", op, types.ErrInvalidGeofence)
	}
	id, err := parseID(req.Payload.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repos.geofence.Update(ctx, deviceID, req.Payload.Geofence(id)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.l.Info(wrap.WithGeofenceID(ctx, id), "geofence updated", "device_id", deviceID)
	return s.list(ctx, deviceID, s.originOf(ctx, deviceID, req))
}

func (s *Service) deleteGeofence(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "Service.deleteGeofence"

	id, err := parseID(req.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repos.geofence.Delete(ctx, deviceID, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.l.Info(wrap.WithGeofenceID(ctx, id), "geofence deleted", "device_id", deviceID)
	return s.list(ctx, deviceID, s.originOf(ctx, deviceID, req))
}

func (s *Service) toggleGeofence(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "Service.toggleGeofence"

	id, err := parseID(req.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.Enabled == nil {
		return nil, fmt.Errorf("%s: %w: enabled is required", op, types.ErrInvalidInput)
	}

	if err := s.repos.geofence.SetEnabled(ctx, deviceID, id, *req.Enabled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.list(ctx, deviceID, s.originOf(ctx, deviceID, req))
}

func (s *Service) checkIn(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "Service.checkIn"

	origin := req.Origin()
	if origin == nil {
		return nil, fmt.Errorf("%s: %w: lat and lng are required", op, types.ErrInvalidInput)
	}

	if err := s.repos.location.Save(ctx, models.DeviceLocation{
		DeviceID:  deviceID,
		Lat:       origin.Lat,
		Lng:       origin.Lng,
		Accuracy:  req.Accuracy,
		UpdatedAt: s.now(),
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publishDevice(ctx, models.DeviceEvent{
		DeviceID:   deviceID,
		Type:       types.EventCheckIn,
		NotifyMode: s.modeOf(ctx, deviceID, req),
		Location:   origin,
	})

	return s.list(ctx, deviceID, origin)
}

func (s *Service) sendSOS(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	origin := s.originOf(ctx, deviceID, req)

	s.l.Warn(ctx, "sos received", "device_id", deviceID)
	s.publishDevice(ctx, models.DeviceEvent{
		DeviceID:   deviceID,
		Type:       types.EventSOS,
		NotifyMode: s.modeOf(ctx, deviceID, req),
		Location:   origin,
		Message:    req.Message,
	})

	return s.list(ctx, deviceID, origin)
}

func (s *Service) setSettings(ctx context.Context, deviceID string, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "Service.setSettings"

	if !req.NotifyMode.IsValid() {
		return nil, fmt.Errorf("%s: %w: notify mode %q", op, types.ErrInvalidInput, req.NotifyMode)
	}

	if err := s.repos.settings.Save(ctx, models.Settings{DeviceID: deviceID, NotifyMode: req.NotifyMode}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.list(ctx, deviceID, s.lastOrigin(ctx, deviceID))
}

func (s *Service) list(ctx context.Context, deviceID string, origin *models.Coordinate) ([]models.Geofence, error) {
	list, err := s.repos.geofence.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return annotate(list, origin), nil
}

// originOf returns the request origin, falling back to the last stored location.
func (s *Service) originOf(ctx context.Context, deviceID string, req models.StoreRequest) *models.Coordinate {
	if origin := req.Origin(); origin != nil {
		return origin
	}
	return s.lastOrigin(ctx, deviceID)
}

func (s *Service) lastOrigin(ctx context.Context, deviceID string) *models.Coordinate {
	last, err := s.repos.location.Last(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, types.ErrNoPosition) {
			s.l.Warn(ctx, "failed to load last location", "device_id", deviceID, "error", err.Error())
		}
		return nil
	}
	return &models.Coordinate{Lat: last.Lat, Lng: last.Lng}
}

// modeOf returns the request notify mode, falling back to the stored preference.
func (s *Service) modeOf(ctx context.Context, deviceID string, req models.StoreRequest) types.NotifyMode {
	if req.NotifyMode.IsValid() {
		return req.NotifyMode
	}
	settings, err := s.repos.settings.Get(ctx, deviceID)
	if err != nil {
		s.l.Warn(ctx, "failed to load settings", "device_id", deviceID, "error", err.Error())
		return types.NotifyFamily
	}
	return settings.NotifyMode
}

func (s *Service) publishDevice(ctx context.Context, ev models.DeviceEvent) {
	ev.Timestamp = s.now()
	if err := s.publisher.PublishDeviceEvent(ctx, ev); err != nil {
		s.l.Error(wrap.ErrorCtx(wrap.WithAction(ctx, types.ActionExternalServiceFailed), err), "failed to publish device event", err, "type", ev.Type)
	}
}

// publishTransitions publishes boundary crossings between the previous and current location.
func (s *Service) publishTransitions(ctx context.Context, deviceID string, list []models.Geofence, prev *models.Coordinate, cur models.Coordinate) {
	if prev == nil {
		return
	}

	for _, g := range list {
		center, ok := g.Center()
		if !ok || !g.Enabled {
			continue
		}

		wasInside := geocalc.DistanceMeters(*prev, center) <= g.RadiusMeters
		d := geocalc.DistanceMeters(cur, center)
		isInside := d <= g.RadiusMeters
		if wasInside == isInside {
			continue
		}

		kind := types.TransitionExit
		if isInside {
			kind = types.TransitionEnter
		}
		if (kind == types.TransitionEnter && !g.NotifyOnEnter) || (kind == types.TransitionExit && !g.NotifyOnExit) {
			continue
		}

		ev := models.GeofenceEvent{
			DeviceID:       deviceID,
			Kind:           kind,
			GeofenceID:     g.ID,
			GeofenceName:   g.Name,
			DistanceMeters: d,
			Timestamp:      s.now(),
		}
		if err := s.publisher.PublishTransition(ctx, ev); err != nil {
			s.l.Error(wrap.ErrorCtx(wrap.WithGeofenceID(ctx, g.ID), err), "failed to publish transition", err)
		}
	}
}

// annotate sets CurrentDistance and IsInside relative to origin on fences with a center.
func annotate(list []models.Geofence, origin *models.Coordinate) []models.Geofence {
	if list == nil {
		list = []models.Geofence{}
	}
	if origin == nil {
		return list
	}

	for i := range list {
		center, ok := list[i].Center()
		if !ok {
			continue
		}
		d := geocalc.DistanceMeters(*origin, center)
		inside := d <= list[i].RadiusMeters
		list[i].CurrentDistance = &d
		list[i].IsInside = &inside
	}
	return list
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", types.ErrGeofenceNotFound, id)
	}
	return parsed.String(), nil
}
