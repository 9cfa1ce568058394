package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

// CreateGeofence adds a geofence through the store. No optimistic change is made.
func (s *Session) CreateGeofence(ctx context.Context, in models.GeofenceInput) error {
	const op = "Session.CreateGeofence"
	ctx = wrap.WithAction(s.ctx(ctx), types.ActionGeofenceMutation)

	if err := validateInput(in); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	list, err := s.store.AddGeofence(ctx, in, s.origin())
	if err != nil {
		return s.mutationFailed(ctx, op, err)
	}

	s.replaceGeofences(ctx, list)
	s.arbiter.ShowAlert(ctx, "Saved", in.Name, types.SeveritySuccess, s.cfg.AlertDuration)
	return nil
}

// UpdateGeofence edits an existing geofence through the store.
func (s *Session) UpdateGeofence(ctx context.Context, in models.GeofenceInput) error {
	const op = "Session.UpdateGeofence"
	ctx = wrap.WithGeofenceID(wrap.WithAction(s.ctx(ctx), types.ActionGeofenceMutation), in.ID)

	if in.ID == "" {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrGeofenceNotFound))
	}
	if err := validateInput(in); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	list, err := s.store.EditGeofence(ctx, in, s.origin())
	if err != nil {
		return s.mutationFailed(ctx, op, err)
	}

	s.replaceGeofences(ctx, list)
	s.arbiter.ShowAlert(ctx, "Saved", in.Name, types.SeveritySuccess, s.cfg.AlertDuration)
	return nil
}

// DeleteGeofence removes a geofence through the store.
func (s *Session) DeleteGeofence(ctx context.Context, id string) error {
	const op = "Session.DeleteGeofence"
	ctx = wrap.WithGeofenceID(wrap.WithAction(s.ctx(ctx), types.ActionGeofenceMutation), id)

	list, err := s.store.DeleteGeofence(ctx, id, s.origin())
	if err != nil {
		return s.mutationFailed(ctx, op, err)
	}

	s.replaceGeofences(ctx, list)
	s.arbiter.ShowAlert(ctx, "Deleted", "", types.SeveritySuccess, s.cfg.AlertDuration)
	return nil
}

/*
SetGeofenceEnabled is a two-phase optimistic toggle: the local flag is applied and
rendered first, then the store is called. On failure the previous flag is restored.
*/
func (s *Session) SetGeofenceEnabled(ctx context.Context, id string, enabled bool) error {
	const op = "Session.SetGeofenceEnabled"
	ctx = wrap.WithGeofenceID(wrap.WithAction(s.ctx(ctx), types.ActionGeofenceMutation), id)

	s.mu.Lock()
	prev, ok := s.setEnabledLocked(id, enabled)
	if !ok {
		s.mu.Unlock()
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrGeofenceNotFound))
	}
	s.evaluateLocked(ctx)
	s.mu.Unlock()

	list, err := s.store.ToggleGeofence(ctx, id, enabled, s.origin())
	if err != nil {
		s.mu.Lock()
		s.setEnabledLocked(id, prev)
		s.evaluateLocked(ctx)
		s.mu.Unlock()

		return s.mutationFailed(ctx, op, err)
	}

	s.replaceGeofences(ctx, list)

	msg := "Geofence disabled"
	if enabled {
		msg = "Geofence enabled"
	}
	s.arbiter.ShowAlert(ctx, msg, "", types.SeverityInfo, s.cfg.AlertDuration)
	return nil
}

// setEnabledLocked sets the flag and returns the previous value. Must hold s.mu.
func (s *Session) setEnabledLocked(id string, enabled bool) (prev bool, ok bool) {
	for i := range s.geofences {
		if s.geofences[i].ID == id {
			prev = s.geofences[i].Enabled
			s.geofences[i].Enabled = enabled
			return prev, true
		}
	}
	return false, false
}

// CheckIn reports the last accepted position to the store.
func (s *Session) CheckIn(ctx context.Context) error {
	const op = "Session.CheckIn"
	ctx = wrap.WithAction(s.ctx(ctx), string(types.ActionCheckIn))

	at := s.origin()
	if at == nil {
		s.arbiter.ShowAlert(ctx, "Waiting for GPS", "", types.SeverityWait, s.cfg.AlertDuration)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrNoPosition))
	}

	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	list, err := s.store.CheckIn(ctx, *at, mode)
	if err != nil {
		return s.mutationFailed(ctx, op, err)
	}

	s.replaceGeofences(ctx, list)
	s.arbiter.ShowAlert(ctx, "Checked in", mode.String(), types.SeveritySuccess, s.cfg.AlertDuration)
	return nil
}

// SendSOS sends an emergency message with the last known position, if any.
func (s *Session) SendSOS(ctx context.Context, message string) error {
	const op = "Session.SendSOS"
	ctx = wrap.WithAction(s.ctx(ctx), string(types.ActionSendSOS))

	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	list, err := s.store.SendSOS(ctx, message, s.origin(), mode)
	if err != nil {
		return s.mutationFailed(ctx, op, err)
	}

	s.replaceGeofences(ctx, list)
	s.arbiter.ShowAlert(ctx, "SOS sent", message, types.SeverityWarning, s.cfg.AlertDuration)
	return nil
}

// SetNotifyMode stores the notify preference remotely and adopts it locally on success.
func (s *Session) SetNotifyMode(ctx context.Context, mode types.NotifyMode) error {
	const op = "Session.SetNotifyMode"
	ctx = wrap.WithAction(s.ctx(ctx), string(types.ActionSetSettings))

	if !mode.IsValid() {
		return wrap.Error(ctx, fmt.Errorf("%s: notify mode %q: %w", op, mode, types.ErrInvalidInput))
	}

	list, err := s.store.SetSettings(ctx, mode)
	if err != nil {
		return s.mutationFailed(ctx, op, err)
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	s.replaceGeofences(ctx, list)

	title := "Notify family"
	if mode == types.NotifyPrivate {
		title = "Private mode"
	}
	s.arbiter.ShowAlert(ctx, title, "", types.SeverityInfo, s.cfg.AlertDuration)
	return nil
}

// ToggleNotifyMode switches between family and private notifications.
func (s *Session) ToggleNotifyMode(ctx context.Context) error {
	s.mu.Lock()
	next := s.mode.Toggle()
	s.mu.Unlock()

	return s.SetNotifyMode(ctx, next)
}

func (s *Session) mutationFailed(ctx context.Context, op string, err error) error {
	err = wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrMutationFailed, err))
	s.l.Error(wrap.ErrorCtx(ctx, err), "store mutation failed", err)
	s.arbiter.ShowAlert(ctx, "Error", "Could not save changes", types.SeverityError, s.cfg.AlertDuration)
	return err
}

func validateInput(in models.GeofenceInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", types.ErrInvalidGeofence)
	}
	if in.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive", types.ErrInvalidGeofence)
	}
	return nil
}
