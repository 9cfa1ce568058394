package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/postgres"
)

type GeofenceRepo struct {
	db Querier
}

func NewGeofenceRepo(db Querier) *GeofenceRepo {
	return &GeofenceRepo{
		db: db,
	}
}

const geofenceColumns = `id::text, name, lat, lng, radius_meters, enabled, notify_on_enter, notify_on_exit, next_destination_id`

// List returns the geofences of a device in creation order.
func (r *GeofenceRepo) List(ctx context.Context, deviceID string) ([]models.Geofence, error) {
	const op = "GeofenceRepo.List"
	query := `
		SELECT ` + geofenceColumns + `
		FROM geofences
		WHERE device_id = $1
		ORDER BY created_at, id`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	list, err := pgx.CollectRows(rows, scanGeofence)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (r *GeofenceRepo) Get(ctx context.Context, deviceID, id string) (models.Geofence, error) {
	const op = "GeofenceRepo.Get"
	query := `
		SELECT ` + geofenceColumns + `
		FROM geofences
		WHERE device_id = $1 AND id = $2`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, deviceID, id)
	if err != nil {
		return models.Geofence{}, fmt.Errorf("%s: %w", op, err)
	}

	g, err := pgx.CollectExactlyOneRow(rows, scanGeofence)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.Geofence{}, types.ErrGeofenceNotFound
		}
		return models.Geofence{}, fmt.Errorf("%s: %w", op, err)
	}
	return g, nil
}

func (r *GeofenceRepo) Create(ctx context.Context, deviceID string, g models.Geofence) error {
	const op = "GeofenceRepo.Create"
	query := `
		INSERT INTO geofences (id, device_id, name, lat, lng, radius_meters, enabled, notify_on_enter, notify_on_exit, next_destination_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query,
		g.ID,
		deviceID,
		g.Name,
		g.Lat,
		g.Lng,
		g.RadiusMeters,
		g.Enabled,
		g.NotifyOnEnter,
		g.NotifyOnExit,
		g.NextDestinationID,
	); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w: duplicate id", op, types.ErrInvalidGeofence)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *GeofenceRepo) Update(ctx context.Context, deviceID string, g models.Geofence) error {
	const op = "GeofenceRepo.Update"
	query := `
		UPDATE geofences
		SET name = $3, lat = $4, lng = $5, radius_meters = $6, enabled = $7,
		    notify_on_enter = $8, notify_on_exit = $9, next_destination_id = $10, updated_at = now()
		WHERE device_id = $1 AND id = $2`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query,
		deviceID,
		g.ID,
		g.Name,
		g.Lat,
		g.Lng,
		g.RadiusMeters,
		g.Enabled,
		g.NotifyOnEnter,
		g.NotifyOnExit,
		g.NextDestinationID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrGeofenceNotFound
	}
	return nil
}

func (r *GeofenceRepo) Delete(ctx context.Context, deviceID, id string) error {
	const op = "GeofenceRepo.Delete"
	query := `DELETE FROM geofences WHERE device_id = $1 AND id = $2`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, deviceID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrGeofenceNotFound
	}
	return nil
}

func (r *GeofenceRepo) SetEnabled(ctx context.Context, deviceID, id string, enabled bool) error {
	const op = "GeofenceRepo.SetEnabled"
	query := `
		UPDATE geofences
		SET enabled = $3, updated_at = now()
		WHERE device_id = $1 AND id = $2`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, deviceID, id, enabled)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrGeofenceNotFound
	}
	return nil
}

func scanGeofence(row pgx.CollectableRow) (models.Geofence, error) {
	var g models.Geofence
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Lat,
		&g.Lng,
		&g.RadiusMeters,
		&g.Enabled,
		&g.NotifyOnEnter,
		&g.NotifyOnExit,
		&g.NextDestinationID,
	)
	return g, err
}
