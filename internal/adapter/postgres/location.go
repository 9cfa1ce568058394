package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

type LocationRepo struct {
	db Querier
}

func NewLocationRepo(db Querier) *LocationRepo {
	return &LocationRepo{
		db: db,
	}
}

// Save upserts the last reported location of a device.
func (r *LocationRepo) Save(ctx context.Context, loc models.DeviceLocation) error {
	const op = "LocationRepo.Save"
	query := `
		INSERT INTO device_locations (device_id, lat, lng, speed_kmh, accuracy, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (device_id) DO UPDATE
		SET lat = EXCLUDED.lat, lng = EXCLUDED.lng, speed_kmh = EXCLUDED.speed_kmh,
		    accuracy = EXCLUDED.accuracy, updated_at = EXCLUDED.updated_at`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query,
		loc.DeviceID,
		loc.Lat,
		loc.Lng,
		loc.SpeedKmh,
		loc.Accuracy,
		loc.UpdatedAt,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Last returns the last reported location, or types.ErrNoPosition.
func (r *LocationRepo) Last(ctx context.Context, deviceID string) (models.DeviceLocation, error) {
	const op = "LocationRepo.Last"
	query := `
		SELECT device_id, lat, lng, speed_kmh, accuracy, updated_at
		FROM device_locations
		WHERE device_id = $1`

	var loc models.DeviceLocation
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, deviceID).Scan(
		&loc.DeviceID,
		&loc.Lat,
		&loc.Lng,
		&loc.SpeedKmh,
		&loc.Accuracy,
		&loc.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.DeviceLocation{}, types.ErrNoPosition
		}
		return models.DeviceLocation{}, fmt.Errorf("%s: %w", op, err)
	}
	return loc, nil
}
