package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

type SettingsRepo struct {
	db Querier
}

func NewSettingsRepo(db Querier) *SettingsRepo {
	return &SettingsRepo{
		db: db,
	}
}

func (r *SettingsRepo) Save(ctx context.Context, s models.Settings) error {
	const op = "SettingsRepo.Save"
	query := `
		INSERT INTO device_settings (device_id, notify_mode, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (device_id) DO UPDATE
		SET notify_mode = EXCLUDED.notify_mode, updated_at = now()`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, s.DeviceID, string(s.NotifyMode)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get returns the device settings, defaulting to family mode.
func (r *SettingsRepo) Get(ctx context.Context, deviceID string) (models.Settings, error) {
	const op = "SettingsRepo.Get"
	query := `SELECT notify_mode FROM device_settings WHERE device_id = $1`

	var mode string
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, deviceID).Scan(&mode); err != nil {
		if err == pgx.ErrNoRows {
			return models.Settings{DeviceID: deviceID, NotifyMode: types.NotifyFamily}, nil
		}
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.Settings{DeviceID: deviceID, NotifyMode: types.NotifyMode(mode)}, nil
}
