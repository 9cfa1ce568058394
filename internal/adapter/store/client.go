package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
)

const maxResponseBytes = 4 << 20

var (
	ErrBadStatus   = errors.New("unexpected status code")
	ErrBadResponse = errors.New("malformed store response")
)

// TokenSource supplies the bearer token sent with every call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls the remote store over HTTP. Every action is a POST of a StoreRequest to a single URL.
type Client struct {
	url    string
	http   *http.Client
	tokens TokenSource
	l      logger.Logger
}

func NewClient(url string, timeout time.Duration, tokens TokenSource, l logger.Logger) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		l:      l,
	}
}

// Do performs one store action and returns the authoritative geofence list.
func (c *Client) Do(ctx context.Context, req models.StoreRequest) ([]models.Geofence, error) {
	const op = "StoreClient.Do"
	ctx = wrap.WithAction(ctx, req.Action.String())

	start := time.Now()
	list, err := c.do(ctx, req)
	metrics.RecordStoreCall(req.Action.String(), err, time.Since(start))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %s: %w", op, req.Action, err))
	}

	c.l.Debug(ctx, "store call completed", "geofences", len(list), "duration", time.Since(start).String())
	return list, nil
}

func (c *Client) do(ctx context.Context, req models.StoreRequest) ([]models.Geofence, error) {
	if c.url == "" {
		return nil, types.ErrStoreNotSet
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if id := wrap.GetRequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("device token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out models.StoreResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != "" {
			return nil, fmt.Errorf("%w %d: %s", ErrBadStatus, resp.StatusCode, out.Error)
		}
		return nil, fmt.Errorf("%w %d", ErrBadStatus, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, decodeErr)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, out.Error)
	}
	if out.Geofences == nil {
		out.Geofences = []models.Geofence{}
	}

	return out.Geofences, nil
}

func coords(c *models.Coordinate) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	la, ln := c.Lat, c.Lng
	return &la, &ln
}

func (c *Client) GetData(ctx context.Context) ([]models.Geofence, error) {
	return c.Do(ctx, models.StoreRequest{Action: types.ActionGetData})
}

func (c *Client) UpdateLocation(ctx context.Context, u models.LocationUpdate, mode types.NotifyMode) ([]models.Geofence, error) {
	lat, lng := u.Lat, u.Lng
	return c.Do(ctx, models.StoreRequest{
		Action:     types.ActionUpdateLocation,
		Lat:        &lat,
		Lng:        &lng,
		Speed:      u.Speed,
		Accuracy:   u.Accuracy,
		NotifyMode: mode,
	})
}

func (c *Client) AddGeofence(ctx context.Context, in models.GeofenceInput, origin *models.Coordinate) ([]models.Geofence, error) {
	lat, lng := coords(origin)
	return c.Do(ctx, models.StoreRequest{Action: types.ActionAddGeofence, Payload: &in, Lat: lat, Lng: lng})
}

func (c *Client) EditGeofence(ctx context.Context, in models.GeofenceInput, origin *models.Coordinate) ([]models.Geofence, error) {
	lat, lng := coords(origin)
	return c.Do(ctx, models.StoreRequest{Action: types.ActionEditGeofence, Payload: &in, Lat: lat, Lng: lng})
}

func (c *Client) DeleteGeofence(ctx context.Context, id string, origin *models.Coordinate) ([]models.Geofence, error) {
	lat, lng := coords(origin)
	return c.Do(ctx, models.StoreRequest{Action: types.ActionDeleteGeofence, ID: id, Lat: lat, Lng: lng})
}

func (c *Client) ToggleGeofence(ctx context.Context, id string, enabled bool, origin *models.Coordinate) ([]models.Geofence, error) {
	lat, lng := coords(origin)
	return c.Do(ctx, models.StoreRequest{Action: types.ActionToggleGeofence, ID: id, Enabled: &enabled, Lat: lat, Lng: lng})
}

func (c *Client) CheckIn(ctx context.Context, at models.Coordinate, mode types.NotifyMode) ([]models.Geofence, error) {
	lat, lng := coords(&at)
	return c.Do(ctx, models.StoreRequest{Action: types.ActionCheckIn, Lat: lat, Lng: lng, NotifyMode: mode})
}

func (c *Client) SendSOS(ctx context.Context, message string, at *models.Coordinate, mode types.NotifyMode) ([]models.Geofence, error) {
	lat, lng := coords(at)
	return c.Do(ctx, models.StoreRequest{Action: types.ActionSendSOS, Message: message, Lat: lat, Lng: lng, NotifyMode: mode})
}

func (c *Client) SetSettings(ctx context.Context, mode types.NotifyMode) ([]models.Geofence, error) {
	return c.Do(ctx, models.StoreRequest{Action: types.ActionSetSettings, NotifyMode: mode})
}
