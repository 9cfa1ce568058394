package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/configparser"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode: tracker | store")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode types.ServiceMode

		Log      LogConfig
		Tracker  TrackerConfig
		Store    StoreConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		MQTT     MQTTConfig
		HTTP     HTTPConfig
		Auth     Auth
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	}

	// TrackerConfig holds the policy constants of the tracking engine.
	TrackerConfig struct {
		DeviceID   string `env:"TRACKER_DEVICE_ID" default:"device-1" validate:"required"`
		NotifyMode string `env:"TRACKER_NOTIFY_MODE" default:"family" validate:"oneof=family private"`

		MaxAccuracyMeters   float64 `env:"TRACKER_MAX_ACCURACY_METERS" default:"100" validate:"gt=0"`
		MaxJumpSpeedMps     float64 `env:"TRACKER_MAX_JUMP_SPEED_MPS" default:"60" validate:"gt=0"`
		MinJumpMeters       float64 `env:"TRACKER_MIN_JUMP_METERS" default:"500" validate:"gte=0"`
		MinMoveMeters       float64 `env:"TRACKER_MIN_MOVE_METERS" default:"3" validate:"gte=0"`
		MinSpeedIntervalSec float64 `env:"TRACKER_MIN_SPEED_INTERVAL_SEC" default:"0.5" validate:"gte=0"`
		MaxSpeedMps         float64 `env:"TRACKER_MAX_SPEED_MPS" default:"50" validate:"gt=0"`
		MaxAccelerationMps2 float64 `env:"TRACKER_MAX_ACCELERATION_MPS2" default:"15" validate:"gt=0"`
		SpeedDecay          float64 `env:"TRACKER_SPEED_DECAY" default:"0.9" validate:"gt=0,lte=1"`
		StartGain           float64 `env:"TRACKER_START_GAIN" default:"0.35" validate:"gt=0,lte=1"`
		MovingGain          float64 `env:"TRACKER_MOVING_GAIN" default:"0.20" validate:"gt=0,lte=1"`
		StartSpeedMps       float64 `env:"TRACKER_START_SPEED_MPS" default:"0.5" validate:"gte=0"`
		SpeedFloorMps       float64 `env:"TRACKER_SPEED_FLOOR_MPS" default:"0.3" validate:"gte=0"`
		StationaryKmh       float64 `env:"TRACKER_STATIONARY_KMH" default:"3" validate:"gte=0"`
		WalkingKmh          float64 `env:"TRACKER_WALKING_KMH" default:"5" validate:"gt=0"`

		SyncMinInterval time.Duration `env:"TRACKER_SYNC_MIN_INTERVAL" default:"4s"`
		SyncTick        time.Duration `env:"TRACKER_SYNC_TICK" default:"5s"`
		AlertDuration   time.Duration `env:"TRACKER_ALERT_DURATION" default:"3s"`
		DetailDuration  time.Duration `env:"TRACKER_DETAIL_DURATION" default:"5s"`
	}

	// StoreConfig describes how the tracker reaches the remote store.
	StoreConfig struct {
		URL     string        `env:"STORE_URL" default:"http://localhost:3010/api" validate:"url"`
		Timeout time.Duration `env:"STORE_TIMEOUT" default:"10s"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"geopulse_user"`
		Password string `env:"DATABASE_PASSWORD" default:"geopulse_pass"`
		Database string `env:"DATABASE_DATABASE" default:"geopulse_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" default:"geofence_topic"`
	}

	MQTTConfig struct {
		Broker   string `env:"MQTT_BROKER" default:"tcp://localhost:1883"`
		ClientID string `env:"MQTT_CLIENT_ID" default:"geopulse-tracker"`
		Topic    string `env:"MQTT_TOPIC" default:"geopulse/+/location"`
	}

	HTTPConfig struct {
		TrackerPort string `env:"HTTP_TRACKER_PORT" default:"3011"`
		StorePort   string `env:"HTTP_STORE_PORT" default:"3010"`
	}

	Auth struct {
		TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" default:"24h"`
		JWTSecret string        `env:"AUTH_JWT_SECRET" default:"supersecretkey" validate:"min=8"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	return cfg, nil
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}

func (c DatabaseConfig) PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}
