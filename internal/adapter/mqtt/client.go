package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Temutjin2k/geopulse/config"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
)

const connectTimeout = 10 * time.Second

// Connect opens an auto-reconnecting MQTT client.
func Connect(ctx context.Context, cfg config.MQTTConfig, l logger.Logger) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			l.Error(wrap.WithAction(context.Background(), types.ActionMQTTLost), "mqtt connection lost", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect: timeout after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	l.Info(wrap.WithAction(ctx, types.ActionMQTTConnected), "connected to mqtt broker", "broker", cfg.Broker)
	return client, nil
}
