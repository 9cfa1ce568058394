package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	wrap "github.com/Temutjin2k/geopulse/pkg/logger/wrapper"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
	"github.com/Temutjin2k/geopulse/pkg/rabbit"
)

const (
	publishRetries = 3
	retryBackoff   = 500 * time.Millisecond
)

// Publisher is the subset of the broker client used by the producer.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// EventProducer publishes geofence and device events to a topic exchange.
// Routing keys: geofence.<enter|exit>.<device>, device.<event>.<device>.
type EventProducer struct {
	client   Publisher
	exchange string
	service  string
}

func NewEventProducer(client Publisher, exchange, service string) *EventProducer {
	return &EventProducer{
		client:   client,
		exchange: exchange,
		service:  service,
	}
}

// Setup declares the exchange the producer publishes to.
func Setup(ctx context.Context, client *rabbit.RabbitMQ, exchange string) error {
	const op = "rabbit.Setup"
	if err := client.DeclareTopicExchange(ctx, exchange); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// PublishTransition publishes a geofence enter/exit event.
func (p *EventProducer) PublishTransition(ctx context.Context, ev models.GeofenceEvent) error {
	const op = "EventProducer.PublishTransition"

	eventType := types.EventGeofenceEnter
	if ev.Kind == types.TransitionExit {
		eventType = types.EventGeofenceExit
	}
	key := fmt.Sprintf("geofence.%s.%s", ev.Kind, ev.DeviceID)

	if err := p.publish(ctx, key, ev); err != nil {
		ctx = wrap.WithAction(ctx, "publish_"+strings.ToLower(eventType.String()))
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// PublishDeviceEvent publishes location, check-in and SOS events.
func (p *EventProducer) PublishDeviceEvent(ctx context.Context, ev models.DeviceEvent) error {
	const op = "EventProducer.PublishDeviceEvent"

	key := fmt.Sprintf("device.%s.%s", strings.ToLower(ev.Type.String()), ev.DeviceID)

	if err := p.publish(ctx, key, ev); err != nil {
		ctx = wrap.WithAction(ctx, "publish_device_event")
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (p *EventProducer) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	err = retry(ctx, publishRetries, retryBackoff, func() error {
		return p.client.Publish(ctx, p.exchange, key, body)
	})
	metrics.RecordRabbitMQPublish(p.service, p.exchange, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func retry(ctx context.Context, n int, sleep time.Duration, fn func() error) error {
	var err error
	for i := range n {
		if err = fn(); err == nil {
			return nil
		}
		if i == n-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return err
}
