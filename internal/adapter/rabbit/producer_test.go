package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

type published struct {
	exchange, key string
	body          []byte
}

type mockPublisher struct {
	fails int
	calls []published
}

func (m *mockPublisher) Publish(_ context.Context, exchange, key string, body []byte) error {
	m.calls = append(m.calls, published{exchange, key, body})
	if m.fails > 0 {
		m.fails--
		return errors.New("channel closed")
	}
	return nil
}

func TestPublishTransition(t *testing.T) {
	m := &mockPublisher{}
	p := NewEventProducer(m, "geofence_topic", "tracker")

	ev := models.GeofenceEvent{
		DeviceID:   "device-1",
		Kind:       types.TransitionEnter,
		GeofenceID: "home",
		Timestamp:  time.Unix(100, 0).UTC(),
	}
	if err := p.PublishTransition(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.calls) != 1 || m.calls[0].exchange != "geofence_topic" || m.calls[0].key != "geofence.enter.device-1" {
		t.Fatalf("unexpected publish: %+v", m.calls)
	}

	var got models.GeofenceEvent
	if err := json.Unmarshal(m.calls[0].body, &got); err != nil || got.GeofenceID != "home" {
		t.Fatalf("unexpected body %s: %v", m.calls[0].body, err)
	}
}

func TestPublishDeviceEvent_Retries(t *testing.T) {
	m := &mockPublisher{fails: 1}
	p := NewEventProducer(m, "geofence_topic", "store")

	err := p.PublishDeviceEvent(context.Background(), models.DeviceEvent{DeviceID: "d", Type: types.EventSOS})
	if err != nil {
		t.Fatalf("publish must succeed after a retry: %v", err)
	}
	if len(m.calls) != 2 || m.calls[1].key != "device.sos.d" {
		t.Fatalf("unexpected calls: %+v", m.calls)
	}
}

func TestPublish_GivesUp(t *testing.T) {
	m := &mockPublisher{fails: 10}
	p := NewEventProducer(m, "x", "store")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.PublishDeviceEvent(ctx, models.DeviceEvent{DeviceID: "d", Type: types.EventCheckIn}); err == nil {
		t.Fatalf("expected error")
	}
	if len(m.calls) != 1 {
		t.Fatalf("cancelled context must stop retries, got %d calls", len(m.calls))
	}
}
