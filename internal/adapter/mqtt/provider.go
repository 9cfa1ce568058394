package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Temutjin2k/geopulse/internal/domain/models"
	"github.com/Temutjin2k/geopulse/internal/domain/types"
	"github.com/Temutjin2k/geopulse/internal/service/tracker"
	"github.com/Temutjin2k/geopulse/pkg/logger"
	"github.com/Temutjin2k/geopulse/pkg/metrics"
)

const (
	qos        = 1
	bufferSize = 64
)

var ErrAlreadyStarted = errors.New("location provider already started")

// locationMessage is one sample or a terminal provider error published by the device.
type locationMessage struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Accuracy  *float64 `json:"accuracy"`
	Timestamp int64    `json:"timestamp"` // unix ms
	Error     string   `json:"error"`     // e.g. "permission_denied", "position_unavailable"
}

type delivery struct {
	pos models.Position
	err error
}

/*
Provider subscribes to the device location topic and hands samples to the sink
one at a time from a single dispatch goroutine.
*/
type Provider struct {
	client   paho.Client
	topic    string
	deviceID string
	l        logger.Logger

	mu      sync.Mutex
	queue   chan delivery
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewProvider binds the topic pattern to the device: the first "+" is replaced by deviceID.
func NewProvider(client paho.Client, topicPattern, deviceID string, l logger.Logger) *Provider {
	return &Provider{
		client:   client,
		topic:    strings.Replace(topicPattern, "+", deviceID, 1),
		deviceID: deviceID,
		l:        l,
	}
}

func (p *Provider) Topic() string {
	return p.topic
}

// Start subscribes to the location topic. Samples are delivered until Stop.
func (p *Provider) Start(ctx context.Context, sink tracker.SampleSink) error {
	const op = "Provider.Start"

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.queue = make(chan delivery, bufferSize)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.running = true
	queue, stop, done := p.queue, p.stop, p.done
	p.mu.Unlock()

	go dispatch(context.WithoutCancel(ctx), sink, queue, stop, done)

	token := p.client.Subscribe(p.topic, qos, p.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		_ = p.Stop()
		return fmt.Errorf("%s: subscribe %s: %w", op, p.topic, err)
	}

	p.l.Info(ctx, "subscribed to location topic", "topic", p.topic)
	return nil
}

// Stop unsubscribes and waits for the dispatch goroutine to finish.
func (p *Provider) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	var err error
	if p.client != nil && p.client.IsConnected() {
		token := p.client.Unsubscribe(p.topic)
		token.Wait()
		err = token.Error()
	}

	<-done
	return err
}

func (p *Provider) handleMessage(_ paho.Client, msg paho.Message) {
	d, err := decode(msg.Payload())
	metrics.RecordMQTTMessage(err)
	if err != nil {
		p.l.Warn(context.Background(), "invalid location message", "topic", msg.Topic(), "error", err.Error())
		return
	}

	p.mu.Lock()
	queue, stop := p.queue, p.stop
	p.mu.Unlock()
	if queue == nil {
		return
	}

	select {
	case queue <- d:
	case <-stop:
	}
}

func dispatch(ctx context.Context, sink tracker.SampleSink, queue <-chan delivery, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case d := <-queue:
			if d.err != nil {
				sink.HandleProviderError(ctx, d.err)
				continue
			}
			sink.HandleSample(ctx, d.pos)
		}
	}
}

func decode(payload []byte) (delivery, error) {
	var m locationMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return delivery{}, fmt.Errorf("decode: %w", err)
	}

	if m.Error != "" {
		return delivery{err: fmt.Errorf("%w: %s", types.ErrProviderUnavailable, m.Error)}, nil
	}
	if m.Lat == nil || m.Lng == nil {
		return delivery{}, errors.New("lat and lng are required")
	}
	if m.Timestamp <= 0 {
		return delivery{}, errors.New("timestamp must be positive")
	}

	return delivery{pos: models.Position{
		Lat:         *m.Lat,
		Lng:         *m.Lng,
		Accuracy:    m.Accuracy,
		TimestampMs: m.Timestamp,
	}}, nil
}
