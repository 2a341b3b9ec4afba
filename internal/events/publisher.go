// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	TypePaymentConfirmed = "payment.confirmed"
	TypePaymentFailed    = "payment.failed"
	TypeOfferCreated     = "offer.created"
	TypeOfferAccepted    = "offer.accepted"
	TypeOfferRejected    = "offer.rejected"
)

// Event is the envelope written as the message value.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(eventType, key string, payload any) Event {
	return Event{Type: eventType, Key: key, Payload: payload, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
	Close() error
}

// KafkaPublisher keeps one writer per topic.
type KafkaPublisher struct {
	brokers []string
	log     logrus.FieldLogger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaPublisher(brokers []string, log logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		log:     log,
		writers: make(map[string]*kafka.Writer),
	}
}

func (p *KafkaPublisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:                   kafka.TCP(p.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		}
		p.writers[topic] = w
	}
	return w
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.log.WithFields(logrus.Fields{"topic": topic, "type": ev.Type, "key": ev.Key}).Debug("publishing event")

	return p.writer(topic).WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Key),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close writer %s: %w", topic, err)
		}
	}
	return firstErr
}

// NopPublisher drops events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
func (NopPublisher) Close() error                                 { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events map[string][]Event
}

func NewRecorder() *Recorder {
	return &Recorder{Events: make(map[string][]Event)}
}

func (r *Recorder) Publish(_ context.Context, topic string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events[topic] = append(r.Events[topic], ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the event types published to topic, in order.
func (r *Recorder) Types(topic string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events[topic]))
	for _, ev := range r.Events[topic] {
		out = append(out, ev.Type)
	}
	return out
}
