package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// ArtifactWritten is the event type emitted after a stage stores its output
const ArtifactWritten = "artifact.written"

// Event describes one pipeline side effect
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Stage     string    `json:"stage"`
	Artifact  string    `json:"artifact"`
	Bytes     int       `json:"bytes"`
	At        time.Time `json:"at"`
}

// Publisher delivers events somewhere outside the process
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// KafkaConfig holds Kafka producer configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher sends events synchronously, keyed by session so one
// session's events stay ordered within a partition
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a sync producer to the brokers
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, cfg.Topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish encodes evt as JSON and waits for the broker ack
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.SessionID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("send %s event: %w", evt.Type, err)
	}
	return nil
}

// Close flushes and shuts down the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
