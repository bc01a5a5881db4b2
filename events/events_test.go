package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var evt Event
		if err := json.Unmarshal(val, &evt); err != nil {
			return err
		}
		if evt.Type != ArtifactWritten || evt.Artifact != "market.md" || evt.SessionID != "s1" {
			return errors.New("unexpected event payload")
		}
		if evt.At.IsZero() {
			return errors.New("timestamp not set")
		}
		return nil
	})

	pub := newKafkaPublisher(producer, "ideaforge.artifacts")
	err := pub.Publish(context.Background(), Event{
		Type:      ArtifactWritten,
		SessionID: "s1",
		Stage:     "analyze-market",
		Artifact:  "market.md",
		Bytes:     42,
	})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := newKafkaPublisher(producer, "topic")
	err := pub.Publish(context.Background(), Event{Type: ArtifactWritten, SessionID: "s1"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	_ = pub.Close()
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := newKafkaPublisher(producer, "topic")
	assert.ErrorIs(t, pub.Publish(ctx, Event{}), context.Canceled)
	_ = pub.Close()
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
