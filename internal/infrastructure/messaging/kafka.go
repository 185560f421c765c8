package messaging

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher publishes plain-text notifications to Kafka topics.
type KafkaPublisher struct {
	client *kgo.Client
}

func NewKafkaPublisher(brokers []string, clientID string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no seed brokers")
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordRetries(2),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{client: cl}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, message string) error {
	rec := &kgo.Record{Topic: topic, Value: []byte(message)}
	return p.client.ProduceSync(ctx, rec).FirstErr()
}

func (p *KafkaPublisher) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
