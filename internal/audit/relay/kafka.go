package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"certportal/internal/platform/config"
	audit "certportal/pkg/platform/audit"
)

const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// KafkaProducer publishes outbox entries keyed by certificate id, so every
// event for one certificate lands on the same partition in order.
type KafkaProducer struct {
	client *kgo.Client
	topic  string
}

func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.ClientID("certportal-audit-relay"),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	return &KafkaProducer{client: client, topic: cfg.AuditTopic}, nil
}

// Records converts outbox entries into broker records.
func Records(topic string, entries []audit.OutboxEntry) []*kgo.Record {
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, &kgo.Record{
			Topic:     topic,
			Key:       []byte(e.AggregateID),
			Value:     e.Payload,
			Timestamp: e.CreatedAt,
			Headers: []kgo.RecordHeader{
				{Key: HeaderEventType, Value: []byte(e.EventType)},
				{Key: HeaderEventID, Value: []byte(e.ID)},
			},
		})
	}
	return records
}

func (p *KafkaProducer) Publish(ctx context.Context, entries []audit.OutboxEntry) error {
	if err := p.client.ProduceSync(ctx, Records(p.topic, entries)...).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce: %w", err)
	}
	return nil
}

// EnsureTopic creates the audit topic when it does not exist yet.
func (p *KafkaProducer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("kafka: create topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("kafka: create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

func (p *KafkaProducer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *KafkaProducer) Close() {
	p.client.Close()
}
