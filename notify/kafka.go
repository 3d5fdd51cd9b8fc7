package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"

	"github.com/gseval/draftgt/config"
)

// Kafka publishes video completion events to a Kafka topic, one message per
// video keyed by the video path
type Kafka struct {
	producer *kafka.Producer
	topic    string
	timeout  time.Duration
	logger   *log.Logger
}

// NewKafka creates a producer from the notify configuration
func NewKafka(cfg config.NotifyConfig, logger *log.Logger) (*Kafka, error) {

	producerConfig := &kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"security.protocol": cfg.SecurityProtocol,
		"acks":              "all",
		// one message per video, no need to wait for a batch
		"linger.ms":           0,
		"enable.idempotence":  true,
		"delivery.timeout.ms": cfg.TimeoutMS,
	}

	if cfg.SASLMechanism != "" {
		producerConfig.SetKey("sasl.mechanism", cfg.SASLMechanism)
		producerConfig.SetKey("sasl.username", cfg.SASLUsername)
		producerConfig.SetKey("sasl.password", cfg.SASLPassword)
	}

	p, err := kafka.NewProducer(producerConfig)

	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}

	logger.Printf("Kafka notifications enabled, topic: %s, servers: %s", cfg.Topic, cfg.Brokers)

	return &Kafka{
		producer: p,
		topic:    cfg.Topic,
		timeout:  time.Duration(cfg.TimeoutMS) * time.Millisecond,
		logger:   logger,
	}, nil
}

// Notify sends the event and waits for its delivery report
func (k *Kafka) Notify(ctx context.Context, ev Event) error {

	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}

	payload, err := ev.ToJSON()

	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)

	message := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(ev.Video),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(ev.RunID)},
			{Key: "status", Value: []byte(ev.Status)},
		},
	}

	if err := k.producer.Produce(message, deliveryChan); err != nil {
		return fmt.Errorf("failed to produce event: %w", err)
	}

	timer := time.NewTimer(k.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		return fmt.Errorf("timed out after %v waiting for delivery report", k.timeout)

	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)

		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", e)
		}

		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
	}

	return nil
}

// Close flushes outstanding messages and closes the producer
func (k *Kafka) Close() error {

	if remaining := k.producer.Flush(int(k.timeout.Milliseconds())); remaining > 0 {
		k.logger.Printf("%d events still queued after flush timeout", remaining)
	}

	k.producer.Close()

	return nil
}

// Nop discards all events
type Nop struct{}

// Notify does nothing
func (Nop) Notify(context.Context, Event) error {
	return nil
}

// Close does nothing
func (Nop) Close() error {
	return nil
}
