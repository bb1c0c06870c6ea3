package event

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	carrier "github.com/DioGolang/fleettrack/pkg/otel"
)

const DefaultTransitionTopic = "region.transitions"

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher keys messages by driver id so one driver's transitions stay
// ordered within a partition.
type KafkaPublisher struct {
	w KafkaWriter
}

func NewKafkaPublisher(w KafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// NewKafkaWriter builds a hash-balanced writer for the transitions topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTransitionTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, t entity.RegionTransition) error {
	payload, err := json.Marshal(NewTransitionMessage(t))
	if err != nil {
		return err
	}
	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(t.ID)},
		{Key: "x-transition-kind", Value: []byte(t.Kind())},
	}
	otel.GetTextMapPropagator().Inject(ctx, carrier.KafkaHeadersCarrier{Headers: &headers})

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(t.DriverID),
		Value:   payload,
		Headers: headers,
		Time:    t.At,
	})
}
