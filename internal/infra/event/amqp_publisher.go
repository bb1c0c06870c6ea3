package event

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
	carrier "github.com/DioGolang/fleettrack/pkg/otel"
)

const DefaultTransitionExchange = "fleet.region_transitions"

// AMQPChannel is the subset of *amqp.Channel the publisher needs.
type AMQPChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPPublisher struct {
	ch       AMQPChannel
	exchange string
}

// NewAMQPPublisher declares the durable topic exchange transitions go to.
func NewAMQPPublisher(ch AMQPChannel, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultTransitionExchange
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, t entity.RegionTransition) error {
	headers := amqp.Table{HeaderEventID: t.ID}
	otel.GetTextMapPropagator().Inject(ctx, carrier.AMQPHeadersCarrier(headers))

	payload, err := json.Marshal(NewTransitionMessage(t))
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(
		ctx,
		p.exchange,
		RoutingKey(t),
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    t.ID,
			Timestamp:    t.At,
			Body:         payload,
		})
}
