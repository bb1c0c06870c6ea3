package event

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DioGolang/fleettrack/pkg/logger"
	carrier "github.com/DioGolang/fleettrack/pkg/otel"
)

// Consumer binds a durable queue to the transition exchange and hands every
// delivery to a MessageHandler.
type Consumer struct {
	Channel  *amqp.Channel
	Exchange string
	Queue    string
	Binding  string
	Handler  MessageHandler
	Logger   logger.Logger
}

func NewConsumer(ch *amqp.Channel, exchange, queue string, h MessageHandler, l logger.Logger) *Consumer {
	return &Consumer{
		Channel:  ch,
		Exchange: exchange,
		Queue:    queue,
		Binding:  "region.#",
		Handler:  h,
		Logger:   l,
	}
}

// Start consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.setupTopology(); err != nil {
		return fmt.Errorf("error when configuring topology: %w", err)
	}

	msgs, err := c.Channel.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.Logger.Info(ctx, "Waiting for region transitions", logger.String("queue", c.Queue))
	tracer := otel.GetTracerProvider().Tracer("fleettrack/listener")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, tracer, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, tracer trace.Tracer, d amqp.Delivery) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier.AMQPHeadersCarrier(d.Headers))
	ctx, span := tracer.Start(ctx, "ConsumeRegionTransition", trace.WithAttributes(
		attribute.String("messaging.destination", c.Queue),
		attribute.String("messaging.message_id", d.MessageId),
		attribute.String("messaging.routing_key", d.RoutingKey),
	))
	defer span.End()

	if err := c.Handler(ctx, d.Body, d.Headers); err != nil {
		span.RecordError(err)
		c.Logger.Error(ctx, "Failed to handle delivery", logger.WithError(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) setupTopology() error {
	if err := c.Channel.ExchangeDeclare(c.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return err
	}
	return c.Channel.QueueBind(c.Queue, c.Binding, c.Exchange, false, nil)
}

// LogTransitionMessages decodes the payload and logs it. Malformed payloads
// are rejected so they are not redelivered.
func LogTransitionMessages(log logger.Logger) MessageHandler {
	return func(ctx context.Context, msg []byte, _ map[string]interface{}) error {
		var m TransitionMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			return fmt.Errorf("decode transition: %w", err)
		}
		log.Info(ctx, "Region transition received",
			logger.String("transition_id", m.ID),
			logger.String("driver_id", m.DriverID),
			logger.String("kind", m.Kind),
			logger.Any("from", m.From),
			logger.Any("to", m.To),
		)
		return nil
	}
}
