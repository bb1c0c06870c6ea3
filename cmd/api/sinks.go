package main

import (
	"context"
	"errors"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/DioGolang/fleettrack/configs"
	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/infra/event"
	mqttinfra "github.com/DioGolang/fleettrack/internal/infra/mqtt"
	"github.com/DioGolang/fleettrack/internal/infra/storage"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

type namedHandler struct {
	name   string
	handle tracking.TransitionHandler
}

// sinkSet holds the broker connections that receive transitions. Every broker
// is optional.
type sinkSet struct {
	handlers []namedHandler
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
	kafka    *kafka.Writer
	mqtt     paho.Client
}

func connectSinks(ctx context.Context, cfg *configs.Conf, log logger.Logger) (*sinkSet, error) {
	s := &sinkSet{}

	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		s.amqpConn = conn
		ch, err := conn.Channel()
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("rabbitmq channel: %w", err)
		}
		s.amqpCh = ch
		pub, err := event.NewAMQPPublisher(ch, cfg.AMQPExchange)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.handlers = append(s.handlers, namedHandler{name: "rabbitmq", handle: pub.Publish})
		log.Info(ctx, "Publishing transitions to RabbitMQ", logger.String("exchange", cfg.AMQPExchange))
	}

	if brokers := cfg.Kafka(); len(brokers) > 0 {
		s.kafka = event.NewKafkaWriter(brokers, cfg.KafkaTopic)
		s.handlers = append(s.handlers, namedHandler{name: "kafka", handle: event.NewKafkaPublisher(s.kafka).Publish})
		log.Info(ctx, "Publishing transitions to Kafka", logger.String("topic", cfg.KafkaTopic))
	}

	if cfg.MQTTBroker != "" {
		client, err := mqttinfra.NewClient(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.mqtt = client
		s.handlers = append(s.handlers, namedHandler{name: "mqtt_alert", handle: mqttinfra.NewAlertPublisher(client).Publish})
		log.Info(ctx, "Sending driver alerts over MQTT", logger.String("broker", cfg.MQTTBroker))
	}

	return s, nil
}

func (s *sinkSet) Close() error {
	var errs []error
	if s.kafka != nil {
		errs = append(errs, s.kafka.Close())
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect(250)
	}
	if s.amqpCh != nil {
		errs = append(errs, s.amqpCh.Close())
	}
	if s.amqpConn != nil {
		errs = append(errs, s.amqpConn.Close())
	}
	return errors.Join(errs...)
}

// startLocationIngest subscribes to driver pings over MQTT. With Redis
// available, QoS 1 redeliveries are dropped by the idempotency guard.
func startLocationIngest(
	client paho.Client,
	rdb redis.UniversalClient,
	uc tracking.RecordLocationUseCase,
	m metrics.Metrics,
	cfg *configs.Conf,
	log logger.Logger,
) error {
	h := mqttinfra.RecordLocationHandler(uc, log)
	if rdb != nil {
		dedup := storage.NewRedisDedupStore(rdb, cfg.ServiceName+":")
		h = event.WrapIdempotency(log, m, dedup, "mqtt_location", cfg.DedupTTL, h)
	}
	return mqttinfra.NewLocationSubscriber(client, h, log).Start()
}
