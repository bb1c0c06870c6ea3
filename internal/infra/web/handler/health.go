package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/hellofresh/health-go/v5"
	healthRabbit "github.com/hellofresh/health-go/v5/checks/rabbitmq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

var errMQTTDisconnected = errors.New("mqtt connection is not open")

type healthOptions struct {
	version string
	checks  []health.Config
}

type HealthOption func(*healthOptions)

func WithVersion(v string) HealthOption {
	return func(o *healthOptions) { o.version = v }
}

// WithPostgres is a no-op for a nil db, which keeps the journal optional.
func WithPostgres(db *sql.DB) HealthOption {
	return func(o *healthOptions) {
		if db == nil {
			return
		}
		o.checks = append(o.checks, health.Config{
			Name:    "postgres",
			Timeout: 5 * time.Second,
			Check: func(ctx context.Context) error {
				return db.PingContext(ctx)
			},
		})
	}
}

func WithRedis(rdb redis.UniversalClient) HealthOption {
	return func(o *healthOptions) {
		if rdb == nil {
			return
		}
		o.checks = append(o.checks, health.Config{
			Name:    "redis",
			Timeout: 3 * time.Second,
			Check: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		})
	}
}

func WithRabbitMQ(dsn string) HealthOption {
	return func(o *healthOptions) {
		if dsn == "" {
			return
		}
		o.checks = append(o.checks, health.Config{
			Name:    "rabbitmq",
			Timeout: 3 * time.Second,
			Check:   healthRabbit.New(healthRabbit.Config{DSN: dsn}),
		})
	}
}

// WithMQTT reports the broker as degraded rather than failed: the HTTP ingest
// path keeps working without it.
func WithMQTT(c mqtt.Client) HealthOption {
	return func(o *healthOptions) {
		if c == nil {
			return
		}
		o.checks = append(o.checks, health.Config{
			Name:      "mqtt",
			Timeout:   time.Second,
			SkipOnErr: true,
			Check: func(context.Context) error {
				if !c.IsConnectionOpen() {
					return errMQTTDisconnected
				}
				return nil
			},
		})
	}
}

func WithKafka(broker string) HealthOption {
	return func(o *healthOptions) {
		if broker == "" {
			return
		}
		o.checks = append(o.checks, health.Config{
			Name:      "kafka",
			Timeout:   3 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				conn, err := kafka.DialContext(ctx, "tcp", broker)
				if err != nil {
					return err
				}
				return conn.Close()
			},
		})
	}
}

func NewHealthHandler(serviceName string, opts ...HealthOption) (http.Handler, error) {
	options := &healthOptions{version: "1.0.0"}
	for _, opt := range opts {
		opt(options)
	}

	h, err := health.New(
		health.WithComponent(health.Component{Name: serviceName, Version: options.version}),
		health.WithChecks(options.checks...),
	)
	if err != nil {
		return nil, err
	}
	return h.Handler(), nil
}
