package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/DioGolang/fleettrack/configs"
	"github.com/DioGolang/fleettrack/internal/infra/event"
	"github.com/DioGolang/fleettrack/internal/infra/storage"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
)

// listener binds a queue to the transition exchange and logs what it receives.
func main() {
	cfg, err := configs.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.ServiceName+"-listener", cfg.IsProduction())

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "Listener stopped with error", logger.WithError(err))
		os.Exit(1)
	}
}

func run(cfg *configs.Conf, log logger.Logger) error {
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry(), cfg.ServiceName+"-listener")
	h := event.WrapExponentialBackoff(log, m, "log_transitions", 3, 200*time.Millisecond, event.LogTransitionMessages(log))

	if cfg.RedisAddr != "" {
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		dedup := storage.NewRedisDedupStore(rdb, cfg.ServiceName+":")
		h = event.WrapIdempotency(log, m, dedup, "log_transitions", cfg.DedupTTL, h)
	}

	log.Info(ctx, "Listener started", logger.String("exchange", cfg.AMQPExchange), logger.String("queue", cfg.AMQPQueue))
	return event.NewConsumer(ch, cfg.AMQPExchange, cfg.AMQPQueue, h, log).Start(ctx)
}
