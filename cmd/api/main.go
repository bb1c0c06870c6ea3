package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/DioGolang/fleettrack/configs"
	"github.com/DioGolang/fleettrack/internal/application/region"
	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/infra/database"
	"github.com/DioGolang/fleettrack/internal/infra/event"
	grpcsvc "github.com/DioGolang/fleettrack/internal/infra/grpc/service"
	"github.com/DioGolang/fleettrack/internal/infra/storage"
	"github.com/DioGolang/fleettrack/internal/infra/web"
	"github.com/DioGolang/fleettrack/internal/infra/web/handler"
	"github.com/DioGolang/fleettrack/internal/infra/web/middleware"
	"github.com/DioGolang/fleettrack/internal/infra/web/stream"
	"github.com/DioGolang/fleettrack/internal/infra/worker"
	"github.com/DioGolang/fleettrack/pkg/logger"
	"github.com/DioGolang/fleettrack/pkg/metrics"
	telemetry "github.com/DioGolang/fleettrack/pkg/otel"
)

func main() {
	cfg, err := configs.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.ServiceName, cfg.IsProduction())

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "Service stopped with error", logger.WithError(err))
		os.Exit(1)
	}
}

func run(cfg *configs.Conf, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OtelCollector != "" {
		shutdown, err := telemetry.InitProvider(ctx, cfg.ServiceName, cfg.Environment, cfg.OtelCollector)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	promReg := prometheus.NewRegistry()
	m := metrics.NewPrometheusMetrics(promReg, cfg.ServiceName)

	defs, err := configs.LoadRegions(cfg.RegionsFile)
	if err != nil {
		return err
	}
	regions, err := region.NewRegistry(defs)
	if err != nil {
		return fmt.Errorf("region table: %w", err)
	}

	store := storage.NewShardedStore(cfg.ShardCount)
	notifier := tracking.NewNotifier(log, m)
	svc := tracking.NewService(regions, store, notifier, log, m, tracking.WithStaleAfter(cfg.StaleAfter))
	recorder := &tracking.RecordLocationMetricsDecorator{Next: svc, Metrics: m}

	hub := stream.NewHub(log)
	handles := []tracking.SubscriptionHandle{
		notifier.Subscribe("log", tracking.LogTransitions(log)),
		notifier.Subscribe("websocket", hub.Publish),
	}

	var rdb redis.UniversalClient
	var snapshotter *worker.Snapshotter
	if cfg.RedisAddr != "" {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		snapshotter = worker.NewSnapshotter(svc, database.NewRedisSnapshotRepository(rdb, log), log, m, cfg.SnapshotInterval)
		if err := snapshotter.LoadInto(ctx); err != nil {
			log.Warn(ctx, "Starting with an empty driver table", logger.WithError(err))
		}
	}

	var db *sql.DB
	var transitions *handler.Transitions
	if dsn := cfg.PostgresDSN(); dsn != "" {
		db, err = sql.Open(cfg.DBDriver, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		journal := database.NewTransitionRepository(db)
		handles = append(handles, subscribeResilient(notifier, m, cfg, "postgres_journal", journal.Save))
		transitions = handler.NewTransitionHandler(journal, log)
	}

	sinks, err := connectSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sinks.Close()
	for _, s := range sinks.handlers {
		handles = append(handles, subscribeResilient(notifier, m, cfg, s.name, s.handle))
	}

	var mqttClient paho.Client
	if sinks.mqtt != nil {
		mqttClient = sinks.mqtt
		if err := startLocationIngest(sinks.mqtt, rdb, recorder, m, cfg, log); err != nil {
			return err
		}
	}

	healthOpts := []handler.HealthOption{
		handler.WithPostgres(db),
		handler.WithRedis(rdb),
		handler.WithRabbitMQ(cfg.AMQPURL),
		handler.WithMQTT(mqttClient),
	}
	if brokers := cfg.Kafka(); len(brokers) > 0 {
		healthOpts = append(healthOpts, handler.WithKafka(brokers[0]))
	}
	deps, err := handler.NewHealthHandler(cfg.ServiceName, healthOpts...)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})
	router := web.NewRouter(web.RouterDeps{
		ServiceName:    cfg.ServiceName,
		Logger:         log,
		Metrics:        m,
		Tracking:       handler.NewTrackingHandler(recorder, svc, log),
		Regions:        handler.NewRegionHandler(regions, log),
		Status:         handler.NewStatusHandler(cfg.ServiceName, svc),
		Transitions:    transitions,
		Stream:         hub,
		Dependencies:   deps,
		Limiter:        limiter,
		Gatherer:       promReg,
		OperatorSecret: cfg.OperatorJWTSecret,
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv, grpcHealth := grpcsvc.NewServer(grpcsvc.NewTrackingService(recorder, svc, log), m)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "HTTP server listening", logger.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info(gctx, "gRPC server listening", logger.String("addr", lis.Addr().String()))
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	if snapshotter != nil {
		g.Go(func() error {
			snapshotter.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		grpcHealth.Shutdown()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.GracefulStop()
		hub.Close()
		for _, h := range handles {
			notifier.Unsubscribe(h)
		}
		return err
	})

	return g.Wait()
}

func subscribeResilient(n *tracking.Notifier, m metrics.Metrics, cfg *configs.Conf, name string, h tracking.TransitionHandler) tracking.SubscriptionHandle {
	cb := event.NewCircuitBreaker(name, 30*time.Second)
	return n.Subscribe(name, event.WrapResilientSubscriber(m, name, cfg.SubscriberTimeout, cb, h))
}
