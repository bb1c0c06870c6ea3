package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Conf struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Environment string `mapstructure:"ENVIRONMENT"`

	WebServerPort string `mapstructure:"WEB_SERVER_PORT"`
	GRPCPort      string `mapstructure:"GRPC_PORT"`

	// Postgres is optional; the transition journal is off when DB_HOST is empty.
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`
	AMQPQueue    string `mapstructure:"AMQP_QUEUE"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	MQTTBroker   string `mapstructure:"MQTT_BROKER"`
	MQTTClientID string `mapstructure:"MQTT_CLIENT_ID"`

	OtelCollector     string `mapstructure:"OTEL_COLLECTOR"`
	OperatorJWTSecret string `mapstructure:"OPERATOR_JWT_SECRET"`
	RegionsFile       string `mapstructure:"REGIONS_FILE"`

	StaleAfter        time.Duration `mapstructure:"STALE_AFTER"`
	SnapshotInterval  time.Duration `mapstructure:"SNAPSHOT_INTERVAL"`
	SubscriberTimeout time.Duration `mapstructure:"SUBSCRIBER_TIMEOUT"`
	DedupTTL          time.Duration `mapstructure:"DEDUP_TTL"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	ShardCount     int     `mapstructure:"SHARD_COUNT"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"SERVICE_NAME":        "fleettrack",
	"ENVIRONMENT":         "development",
	"WEB_SERVER_PORT":     "5001",
	"GRPC_PORT":           "50051",
	"DB_DRIVER":           "postgres",
	"DB_HOST":             "",
	"DB_PORT":             "5432",
	"DB_USER":             "",
	"DB_PASSWORD":         "",
	"DB_NAME":             "fleettrack",
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"AMQP_URL":            "",
	"AMQP_EXCHANGE":       "fleet.region_transitions",
	"AMQP_QUEUE":          "fleettrack.transitions.log",
	"KAFKA_BROKERS":       "",
	"KAFKA_TOPIC":         "region.transitions",
	"MQTT_BROKER":         "",
	"MQTT_CLIENT_ID":      "fleettrack",
	"OTEL_COLLECTOR":      "",
	"OPERATOR_JWT_SECRET": "",
	"REGIONS_FILE":        "",
	"STALE_AFTER":         "30m",
	"SNAPSHOT_INTERVAL":   "5m",
	"SUBSCRIBER_TIMEOUT":  "2s",
	"DEDUP_TTL":           "10m",
	"SHUTDOWN_TIMEOUT":    "10s",
	"SHARD_COUNT":         32,
	"RATE_LIMIT_RPS":      50.0,
	"RATE_LIMIT_BURST":    100,
}

// LoadConfig reads path/.env when present and lets the environment override
// every key.
func LoadConfig(path string) (*Conf, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", filepath.Join(path, ".env"), err)
		}
	}

	var cfg Conf
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Conf) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Conf) PostgresDSN() string {
	if c.DBHost == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func (c *Conf) Kafka() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
