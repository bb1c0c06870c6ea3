package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/DioGolang/fleettrack/internal/application/tracking"
	"github.com/DioGolang/fleettrack/internal/domain/entity"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
	"github.com/DioGolang/fleettrack/internal/infra/event"
	"github.com/DioGolang/fleettrack/pkg/logger"
)

const (
	LocationTopic = "/fleet/driver/+/location"
	HeaderTopic   = "mqtt-topic"
)

var (
	errMissingCoordinate = errors.New("latitude and longitude are required")
	errDriverMismatch    = errors.New("driver_id does not match topic")
)

type Subscriber interface {
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

type locationMessage struct {
	DriverID  string   `json:"driver_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

// LocationSubscriber feeds QoS 1 location pings into the tracking engine.
type LocationSubscriber struct {
	client  Subscriber
	handler event.MessageHandler
	logger  logger.Logger
}

func NewLocationSubscriber(client Subscriber, handler event.MessageHandler, log logger.Logger) *LocationSubscriber {
	return &LocationSubscriber{client: client, handler: handler, logger: log}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(LocationTopic, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ paho.Client, msg paho.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.handler(ctx, msg.Payload(), messageHeaders(msg)); err != nil {
		s.logger.Warn(ctx, "MQTT location not processed",
			logger.String("topic", msg.Topic()),
			logger.WithError(err),
		)
	}
}

// messageHeaders identifies a delivery by its topic and packet id. Packet ids
// are recycled once acknowledged, so the DUP flag tells the idempotency guard
// whether the id may belong to a message it already handled.
func messageHeaders(msg paho.Message) map[string]interface{} {
	headers := map[string]interface{}{
		HeaderTopic:             msg.Topic(),
		event.HeaderRedelivered: msg.Duplicate(),
	}
	if id := msg.MessageID(); id != 0 {
		headers[event.HeaderEventID] = fmt.Sprintf("%s:%d", msg.Topic(), id)
	}
	return headers
}

// driverFromTopic returns the {id} segment of /fleet/driver/{id}/location.
func driverFromTopic(topic string) string {
	parts := strings.Split(strings.TrimPrefix(topic, "/"), "/")
	if len(parts) != 4 || parts[0] != "fleet" || parts[1] != "driver" || parts[3] != "location" {
		return ""
	}
	return parts[2]
}

// RecordLocationHandler decodes a ping and records it. Pings that can never
// succeed are logged and acknowledged instead of failing the handler.
func RecordLocationHandler(uc tracking.RecordLocationUseCase, log logger.Logger) event.MessageHandler {
	return func(ctx context.Context, msg []byte, headers map[string]interface{}) error {
		var raw locationMessage
		if err := json.Unmarshal(msg, &raw); err != nil {
			log.Warn(ctx, "Invalid location message", logger.WithError(err))
			return nil
		}

		topic, _ := headers[HeaderTopic].(string)
		input, err := raw.toInput(driverFromTopic(topic))
		if err != nil {
			log.Warn(ctx, "Invalid location message",
				logger.String("topic", topic),
				logger.WithError(err),
			)
			return nil
		}

		if _, err := uc.Execute(ctx, input); err != nil {
			log.Warn(ctx, "Rejected location message",
				logger.String("driver_id", input.DriverID),
				logger.WithError(err),
			)
		}
		return nil
	}
}

// toInput resolves the driver from the payload and the topic. Either may be
// empty, but both must agree when present.
func (m locationMessage) toInput(topicDriver string) (tracking.RecordLocationInput, error) {
	driverID := strings.TrimSpace(m.DriverID)
	switch {
	case driverID == "":
		driverID = topicDriver
	case topicDriver != "" && driverID != topicDriver:
		return tracking.RecordLocationInput{}, fmt.Errorf("%w: %q on %q", errDriverMismatch, driverID, topicDriver)
	}
	if driverID == "" {
		return tracking.RecordLocationInput{}, entity.ErrDriverIDRequired
	}
	if m.Latitude == nil || m.Longitude == nil {
		return tracking.RecordLocationInput{}, errMissingCoordinate
	}

	input := tracking.RecordLocationInput{
		DriverID:   driverID,
		Coordinate: geo.Coordinate{Latitude: *m.Latitude, Longitude: *m.Longitude},
	}
	if m.Timestamp > 0 {
		ts := time.Unix(m.Timestamp, 0).UTC()
		input.Timestamp = &ts
	}
	return input, nil
}
