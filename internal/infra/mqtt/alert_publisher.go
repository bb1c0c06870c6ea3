package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/DioGolang/fleettrack/internal/domain/entity"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

type alertMessage struct {
	TransitionID   string    `json:"transition_id"`
	Region         *string   `json:"region"`
	PreviousRegion *string   `json:"previous_region"`
	Message        string    `json:"message"`
	At             time.Time `json:"at"`
}

// AlertPublisher tells the driver's app which region they are now in.
type AlertPublisher struct {
	client      Publisher
	defaultWait time.Duration
}

func NewAlertPublisher(client Publisher) *AlertPublisher {
	return &AlertPublisher{client: client, defaultWait: 3 * time.Second}
}

func AlertTopic(driverID string) string {
	return fmt.Sprintf("/fleet/driver/%s/region", driverID)
}

func AlertText(t entity.RegionTransition) string {
	switch t.Kind() {
	case entity.TransitionExit:
		return fmt.Sprintf("You have left %s", t.From)
	default:
		return fmt.Sprintf("You're now in %s", t.To)
	}
}

func (p *AlertPublisher) Publish(ctx context.Context, t entity.RegionTransition) error {
	payload, err := json.Marshal(alertMessage{
		TransitionID:   t.ID,
		Region:         nonEmpty(t.To),
		PreviousRegion: nonEmpty(t.From),
		Message:        AlertText(t),
		At:             t.At.UTC(),
	})
	if err != nil {
		return err
	}

	wait := p.defaultWait
	if dl, ok := ctx.Deadline(); ok {
		wait = time.Until(dl)
	}

	token := p.client.Publish(AlertTopic(t.DriverID), 1, false, payload)
	if !token.WaitTimeout(wait) {
		return ErrPublishTimeout
	}
	return token.Error()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
