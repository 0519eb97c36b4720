// Package events defines the config change event shared by the producer and
// the projection consumer.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"alerting-destinations/internal/models"
)

// ConfigChanged is published after every successful create, update or delete.
type ConfigChanged struct {
	ConfigID   string            `json:"config_id"`
	ConfigType models.ConfigType `json:"config_type"`
	Action     string            `json:"action"`
	Timestamp  int64             `json:"timestamp"` // unix millis
}

func NewConfigChanged(id string, configType models.ConfigType, action string, at time.Time) ConfigChanged {
	return ConfigChanged{ConfigID: id, ConfigType: configType, Action: action, Timestamp: at.UnixMilli()}
}

// Validate rejects events the projection cannot act on.
func (e ConfigChanged) Validate() error {
	if e.ConfigID == "" {
		return fmt.Errorf("config_id is required")
	}
	switch e.Action {
	case models.ActionCreated, models.ActionUpdated, models.ActionDeleted:
		return nil
	default:
		return fmt.Errorf("unknown action %q", e.Action)
	}
}

// Decode parses and validates a message payload.
func Decode(payload []byte) (ConfigChanged, error) {
	var e ConfigChanged
	if err := json.Unmarshal(payload, &e); err != nil {
		return ConfigChanged{}, fmt.Errorf("failed to decode config changed event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return ConfigChanged{}, err
	}
	return e, nil
}

// Task turns the event into a projection task.
func (e ConfigChanged) Task(requestID string) models.Task {
	return models.Task{
		RequestID:  requestID,
		ConfigID:   e.ConfigID,
		ConfigType: e.ConfigType,
		Action:     e.Action,
		Timestamp:  time.UnixMilli(e.Timestamp).UTC(),
	}
}
