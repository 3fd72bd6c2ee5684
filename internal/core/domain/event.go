package domain

import "fmt"

const (
	SENSOR_ACTION_CREATED = "created"
	SENSOR_ACTION_UPDATED = "updated"
	SENSOR_ACTION_DELETED = "deleted"
)

// SensorChangedEvent is published on the event stream after a successful mutation.
// Sensor is nil for deletions.
type SensorChangedEvent struct {
	Action   string  `json:"action"`
	SensorId string  `json:"sensorId"`
	Sensor   *Sensor `json:"sensor,omitempty"`
}

func (e SensorChangedEvent) String() string {
	return fmt.Sprintf("sensor %s %s", e.SensorId, e.Action)
}
