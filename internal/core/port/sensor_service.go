package port

import (
	"context"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
)

// SensorService is the data-access service for Sensor assets. Failures are
// reported as errors whose text is part of the contract ("Server error",
// "404 - Not Found" or a raw message).
type SensorService interface {
	GetAll(ctx context.Context) ([]domain.Sensor, error)
	GetAsset(ctx context.Context, id string) (*domain.Sensor, error)
	AddAsset(ctx context.Context, sensor domain.NewSensor) error
	UpdateAsset(ctx context.Context, id string, sensor domain.SensorUpdate) error
	DeleteAsset(ctx context.Context, id string) error
}

// EventPublisher receives domain events. *eventstream.EventStream satisfies it.
type EventPublisher interface {
	Publish(event any)
}
