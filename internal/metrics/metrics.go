package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/core/port"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "lowcarbon_"

	resultSuccess  = "success"
	resultError    = "error"
	resultNotFound = "not_found"
)

var (
	registerOnce sync.Once

	restRequests *prometheus.CounterVec
	restLatency  *prometheus.HistogramVec
	sensorEvents *prometheus.CounterVec
)

// Init registers the sensor metrics with the default registry. It may be called
// more than once.
func Init() {
	registerOnce.Do(func() {
		restRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rest_requests_total",
				Help: "Total REST backend calls by operation and result",
			},
			[]string{"operation", "result"},
		)
		restLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "rest_latency_seconds",
				Help:    "REST backend call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)
		sensorEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sensor_events_total",
				Help: "Total sensor change events by action",
			},
			[]string{"action"},
		)

		prometheus.MustRegister(
			restRequests,
			restLatency,
			sensorEvents,
		)
	})
}

// ObserveREST records one backend call.
func ObserveREST(operation string, err error, duration time.Duration) {
	if restRequests == nil {
		return
	}
	restRequests.WithLabelValues(operation, resultLabel(err)).Inc()
	restLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveSensorEvent counts SensorChangedEvent values; anything else is ignored.
func ObserveSensorEvent(event any) {
	if sensorEvents == nil {
		return
	}
	if ev, ok := event.(domain.SensorChangedEvent); ok {
		sensorEvents.WithLabelValues(ev.Action).Inc()
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case err.Error() == domain.ERR_NOT_FOUND:
		return resultNotFound
	default:
		return resultError
	}
}

// InstrumentedSensorService wraps a SensorService and records every call.
type InstrumentedSensorService struct {
	next port.SensorService
}

func NewInstrumentedSensorService(next port.SensorService) *InstrumentedSensorService {
	Init()
	return &InstrumentedSensorService{next: next}
}

func (s *InstrumentedSensorService) GetAll(ctx context.Context) ([]domain.Sensor, error) {
	start := time.Now()
	result, err := s.next.GetAll(ctx)
	ObserveREST("get_all", err, time.Since(start))
	return result, err
}

func (s *InstrumentedSensorService) GetAsset(ctx context.Context, id string) (*domain.Sensor, error) {
	start := time.Now()
	result, err := s.next.GetAsset(ctx, id)
	ObserveREST("get", err, time.Since(start))
	return result, err
}

func (s *InstrumentedSensorService) AddAsset(ctx context.Context, asset domain.NewSensor) error {
	start := time.Now()
	err := s.next.AddAsset(ctx, asset)
	ObserveREST("add", err, time.Since(start))
	return err
}

func (s *InstrumentedSensorService) UpdateAsset(ctx context.Context, id string, asset domain.SensorUpdate) error {
	start := time.Now()
	err := s.next.UpdateAsset(ctx, id, asset)
	ObserveREST("update", err, time.Since(start))
	return err
}

func (s *InstrumentedSensorService) DeleteAsset(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeleteAsset(ctx, id)
	ObserveREST("delete", err, time.Since(start))
	return err
}
