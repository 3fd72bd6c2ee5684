package util

import (
	"github.com/berfenger/lowcarbon-sensors/internal/config"

	"go.uber.org/zap"
)

// LoadTestConfig returns a configuration pointing at a REST server that is never
// reachable and with MQTT disabled.
func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		REST: config.RESTConfig{
			BaseURL:       "http://127.0.0.1:1/api",
			TimeoutMillis: 1000,
		},
		MQTT: config.MQTTConfig{
			Enable:    false,
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "lowcarbon_test",
		},
		Refresh: config.RefreshConfig{
			IntervalMillis: 0,
		},
		Port: 8080,
	}
}
