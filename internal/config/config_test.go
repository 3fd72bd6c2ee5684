package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckMQTTTopic(t *testing.T) {

	assert := assert.New(t)

	topic, err := CheckMQTTTopic("LowCarbon_1")
	assert.NoError(err)
	assert.Equal("lowcarbon_1", topic)

	_, err = CheckMQTTTopic("low/carbon")
	assert.Error(err)
}

func TestCheckRESTBaseURL(t *testing.T) {

	assert := assert.New(t)

	u, err := CheckRESTBaseURL("http://localhost:3000/api/")
	assert.NoError(err)
	assert.Equal("http://localhost:3000/api", u)

	_, err = CheckRESTBaseURL("localhost:3000")
	assert.Error(err)
	_, err = CheckRESTBaseURL("ftp://localhost/api")
	assert.Error(err)
}

func TestLoadDefaults(t *testing.T) {

	require := require.New(t)

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("LOWCARBON_PORT", "")

	cfg, err := Load()
	require.NoError(err)
	require.Equal("http://localhost:3000/api", cfg.REST.BaseURL)
	require.EqualValues(10000, cfg.REST.TimeoutMillis)
	require.EqualValues(8080, cfg.Port)
	require.Equal("lowcarbon", cfg.MQTT.BaseTopic)
	require.False(cfg.MQTT.Enable)
	require.Equal(zap.WarnLevel, cfg.LogLevel)
}

func TestLoadFromEnvAndFile(t *testing.T) {

	require := require.New(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(file, []byte(`
log_level: debug
rest:
  base_url: http://composer:3000/api/
mqtt:
  enable: true
  host: broker
  base_topic: Fleet
`), 0o600)
	require.NoError(err)

	t.Setenv("CONFIG_FILE", file)
	t.Setenv("LOWCARBON_PORT", "")
	t.Setenv("PORT", "9090")
	t.Setenv("LOWCARBON_REST_TIMEOUT_MILLIS", "2500")

	cfg, err := Load()
	require.NoError(err)
	require.Equal("http://composer:3000/api", cfg.REST.BaseURL)
	require.EqualValues(2500, cfg.REST.TimeoutMillis)
	require.EqualValues(9090, cfg.Port)
	require.True(cfg.MQTT.Enable)
	require.Equal("broker", cfg.MQTT.Host)
	require.Equal("fleet", cfg.MQTT.BaseTopic)
	require.Equal(zap.DebugLevel, cfg.LogLevel)
}

func TestValidateBounds(t *testing.T) {

	assert := assert.New(t)

	valid := func() Config {
		return Config{
			REST:    RESTConfig{BaseURL: "http://localhost:3000/api", TimeoutMillis: 1000},
			MQTT:    MQTTConfig{BaseTopic: "lowcarbon"},
			Refresh: RefreshConfig{IntervalMillis: 0},
		}
	}

	cfg := valid()
	assert.NoError(Validate(&cfg))

	cfg = valid()
	cfg.REST.TimeoutMillis = 10
	assert.Error(Validate(&cfg))

	cfg = valid()
	cfg.Refresh.IntervalMillis = 500
	assert.Error(Validate(&cfg))

	cfg = valid()
	cfg.MQTT.Enable = true
	assert.Error(Validate(&cfg), "mqtt host required")
}

func TestRedacted(t *testing.T) {
	cfg := Config{MQTT: MQTTConfig{Username: "u", Password: "p"}, REST: RESTConfig{AccessToken: "t"}}
	r := Redacted(cfg)
	assert.Equal(t, "*redacted*", r.MQTT.Password)
	assert.Equal(t, "*redacted*", r.REST.AccessToken)
	assert.Equal(t, "p", cfg.MQTT.Password)
}
