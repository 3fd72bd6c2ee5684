package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mu      sync.Mutex
	sensors []domain.Sensor
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/Sensor":
		_ = json.NewEncoder(w).Encode(b.sensors)
	case r.Method == http.MethodPost && r.URL.Path == "/api/Sensor":
		var s domain.Sensor
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.sensors = append(b.sensors, s)
		_ = json.NewEncoder(w).Encode(s)
	case r.Method == http.MethodGet && r.URL.Path == "/api/Sensor/S1":
		_ = json.NewEncoder(w).Encode(b.sensors[0])
	default:
		http.NotFound(w, r)
	}
}

func runCmd(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSensorctl(t *testing.T) {
	b := &backend{sensors: []domain.Sensor{{
		Class:     domain.SensorClass,
		SensorId:  "S1",
		VehicleId: "V1",
		Status:    "on",
	}}}
	srv := httptest.NewServer(b)
	defer srv.Close()

	base := []string{"--base-url", srv.URL + "/api", "--timeout-millis", "1000"}

	t.Run("list", func(t *testing.T) {
		out, err := runCmd(append([]string{"list"}, base...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "sensorId")
		assert.Contains(t, out, "S1")
		assert.Contains(t, out, "V1")
	})

	t.Run("get", func(t *testing.T) {
		out, err := runCmd(append([]string{"get", "S1"}, base...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "vehicleId: V1")
	})

	t.Run("add", func(t *testing.T) {
		out, err := runCmd(append([]string{"add", "--sensorId", "S2", "--status", "off"}, base...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "sensor S2 created")
		assert.Contains(t, out, "S2")
	})

	t.Run("add requires an id", func(t *testing.T) {
		_, err := runCmd(append([]string{"add", "--status", "off"}, base...)...)
		assert.EqualError(t, err, "required flag --sensorId not set")
	})

	t.Run("delete unknown route", func(t *testing.T) {
		_, err := runCmd(append([]string{"delete", "nope"}, base...)...)
		assert.EqualError(t, err, domain.MSG_NOT_FOUND)
	})

	t.Run("update unknown sensor", func(t *testing.T) {
		_, err := runCmd(append([]string{"update", "nope", "--status", "x"}, base...)...)
		assert.EqualError(t, err, domain.MSG_NOT_FOUND)
	})
}

func TestSensorctlServerUnreachable(t *testing.T) {
	_, err := runCmd("list", "--base-url", "http://127.0.0.1:1/api", "--timeout-millis", "500")
	assert.EqualError(t, err, domain.MSG_SERVER_ERROR)
}

func TestSensorctlInvalidBaseURL(t *testing.T) {
	_, err := runCmd("list", "--base-url", "localhost:3000", "--timeout-millis", "500")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCmd("version")
	require.NoError(t, err)
	assert.Contains(t, out, "sensorctl")
}
