package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	method string
	uri    string
	body   map[string]any
	token  string
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			uri:    r.URL.RequestURI(),
			token:  r.Header.Get("X-Access-Token"),
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		requests = append(requests, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(t *testing.T, baseURL string) *Client {
	c, err := NewClient(baseURL+"/api/", "secret", 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestGetAll(t *testing.T) {

	require := require.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `[
		{"$class":"org.proyecto.lowcarbon.Sensor","sensorId":"S1","vehicleId":"V1","certificadoId":"C1","companyId":"CO1","contractId":"K1","dataSensor":"1","status":"ON"},
		{"$class":"org.proyecto.lowcarbon.Sensor","sensorId":"S2","vehicleId":"V2","certificadoId":"C2","companyId":"CO2","contractId":"K2","dataSensor":"2","status":"OFF"}
	]`)
	c := newTestClient(t, srv.URL)

	sensors, err := c.GetAll(context.Background())
	require.NoError(err)
	require.Len(sensors, 2)
	require.Equal("S1", sensors[0].SensorId)
	require.Equal("OFF", sensors[1].Status)
	require.Equal(domain.SensorClass, sensors[1].Class)

	require.Len(*reqs, 1)
	require.Equal(http.MethodGet, (*reqs)[0].method)
	require.Equal("/api/Sensor", (*reqs)[0].uri)
	require.Equal("secret", (*reqs)[0].token)
}

func TestGetAssetResolved(t *testing.T) {

	require := require.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{"$class":"org.proyecto.lowcarbon.Sensor","sensorId":"S 1","vehicleId":"V1"}`)
	c := newTestClient(t, srv.URL)

	sensor, err := c.GetAsset(context.Background(), "S 1")
	require.NoError(err)
	require.Equal("S 1", sensor.SensorId)
	require.Equal("", sensor.CompanyId)
	require.Equal("/api/Sensor/S%201?resolved=true", (*reqs)[0].uri)
}

func TestAddAssetBody(t *testing.T) {

	require := require.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	sensorId, status := "S1", "ON"
	err := c.AddAsset(context.Background(), domain.NewSensor{
		Class:    domain.SensorClass,
		SensorId: &sensorId,
		SensorAttributes: domain.SensorAttributes{
			Status: &status,
		},
	})
	require.NoError(err)

	req := (*reqs)[0]
	require.Equal(http.MethodPost, req.method)
	require.Equal("/api/Sensor", req.uri)
	require.Equal(domain.SensorClass, req.body["$class"])
	require.Equal("S1", req.body["sensorId"])
	require.Equal("ON", req.body["status"])
	// unset attributes travel as null
	require.Contains(req.body, "vehicleId")
	require.Nil(req.body["vehicleId"])
}

func TestUpdateAssetOmitsSensorId(t *testing.T) {

	require := require.New(t)

	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	vehicleId := "V2"
	err := c.UpdateAsset(context.Background(), "S1", domain.SensorUpdate{
		Class:            domain.SensorClass,
		SensorAttributes: domain.SensorAttributes{VehicleId: &vehicleId},
	})
	require.NoError(err)

	req := (*reqs)[0]
	require.Equal(http.MethodPut, req.method)
	require.Equal("/api/Sensor/S1", req.uri)
	require.NotContains(req.body, "sensorId")
	require.Equal("V2", req.body["vehicleId"])
}

func TestDeleteAsset(t *testing.T) {

	srv, reqs := newTestServer(t, http.StatusNoContent, ``)
	c := newTestClient(t, srv.URL)

	require.NoError(t, c.DeleteAsset(context.Background(), "S1"))
	assert.Equal(t, http.MethodDelete, (*reqs)[0].method)
	assert.Equal(t, "/api/Sensor/S1", (*reqs)[0].uri)
}

func TestErrorTexts(t *testing.T) {

	assert := assert.New(t)

	srv, _ := newTestServer(t, http.StatusNotFound, `{"error":{"statusCode":404}}`)
	c := newTestClient(t, srv.URL)
	_, err := c.GetAll(context.Background())
	assert.EqualError(err, domain.ERR_NOT_FOUND)

	srv, _ = newTestServer(t, http.StatusInternalServerError, `{}`)
	c = newTestClient(t, srv.URL)
	err = c.DeleteAsset(context.Background(), "S1")
	assert.EqualError(err, "500 - Internal Server Error")

	// nothing listens on a closed server
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	c = newTestClient(t, closed.URL)
	_, err = c.GetAsset(context.Background(), "S1")
	assert.EqualError(err, domain.ERR_SERVER_ERROR)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("", "", time.Second, zap.NewNop())
	assert.Error(t, err)
}
