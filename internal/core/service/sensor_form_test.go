package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSensorService struct {
	assets    []domain.Sensor
	asset     *domain.Sensor
	err       error
	getAllErr error

	getAllCalls int
	added       []domain.NewSensor
	updatedId   string
	updated     *domain.SensorUpdate
	deletedId   string
	gotId       string
}

func (f *fakeSensorService) GetAll(_ context.Context) ([]domain.Sensor, error) {
	f.getAllCalls++
	if f.getAllErr != nil {
		return nil, f.getAllErr
	}
	return f.assets, nil
}

func (f *fakeSensorService) GetAsset(_ context.Context, id string) (*domain.Sensor, error) {
	f.gotId = id
	if f.err != nil {
		return nil, f.err
	}
	return f.asset, nil
}

func (f *fakeSensorService) AddAsset(_ context.Context, sensor domain.NewSensor) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, sensor)
	return nil
}

func (f *fakeSensorService) UpdateAsset(_ context.Context, id string, sensor domain.SensorUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.updatedId = id
	f.updated = &sensor
	return nil
}

func (f *fakeSensorService) DeleteAsset(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deletedId = id
	return nil
}

var _ port.SensorService = (*fakeSensorService)(nil)

type recordingPublisher struct {
	events []any
}

func (p *recordingPublisher) Publish(event any) {
	p.events = append(p.events, event)
}

func ptr(s string) *string {
	return &s
}

func newController(srv *fakeSensorService) (*SensorFormController, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewSensorFormController(srv, pub, zap.NewNop()), pub
}

func fullFormValues() map[string]any {
	return map[string]any{
		domain.FIELD_SENSOR_ID:      "S1",
		domain.FIELD_VEHICLE_ID:     "V1",
		domain.FIELD_CERTIFICADO_ID: "C1",
		domain.FIELD_COMPANY_ID:     "CO1",
		domain.FIELD_CONTRACT_ID:    "K1",
		domain.FIELD_DATA_SENSOR:    "42.1",
		domain.FIELD_STATUS:         "ACTIVE",
	}
}

func allNil() map[string]any {
	values := map[string]any{}
	for _, name := range domain.SensorFields {
		values[name] = nil
	}
	return values
}

func TestLoadAllKeepsServiceOrder(t *testing.T) {

	require := require.New(t)

	srv := &fakeSensorService{assets: []domain.Sensor{
		{Class: domain.SensorClass, SensorId: "3"},
		{Class: domain.SensorClass, SensorId: "1"},
		{Class: domain.SensorClass, SensorId: "2"},
	}}
	ctrl, _ := newController(srv)
	ctrl.errorMessage = "stale"

	ctrl.LoadAll(context.Background())

	require.Len(ctrl.Assets(), 3)
	require.Equal([]string{"3", "1", "2"}, []string{ctrl.Assets()[0].SensorId, ctrl.Assets()[1].SensorId, ctrl.Assets()[2].SensorId})
	require.Empty(ctrl.ErrorMessage())
}

func TestLoadAllFailureKeepsPreviousList(t *testing.T) {

	assert := assert.New(t)

	srv := &fakeSensorService{assets: []domain.Sensor{{SensorId: "1"}}}
	ctrl, _ := newController(srv)
	ctrl.LoadAll(context.Background())

	srv.getAllErr = errors.New(domain.ERR_SERVER_ERROR)
	ctrl.LoadAll(context.Background())
	assert.Equal(domain.MSG_SERVER_ERROR, ctrl.ErrorMessage())
	assert.Len(ctrl.Assets(), 1)

	srv.getAllErr = errors.New(domain.ERR_NOT_FOUND)
	ctrl.LoadAll(context.Background())
	assert.Equal(domain.MSG_NOT_FOUND, ctrl.ErrorMessage())

	srv.getAllErr = errors.New("500 - Internal Server Error")
	ctrl.LoadAll(context.Background())
	assert.Equal("500 - Internal Server Error", ctrl.ErrorMessage())
}

func TestServerErrorOnMutations(t *testing.T) {

	ops := map[string]func(*SensorFormController){
		"add":    func(c *SensorFormController) { c.AddAsset(context.Background()) },
		"update": func(c *SensorFormController) { c.UpdateAsset(context.Background()) },
		"delete": func(c *SensorFormController) { c.DeleteAsset(context.Background()) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			srv := &fakeSensorService{err: domain.ErrServerError}
			ctrl, pub := newController(srv)
			op(ctrl)
			assert.Equal(t, domain.MSG_SERVER_ERROR, ctrl.ErrorMessage())
			assert.Empty(t, pub.events)
			assert.Equal(t, 0, srv.getAllCalls, "no reload after a failure")
		})
	}
}

func TestNotFoundMapping(t *testing.T) {

	assert := assert.New(t)

	srv := &fakeSensorService{err: domain.ErrNotFound}
	ctrl, _ := newController(srv)

	ctrl.UpdateAsset(context.Background())
	assert.Equal(domain.MSG_NOT_FOUND, ctrl.ErrorMessage())

	ctrl.errorMessage = ""
	ctrl.GetForm(context.Background(), "S1")
	assert.Equal(domain.MSG_NOT_FOUND, ctrl.ErrorMessage())

	ctrl.errorMessage = ""
	ctrl.DeleteAsset(context.Background())
	assert.Equal(domain.MSG_NOT_FOUND, ctrl.ErrorMessage())

	// creation targets no id, the text is kept as is
	ctrl.AddAsset(context.Background())
	assert.Equal(domain.ERR_NOT_FOUND, ctrl.ErrorMessage())
}

func TestRawErrorsAreKept(t *testing.T) {

	raw := "422 - Unprocessable Entity"
	ops := map[string]func(*SensorFormController){
		"load":   func(c *SensorFormController) { c.LoadAll(context.Background()) },
		"add":    func(c *SensorFormController) { c.AddAsset(context.Background()) },
		"update": func(c *SensorFormController) { c.UpdateAsset(context.Background()) },
		"delete": func(c *SensorFormController) { c.DeleteAsset(context.Background()) },
		"get":    func(c *SensorFormController) { c.GetForm(context.Background(), "x") },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			srv := &fakeSensorService{err: errors.New(raw), getAllErr: errors.New(raw)}
			ctrl, _ := newController(srv)
			op(ctrl)
			assert.Equal(t, raw, ctrl.ErrorMessage())
		})
	}
}

func TestAddAssetClearsFormAndReloads(t *testing.T) {

	require := require.New(t)

	srv := &fakeSensorService{assets: []domain.Sensor{{SensorId: "S1"}}}
	ctrl, pub := newController(srv)
	ctrl.PatchForm(fullFormValues())

	ctrl.AddAsset(context.Background())

	require.Len(srv.added, 1)
	require.Equal(domain.NewSensor{
		Class:    domain.SensorClass,
		SensorId: ptr("S1"),
		SensorAttributes: domain.SensorAttributes{
			VehicleId:     ptr("V1"),
			CertificadoId: ptr("C1"),
			CompanyId:     ptr("CO1"),
			ContractId:    ptr("K1"),
			DataSensor:    ptr("42.1"),
			Status:        ptr("ACTIVE"),
		},
	}, srv.added[0])
	require.Equal(allNil(), ctrl.Form().Value())
	require.Equal(1, srv.getAllCalls)
	require.Len(ctrl.Assets(), 1)
	require.Empty(ctrl.ErrorMessage())

	require.Len(pub.events, 1)
	ev := pub.events[0].(domain.SensorChangedEvent)
	require.Equal(domain.SENSOR_ACTION_CREATED, ev.Action)
	require.Equal("S1", ev.SensorId)
}

func TestAddAssetFailureStillClearsForm(t *testing.T) {

	srv := &fakeSensorService{err: errors.New("boom")}
	ctrl, _ := newController(srv)
	ctrl.PatchForm(fullFormValues())

	ctrl.AddAsset(context.Background())

	assert.Equal(t, allNil(), ctrl.Form().Value())
	assert.Equal(t, "boom", ctrl.ErrorMessage())
}

func TestUpdateAssetOmitsIdentifier(t *testing.T) {

	require := require.New(t)

	srv := &fakeSensorService{}
	ctrl, pub := newController(srv)
	ctrl.PatchForm(fullFormValues())

	ctrl.UpdateAsset(context.Background())

	require.Equal("S1", srv.updatedId)
	require.NotNil(srv.updated)
	body, err := json.Marshal(srv.updated)
	require.NoError(err)
	require.NotContains(string(body), "sensorId")
	require.Equal(domain.SensorClass, srv.updated.Class)
	require.Equal(ptr("V1"), srv.updated.VehicleId)
	require.Equal(1, srv.getAllCalls)
	// update leaves the form as it was
	require.Equal("S1", ctrl.Form().Value()[domain.FIELD_SENSOR_ID])

	require.Len(pub.events, 1)
	ev := pub.events[0].(domain.SensorChangedEvent)
	require.Equal(domain.SENSOR_ACTION_UPDATED, ev.Action)
	require.Equal("S1", ev.Sensor.SensorId)
}

func TestDeleteAssetUsesCurrentId(t *testing.T) {

	require := require.New(t)

	srv := &fakeSensorService{}
	ctrl, pub := newController(srv)
	ctrl.SetId("S9")
	require.Equal("S9", ctrl.CurrentId())

	ctrl.DeleteAsset(context.Background())

	require.Equal("S9", srv.deletedId)
	require.Equal(1, srv.getAllCalls)
	require.Len(pub.events, 1)
	require.Nil(pub.events[0].(domain.SensorChangedEvent).Sensor)
}

func TestGetFormNullsEmptyFields(t *testing.T) {

	require := require.New(t)

	srv := &fakeSensorService{asset: &domain.Sensor{
		Class:         domain.SensorClass,
		SensorId:      "S1",
		VehicleId:     "V1",
		CertificadoId: "C1",
		CompanyId:     "",
		ContractId:    "K1",
		DataSensor:    "1.5",
		Status:        "ACTIVE",
	}}
	ctrl, _ := newController(srv)
	ctrl.errorMessage = "stale"

	ctrl.GetForm(context.Background(), "S1")

	require.Equal("S1", srv.gotId)
	values := ctrl.Form().Value()
	require.Nil(values[domain.FIELD_COMPANY_ID])
	require.Equal("S1", values[domain.FIELD_SENSOR_ID])
	require.Equal("V1", values[domain.FIELD_VEHICLE_ID])
	require.Equal("C1", values[domain.FIELD_CERTIFICADO_ID])
	require.Equal("K1", values[domain.FIELD_CONTRACT_ID])
	require.Equal("1.5", values[domain.FIELD_DATA_SENSOR])
	require.Equal("ACTIVE", values[domain.FIELD_STATUS])
	require.Empty(ctrl.ErrorMessage())
	require.False(ctrl.View().Valid)
}

func TestResetForm(t *testing.T) {

	ctrl, _ := newController(&fakeSensorService{})
	ctrl.PatchForm(fullFormValues())
	require.True(t, ctrl.View().Valid)

	ctrl.ResetForm()

	assert.Equal(t, allNil(), ctrl.Form().Value())
}

func TestChangeArrayValueTwiceLeavesEmpty(t *testing.T) {

	require := require.New(t)

	ctrl, _ := newController(&fakeSensorService{})

	require.NoError(ctrl.ChangeArrayValue(domain.FIELD_STATUS, "X"))
	present, err := ctrl.HasArrayValue(domain.FIELD_STATUS, "X")
	require.NoError(err)
	require.True(present)
	require.Equal([]string{"X"}, ctrl.Form().Value()[domain.FIELD_STATUS])

	require.NoError(ctrl.ChangeArrayValue(domain.FIELD_STATUS, "X"))
	present, err = ctrl.HasArrayValue(domain.FIELD_STATUS, "X")
	require.NoError(err)
	require.False(present)
	require.Empty(ctrl.Form().Value()[domain.FIELD_STATUS])
}

func TestChangeArrayValueKeepsOtherValues(t *testing.T) {

	require := require.New(t)

	ctrl, _ := newController(&fakeSensorService{})
	require.NoError(ctrl.ChangeArrayValue(domain.FIELD_STATUS, "A"))
	require.NoError(ctrl.ChangeArrayValue(domain.FIELD_STATUS, "B"))
	require.NoError(ctrl.ChangeArrayValue(domain.FIELD_STATUS, "A"))
	require.Equal([]string{"B"}, ctrl.Form().Value()[domain.FIELD_STATUS])

	require.Error(ctrl.ChangeArrayValue("unknown", "A"))
	_, err := ctrl.HasArrayValue("unknown", "A")
	require.Error(err)
}

func TestViewIsACopy(t *testing.T) {

	srv := &fakeSensorService{assets: []domain.Sensor{{SensorId: "1"}}}
	ctrl, _ := newController(srv)
	ctrl.LoadAll(context.Background())

	view := ctrl.View()
	view.Assets[0].SensorId = "changed"

	assert.Equal(t, "1", ctrl.Assets()[0].SensorId)
}

func TestAddAssetSendsNullForEmptyControls(t *testing.T) {

	require := require.New(t)

	srv := &fakeSensorService{}
	ctrl, pub := newController(srv)
	ctrl.PatchForm(map[string]any{domain.FIELD_STATUS: "ACTIVE"})

	ctrl.AddAsset(context.Background())

	require.Len(srv.added, 1)
	body, err := json.Marshal(srv.added[0])
	require.NoError(err)
	require.JSONEq(`{
		"$class": "org.proyecto.lowcarbon.Sensor",
		"sensorId": null,
		"vehicleId": null,
		"certificadoId": null,
		"companyId": null,
		"contractId": null,
		"dataSensor": null,
		"status": "ACTIVE"
	}`, string(body))

	// the event carries the read model
	ev := pub.events[0].(domain.SensorChangedEvent)
	require.Equal("ACTIVE", ev.Sensor.Status)
	require.Empty(ev.Sensor.VehicleId)
}

func TestGetFormWithoutAsset(t *testing.T) {

	srv := &fakeSensorService{}
	ctrl, _ := newController(srv)
	ctrl.PatchForm(fullFormValues())

	require.NotPanics(t, func() {
		ctrl.GetForm(context.Background(), "S1")
	})
	assert.Equal(t, errNoAsset.Error(), ctrl.ErrorMessage())
	assert.Equal(t, "S1", ctrl.Form().Value()[domain.FIELD_SENSOR_ID])
}
