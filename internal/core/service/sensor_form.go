package service

import (
	"context"
	"errors"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/core/form"
	"github.com/berfenger/lowcarbon-sensors/internal/core/port"

	"go.uber.org/zap"
)

var errNoAsset = errors.New("no asset returned")

// SensorFormController owns the Sensor form and turns service results into view
// state. It is not safe for concurrent use; callers serialise operations.
type SensorFormController struct {
	service   port.SensorService
	publisher port.EventPublisher
	logger    *zap.Logger

	form          *form.Group
	sensorId      *form.Control
	vehicleId     *form.Control
	certificadoId *form.Control
	companyId     *form.Control
	contractId    *form.Control
	dataSensor    *form.Control
	status        *form.Control

	allAssets    []domain.Sensor
	currentId    string
	errorMessage string
}

// NewSensorFormController builds the form with one required control per Sensor
// attribute. publisher may be nil.
func NewSensorFormController(service port.SensorService, publisher port.EventPublisher, logger *zap.Logger) *SensorFormController {
	c := &SensorFormController{
		service:       service,
		publisher:     publisher,
		logger:        logger,
		sensorId:      form.NewControl(domain.FIELD_SENSOR_ID, "", form.Required),
		vehicleId:     form.NewControl(domain.FIELD_VEHICLE_ID, "", form.Required),
		certificadoId: form.NewControl(domain.FIELD_CERTIFICADO_ID, "", form.Required),
		companyId:     form.NewControl(domain.FIELD_COMPANY_ID, "", form.Required),
		contractId:    form.NewControl(domain.FIELD_CONTRACT_ID, "", form.Required),
		dataSensor:    form.NewControl(domain.FIELD_DATA_SENSOR, "", form.Required),
		status:        form.NewControl(domain.FIELD_STATUS, "", form.Required),
	}
	c.form = form.NewGroup(
		c.sensorId,
		c.vehicleId,
		c.certificadoId,
		c.companyId,
		c.contractId,
		c.dataSensor,
		c.status,
	)
	return c
}

// LoadAll replaces the asset list with the one returned by the service.
func (c *SensorFormController) LoadAll(ctx context.Context) {
	result, err := c.service.GetAll(ctx)
	if err != nil {
		c.fail("load_all", err, true)
		return
	}
	c.errorMessage = ""
	tempList := make([]domain.Sensor, 0, len(result))
	tempList = append(tempList, result...)
	c.allAssets = tempList
}

// AddAsset creates an asset from the current form values. The form is cleared
// before the request is sent and again once it succeeds.
func (c *SensorFormController) AddAsset(ctx context.Context) {
	asset := domain.NewSensor{
		Class:            domain.SensorClass,
		SensorId:         c.sensorId.Pointer(),
		SensorAttributes: c.attributes(),
	}

	c.form.Reset()

	if err := c.service.AddAsset(ctx, asset); err != nil {
		c.fail("add", err, false)
		return
	}
	c.errorMessage = ""
	c.form.Reset()
	created := asset.Sensor()
	c.publish(domain.SensorChangedEvent{
		Action:   domain.SENSOR_ACTION_CREATED,
		SensorId: created.SensorId,
		Sensor:   &created,
	})
	c.LoadAll(ctx)
}

// UpdateAsset sends the form values, without the identifier, to the asset named
// by the sensorId control.
func (c *SensorFormController) UpdateAsset(ctx context.Context) {
	asset := domain.SensorUpdate{
		Class:            domain.SensorClass,
		SensorAttributes: c.attributes(),
	}

	id := c.sensorId.String()
	if err := c.service.UpdateAsset(ctx, id, asset); err != nil {
		c.fail("update", err, true)
		return
	}
	c.errorMessage = ""
	updated := asset.Sensor(id)
	c.publish(domain.SensorChangedEvent{
		Action:   domain.SENSOR_ACTION_UPDATED,
		SensorId: id,
		Sensor:   &updated,
	})
	c.LoadAll(ctx)
}

// DeleteAsset deletes the asset selected with SetId.
func (c *SensorFormController) DeleteAsset(ctx context.Context) {
	id := c.currentId
	if err := c.service.DeleteAsset(ctx, id); err != nil {
		c.fail("delete", err, true)
		return
	}
	c.errorMessage = ""
	c.publish(domain.SensorChangedEvent{
		Action:   domain.SENSOR_ACTION_DELETED,
		SensorId: id,
	})
	c.LoadAll(ctx)
}

func (c *SensorFormController) SetId(id string) {
	c.currentId = id
}

// GetForm fetches one asset and copies it into the form. Empty attributes
// become nil.
func (c *SensorFormController) GetForm(ctx context.Context, id string) {
	result, err := c.service.GetAsset(ctx, id)
	if err != nil {
		c.fail("get", err, true)
		return
	}
	if result == nil {
		c.fail("get", errNoAsset, true)
		return
	}
	c.errorMessage = ""

	formObject := make(map[string]any, len(domain.SensorFields))
	for _, name := range domain.SensorFields {
		formObject[name] = nil
		if value, _ := result.Field(name); value != "" {
			formObject[name] = value
		}
	}
	if err := c.form.SetValue(formObject); err != nil {
		// the field list and the form are built from the same names
		c.logger.Error("sensor_form: set form value", zap.Error(err))
	}
}

func (c *SensorFormController) ResetForm() {
	c.form.Reset()
}

// PatchForm updates the given fields, ignoring unknown names.
func (c *SensorFormController) PatchForm(values map[string]any) {
	c.form.PatchValue(values)
}

// ChangeArrayValue toggles value in the multi-valued field name.
func (c *SensorFormController) ChangeArrayValue(name string, value string) error {
	control, err := c.form.Get(name)
	if err != nil {
		return err
	}
	current := control.Strings()
	next := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == value && !found {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}
	control.SetValue(next)
	return nil
}

// HasArrayValue reports whether the multi-valued field name contains value.
func (c *SensorFormController) HasArrayValue(name string, value string) (bool, error) {
	control, err := c.form.Get(name)
	if err != nil {
		return false, err
	}
	for _, v := range control.Strings() {
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

func (c *SensorFormController) Form() *form.Group {
	return c.form
}

func (c *SensorFormController) Assets() []domain.Sensor {
	return c.allAssets
}

func (c *SensorFormController) ErrorMessage() string {
	return c.errorMessage
}

func (c *SensorFormController) CurrentId() string {
	return c.currentId
}

// View returns a copy of the controller state.
func (c *SensorFormController) View() domain.SensorView {
	assets := make([]domain.Sensor, len(c.allAssets))
	copy(assets, c.allAssets)
	return domain.SensorView{
		Assets:       assets,
		Form:         c.form.Value(),
		ErrorMessage: c.errorMessage,
		CurrentId:    c.currentId,
		Valid:        c.form.Valid(),
	}
}

func (c *SensorFormController) attributes() domain.SensorAttributes {
	return domain.SensorAttributes{
		VehicleId:     c.vehicleId.Pointer(),
		CertificadoId: c.certificadoId.Pointer(),
		CompanyId:     c.companyId.Pointer(),
		ContractId:    c.contractId.Pointer(),
		DataSensor:    c.dataSensor.Pointer(),
		Status:        c.status.Pointer(),
	}
}

// fail stores the user-facing message for err. The not-found mapping does not
// apply to creation, which targets no id.
func (c *SensorFormController) fail(op string, err error, mapNotFound bool) {
	switch msg := err.Error(); {
	case msg == domain.ERR_SERVER_ERROR:
		c.errorMessage = domain.MSG_SERVER_ERROR
	case mapNotFound && msg == domain.ERR_NOT_FOUND:
		c.errorMessage = domain.MSG_NOT_FOUND
	default:
		c.errorMessage = msg
	}
	c.logger.Debug("sensor_form: operation failed", zap.String("op", op), zap.Error(err))
}

func (c *SensorFormController) publish(event domain.SensorChangedEvent) {
	if c.publisher != nil {
		c.publisher.Publish(event)
	}
}
