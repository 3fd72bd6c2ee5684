package domain

// SensorClass is the schema identifier the asset network expects in the `$class` field.
const SensorClass = "org.proyecto.lowcarbon.Sensor"

// SensorNamespace is the REST resource name of Sensor assets.
const SensorNamespace = "Sensor"

const (
	FIELD_SENSOR_ID      = "sensorId"
	FIELD_VEHICLE_ID     = "vehicleId"
	FIELD_CERTIFICADO_ID = "certificadoId"
	FIELD_COMPANY_ID     = "companyId"
	FIELD_CONTRACT_ID    = "contractId"
	FIELD_DATA_SENSOR    = "dataSensor"
	FIELD_STATUS         = "status"
)

// SensorFields lists the form fields in display order.
var SensorFields = []string{
	FIELD_SENSOR_ID,
	FIELD_VEHICLE_ID,
	FIELD_CERTIFICADO_ID,
	FIELD_COMPANY_ID,
	FIELD_CONTRACT_ID,
	FIELD_DATA_SENSOR,
	FIELD_STATUS,
}

// Sensor is a Sensor asset as returned by the backend.
type Sensor struct {
	Class         string `json:"$class"`
	SensorId      string `json:"sensorId"`
	VehicleId     string `json:"vehicleId"`
	CertificadoId string `json:"certificadoId"`
	CompanyId     string `json:"companyId"`
	ContractId    string `json:"contractId"`
	DataSensor    string `json:"dataSensor"`
	Status        string `json:"status"`
}

// Field returns the value of the named attribute.
func (s Sensor) Field(name string) (string, bool) {
	switch name {
	case FIELD_SENSOR_ID:
		return s.SensorId, true
	case FIELD_VEHICLE_ID:
		return s.VehicleId, true
	case FIELD_CERTIFICADO_ID:
		return s.CertificadoId, true
	case FIELD_COMPANY_ID:
		return s.CompanyId, true
	case FIELD_CONTRACT_ID:
		return s.ContractId, true
	case FIELD_DATA_SENSOR:
		return s.DataSensor, true
	case FIELD_STATUS:
		return s.Status, true
	}
	return "", false
}

// SensorAttributes are the writable attributes of a Sensor. A nil attribute is
// sent as JSON null.
type SensorAttributes struct {
	VehicleId     *string `json:"vehicleId"`
	CertificadoId *string `json:"certificadoId"`
	CompanyId     *string `json:"companyId"`
	ContractId    *string `json:"contractId"`
	DataSensor    *string `json:"dataSensor"`
	Status        *string `json:"status"`
}

// NewSensor is the body of a creation request.
type NewSensor struct {
	Class    string  `json:"$class"`
	SensorId *string `json:"sensorId"`
	SensorAttributes
}

// SensorUpdate is the body of an update request. The id only travels in the URL.
type SensorUpdate struct {
	Class string `json:"$class"`
	SensorAttributes
}

func (s NewSensor) Sensor() Sensor {
	return s.SensorAttributes.sensor(s.Class, StringValue(s.SensorId))
}

func (s SensorUpdate) Sensor(id string) Sensor {
	return s.SensorAttributes.sensor(s.Class, id)
}

func (a SensorAttributes) sensor(class, id string) Sensor {
	return Sensor{
		Class:         class,
		SensorId:      id,
		VehicleId:     StringValue(a.VehicleId),
		CertificadoId: StringValue(a.CertificadoId),
		CompanyId:     StringValue(a.CompanyId),
		ContractId:    StringValue(a.ContractId),
		DataSensor:    StringValue(a.DataSensor),
		Status:        StringValue(a.Status),
	}
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// SensorView is a snapshot of the form controller state.
type SensorView struct {
	Assets       []Sensor       `json:"assets"`
	Form         map[string]any `json:"form"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	CurrentId    string         `json:"currentId,omitempty"`
	Valid        bool           `json:"valid"`
}

func (v SensorView) HasError() bool {
	return v.ErrorMessage != ""
}
