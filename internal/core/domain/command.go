package domain

import "fmt"

// SensorFormRequest marks messages handled by the sensor form actor.
// The master actor routes every SensorFormRequest to it.
type SensorFormRequest interface {
	ActorRequest
	SensorFormCommand() string
}

type SensorFormRequestMixIn struct {
	ActorRequestMixIn
}

func (r SensorFormRequestMixIn) SensorFormCommand() string {
	return fmt.Sprintf("%T", r)
}

// SensorViewResponse answers every sensor form command with the state left behind.
type SensorViewResponse struct {
	ActorResponseMixIn
	View SensorView
}

type LoadAllRequest struct {
	SensorFormRequestMixIn
}

// AddSensorRequest patches the form with Values (when not nil) and creates the asset.
type AddSensorRequest struct {
	SensorFormRequestMixIn
	Values map[string]any
}

// UpdateSensorRequest patches the form with Values (when not nil) and updates the
// asset identified by the form's sensorId.
type UpdateSensorRequest struct {
	SensorFormRequestMixIn
	Values map[string]any
}

// DeleteSensorRequest deletes the asset selected with SetCurrentIdRequest. A
// non-empty Id selects the asset first, within the same operation.
type DeleteSensorRequest struct {
	SensorFormRequestMixIn
	Id string
}

type SetCurrentIdRequest struct {
	SensorFormRequestMixIn
	Id string
}

type LoadFormRequest struct {
	SensorFormRequestMixIn
	Id string
}

type ResetFormRequest struct {
	SensorFormRequestMixIn
}

type PatchFormRequest struct {
	SensorFormRequestMixIn
	Values map[string]any
}

type ToggleArrayValueRequest struct {
	SensorFormRequestMixIn
	Name  string
	Value string
}

type HasArrayValueRequest struct {
	SensorFormRequestMixIn
	Name  string
	Value string
}

type HasArrayValueResponse struct {
	ActorResponseMixIn
	Present bool
}

type GetSensorViewRequest struct {
	SensorFormRequestMixIn
}

// ensure interface compliance
var _ SensorFormRequest = (*LoadAllRequest)(nil)
var _ SensorFormRequest = (*AddSensorRequest)(nil)
