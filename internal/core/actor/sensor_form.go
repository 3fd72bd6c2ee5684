package actor

import (
	"context"
	"fmt"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/core/service"
	. "github.com/berfenger/lowcarbon-sensors/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// SensorFormActor owns a SensorFormController. Its mailbox serialises every
// form operation: while a service call is running, incoming commands are
// stashed and replayed once it completes.
type SensorFormActor struct {
	behavior   actor.Behavior
	stash      *Stash
	controller *service.SensorFormController
	logger     *zap.Logger
}

type operationResult struct {
	replyTo *actor.PID
	err     error
}

func NewSensorFormActor(controller *service.SensorFormController, logger *zap.Logger) *SensorFormActor {
	act := &SensorFormActor{
		behavior:   actor.NewBehavior(),
		stash:      &Stash{},
		controller: controller,
		logger:     ActorLogger(domain.ACTOR_ID_SENSOR_FORM, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *SensorFormActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *SensorFormActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("sensorform@default started")
	case domain.ActorHealthRequest:
		state.logger.Debug("sensorform@default ActorHealthRequest")
		ForRequest(msg).Respond(ctx, domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SENSOR_FORM,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetSensorViewRequest:
		state.respondView(ctx, ForRequest(msg).ReplyTo(ctx), nil)
	case domain.LoadAllRequest:
		state.logger.Debug("sensorform@default LoadAllRequest")
		state.runOperation(ctx, ForRequest(msg).ReplyTo(ctx), func(opCtx context.Context) {
			state.controller.LoadAll(opCtx)
		})
	case domain.AddSensorRequest:
		state.logger.Debug("sensorform@default AddSensorRequest")
		state.runOperation(ctx, ForRequest(msg).ReplyTo(ctx), func(opCtx context.Context) {
			if msg.Values != nil {
				state.controller.PatchForm(msg.Values)
			}
			state.controller.AddAsset(opCtx)
		})
	case domain.UpdateSensorRequest:
		state.logger.Debug("sensorform@default UpdateSensorRequest")
		state.runOperation(ctx, ForRequest(msg).ReplyTo(ctx), func(opCtx context.Context) {
			if msg.Values != nil {
				state.controller.PatchForm(msg.Values)
			}
			state.controller.UpdateAsset(opCtx)
		})
	case domain.DeleteSensorRequest:
		state.logger.Debug("sensorform@default DeleteSensorRequest", zap.String("id", msg.Id))
		state.runOperation(ctx, ForRequest(msg).ReplyTo(ctx), func(opCtx context.Context) {
			if msg.Id != "" {
				state.controller.SetId(msg.Id)
			}
			state.controller.DeleteAsset(opCtx)
		})
	case domain.LoadFormRequest:
		state.logger.Debug("sensorform@default LoadFormRequest", zap.String("id", msg.Id))
		state.runOperation(ctx, ForRequest(msg).ReplyTo(ctx), func(opCtx context.Context) {
			state.controller.GetForm(opCtx, msg.Id)
		})
	case domain.SetCurrentIdRequest:
		state.controller.SetId(msg.Id)
		state.respondView(ctx, ForRequest(msg).ReplyTo(ctx), nil)
	case domain.ResetFormRequest:
		state.controller.ResetForm()
		state.respondView(ctx, ForRequest(msg).ReplyTo(ctx), nil)
	case domain.PatchFormRequest:
		state.controller.PatchForm(msg.Values)
		state.respondView(ctx, ForRequest(msg).ReplyTo(ctx), nil)
	case domain.ToggleArrayValueRequest:
		err := state.controller.ChangeArrayValue(msg.Name, msg.Value)
		state.respondView(ctx, ForRequest(msg).ReplyTo(ctx), err)
	case domain.HasArrayValueRequest:
		present, err := state.controller.HasArrayValue(msg.Name, msg.Value)
		ForRequest(msg).Respond(ctx, domain.HasArrayValueResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
			Present: present,
		})
	default:
		state.logger.Debug("sensorform@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// WaitingService stashes commands until the running operation reports back.
// The controller belongs to the operation meanwhile.
func (state *SensorFormActor) WaitingService(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ForRequest(msg).Respond(ctx, domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SENSOR_FORM,
			Healthy: true,
			State:   "busy",
		})
	case operationResult:
		if msg.err != nil {
			state.logger.Error("sensorform@waiting operation failed", zap.Error(msg.err))
		}
		state.respondView(ctx, msg.replyTo, msg.err)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("sensorform@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SensorFormActor) runOperation(ctx actor.Context, replyTo *actor.PID, op func(context.Context)) {
	NewBackgroundTaskNoError(ctx, func() *operationResult {
		op(context.Background())
		return &operationResult{replyTo: replyTo}
	}).Recover(func(err error) operationResult {
		return operationResult{replyTo: replyTo, err: err}
	}).PipeTo(ctx.Self())
	state.behavior.BecomeStacked(state.WaitingService)
}

func (state *SensorFormActor) respondView(ctx actor.Context, replyTo *actor.PID, err error) {
	if replyTo == nil {
		return
	}
	ctx.Send(replyTo, domain.SensorViewResponse{
		ActorResponseMixIn: domain.ActorResponseMixIn{
			ResponseError: err,
		},
		View: state.controller.View(),
	})
}
