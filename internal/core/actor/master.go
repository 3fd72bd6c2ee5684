package actor

import (
	"fmt"
	"log"
	"time"

	"github.com/berfenger/lowcarbon-sensors/internal/config"
	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/core/port"
	"github.com/berfenger/lowcarbon-sensors/internal/core/service"
	. "github.com/berfenger/lowcarbon-sensors/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// MQTTActorProvider builds the actor that mirrors sensor events to MQTT. It is
// nil when MQTT is disabled.
type MQTTActorProvider func(*eventstream.EventStream) actor.Actor

type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck healthCheckResult
	eventStream        *eventstream.EventStream
	sensorService      port.SensorService
	sensorFormActor    *actor.PID
	mqttActor          *actor.PID
	mqttActorProvider  MQTTActorProvider
	logger             *zap.Logger
}

type healthCheckResult struct {
	sensorFormActorHealthy bool
	mqttActorHealthy       bool
	checksReceived         int
	checksExpected         int
	respondTo              *actor.PID
}

func NewMasterActor(config config.Config, sensorService port.SensorService, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterActor {
	return NewMasterActorWithEventStream(config, sensorService, mqttActorProvider, &eventstream.EventStream{}, logger)
}

// NewMasterActorWithEventStream lets the caller observe the sensor change events.
func NewMasterActorWithEventStream(config config.Config, sensorService port.SensorService, mqttActorProvider MQTTActorProvider,
	eventStream *eventstream.EventStream, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:            config,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		logger:            ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:       eventStream,
		sensorService:     sensorService,
		mqttActorProvider: mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		// start sensor form child
		sensorFormPID, err := state.startSensorFormActor(ctx)
		if err != nil {
			panic(err)
		}
		state.sensorFormActor = sensorFormPID

		// start MQTT child
		if state.mqttActorProvider != nil {
			mqttActorPID, err := state.startMQTTActor(ctx)
			if err != nil {
				panic(err)
			}
			state.mqttActor = mqttActorPID
		}

		// first list load
		ctx.Send(state.sensorFormActor, domain.LoadAllRequest{})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		state.currentHealthCheck.checksExpected = 1

		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.sensorFormActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_SENSOR_FORM,
				Healthy: false,
			}
		})
		if state.mqttActor != nil {
			state.currentHealthCheck.checksExpected++
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
				return domain.ActorHealthResponse{
					Id:      domain.ACTOR_ID_MQTT,
					Healthy: false,
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.SensorFormRequest:
		// route form commands, keeping the original sender
		ctx.RequestWithCustomSender(state.sensorFormActor, msg, ctx.Sender())
	case *actor.Terminated:
		state.logger.Error("master@default child terminated", zap.String("who", msg.Who.Id))
	default:
		state.logger.Debug("master@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.CancelReceiveTimeout()
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_SENSOR_FORM:
				state.currentHealthCheck.sensorFormActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.currentHealthCheck.mqttActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {
			ctx.CancelReceiveTimeout()
			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) startSensorFormActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(10, 10*time.Second, decider)

	controller := service.NewSensorFormController(state.sensorService, state.eventStream, state.logger)

	sensorFormProps := actor.PropsFromProducer(func() actor.Actor {
		return NewSensorFormActor(controller, state.logger)
	}, actor.WithSupervisor(supervisor))
	sensorFormPID, err := ctx.SpawnNamed(sensorFormProps, domain.ACTOR_ID_SENSOR_FORM)
	if err != nil {
		return nil, err
	}

	return sensorFormPID, nil
}

func (state *MasterActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *healthCheckResult) reset() {
	state.sensorFormActorHealthy = false
	state.mqttActorHealthy = false
	state.checksReceived = 0
	state.checksExpected = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived >= state.checksExpected
}

func (state *healthCheckResult) allHealthy() bool {
	healthy := state.sensorFormActorHealthy
	if state.checksExpected > 1 {
		healthy = healthy && state.mqttActorHealthy
	}
	return healthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
