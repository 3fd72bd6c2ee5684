package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/berfenger/lowcarbon-sensors/internal/config"
	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"
	"github.com/berfenger/lowcarbon-sensors/internal/mqtt"
	"github.com/berfenger/lowcarbon-sensors/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTActor mirrors sensor change events from the event stream to MQTT.
type MQTTActor struct {
	config         *config.Config
	behavior       actor.Behavior
	stash          *actorutil.Stash
	client         *mqtt.MQTTClient
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	logger         *zap.Logger
}

type MQTTConnected struct {
}

type MQTTConnectionLost struct {
	Error error
}

type OnEventStreamMessage struct {
	message any
}

type publishResult struct {
	ReplyTo *actor.PID
	Error   error
}

type rawMessage struct {
	topic   string
	message string
	retain  bool
}

func NewMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server
		state.client.Connect(func(err error) {
			if err != nil {
				ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
			} else {
				ctx.Send(ctx.Self(), MQTTConnected{})
			}
		}, 10*time.Second)
	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")

		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, 0, true, func(error) {}, 500*time.Millisecond)

		state.subscribeEventStream(ctx)

		// init completed, transition to default state
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case domain.PublishMessageRequest:
		state.logger.Debug("mqtt@default PublishMessageRequest", zap.String("topic", msg.Topic))
		state.publishMessage(ctx, rawMessage{topic: msg.Topic, message: msg.Payload, retain: msg.Retain},
			actorutil.ForRequest(msg).ReplyTo(ctx))
	case OnEventStreamMessage:
		// receive message from event bus and publish to MQTT if needed
		state.logger.Debug("mqtt@default OnEventStreamMessage", zap.String("type", fmt.Sprintf("%T", msg.message)))
		state.publishEvent(ctx, msg.message)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) PublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		// log error and return to default state
		if msg.Error != nil {
			state.logger.Error("mqtt@publishing could not publish a message", zap.Error(msg.Error))
		}
		if msg.ReplyTo != nil {
			ctx.Send(msg.ReplyTo, domain.PublishMessageResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: msg.Error,
				},
			})
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.stop()
	default:
		state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) subscribeEventStream(ctx actor.Context) {
	if state.eventStream == nil || state.eventStreamSub != nil {
		return
	}
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	state.eventStreamSub = state.eventStream.Subscribe(func(value any) {
		root.Send(self, OnEventStreamMessage{
			message: value,
		})
	})
}

// publishEvent publishes the messages of an event one at a time, waiting for
// each broker acknowledgement.
func (state *MQTTActor) publishEvent(ctx actor.Context, event any) {
	msgs := SensorEventToMessages(state.client, event)
	if len(msgs) == 0 {
		return
	}
	// the first message is published now, the rest go through the stash
	for _, m := range msgs[1:] {
		state.stash.Stash(ctx, domain.PublishMessageRequest{Topic: m.topic, Payload: m.message, Retain: m.retain})
	}
	state.publishMessage(ctx, msgs[0], nil)
}

func (state *MQTTActor) publishMessage(ctx actor.Context, msg rawMessage, replyTo *actor.PID) {
	state.logger.Sugar().Debugf("mqtt@publish: message publish %s => %s", msg.topic, msg.message)
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	state.client.Publish(msg.topic, msg.message, 1, msg.retain, func(err error) {
		root.Send(self, publishResult{ReplyTo: replyTo, Error: err})
	}, 5*time.Second)
	state.behavior.BecomeStacked(state.PublishResultReceive)
}

// SensorEventToMessages maps a sensor change to its MQTT messages: the retained
// state (cleared on deletion) followed by the event itself.
func SensorEventToMessages(client *mqtt.MQTTClient, event any) []rawMessage {
	ev, ok := event.(domain.SensorChangedEvent)
	if !ok || ev.SensorId == "" {
		return nil
	}
	var msgs []rawMessage

	switch ev.Action {
	case domain.SENSOR_ACTION_CREATED, domain.SENSOR_ACTION_UPDATED:
		if ev.Sensor != nil {
			payload, err := json.Marshal(ev.Sensor)
			if err == nil {
				msgs = append(msgs, rawMessage{
					topic:   client.SensorStateTopic(ev.SensorId),
					message: string(payload),
					retain:  true,
				})
			}
		}
	case domain.SENSOR_ACTION_DELETED:
		msgs = append(msgs, rawMessage{
			topic:   client.SensorStateTopic(ev.SensorId),
			message: "",
			retain:  true,
		})
	}

	payload, err := json.Marshal(ev)
	if err == nil {
		msgs = append(msgs, rawMessage{
			topic:   client.SensorEventTopic(ev.SensorId),
			message: string(payload),
		})
	}
	return msgs
}

func (state *MQTTActor) stop() {
	state.logger.Debug("mqtt: disconnect")
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
	if state.client != nil {
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	}
}

// Dummy actor
func NewTestMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *TestMQTTActor {
	return &TestMQTTActor{
		config:      config,
		eventStream: eventStream,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
}

// TestMQTTActor subscribes to the event stream like MQTTActor but records the
// messages instead of sending them to a broker.
type TestMQTTActor struct {
	config      *config.Config
	eventStream *eventstream.EventStream
	client      *mqtt.MQTTClient
	logger      *zap.Logger
	published   []rawMessage
}

type GetPublishedRequest struct {
}

type GetPublishedResponse struct {
	Topics   []string
	Payloads []string
}

func (state *TestMQTTActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil, nil)
		if state.eventStream != nil {
			self := ctx.Self()
			root := ctx.ActorSystem().Root
			state.eventStream.Subscribe(func(value any) {
				root.Send(self, OnEventStreamMessage{message: value})
			})
		}
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@dummy ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case OnEventStreamMessage:
		state.published = append(state.published, SensorEventToMessages(state.client, msg.message)...)
	case domain.PublishMessageRequest:
		state.published = append(state.published, rawMessage{topic: msg.Topic, message: msg.Payload, retain: msg.Retain})
		ctx.Respond(domain.PublishMessageResponse{})
	case GetPublishedRequest:
		resp := GetPublishedResponse{}
		for _, m := range state.published {
			resp.Topics = append(resp.Topics, m.topic)
			resp.Payloads = append(resp.Payloads, m.message)
		}
		ctx.Respond(resp)
	}
}
