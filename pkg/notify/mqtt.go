package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/engine"
)

// ErrBroker is returned when the broker cannot be reached.
var ErrBroker = errors.New("mqtt broker error")

const (
	connectTimeout = 10 * time.Second
	qos            = byte(1)
)

// Dispatcher runs commands received from the broker.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd engine.Command) (device.CommandRecord, error)
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	URL         string // e.g. tcp://192.168.1.2:1883
	Username    string
	Password    string
	TopicPrefix string
}

// MQTT publishes every control write as a retained message and feeds
// command topics into a Dispatcher.
type MQTT struct {
	client     mqtt.Client
	prefix     string
	store      device.Store
	dispatcher Dispatcher
}

// NewMQTT creates an unconnected MQTT bridge. Commands are only accepted
// when dispatcher is non-nil.
func NewMQTT(opts MQTTOptions, store device.Store, dispatcher Dispatcher) *MQTT {
	prefix := opts.TopicPrefix
	if prefix == "" {
		prefix = "lmsync"
	}
	m := &MQTT{
		prefix:     prefix,
		store:      store,
		dispatcher: dispatcher,
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(opts.URL)
	co.SetClientID("lmsync-" + uuid.NewString()[:8])
	co.SetUsername(opts.Username)
	co.SetPassword(opts.Password)
	co.SetAutoReconnect(true)
	co.SetConnectTimeout(connectTimeout)
	co.SetWill(StatusTopic(prefix), "offline", qos, true)
	co.SetOnConnectHandler(m.onConnect)
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("Disconnected from MQTT broker")
	})

	m.client = mqtt.NewClient(co)
	return m
}

// SetDispatcher sets the receiver of broker commands. It must be called
// before Connect.
func (m *MQTT) SetDispatcher(d Dispatcher) {
	m.dispatcher = d
}

// Connect connects to the broker.
func (m *MQTT) Connect(ctx context.Context) error {
	token := m.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(connectTimeout):
		return fmt.Errorf("%w: connect timed out", ErrBroker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrBroker, err)
	}
	return nil
}

// Close marks the bridge offline and disconnects.
func (m *MQTT) Close() {
	if !m.client.IsConnected() {
		return
	}
	m.client.Publish(StatusTopic(m.prefix), qos, true, "offline").WaitTimeout(time.Second)
	m.client.Disconnect(250)
}

func (m *MQTT) onConnect(client mqtt.Client) {
	log.Info().Str("prefix", m.prefix).Msg("Connected to MQTT broker")
	client.Publish(StatusTopic(m.prefix), qos, true, "online")

	if m.dispatcher == nil {
		return
	}
	filter := CommandFilter(m.prefix)
	token := client.Subscribe(filter, qos, m.handleCommand)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Str("topic", filter).Msg("Failed to subscribe")
			return
		}
		log.Info().Str("topic", filter).Msg("Subscribed to command topics")
	}()
}

// Publish implements device.Publisher. It does not wait for the broker.
func (m *MQTT) Publish(ctx context.Context, ev device.StateEvent) {
	payload, err := EncodeState(ev)
	if err != nil {
		log.Error().Err(err).Int("control", ev.Control.ID).Msg("Failed to encode state")
		return
	}
	topic := StateTopic(m.prefix, ev.Control)
	token := m.client.Publish(topic, qos, true, payload)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Failed to publish state")
		}
	}()
}

func (m *MQTT) handleCommand(_ mqtt.Client, msg mqtt.Message) {
	logger := log.With().Str("topic", msg.Topic()).Logger()

	tag, role, ok := ParseCommandTopic(m.prefix, msg.Topic())
	if !ok {
		logger.Debug().Msg("Ignoring message on unknown topic")
		return
	}
	payload, err := DecodeCommand(msg.Payload())
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid command payload")
		return
	}

	ctx := context.Background()
	id, err := m.resolve(ctx, tag, role)
	if err != nil {
		logger.Warn().Err(err).Msg("No control for command topic")
		return
	}

	if _, err := m.dispatcher.Dispatch(ctx, engine.Command{
		ControlID: id,
		Verb:      payload.Command,
		Level:     payload.Level,
		Source:    "mqtt",
	}); err != nil {
		logger.Warn().Err(err).Msg("MQTT command failed")
	}
}

// resolve finds the control with the given player tag and role.
func (m *MQTT) resolve(ctx context.Context, tag string, role device.Role) (int, error) {
	if tag == "" && role == device.RolePlaylists {
		return engine.PlaylistsControlID, nil
	}
	controls, err := m.store.FindByTag(ctx, tag)
	if err != nil {
		return 0, err
	}
	for _, c := range controls {
		if c.Role == role {
			return c.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %s/%s", device.ErrNotFound, tagSegment(tag), role)
}
