// Package mqttbridge is the external-consumer adapter: it publishes
// parameter-store changes, raw bus frames, and accepts a small set of
// server commands over MQTT, grounded on the teacher's pkg/mqtt client
// (Connect/subscribe/publish-on-ticker idiom) generalized from a single
// vehicle-data snapshot to the observer interface of spec.md §6.
package mqttbridge

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dkuznetsov/j1939dash/paramstore"
)

const (
	DefaultBroker         = "tcp://localhost:1883"
	DefaultClientID       = "dashboard-core"
	DefaultDataTopic      = "vehicle/params"
	DefaultCommandTopic   = "vehicle/command"
	DefaultAckTopic       = "vehicle/command/ack"
	DefaultRawCANTopic    = "vehicle/raw/can"
	DefaultRawJ1708Topic  = "vehicle/raw/j1708"
	DefaultUpdateInterval = 10 * time.Second
)

// Config holds broker connection and topic settings.
type Config struct {
	Broker         string
	ClientID       string
	DataTopic      string
	CommandTopic   string
	AckTopic       string
	RawCANTopic    string
	RawJ1708Topic  string
	UpdateInterval time.Duration
}

// CommandHandler processes a received ServerCommand and returns the ack
// to publish.
type CommandHandler func(ServerCommand) CommandAck

// paramChange is published on the data topic for every parameter-store
// change notification: a first reading, or a move beyond the store's
// change epsilon (spec.md §6's on-change callback).
type paramChange struct {
	Identity     paramstore.Identity `json:"identity"`
	Name         string              `json:"name,omitempty"`
	NewValue     float64             `json:"new_value"`
	PreviousValue float64            `json:"previous_value"`
	TimestampMs  int64               `json:"timestamp_ms"`
}

// Bridge is the MQTT adapter: a connected paho client publishing
// parameter changes, raw frames and command acks.
type Bridge struct {
	config  Config
	client  paho.Client
	handler CommandHandler
}

// New constructs a Bridge. Connect must be called before publishing.
func New(config Config, handler CommandHandler) *Bridge {
	if config.DataTopic == "" {
		config.DataTopic = DefaultDataTopic
	}
	if config.CommandTopic == "" {
		config.CommandTopic = DefaultCommandTopic
	}
	if config.AckTopic == "" {
		config.AckTopic = DefaultAckTopic
	}
	if config.RawCANTopic == "" {
		config.RawCANTopic = DefaultRawCANTopic
	}
	if config.RawJ1708Topic == "" {
		config.RawJ1708Topic = DefaultRawJ1708Topic
	}
	return &Bridge{config: config, handler: handler}
}

// Connect dials the broker and subscribes to the command topic.
func (b *Bridge) Connect() error {
	opts := paho.NewClientOptions()
	opts.AddBroker(b.config.Broker)
	opts.SetClientID(b.config.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(paho.Client) {
		log.Println("mqttbridge: connected")
		b.subscribeCommands()
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Printf("mqttbridge: connection lost: %v", err)
	})

	b.client = paho.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqttbridge: connect: %w", token.Error())
	}
	return nil
}

// Disconnect closes the MQTT connection.
func (b *Bridge) Disconnect() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}

func (b *Bridge) subscribeCommands() {
	token := b.client.Subscribe(b.config.CommandTopic, 1, b.onCommand)
	go func() {
		<-token.Done()
		if token.Error() != nil {
			log.Printf("mqttbridge: subscribe %s: %v", b.config.CommandTopic, token.Error())
		}
	}()
}

func (b *Bridge) onCommand(_ paho.Client, msg paho.Message) {
	var cmd ServerCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		log.Printf("mqttbridge: bad command payload: %v", err)
		return
	}
	if b.handler == nil {
		return
	}
	ack := b.handler(cmd)
	b.publishAck(ack)
}

func (b *Bridge) publishAck(ack CommandAck) {
	data, err := json.Marshal(ack)
	if err != nil {
		log.Printf("mqttbridge: marshal ack: %v", err)
		return
	}
	token := b.client.Publish(b.config.AckTopic, 0, false, data)
	token.Wait()
}

// OnParamChange is registered as a paramstore.Observer: it publishes
// the new and previous value the store reports for identity id
// (spec.md §6).
func (b *Bridge) OnParamChange(id paramstore.Identity, value, prevValue float64, timestampMs int64) {
	name := ""
	if cat, ok := paramstore.Lookup(id); ok {
		name = cat.Name
	}

	change := paramChange{Identity: id, Name: name, NewValue: value, PreviousValue: prevValue, TimestampMs: timestampMs}
	data, err := json.Marshal(change)
	if err != nil {
		log.Printf("mqttbridge: marshal change: %v", err)
		return
	}
	if b.client == nil || !b.client.IsConnected() {
		return
	}
	token := b.client.Publish(b.config.DataTopic, 0, false, data)
	if token.Wait() && token.Error() != nil {
		log.Printf("mqttbridge: publish: %v", token.Error())
	}
}

// PublishRawCAN publishes one raw CAN frame observer event (spec.md
// §6).
func (b *Bridge) PublishRawCAN(id uint32, data []byte) {
	b.publishRaw(b.config.RawCANTopic, id, data)
}

// PublishRawJ1708 publishes one raw J1708 message observer event
// (spec.md §6).
func (b *Bridge) PublishRawJ1708(mid byte, data []byte) {
	b.publishRaw(b.config.RawJ1708Topic, uint32(mid), data)
}

type rawFrame struct {
	ID   uint32 `json:"id"`
	Data []byte `json:"data"`
}

func (b *Bridge) publishRaw(topic string, id uint32, data []byte) {
	if b.client == nil || !b.client.IsConnected() {
		return
	}
	payload, err := json.Marshal(rawFrame{ID: id, Data: data})
	if err != nil {
		return
	}
	b.client.Publish(topic, 0, false, payload)
}
