package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/engine"
)

func TestStateTopic(t *testing.T) {
	tests := []struct {
		control device.Control
		want    string
	}{
		{device.Control{PlayerTag: "aa:bb", Role: device.RoleVolume}, "home/aa:bb/volume/state"},
		{device.Control{Role: device.RolePlaylists}, "home/server/playlists/state"},
	}
	for _, tt := range tests {
		if got := StateTopic("home", tt.control); got != tt.want {
			t.Errorf("StateTopic = %q, want %q", got, tt.want)
		}
	}
}

func TestParseCommandTopic(t *testing.T) {
	tests := []struct {
		topic string
		tag   string
		role  device.Role
		ok    bool
	}{
		{"home/aa:bb/main/set", "aa:bb", device.RoleMain, true},
		{"home/server/playlists/set", "", device.RolePlaylists, true},
		{"home/aa:bb/main/state", "", "", false},
		{"other/aa:bb/main/set", "", "", false},
		{"home/aa:bb/set", "", "", false},
		{"home//main/set", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			tag, role, ok := ParseCommandTopic("home", tt.topic)
			if tag != tt.tag || role != tt.role || ok != tt.ok {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)", tag, role, ok, tt.tag, tt.role, tt.ok)
			}
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		payload string
		want    CommandPayload
		wantErr bool
	}{
		{`{"command":"set-level","level":20}`, CommandPayload{Command: engine.VerbSetLevel, Level: 20}, false},
		{`{"command":"Set Level","level":30}`, CommandPayload{Command: engine.VerbSetLevel, Level: 30}, false},
		{`47`, CommandPayload{Command: engine.VerbSetLevel, Level: 47}, false},
		{` On `, CommandPayload{Command: engine.VerbOn}, false},
		{`{"level":20}`, CommandPayload{}, true},
		{`{bad json`, CommandPayload{}, true},
		{``, CommandPayload{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeState(t *testing.T) {
	ev := device.StateEvent{
		Control: device.Control{
			ID: 3, Name: "Kitchen Track", Kind: device.KindText, Role: device.RoleTrack,
			PlayerTag: "aa:bb", SValue: "Blue",
		},
		Forced:    true,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := EncodeState(ev)
	if err != nil {
		t.Fatalf("EncodeState failed: %v", err)
	}
	var got StatePayload
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 3 || got.Player != "aa:bb" || got.SValue != "Blue" || !got.Forced {
		t.Errorf("payload = %+v", got)
	}
	if got.Timestamp != "2024-05-01T12:00:00.000Z" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}
}

func TestHub(t *testing.T) {
	hub := NewHub(1)
	ch := hub.Subscribe()

	ev := device.StateEvent{Control: device.Control{ID: 1}}
	hub.Publish(context.Background(), ev)
	hub.Publish(context.Background(), ev) // dropped, buffer full

	if got := <-ch; got.Control.ID != 1 {
		t.Errorf("event = %+v", got)
	}
	select {
	case <-ch:
		t.Error("second event should have been dropped")
	default:
	}

	hub.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel not closed")
	}
	hub.Unsubscribe(ch)
	hub.Publish(context.Background(), ev)
}

func TestFanout(t *testing.T) {
	a, b := NewHub(1), NewHub(1)
	ca, cb := a.Subscribe(), b.Subscribe()
	Fanout{a, b}.Publish(context.Background(), device.StateEvent{Control: device.Control{ID: 7}})
	if (<-ca).Control.ID != 7 || (<-cb).Control.ID != 7 {
		t.Error("fanout did not reach every publisher")
	}
}

// fakeToken completes immediately.
type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	mqtt.Client
	mu  sync.Mutex
	out []published
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = p
	case string:
		b = []byte(p)
	}
	c.out = append(c.out, published{topic: topic, retained: retained, payload: b})
	return fakeToken{}
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

type fakeDispatcher struct {
	commands []engine.Command
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, cmd engine.Command) (device.CommandRecord, error) {
	d.commands = append(d.commands, cmd)
	return device.CommandRecord{Outcome: device.OutcomeApplied}, nil
}

func TestMQTT_Publish(t *testing.T) {
	client := &fakeClient{}
	m := &MQTT{client: client, prefix: "home"}

	m.Publish(context.Background(), device.StateEvent{
		Control: device.Control{ID: 1, PlayerTag: "aa:bb", Role: device.RoleMain, SValue: "20"},
	})

	if len(client.out) != 1 {
		t.Fatalf("published %d messages", len(client.out))
	}
	if p := client.out[0]; p.topic != "home/aa:bb/main/state" || !p.retained {
		t.Errorf("published %+v", p)
	}
}

func TestMQTT_HandleCommand(t *testing.T) {
	ctx := context.Background()
	store := device.NewMemoryStore()
	controls := []device.Control{
		{ID: 1, Name: "Kitchen", Kind: device.KindSelector, Role: device.RoleMain, PlayerTag: "aa:bb"},
		{ID: 2, Name: "Kitchen Volume", Kind: device.KindDimmer, Role: device.RoleVolume, PlayerTag: "aa:bb"},
	}
	for i := range controls {
		if err := store.Create(ctx, &controls[i]); err != nil {
			t.Fatal(err)
		}
	}

	d := &fakeDispatcher{}
	m := &MQTT{prefix: "home", store: store, dispatcher: d}

	m.handleCommand(nil, fakeMessage{topic: "home/aa:bb/volume/set", payload: []byte("47")})
	m.handleCommand(nil, fakeMessage{topic: "home/server/playlists/set", payload: []byte(`{"command":"set-level","level":10}`)})
	m.handleCommand(nil, fakeMessage{topic: "home/aa:bb/repeat/set", payload: []byte("10")})
	m.handleCommand(nil, fakeMessage{topic: "home/aa:bb/main/set", payload: []byte("{nope")})

	want := []engine.Command{
		{ControlID: 2, Verb: engine.VerbSetLevel, Level: 47, Source: "mqtt"},
		{ControlID: engine.PlaylistsControlID, Verb: engine.VerbSetLevel, Level: 10, Source: "mqtt"},
	}
	if len(d.commands) != len(want) {
		t.Fatalf("dispatched %+v, want %+v", d.commands, want)
	}
	for i := range want {
		if d.commands[i] != want[i] {
			t.Errorf("command %d = %+v, want %+v", i, d.commands[i], want[i])
		}
	}
}
