package notify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/engine"
)

// serverSegment stands in for the player tag of server-level controls.
const serverSegment = "server"

// StateTopic is where the state of c is published:
// <prefix>/<player|server>/<role>/state
func StateTopic(prefix string, c device.Control) string {
	return fmt.Sprintf("%s/%s/%s/state", prefix, tagSegment(c.PlayerTag), c.Role)
}

// CommandFilter matches the command topics of every control.
func CommandFilter(prefix string) string {
	return prefix + "/+/+/set"
}

// StatusTopic carries the retained online/offline marker.
func StatusTopic(prefix string) string {
	return prefix + "/status"
}

// ParseCommandTopic splits <prefix>/<player|server>/<role>/set. The
// returned tag is empty for server-level controls.
func ParseCommandTopic(prefix, topic string) (tag string, role device.Role, ok bool) {
	rest, found := strings.CutPrefix(topic, prefix+"/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "set" || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	tag = parts[0]
	if tag == serverSegment {
		tag = ""
	}
	return tag, device.Role(parts[1]), true
}

func tagSegment(tag string) string {
	if tag == "" {
		return serverSegment
	}
	return tag
}

// StatePayload is the retained message published for a control.
type StatePayload struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Role       string   `json:"role"`
	Player     string   `json:"player,omitempty"`
	NValue     int      `json:"nvalue"`
	SValue     string   `json:"svalue"`
	LevelNames []string `json:"level_names,omitempty"`
	Forced     bool     `json:"forced,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// EncodeState renders ev as a state message.
func EncodeState(ev device.StateEvent) ([]byte, error) {
	c := ev.Control
	return json.Marshal(StatePayload{
		ID:         c.ID,
		Name:       c.Name,
		Kind:       string(c.Kind),
		Role:       string(c.Role),
		Player:     c.PlayerTag,
		NValue:     c.NValue,
		SValue:     c.SValue,
		LevelNames: c.LevelNames,
		Forced:     ev.Forced,
		Timestamp:  ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// CommandPayload is the body of a command message.
type CommandPayload struct {
	Command string `json:"command"`
	Level   int    `json:"level"`
}

// DecodeCommand reads a command message. Besides the JSON form it accepts
// a bare verb ("on", "off") or a bare level, which means set-level.
func DecodeCommand(payload []byte) (CommandPayload, error) {
	s := strings.TrimSpace(string(payload))
	if s == "" {
		return CommandPayload{}, fmt.Errorf("empty command")
	}
	if strings.HasPrefix(s, "{") {
		var p CommandPayload
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return CommandPayload{}, fmt.Errorf("decode command: %w", err)
		}
		if p.Command == "" {
			return CommandPayload{}, fmt.Errorf("command is required")
		}
		p.Command = engine.NormalizeVerb(p.Command)
		return p, nil
	}
	if level, err := strconv.Atoi(s); err == nil {
		return CommandPayload{Command: engine.VerbSetLevel, Level: level}, nil
	}
	return CommandPayload{Command: engine.NormalizeVerb(s)}, nil
}
