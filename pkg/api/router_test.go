package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/urmzd/lmsync/pkg/api/types"
	"github.com/urmzd/lmsync/pkg/device"
	"github.com/urmzd/lmsync/pkg/device/schema"
	"github.com/urmzd/lmsync/pkg/engine"
	"github.com/urmzd/lmsync/pkg/lms"
	"github.com/urmzd/lmsync/pkg/notify"
)

// fakeEngine records dispatched commands and applies set-level directly.
type fakeEngine struct {
	store       *device.MemoryStore
	snapshot    engine.Snapshot
	dispatched  []engine.Command
	dispatchErr error
	pollErr     error
	polls       int
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	ctx := context.Background()
	store := device.NewMemoryStore()
	controls := []device.Control{
		{ID: 1, Name: "Kitchen", Kind: device.KindSelector, Role: device.RoleMain, PlayerTag: "aa:01",
			LevelNames: []string{"Off", "Pause", "Play", "Stop"}, NValue: 1, SValue: "20"},
		{ID: 2, Name: "Kitchen Volume", Kind: device.KindDimmer, Role: device.RoleVolume, PlayerTag: "aa:01", NValue: 1, SValue: "40"},
		{ID: 3, Name: "Kitchen Track", Kind: device.KindText, Role: device.RoleTrack, PlayerTag: "aa:01", SValue: "Blue"},
		{ID: 250, Name: "LMS Playlists", Kind: device.KindSelector, Role: device.RolePlaylists,
			LevelNames: []string{"Select", "Morning"}, SValue: "0"},
	}
	for i := range controls {
		if err := store.Create(ctx, &controls[i]); err != nil {
			t.Fatal(err)
		}
	}
	return &fakeEngine{
		store: store,
		snapshot: engine.Snapshot{
			Players:   []lms.Player{{ID: "aa:01", Name: "Kitchen", Power: true}, {ID: "aa:02", Name: "Garage"}},
			Groups:    []engine.Group{{PlayerID: "aa:01", Name: "Kitchen", Main: 1, Volume: 2, Track: 3}},
			Playlists: []engine.PlaylistEntry{{ID: "7", Name: "Morning", Index: 1, Level: 10}},
			LastPoll:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func (f *fakeEngine) Snapshot() engine.Snapshot { return f.snapshot }
func (f *fakeEngine) Store() device.Store       { return f.store }

func (f *fakeEngine) Reconcile(ctx context.Context) error {
	f.polls++
	return f.pollErr
}

func (f *fakeEngine) Dispatch(ctx context.Context, cmd engine.Command) (device.CommandRecord, error) {
	f.dispatched = append(f.dispatched, cmd)
	rec := device.CommandRecord{ID: "rec-1", ControlID: cmd.ControlID, Command: cmd.Verb, Level: cmd.Level, Source: cmd.Source}
	if f.dispatchErr != nil {
		rec.Outcome = device.OutcomeFailed
		return rec, f.dispatchErr
	}
	rec.Outcome = device.OutcomeApplied
	_, err := f.store.Update(ctx, cmd.ControlID, 1, fmt.Sprint(cmd.Level), device.UpdateOptions{})
	return rec, err
}

func (f *fakeEngine) RecentCommands(ctx context.Context, limit int) ([]device.CommandRecord, error) {
	return []device.CommandRecord{{ID: "rec-1", ControlID: 2, Command: "set-level", Level: 47, Outcome: device.OutcomeApplied}}, nil
}

func do(t *testing.T, r *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	eng := newFakeEngine(t)
	r := NewRouter(eng, nil, schema.NewValidator())

	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[types.HealthResponse](t, w)
	if resp.Status != "healthy" || resp.MediaServer != "reachable" || resp.Players != 2 {
		t.Errorf("health = %+v", resp)
	}

	eng.snapshot.LastError = "connection refused"
	w = do(t, r, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d", w.Code)
	}
}

func TestListPlayers(t *testing.T) {
	r := NewRouter(newFakeEngine(t), nil, schema.NewValidator())
	w := do(t, r, http.MethodGet, "/api/v1/players", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[types.ListPlayersResponse](t, w)
	if resp.Count != 2 {
		t.Fatalf("count = %d", resp.Count)
	}
	if resp.Players[0].Controls == nil || resp.Players[0].Controls.Volume != 2 {
		t.Errorf("first player = %+v", resp.Players[0])
	}
	if resp.Players[1].Controls != nil {
		t.Errorf("player without group has controls: %+v", resp.Players[1].Controls)
	}
}

func TestListPlaylists(t *testing.T) {
	r := NewRouter(newFakeEngine(t), nil, schema.NewValidator())
	resp := decode[types.ListPlaylistsResponse](t, do(t, r, http.MethodGet, "/api/v1/playlists", ""))
	if resp.Count != 1 || resp.Playlists[0].Level != 10 {
		t.Errorf("playlists = %+v", resp)
	}
}

func TestControls(t *testing.T) {
	r := NewRouter(newFakeEngine(t), nil, schema.NewValidator())

	list := decode[types.ListControlsResponse](t, do(t, r, http.MethodGet, "/api/v1/controls", ""))
	if list.Count != 4 {
		t.Errorf("count = %d, want 4", list.Count)
	}
	byPlayer := decode[types.ListControlsResponse](t, do(t, r, http.MethodGet, "/api/v1/controls?player=aa:01", ""))
	if byPlayer.Count != 3 {
		t.Errorf("player count = %d, want 3", byPlayer.Count)
	}

	one := decode[types.ControlResponse](t, do(t, r, http.MethodGet, "/api/v1/controls/2", ""))
	if one.Control.Role != device.RoleVolume || len(one.Control.CommandSchema) == 0 {
		t.Errorf("control = %+v", one.Control)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/controls/99", http.StatusNotFound},
		{"/api/v1/controls/abc", http.StatusBadRequest},
		{"/api/v1/controls/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := do(t, r, http.MethodGet, tt.path, ""); w.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestSendCommand(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		body        string
		dispatchErr error
		want        int
		dispatched  bool
	}{
		{"volume", "/api/v1/controls/2/command", `{"command":"set-level","level":47}`, nil, http.StatusOK, true},
		{"legacy verb", "/api/v1/controls/1/command", `{"command":"Set Level","level":20}`, nil, http.StatusOK, true},
		{"power", "/api/v1/controls/1/command", `{"command":"off"}`, nil, http.StatusOK, true},
		{"volume out of range", "/api/v1/controls/2/command", `{"command":"set-level","level":147}`, nil, http.StatusBadRequest, false},
		{"selector off grid", "/api/v1/controls/1/command", `{"command":"set-level","level":25}`, nil, http.StatusBadRequest, false},
		{"selector beyond labels", "/api/v1/controls/250/command", `{"command":"set-level","level":20}`, nil, http.StatusBadRequest, false},
		{"text is display only", "/api/v1/controls/3/command", `{"command":"set-level","level":0}`, nil, http.StatusBadRequest, false},
		{"unknown verb", "/api/v1/controls/2/command", `{"command":"toggle"}`, nil, http.StatusBadRequest, false},
		{"bad json", "/api/v1/controls/2/command", `{`, nil, http.StatusBadRequest, false},
		{"unknown control", "/api/v1/controls/99/command", `{"command":"on"}`, nil, http.StatusNotFound, false},
		{"invalid selection", "/api/v1/controls/250/command", `{"command":"set-level","level":10}`, fmt.Errorf("%w: gone", engine.ErrInvalidSelection), http.StatusUnprocessableEntity, true},
		{"media server down", "/api/v1/controls/2/command", `{"command":"set-level","level":10}`, fmt.Errorf("%w: refused", lms.ErrTransport), http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newFakeEngine(t)
			eng.dispatchErr = tt.dispatchErr
			r := NewRouter(eng, nil, schema.NewValidator())

			w := do(t, r, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if got := len(eng.dispatched) > 0; got != tt.dispatched {
				t.Errorf("dispatched = %v, want %v", got, tt.dispatched)
			}
		})
	}
}

func TestSendCommand_Response(t *testing.T) {
	eng := newFakeEngine(t)
	r := NewRouter(eng, nil, schema.NewValidator())

	w := do(t, r, http.MethodPost, "/api/v1/controls/2/command", `{"command":"set-level","level":47}`)
	resp := decode[types.CommandResponse](t, w)
	if resp.Command.Outcome != device.OutcomeApplied || resp.Control.SValue != "47" {
		t.Errorf("response = %+v", resp)
	}
	if got := eng.dispatched[0]; got.Verb != engine.VerbSetLevel || got.Level != 47 || got.Source != "api" {
		t.Errorf("dispatched = %+v", got)
	}
}

func TestPoll(t *testing.T) {
	eng := newFakeEngine(t)
	r := NewRouter(eng, nil, schema.NewValidator())

	if w := do(t, r, http.MethodPost, "/api/v1/poll", ""); w.Code != http.StatusOK || eng.polls != 1 {
		t.Errorf("poll = %d, polls = %d", w.Code, eng.polls)
	}
	eng.pollErr = fmt.Errorf("list players: %w", lms.ErrTransport)
	if w := do(t, r, http.MethodPost, "/api/v1/poll", ""); w.Code != http.StatusBadGateway {
		t.Errorf("failed poll = %d, want 502", w.Code)
	}
}

func TestListCommands(t *testing.T) {
	r := NewRouter(newFakeEngine(t), nil, schema.NewValidator())

	resp := decode[types.ListCommandsResponse](t, do(t, r, http.MethodGet, "/api/v1/commands?limit=5", ""))
	if resp.Count != 1 || resp.Commands[0].Level != 47 {
		t.Errorf("commands = %+v", resp)
	}
	if w := do(t, r, http.MethodGet, "/api/v1/commands?limit=-1", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d", w.Code)
	}
}

func TestEvents_StreamsState(t *testing.T) {
	hub := notify.NewHub(4)
	srv := httptest.NewServer(NewRouter(newFakeEngine(t), hub, schema.NewValidator()).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			if name, ok := strings.CutPrefix(line, "event: "); ok {
				return strings.TrimSpace(name)
			}
		}
	}

	if got := readEvent(); got != "connected" {
		t.Fatalf("first event = %q, want connected", got)
	}
	hub.Publish(ctx, device.StateEvent{Control: device.Control{ID: 2, SValue: "47"}})
	if got := readEvent(); got != "state" {
		t.Errorf("event = %q, want state", got)
	}
}

func TestEvents_NotServedWithoutHub(t *testing.T) {
	r := NewRouter(newFakeEngine(t), nil, schema.NewValidator())
	if w := do(t, r, http.MethodGet, "/api/v1/events", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := NewRouter(newFakeEngine(t), nil, schema.NewValidator())

	w := do(t, r, http.MethodGet, "/health", "")
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("no request id assigned")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want the caller's", got)
	}
}
