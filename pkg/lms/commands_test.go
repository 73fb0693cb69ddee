package lms

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

type call struct {
	player string
	args   []any
}

type recorder struct {
	calls  []call
	result map[string]any
	err    error
}

func (r *recorder) Invoke(ctx context.Context, playerID string, args ...any) (map[string]any, error) {
	r.calls = append(r.calls, call{player: playerID, args: args})
	if r.err != nil {
		return nil, r.err
	}
	if r.result == nil {
		return map[string]any{}, nil
	}
	return r.result, nil
}

func argStrings(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = fmt.Sprint(a)
	}
	return out
}

func TestServerStatus(t *testing.T) {
	r := &recorder{result: map[string]any{
		"players_loop": []any{
			map[string]any{"playerid": "00:04:20:aa", "name": "Kitchen", "connected": float64(1), "power": "1"},
			map[string]any{"playerid": "", "name": "Ghost"},
			map[string]any{"playerid": "00:04:20:bb"},
			"garbage",
		},
	}}

	players, err := ServerStatus(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
	if players[0].ID != "00:04:20:aa" || players[0].Name != "Kitchen" || !players[0].Connected || !players[0].Power {
		t.Errorf("unexpected first player %+v", players[0])
	}
	if players[1].Name != "Unknown" {
		t.Errorf("expected default name, got %q", players[1].Name)
	}
	want := []string{"serverstatus", "0", "999"}
	if got := argStrings(r.calls[0].args); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if r.calls[0].player != "" {
		t.Errorf("expected server address, got %q", r.calls[0].player)
	}
}

func TestPlaylists_Bounded(t *testing.T) {
	r := &recorder{result: map[string]any{
		"playlists_loop": []any{
			map[string]any{"id": float64(11), "playlist": "Jazz"},
			map[string]any{"id": "12", "playlist": "Rock"},
			map[string]any{"id": "13", "playlist": "Pop"},
		},
	}}

	pls, err := Playlists(context.Background(), r, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []Playlist{{ID: "11", Name: "Jazz"}, {ID: "12", Name: "Rock"}}
	if !reflect.DeepEqual(pls, want) {
		t.Errorf("expected %v, got %v", want, pls)
	}
}

func TestPlaylists_ZeroLimit(t *testing.T) {
	r := &recorder{}
	pls, err := Playlists(context.Background(), r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pls) != 0 || len(r.calls) != 0 {
		t.Errorf("expected no request and no playlists, got %v / %d calls", pls, len(r.calls))
	}
}

func TestCommandArguments(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		run    func(Invoker) error
		player string
		want   []string
	}{
		{"status", func(c Invoker) error { _, err := Status(ctx, c, "p1"); return err }, "p1", []string{"status", "-", "1", StatusTags}},
		{"button", func(c Invoker) error { return Button(ctx, c, "p1", "play.single") }, "p1", []string{"button", "play.single"}},
		{"power on", func(c Invoker) error { return Power(ctx, c, "p1", true) }, "p1", []string{"power", "1"}},
		{"power off", func(c Invoker) error { return Power(ctx, c, "p1", false) }, "p1", []string{"power", "0"}},
		{"volume", func(c Invoker) error { return SetVolume(ctx, c, "p1", 47) }, "p1", []string{"mixer", "volume", "47"}},
		{"load playlist", func(c Invoker) error { return LoadPlaylist(ctx, c, "p1", "42") }, "p1", []string{"playlistcontrol", "cmd:load", "playlist_id:42"}},
		{"sync", func(c Invoker) error { return Sync(ctx, c, "master", "slave") }, "master", []string{"sync", "slave"}},
		{"unsync", func(c Invoker) error { return Unsync(ctx, c, "p1") }, "p1", []string{"sync", "-"}},
		{"shuffle", func(c Invoker) error { return Shuffle(ctx, c, "p1", 2) }, "p1", []string{"playlist", "shuffle", "2"}},
		{"repeat", func(c Invoker) error { return Repeat(ctx, c, "p1", 1) }, "p1", []string{"playlist", "repeat", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			if err := tt.run(r); err != nil {
				t.Fatal(err)
			}
			if len(r.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(r.calls))
			}
			if r.calls[0].player != tt.player {
				t.Errorf("expected player %q, got %q", tt.player, r.calls[0].player)
			}
			if got := argStrings(r.calls[0].args); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestShow_SanitisesText(t *testing.T) {
	r := &recorder{}
	long := ""
	for i := 0; i < 200; i++ {
		long += "x"
	}
	if err := Show(context.Background(), r, "p1", `Say "hi"`, long, 5); err != nil {
		t.Fatal(err)
	}
	args := argStrings(r.calls[0].args)
	if args[1] != "line1:Say 'hi'" {
		t.Errorf("unexpected subject %q", args[1])
	}
	if len(args[2]) != len("line2:")+maxDisplayText {
		t.Errorf("expected text capped at %d, got %d", maxDisplayText, len(args[2])-len("line2:"))
	}
	if args[3] != "duration:5" {
		t.Errorf("unexpected duration %q", args[3])
	}
}

func TestShow_WideCharactersUseTwoCells(t *testing.T) {
	r := &recorder{}
	if err := Show(context.Background(), r, "p1", strings.Repeat("日", 50), "ok", 5); err != nil {
		t.Fatal(err)
	}
	subject := strings.TrimPrefix(argStrings(r.calls[0].args)[1], "line1:")
	if n := utf8.RuneCountInString(subject); n != maxDisplaySubject/2 {
		t.Errorf("subject runes = %d, want %d", n, maxDisplaySubject/2)
	}
}
