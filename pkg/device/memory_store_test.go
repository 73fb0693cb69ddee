package device

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_CreateGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := &Control{ID: 1, Name: "Kitchen", Kind: KindSelector, Role: RoleMain, PlayerTag: "aa", LevelNames: []string{"Off", "Play"}}
	if err := s.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, c); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Kitchen" || got.PlayerTag != "aa" {
		t.Errorf("unexpected control %+v", got)
	}

	// Returned records are copies.
	got.LevelNames[0] = "changed"
	again, _ := s.Get(ctx, 1)
	if again.LevelNames[0] != "Off" {
		t.Error("store leaked internal slice")
	}

	if _, err := s.Get(ctx, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_UpdateDiff(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Create(ctx, &Control{ID: 5, Kind: KindDimmer, Role: RoleVolume, SValue: "10", NValue: 1})

	tests := []struct {
		name   string
		nValue int
		sValue string
		opts   UpdateOptions
		want   bool
	}{
		{"identical", 1, "10", UpdateOptions{}, false},
		{"svalue differs", 1, "11", UpdateOptions{}, true},
		{"nvalue differs", 0, "11", UpdateOptions{}, true},
		{"identical again", 0, "11", UpdateOptions{}, false},
		{"forced", 0, "11", UpdateOptions{Force: true}, true},
		{"level names differ", 0, "11", UpdateOptions{LevelNames: []string{"a"}}, true},
		{"level names same", 0, "11", UpdateOptions{LevelNames: []string{"a"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrote, err := s.Update(ctx, 5, tt.nValue, tt.sValue, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if wrote != tt.want {
				t.Errorf("expected write=%v, got %v", tt.want, wrote)
			}
		})
	}

	if _, err := s.Update(ctx, 99, 0, "", UpdateOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_FindByTag(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Create(ctx, &Control{ID: 12, PlayerTag: "bb"})
	_ = s.Create(ctx, &Control{ID: 2, PlayerTag: "aa"})
	_ = s.Create(ctx, &Control{ID: 1, PlayerTag: "aa"})
	_ = s.Create(ctx, &Control{ID: 250})

	got, err := s.FindByTag(ctx, "aa")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("unexpected controls %+v", got)
	}

	all, _ := s.List(ctx)
	if len(all) != 4 || all[3].ID != 250 {
		t.Errorf("expected 4 controls ordered by id, got %+v", all)
	}
}
