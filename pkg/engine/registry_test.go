package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/urmzd/lmsync/pkg/device"
)

func TestRegistry_EnsureCreatesGroup(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	r := NewRegistry(store, true)

	g, err := r.Ensure(ctx, "aa:01", "Kitchen")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	want := Group{PlayerID: "aa:01", Name: "Kitchen", Main: 1, Volume: 2, Track: 3, Actions: 4, Shuffle: 5, Repeat: 6}
	if *g != want {
		t.Errorf("group = %+v, want %+v", *g, want)
	}
	if store.creates != 6 {
		t.Errorf("creates = %d, want 6", store.creates)
	}

	again, err := r.Ensure(ctx, "aa:01", "Renamed")
	if err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}
	if *again != want || store.creates != 6 {
		t.Errorf("second Ensure = %+v with %d creates", *again, store.creates)
	}

	main, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if main.PlayerTag != "aa:01" || main.Kind != device.KindSelector || len(main.LevelNames) != 4 {
		t.Errorf("main = %+v", main)
	}
	vol, _ := store.Get(ctx, 2)
	if vol.Kind != device.KindDimmer {
		t.Errorf("volume kind = %s", vol.Kind)
	}
}

func TestRegistry_Allocation(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()

	// Something else already owns id 13.
	if err := store.Create(ctx, &device.Control{ID: 13, Name: "other", Kind: device.KindText}); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(store, false)
	first, err := r.Ensure(ctx, "aa:01", "Kitchen")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	second, err := r.Ensure(ctx, "aa:02", "Bedroom")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if first.Main != 1 || second.Main != 21 {
		t.Errorf("bases = %d, %d; want 1, 21", first.Main, second.Main)
	}
	if second.Shuffle != 0 || second.Repeat != 0 || second.Actions != 24 {
		t.Errorf("non-extended group = %+v", second)
	}
}

func TestRegistry_LookupFromStore(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	if _, err := NewRegistry(store, true).Ensure(ctx, "aa:01", "Kitchen"); err != nil {
		t.Fatal(err)
	}

	// A fresh registry finds the group by tag without creating anything.
	r := NewRegistry(store, true)
	g, ok, err := r.Lookup(ctx, "aa:01")
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if g.Main != 1 || g.Repeat != 6 || g.Name != "Kitchen" {
		t.Errorf("group = %+v", g)
	}
	if store.creates != 6 {
		t.Errorf("creates = %d, want 6", store.creates)
	}

	if _, ok, _ := r.Lookup(ctx, "zz:99"); ok {
		t.Error("unknown player found")
	}
}

// flakyStore fails the Nth Create and lets every other call through.
type flakyStore struct {
	*countingStore
	failAt int
}

func (s *flakyStore) Create(ctx context.Context, c *device.Control) error {
	if s.creates+1 == s.failAt {
		s.creates++
		return errors.New("disk full")
	}
	return s.countingStore.Create(ctx, c)
}

func TestRegistry_EnsureRestoresPartialGroup(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{countingStore: newCountingStore(), failAt: 3}

	if _, err := NewRegistry(store, true).Ensure(ctx, "aa:01", "Kitchen"); err == nil {
		t.Fatal("Ensure succeeded despite a failed create")
	}

	// A later cycle, possibly after a restart, fills in the missing slots.
	r := NewRegistry(store, true)
	g, err := r.Ensure(ctx, "aa:01", "Kitchen")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	want := Group{PlayerID: "aa:01", Name: "Kitchen", Main: 1, Volume: 2, Track: 3, Actions: 4, Shuffle: 5, Repeat: 6}
	if *g != want {
		t.Errorf("group = %+v, want %+v", *g, want)
	}

	track, err := store.Get(ctx, 3)
	if err != nil {
		t.Fatalf("track control missing: %v", err)
	}
	if track.Role != device.RoleTrack || track.PlayerTag != "aa:01" || track.Name != "Kitchen Track" {
		t.Errorf("track = %+v", track)
	}
}

func TestRegistry_LookupWithoutMain(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	orphan := device.Control{ID: 2, Name: "Kitchen Volume", Kind: device.KindDimmer, Role: device.RoleVolume, PlayerTag: "aa:01"}
	if err := store.Create(ctx, &orphan); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := NewRegistry(store, true).Lookup(ctx, "aa:01"); ok || err != nil {
		t.Errorf("Lookup = %v, %v; want no group", ok, err)
	}
}
