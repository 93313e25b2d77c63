package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phanxgames/raidplan"
	"github.com/phanxgames/raidplan/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://:memory:", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close(ctx) })
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return c
}

func sampleRaid(t *testing.T) (raidplan.RaidsState, string) {
	t.Helper()
	n := 0
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ed := raidplan.NewEditor(raidplan.NewRaidsState(), raidplan.EditorConfig{
		Now: func() time.Time { n++; return clock.Add(time.Duration(n) * time.Second) },
	})
	raidID := ed.CreateRaid("Council")
	sceneID := ed.CreateScene(raidID, "Pull", raidplan.Rectangle(40, 30))
	if _, err := ed.CreateEntity(sceneID, "", "tank", raidplan.ShapeProperties(raidplan.Circle(1), raidplan.Vec2{X: 3, Y: 4})); err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	return ed.State(), raidID
}

func TestRaidRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	state, raidID := sampleRaid(t)

	raid, ok := raidplan.PersistedRaidOf(state, raidID)
	if !ok {
		t.Fatalf("PersistedRaidOf(%s) not found", raidID)
	}
	if err := c.SaveRaid(ctx, raid); err != nil {
		t.Fatalf("SaveRaid: %v", err)
	}

	got, err := c.LoadRaid(ctx, raidID)
	if err != nil {
		t.Fatalf("LoadRaid: %v", err)
	}
	if got.Metadata.Name != "Council" {
		t.Errorf("Metadata.Name = %q, want Council", got.Metadata.Name)
	}
	if len(got.Scenes) != 1 || len(got.Steps) != 1 || len(got.Entities) != 1 {
		t.Fatalf("loaded %d scenes, %d steps, %d entities, want 1 each",
			len(got.Scenes), len(got.Steps), len(got.Entities))
	}
	pos := got.Entities[0].Properties.Position.Initial
	if pos != (raidplan.Vec2{X: 3, Y: 4}) {
		t.Errorf("entity position = %v, want {3 4}", pos)
	}

	list, err := c.ListRaids(ctx)
	if err != nil {
		t.Fatalf("ListRaids: %v", err)
	}
	if len(list) != 1 || list[0].ID != raidID || list[0].SceneCount != 1 {
		t.Errorf("ListRaids = %+v, want one summary for %s with 1 scene", list, raidID)
	}
}

func TestSaveRaidUpserts(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	state, raidID := sampleRaid(t)

	raid, _ := raidplan.PersistedRaidOf(state, raidID)
	if err := c.SaveRaid(ctx, raid); err != nil {
		t.Fatalf("SaveRaid: %v", err)
	}
	raid.Metadata.Name = "Council (heroic)"
	if err := c.SaveRaid(ctx, raid); err != nil {
		t.Fatalf("SaveRaid again: %v", err)
	}

	list, err := c.ListRaids(ctx)
	if err != nil {
		t.Fatalf("ListRaids: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(ListRaids) = %d, want 1", len(list))
	}
	if list[0].Name != "Council (heroic)" {
		t.Errorf("Name = %q, want Council (heroic)", list[0].Name)
	}
}

func TestMissingRaid(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if _, err := c.LoadRaid(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("LoadRaid(nope) error = %v, want ErrNotFound", err)
	}
	if err := c.DeleteRaid(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteRaid(nope) error = %v, want ErrNotFound", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	state, raidID := sampleRaid(t)

	n, err := store.SaveState(ctx, c, state)
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if n != 1 {
		t.Errorf("SaveState wrote %d raids, want 1", n)
	}

	loaded, err := store.LoadState(ctx, c)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(loaded.Entities) != len(state.Entities) || len(loaded.Steps) != len(state.Steps) {
		t.Errorf("loaded %d entities, %d steps, want %d, %d",
			len(loaded.Entities), len(loaded.Steps), len(state.Entities), len(state.Steps))
	}

	if err := c.DeleteRaid(ctx, raidID); err != nil {
		t.Fatalf("DeleteRaid: %v", err)
	}
	list, err := c.ListRaids(ctx)
	if err != nil {
		t.Fatalf("ListRaids: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListRaids after delete = %+v, want empty", list)
	}
}
