package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phanxgames/raidplan"
)

// ErrNotFound is returned when a raid id has no stored document.
var ErrNotFound = errors.New("raid not found")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveRaid(ctx context.Context, raid raidplan.PersistedRaid) error
	LoadRaid(ctx context.Context, id string) (*raidplan.PersistedRaid, error)
	ListRaids(ctx context.Context) ([]RaidSummary, error)
	DeleteRaid(ctx context.Context, id string) error
}

type RaidSummary struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	SavedAt    time.Time
	SceneCount int
}

// LoadState restores every stored raid into a fresh state.
func LoadState(ctx context.Context, s Store) (raidplan.RaidsState, error) {
	summaries, err := s.ListRaids(ctx)
	if err != nil {
		return raidplan.RaidsState{}, fmt.Errorf("loading state: %w", err)
	}
	engine := raidplan.NewEngine(raidplan.NewRaidsState())
	for _, sum := range summaries {
		raid, err := s.LoadRaid(ctx, sum.ID)
		if err != nil {
			return raidplan.RaidsState{}, fmt.Errorf("loading state: %w", err)
		}
		raidplan.RestorePersistedRaid(engine, *raid)
	}
	return engine.State(), nil
}

// SaveState writes every raid in state. Raids stored but absent from state
// are left alone.
func SaveState(ctx context.Context, s Store, state raidplan.RaidsState) (int, error) {
	n := 0
	for _, id := range raidplan.SortedRaidIDs(state) {
		raid, ok := raidplan.PersistedRaidOf(state, id)
		if !ok {
			continue
		}
		if err := s.SaveRaid(ctx, raid); err != nil {
			return n, fmt.Errorf("saving state: %w", err)
		}
		n++
	}
	return n, nil
}
