package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/pick"
)

type pickKey struct {
	userID   string
	gameID   string
	leagueID string
}

type PickRepository struct {
	mu    sync.RWMutex
	items map[pickKey]pick.Pick
}

func NewPickRepository(picks []pick.Pick) *PickRepository {
	r := &PickRepository{items: make(map[pickKey]pick.Pick, len(picks))}
	for _, item := range picks {
		r.items[keyOfPick(item)] = item
	}
	return r
}

func (r *PickRepository) ListByLeagueWeek(_ context.Context, leagueID string, week int) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.Week == week {
			out = append(out, item)
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListByLeagueWeekUser(_ context.Context, leagueID string, week int, userID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.Week == week && item.UserID == userID {
			out = append(out, item)
		}
	}
	sortPicks(out)
	return out, nil
}

// Upsert replaces any pick with the same (user, game, league).
func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[keyOfPick(item)] = item
	return nil
}

func keyOfPick(item pick.Pick) pickKey {
	return pickKey{userID: item.UserID, gameID: item.GameID, leagueID: item.LeagueID}
}

func sortPicks(items []pick.Pick) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].UserID != items[j].UserID {
			return items[i].UserID < items[j].UserID
		}
		return items[i].GameID < items[j].GameID
	})
}
