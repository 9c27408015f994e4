package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]game.Game
}

func NewGameRepository(games []game.Game) *GameRepository {
	items := make(map[string]game.Game, len(games))
	for _, item := range games {
		items[item.ID] = cloneGame(item)
	}

	return &GameRepository{items: items}
}

func (r *GameRepository) ListByWeek(_ context.Context, week int) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.items {
		if item.Week == week {
			out = append(out, cloneGame(item))
		}
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) GetByIDs(_ context.Context, gameIDs []string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(gameIDs))
	seen := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.items[id]; ok {
			out = append(out, cloneGame(item))
		}
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) Upsert(_ context.Context, games []game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range games {
		r.items[item.ID] = cloneGame(item)
	}
	return nil
}

func cloneGame(item game.Game) game.Game {
	if item.Winner != nil {
		winner := *item.Winner
		item.Winner = &winner
	}
	return item
}

func sortGames(items []game.Game) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].KickoffAt.Equal(items[j].KickoffAt) {
			return items[i].KickoffAt.Before(items[j].KickoffAt)
		}
		return items[i].ID < items[j].ID
	})
}
