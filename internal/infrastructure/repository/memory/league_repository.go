package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	items   map[string]league.League
	orders  []string
	members map[string][]league.Member
}

func NewLeagueRepository(leagues []league.League, members []league.Member) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	orders := make([]string, 0, len(leagues))

	for _, l := range leagues {
		if _, exists := items[l.ID]; !exists {
			orders = append(orders, l.ID)
		}
		items[l.ID] = l
	}

	byLeague := make(map[string][]league.Member)
	for _, m := range members {
		byLeague[m.LeagueID] = append(byLeague[m.LeagueID], m)
	}

	return &LeagueRepository{
		items:   items,
		orders:  orders,
		members: byLeague,
	}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.members[leagueID]
	out := make([]league.Member, 0, len(items))
	out = append(out, items...)
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *LeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members[leagueID] {
		if m.UserID == userID {
			return m, true, nil
		}
	}
	return league.Member{}, false, nil
}

func (r *LeagueRepository) ListByMember(_ context.Context, userID string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0)
	for _, id := range r.orders {
		for _, m := range r.members[id] {
			if m.UserID == userID {
				out = append(out, r.items[id])
				break
			}
		}
	}
	return out, nil
}

func (r *LeagueRepository) ListWithMembers(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, id := range r.orders {
		if len(r.members[id]) > 0 {
			out = append(out, r.items[id])
		}
	}
	return out, nil
}

// AddMember is used by seeds and tests; membership is otherwise managed elsewhere.
func (r *LeagueRepository) AddMember(member league.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.members[member.LeagueID] {
		if m.UserID == member.UserID {
			r.members[member.LeagueID][i] = member
			return
		}
	}
	r.members[member.LeagueID] = append(r.members[member.LeagueID], member)
}
