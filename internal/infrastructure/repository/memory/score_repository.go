package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/score"
)

type scoreKey struct {
	userID   string
	leagueID string
	week     int
}

type weekRunKey struct {
	leagueID string
	week     int
}

type ScoreRepository struct {
	mu     sync.RWMutex
	scores map[scoreKey]score.Score
	runs   map[weekRunKey]score.WeekRun
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{
		scores: make(map[scoreKey]score.Score),
		runs:   make(map[weekRunKey]score.WeekRun),
	}
}

// UpsertWeek writes the rows and the run under one lock, so readers never see half a week.
func (r *ScoreRepository) UpsertWeek(_ context.Context, rows []score.Score, run score.WeekRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range rows {
		r.scores[scoreKey{userID: item.UserID, leagueID: item.LeagueID, week: item.Week}] = item
	}
	r.runs[weekRunKey{leagueID: run.LeagueID, week: run.Week}] = run
	return nil
}

func (r *ScoreRepository) ListByLeagueWeek(_ context.Context, leagueID string, week int) ([]score.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]score.Score, 0)
	for _, item := range r.scores {
		if item.LeagueID == leagueID && item.Week == week {
			out = append(out, item)
		}
	}
	sortScores(out)
	return out, nil
}

func (r *ScoreRepository) ListByLeague(_ context.Context, leagueID string) ([]score.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]score.Score, 0)
	for _, item := range r.scores {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sortScores(out)
	return out, nil
}

func (r *ScoreRepository) GetWeekRun(_ context.Context, leagueID string, week int) (score.WeekRun, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[weekRunKey{leagueID: leagueID, week: week}]
	return run, ok, nil
}

func (r *ScoreRepository) ListWeekRuns(_ context.Context, leagueID string) ([]score.WeekRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]score.WeekRun, 0)
	for _, run := range r.runs {
		if run.LeagueID == leagueID {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func sortScores(items []score.Score) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Week != items[j].Week {
			return items[i].Week < items[j].Week
		}
		return items[i].UserID < items[j].UserID
	})
}
