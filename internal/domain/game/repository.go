package game

import "context"

// Repository describes game persistence needs from use cases.
type Repository interface {
	ListByWeek(ctx context.Context, week int) ([]Game, error)
	GetByIDs(ctx context.Context, gameIDs []string) ([]Game, error)
	Upsert(ctx context.Context, games []Game) error
}
