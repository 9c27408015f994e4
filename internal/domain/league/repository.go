package league

import "context"

// Repository describes league and membership reads needed by scoring.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]Member, error)
	GetMember(ctx context.Context, leagueID, userID string) (Member, bool, error)
	ListByMember(ctx context.Context, userID string) ([]League, error)
	// ListWithMembers returns leagues that have at least one member.
	ListWithMembers(ctx context.Context) ([]League, error)
}
