package league

import (
	"fmt"
	"strings"
	"time"
)

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// League groups users who pick against the same slate of games.
type League struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}

// Member is a user enrolled in a league, with the display fields leaderboards need.
type Member struct {
	LeagueID     string
	UserID       string
	Username     string
	ProfileImage string
	Role         string
	JoinedAt     time.Time
}

func (m Member) IsOwner() bool {
	return m.Role == RoleOwner
}
