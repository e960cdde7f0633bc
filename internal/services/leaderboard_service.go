package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
)

// LeaderboardServiceProvider defines the interface for leaderboard queries.
type LeaderboardServiceProvider interface {
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// LeaderboardService ranks users by XP.
type LeaderboardService struct {
	db *sqlx.DB
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(db *sqlx.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// Leaderboard returns users ordered by XP, highest first. Ties keep
// registration order. Rank is the 1-based position in the result, so tied
// users get consecutive ranks rather than a shared one.
func (s *LeaderboardService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	entries := []models.LeaderboardEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT u.id, u.name, u.profile_photo,
		       COALESCE(p.current_xp, 0) AS xp,
		       COALESCE(p.streak, 0) AS streak
		FROM users u
		LEFT JOIN user_progress p ON p.user_id = u.id
		ORDER BY xp DESC, u.rowid ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr("leaderboard", err)
	}

	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Level = progress.ComputeLevel(entries[i].XP).Level
	}
	return entries, nil
}
