package models

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	XP           int     `json:"xp" db:"xp"`
	Level        int     `json:"level" db:"-"`
	Streak       int     `json:"streak" db:"streak"`
	Rank         int     `json:"rank" db:"-"`
	ProfilePhoto *string `json:"profilePhoto" db:"profile_photo"`
}
