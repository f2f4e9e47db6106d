package game

import (
	"slices"

	"github.com/scythe504/basta-backend/internal"
)

// =============================================================================
// SCORING
// =============================================================================

// Leaderboard ranks participants by score, highest first. Ties keep join
// order and share no position: positions run 1..n.
func Leaderboard(room *internal.Room) []internal.LeaderboardEntry {
	roster := room.PlayerList()
	slices.SortStableFunc(roster, func(a, b internal.RosterEntry) int {
		return b.Score - a.Score
	})

	entries := make([]internal.LeaderboardEntry, 0, len(roster))
	for i, p := range roster {
		entries = append(entries, internal.LeaderboardEntry{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Score:    p.Score,
			Position: i + 1,
		})
	}
	return entries
}
