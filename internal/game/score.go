package game

import (
	"math"
	"time"

	"github.com/scythe504/sketchroom/internal"
)

// artistPoints rewards the artist by the seconds left on the clock. A round
// that overran its duration gives nothing rather than a penalty.
func artistPoints(duration, elapsed time.Duration) int {
	left := math.Round((duration - elapsed).Seconds())
	return max(0, int(left))
}

// buildResult snapshots a finished game. Caller holds r.mu.
func buildResult(r *Room, reason string) internal.GameResult {
	return internal.GameResult{
		GameID:     r.gameID,
		RoomCode:   r.code,
		Winner:     r.scores.Leader(),
		Scores:     r.scores.Clone(),
		Rounds:     r.rounds,
		Reason:     reason,
		StartedAt:  r.gameStartedAt,
		FinishedAt: r.sched.Now(),
	}
}
