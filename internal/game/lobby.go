package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

// =============================================================================
// GAME FLOW - LOBBY & GAME LIFECYCLE
// =============================================================================

const recordTimeout = 5 * time.Second

// ResultRecorder archives finished games. Rooms call it off their lock.
type ResultRecorder interface {
	RecordGame(ctx context.Context, result internal.GameResult) error
}

// StartGame moves the room from the lobby into its first word selection.
// Checks run in order: state, ownership, head count.
func (r *Room) StartGame(user string, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(user, m); err != nil {
		return err
	}
	if r.state.Active() {
		return internal.ErrNotInPregame
	}
	if user != r.owner {
		return internal.ErrNotOwner
	}
	if len(r.members) < internal.MinPlayersToStart {
		return internal.ErrNotEnoughPlayers
	}

	// 1. Fresh game bookkeeping
	r.state = internal.StateStarting
	r.game++
	r.gameID = uuid.NewString()
	r.gameStartedAt = r.sched.Now()
	r.rounds = 0
	r.scores = internal.NewScoreBoard(r.memberNames()...)
	r.turnOrder = utils.Shuffle(r.memberNames())
	r.log.Info().Str("game", r.gameID).Strs("turn_order", r.turnOrder).Msg("[StartGame] game starting")

	// 2. The starter hears OK before anything else
	r.send(m, internal.StartGameResp{Status: internal.StatusOK})

	words := r.enterWordSelection()
	if r.state != internal.StateWordSelection {
		return nil
	}
	r.startBot()

	r.broadcast(internal.StartGameBc{Artist: r.artist, ScoreAwarded: r.scores.Clone()})
	r.sendTo(r.artist, internal.WordSelectionReq{
		Artist:   r.artist,
		RoomCode: r.code,
		WordList: words,
	})
	return nil
}

// finishGame ends the current game and returns the room to the lobby side.
// An empty info means the score limit was reached. Caller holds r.mu.
func (r *Room) finishGame(info string) {
	r.stopRound()
	r.stopBot()

	r.state = internal.StatePostgame
	r.artist = ""
	r.currentWord = ""
	r.candidates = nil
	r.hint = nil
	r.turnOrder = nil
	r.guesser.Clear()

	reason := info
	if reason == "" {
		reason = "Game finished!"
	} else {
		r.broadcast(internal.ServerChat("%s", info))
	}
	r.broadcast(internal.GameFinishedBc{Info: reason})

	result := buildResult(r, reason)
	r.log.Info().
		Str("game", result.GameID).
		Str("winner", result.Winner).
		Int("rounds", result.Rounds).
		Str("reason", reason).
		Msg("[finishGame] game finished")
	r.recordResult(result)
}

func (r *Room) recordResult(result internal.GameResult) {
	if r.recorder == nil {
		return
	}
	rec, logger := r.recorder, r.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := rec.RecordGame(ctx, result); err != nil {
			logger.Error().Err(err).Str("game", result.GameID).Msg("[recordResult] failed to archive game")
		}
	}()
}
