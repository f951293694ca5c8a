package game

import (
	"slices"
	"time"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================

// enterWordSelection rotates the turn order, picks the candidates and starts
// the round clock. It returns the candidates. If nobody is left to draw the
// game ends instead. Caller holds r.mu.
func (r *Room) enterWordSelection() []string {
	r.stopRound()

	if len(r.turnOrder) == 0 {
		r.finishGame("Game Interrupted - nobody left to draw!")
		return nil
	}

	// 1. Head of the queue draws and goes to the back
	r.artist = r.turnOrder[0]
	r.turnOrder = append(r.turnOrder[1:], r.artist)

	// 2. Reset per-round state
	r.state = internal.StateWordSelection
	r.candidates = utils.SampleWords(r.words, internal.WordChoicesCount)
	r.currentWord = ""
	r.hint = nil
	r.guesser.Clear()
	r.rounds++

	// 3. Clock runs from word selection, not from the first stroke
	r.round++
	r.timer = newRoundTimer(r, r.round, r.roundDuration)
	r.timer.start()

	r.log.Info().
		Uint64("round", r.round).
		Str("artist", r.artist).
		Strs("candidates", r.candidates).
		Msg("[enterWordSelection] new round")
	return slices.Clone(r.candidates)
}

// nextRound starts a later round and announces it. Caller holds r.mu.
func (r *Room) nextRound() {
	words := r.enterWordSelection()
	if r.state != internal.StateWordSelection {
		return
	}
	r.broadcast(internal.ArtistPickBc{Artist: r.artist})
	r.sendTo(r.artist, internal.WordSelectionReq{
		Artist:   r.artist,
		RoomCode: r.code,
		WordList: words,
	})
}

// stopRound cancels the round clock. Caller holds r.mu.
func (r *Room) stopRound() {
	if r.timer != nil {
		r.timer.finish()
		r.timer = nil
	}
}

// SelectWord is the artist's answer to WordSelectionReq.
func (r *Room) SelectWord(user, word string, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(user, m); err != nil {
		return err
	}
	if r.state != internal.StateWordSelection {
		return internal.ErrWrongState
	}
	if user != r.artist {
		return internal.ErrNotArtist
	}
	if !slices.Contains(r.candidates, word) {
		return internal.ErrInvalidWord
	}

	r.state = internal.StateDrawing
	r.currentWord = word
	r.candidates = nil
	r.hint = utils.NewHint(word)
	r.log.Info().Str("artist", user).Msg("[SelectWord] word chosen, drawing started")

	r.broadcast(internal.WordHintBc{WordHint: r.hint.String()})
	return nil
}

// onHalfTime announces the remaining time and, while drawing, uncovers more
// of the word. Caller holds r.mu.
func (r *Room) onHalfTime(remaining time.Duration) {
	r.broadcast(internal.ServerChat("Half time - %d seconds left", int(remaining.Round(time.Second).Seconds())))

	if r.state == internal.StateDrawing && r.hint != nil {
		r.hint.Reveal(internal.HalfTimeHints)
		r.broadcast(internal.WordHintBc{WordHint: r.hint.String()})
	}
}

// onRoundTimeout ends a round nobody guessed. Caller holds r.mu.
func (r *Room) onRoundTimeout() {
	r.stopRound()

	if r.currentWord != "" {
		r.broadcast(internal.ServerChat("Time is over - word: %s", r.currentWord))
	} else {
		r.broadcast(internal.ServerChat("Time is over"))
	}
	r.log.Info().Str("artist", r.artist).Msg("[onRoundTimeout] round timed out")

	r.nextRound()
}

// interruptRound replaces a round whose artist left. Caller holds r.mu.
func (r *Room) interruptRound() {
	r.stopRound()

	if r.currentWord != "" {
		r.broadcast(internal.ServerChat("Round interrupted - artist left the game - word: %s", r.currentWord))
	} else {
		r.broadcast(internal.ServerChat("Round interrupted - artist left the game"))
	}
	r.nextRound()
}
