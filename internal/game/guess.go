package game

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

const (
	closeGuessDistance  = 2
	closeGuessMinLength = 4
)

// Chat handles a chat line. While drawing, a line matching the word exactly
// is a correct guess and is never shown to others.
func (r *Room) Chat(user, text string, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(user, m); err != nil {
		return err
	}
	r.handleChat(user, text, m)
	return nil
}

// handleChat is shared by players and the bot; sender is nil for the bot.
// Caller holds r.mu.
func (r *Room) handleChat(user, text string, sender internal.Member) {
	if r.state == internal.StateDrawing {
		if user == r.artist {
			if sender != nil {
				r.send(sender, internal.ServerChat("As an artist, you can't use chat!"))
			}
			return
		}
		if text == r.currentWord {
			r.handleCorrectGuess(user)
			return
		}
	}

	r.broadcast(internal.ChatMessageBc{Author: user, Message: text})

	if r.state == internal.StateDrawing && sender != nil && isCloseGuess(text, r.currentWord) {
		r.send(sender, internal.ServerChat("'%s' is close!", text))
	}
}

// handleCorrectGuess scores the round and moves on. Caller holds r.mu.
func (r *Room) handleCorrectGuess(user string) {
	// 1. Stop the clock first so a pending timeout cannot fire for this round
	elapsed := r.timer.finish()

	word := r.currentWord
	bonus := artistPoints(r.roundDuration, elapsed)
	r.scores[user] += internal.GuesserPoints
	r.scores[r.artist] += bonus

	r.log.Info().
		Str("guesser", user).
		Str("artist", r.artist).
		Dur("elapsed", elapsed).
		Int("artist_points", bonus).
		Msg("[handleCorrectGuess] word guessed")

	r.broadcast(internal.WordGuessedBc{
		UserName:     user,
		Word:         word,
		ScoreAwarded: r.scores.Clone(),
	})

	// 2. Score limit ends the game, otherwise the next artist is up
	if r.scores.Max() >= r.scoreLimit {
		r.finishGame("")
		return
	}
	r.nextRound()
}

func isCloseGuess(guess, word string) bool {
	if word == "" || len([]rune(word)) < closeGuessMinLength {
		return false
	}
	g, w := strings.ToLower(strings.TrimSpace(guess)), strings.ToLower(word)
	if g == w {
		return false
	}
	return levenshtein.ComputeDistance(g, w) <= closeGuessDistance
}

// =============================================================================
// BOT
// =============================================================================

func (r *Room) botPeriod() time.Duration {
	return r.roundDuration / 10
}

// startBot schedules the bot's first guess of the game. Caller holds r.mu.
func (r *Room) startBot() {
	if !r.botEnabled || r.botPeriod() <= 0 {
		return
	}
	r.scheduleBot(r.game)
}

func (r *Room) scheduleBot(game uint64) {
	r.botTick = r.sched.AfterFunc(r.botPeriod(), func() { r.botGuess(game) })
}

// stopBot cancels the pending bot tick. Caller holds r.mu.
func (r *Room) stopBot() {
	if r.botTick != nil {
		r.botTick.Stop()
		r.botTick = nil
	}
}

func (r *Room) botGuess(game uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverPanic("botGuess")

	if r.closed || r.game != game || !r.state.Active() {
		return
	}
	r.scheduleBot(game)

	if r.state != internal.StateDrawing {
		return
	}
	r.handleChat(internal.BotName, guessSafely(r.guesser), nil)
}
