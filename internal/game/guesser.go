package game

import (
	"math/rand/v2"

	"github.com/scythe504/sketchroom/internal"
)

// FallbackGuess is what the bot says when its guesser fails.
const FallbackGuess = `I have no idea ¯\_(ツ)_/¯`

// Guesser looks at the strokes of the current drawing and names it. The
// room serializes every call, so implementations need no locking of their
// own. Guess must return promptly.
type Guesser interface {
	AddStroke(stroke internal.Stroke)
	UndoStroke()
	Clear()
	Guess() string
}

var hurryUpTexts = []string{
	"Come on!",
	"I'm bored...",
	"You're drawing it ages",
	"how much longer????",
	"I could draw it faster and I'm a bot..",
	"hurry up!",
	"Am I supposed to do this for you ...?",
	`¯\_(ツ)_/¯`,
}

// RandomGuesser is a recognizer stand-in. It taunts while the canvas is
// empty and otherwise names a random label.
type RandomGuesser struct {
	labels  []string
	strokes []internal.Stroke
}

func NewRandomGuesser(labels []string) Guesser {
	return &RandomGuesser{labels: labels}
}

func (g *RandomGuesser) AddStroke(stroke internal.Stroke) {
	g.strokes = append(g.strokes, stroke)
}

func (g *RandomGuesser) UndoStroke() {
	if len(g.strokes) > 0 {
		g.strokes = g.strokes[:len(g.strokes)-1]
	}
}

func (g *RandomGuesser) Clear() {
	g.strokes = nil
}

func (g *RandomGuesser) Guess() string {
	if len(g.strokes) == 0 {
		return hurryUpTexts[rand.IntN(len(hurryUpTexts))]
	}
	if len(g.labels) == 0 {
		return FallbackGuess
	}
	return g.labels[rand.IntN(len(g.labels))]
}

// guessSafely shields the room from a misbehaving guesser.
func guessSafely(g Guesser) (guess string) {
	defer func() {
		if recover() != nil {
			guess = FallbackGuess
		}
	}()
	guess = g.Guess()
	if guess == "" {
		guess = FallbackGuess
	}
	return guess
}
