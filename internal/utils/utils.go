package utils

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// HINTS
// =============================================================================

// Hint tracks which letters of the current word are disclosed.
type Hint struct {
	word     []rune
	revealed []bool
}

func NewHint(word string) *Hint {
	runes := []rune(word)
	return &Hint{word: runes, revealed: make([]bool, len(runes))}
}

// Reveal discloses up to n more letters, scanning left to right. Revealed
// letters stay revealed for the rest of the round.
func (h *Hint) Reveal(n int) {
	for i, r := range h.word {
		if n <= 0 {
			return
		}
		if r == ' ' || h.revealed[i] {
			continue
		}
		h.revealed[i] = true
		n--
	}
}

// Revealed counts disclosed letters, spaces excluded.
func (h *Hint) Revealed() int {
	count := 0
	for i, r := range h.word {
		if r != ' ' && h.revealed[i] {
			count++
		}
	}
	return count
}

func (h *Hint) String() string {
	var b strings.Builder
	b.Grow(len(h.word))
	for i, r := range h.word {
		switch {
		case r == ' ':
			b.WriteRune(' ')
		case h.revealed[i]:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// GetMaskedWord converts word to underscores, keeping spaces.
func GetMaskedWord(word string) string {
	return NewHint(word).String()
}

// =============================================================================
// ROOM CODES & WORDS
// =============================================================================

const roomCodeLetters = "abcdefghijklmnopqrstuvwxyz"

// GenerateRoomCode returns a random lowercase code not accepted by taken.
func GenerateRoomCode(length int, taken func(string) bool) string {
	for {
		code := randomString(length)
		if taken == nil || !taken(code) {
			return code
		}
	}
}

func randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = roomCodeLetters[rand.IntN(len(roomCodeLetters))]
	}
	return string(b)
}

func ValidRoomCode(code string) bool {
	if len(code) != internal.RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'a' || code[i] > 'z' {
			return false
		}
	}
	return true
}

// SampleWords picks up to n distinct entries without replacement.
func SampleWords(words []string, n int) []string {
	if n > len(words) {
		n = len(words)
	}
	picked := make([]string, 0, n)
	for _, idx := range rand.Perm(len(words))[:n] {
		picked = append(picked, words[idx])
	}
	return picked
}

// Shuffle returns a shuffled copy of names.
func Shuffle(names []string) []string {
	out := append([]string(nil), names...)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

const maxUsernameLen = 32

// ValidUsername rejects empty, overly long and reserved names.
func ValidUsername(name string) bool {
	if strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > maxUsernameLen {
		return false
	}
	return !IsReservedName(name)
}

func IsReservedName(name string) bool {
	return name == internal.BotName || name == internal.ServerName
}
