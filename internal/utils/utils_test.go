package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHint_StartsMasked(t *testing.T) {
	h := NewHint("cat")
	assert.Equal(t, "___", h.String())
	assert.Equal(t, 0, h.Revealed())
}

func TestHint_SpacesAlwaysShown(t *testing.T) {
	h := NewHint("ice cream")
	assert.Equal(t, "___ _____", h.String())
	assert.Len(t, []rune(h.String()), len([]rune("ice cream")))
}

func TestHint_RevealIsCumulative(t *testing.T) {
	h := NewHint("light bulb")

	h.Reveal(2)
	assert.Equal(t, "li___ ____", h.String())

	h.Reveal(2)
	assert.Equal(t, "ligh_ ____", h.String())

	h.Reveal(3)
	assert.Equal(t, "light bu__", h.String())
	assert.Equal(t, 7, h.Revealed())
}

func TestHint_RevealMoreThanAvailable(t *testing.T) {
	h := NewHint("a b")
	h.Reveal(10)
	assert.Equal(t, "a b", h.String())
	assert.Equal(t, 2, h.Revealed())
}

func TestGetMaskedWord(t *testing.T) {
	assert.Equal(t, "", GetMaskedWord(""))
	assert.Equal(t, "_____ ___", GetMaskedWord("pizza box"))
}

func TestGenerateRoomCode(t *testing.T) {
	taken := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := GenerateRoomCode(8, func(c string) bool { return taken[c] })
		require.True(t, ValidRoomCode(code), code)
		require.False(t, taken[code])
		taken[code] = true
	}
}

func TestValidRoomCode(t *testing.T) {
	assert.True(t, ValidRoomCode("abcdefgh"))
	assert.False(t, ValidRoomCode("abc"))
	assert.False(t, ValidRoomCode("ABCDEFGH"))
	assert.False(t, ValidRoomCode("abcd3fgh"))
}

func TestSampleWords_NoReplacement(t *testing.T) {
	words := []string{"cat", "dog", "sun", "moon"}
	for i := 0; i < 20; i++ {
		picked := SampleWords(words, 3)
		require.Len(t, picked, 3)
		seen := map[string]bool{}
		for _, w := range picked {
			assert.Contains(t, words, w)
			assert.False(t, seen[w], "duplicate %q", w)
			seen[w] = true
		}
	}

	assert.Len(t, SampleWords([]string{"one"}, 3), 1)
}

func TestShuffle_IsPermutation(t *testing.T) {
	names := []string{"alice", "bob", "carol"}
	out := Shuffle(names)
	assert.ElementsMatch(t, names, out)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("alice"))
	assert.False(t, ValidUsername(""))
	assert.False(t, ValidUsername("   "))
	assert.False(t, ValidUsername("BOT"))
	assert.False(t, ValidUsername("SERVER"))
	assert.False(t, ValidUsername(strings.Repeat("x", 33)))
}

func TestReadWords(t *testing.T) {
	csv := "0,cat\n1,dog\n2,cat\nsun\n3,\n"
	words, err := ReadWords(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog", "sun"}, words)

	_, err = ReadWords(strings.NewReader(""))
	assert.Error(t, err)
}
