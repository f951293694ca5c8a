package internal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest(NameDrawStrokeReq, []byte(`{"user_name":"alice","room_code":"abcdefgh","stroke_coordinates":[[1,2],{"x":3,"y":4}]}`))
	require.NoError(t, err)

	draw, ok := req.(DrawStrokeReq)
	require.True(t, ok)
	assert.Equal(t, "alice", draw.UserName)
	assert.Equal(t, Stroke{{1, 2}, {3, 4}}, draw.StrokeCoordinates)

	req, err = ParseRequest(NameGameRoomListReq, nil)
	require.NoError(t, err)
	assert.IsType(t, GameRoomListReq{}, req)

	_, err = ParseRequest("Bogus", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = ParseRequest(NameChatMessageReq, []byte(`{"message": 1}`))
	assert.Error(t, err)

	_, err = ParseRequest(NameDrawStrokeReq, []byte(`{"stroke_coordinates":[{"x":1}]}`))
	assert.Error(t, err)
}

func TestNormalizeStroke(t *testing.T) {
	got, err := NormalizeStroke(Stroke{{-5, 10}, {CanvasWidth + 1, CanvasHeight * 2}})
	require.NoError(t, err)
	assert.Equal(t, Stroke{{0, 10}, {CanvasWidth - 1, CanvasHeight - 1}}, got)

	for name, s := range map[string]Stroke{
		"empty":    {},
		"nan":      {{math.NaN(), 0}},
		"inf":      {{0, math.Inf(1)}},
		"too long": make(Stroke, MaxStrokePoints+1),
	} {
		_, err := NormalizeStroke(s)
		assert.ErrorIs(t, err, ErrInvalidStroke, name)
	}
}

func TestScoreBoard(t *testing.T) {
	sb := NewScoreBoard("bob", "alice")
	assert.Equal(t, map[string]int{BotName: 0, "alice": 0, "bob": 0}, sb.Clone())
	assert.Equal(t, "BOT", sb.Leader())

	sb["bob"] = 50
	sb["alice"] = 50
	assert.Equal(t, 50, sb.Max())
	assert.Equal(t, "alice", sb.Leader())

	clone := sb.Clone()
	clone["bob"] = 0
	assert.Equal(t, 50, sb["bob"])
}

func TestErrorWith(t *testing.T) {
	err := ErrUsernameTaken.With("Username bob already taken in room with code abcdefgh")

	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NotErrorIs(t, err, ErrInvalidUsername)
	assert.ErrorIs(t, err.With("again"), ErrUsernameTaken)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Username bob already taken in room with code abcdefgh", InfoOf(err))

	wrapped := errors.Join(errors.New("io"), ErrConnectionClosed)
	assert.Equal(t, KindConnection, KindOf(wrapped))
	assert.Equal(t, "Unknown error occurred!", InfoOf(errors.New("boom")))
}

func TestRoomStateActive(t *testing.T) {
	assert.False(t, StatePregame.Active())
	assert.False(t, StatePostgame.Active())
	assert.True(t, StateStarting.Active())
	assert.True(t, StateWordSelection.Active())
	assert.True(t, StateDrawing.Active())
	assert.Equal(t, "WORD_SELECTION", StateWordSelection.String())
}
