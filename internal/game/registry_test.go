package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

func newTestRegistry() *Registry {
	return NewRegistry(Settings{Words: testWords, Scheduler: newFakeScheduler()})
}

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := newTestRegistry()

	room, err := reg.Create("alice", newFakeMember())
	require.NoError(t, err)
	assert.True(t, utils.ValidRoomCode(room.Code()))
	assert.Equal(t, "alice", room.Owner())
	assert.Equal(t, map[string]int{"alice": 0, internal.BotName: 0}, room.Scores())
	assert.Equal(t, internal.StatePregame, room.State())

	got, err := reg.Get(room.Code())
	require.NoError(t, err)
	assert.Same(t, room, got)

	_, err = reg.Get("zzzzzzzz")
	assert.ErrorIs(t, err, internal.ErrRoomNotFound)
	_, err = reg.Get("NOT-A-CODE")
	assert.ErrorIs(t, err, internal.ErrInvalidRoomCode)

	_, err = reg.Create(internal.BotName, newFakeMember())
	assert.ErrorIs(t, err, internal.ErrInvalidUsername)
}

func TestRegistry_UniqueCodes(t *testing.T) {
	reg := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Create("owner", newFakeMember())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, reg.Len())
}

func TestRegistry_ListSkipsActiveRooms(t *testing.T) {
	reg := newTestRegistry()
	alice, bob, carol := newFakeMember(), newFakeMember(), newFakeMember()

	playing, err := reg.Create("alice", alice)
	require.NoError(t, err)
	require.NoError(t, playing.Join("bob", bob))
	require.NoError(t, playing.StartGame("alice", alice))

	waiting, err := reg.Create("carol", carol)
	require.NoError(t, err)
	other, err := reg.Create("dave", newFakeMember())
	require.NoError(t, err)

	list := reg.List()
	require.Len(t, list, 2)
	codes := []string{list[0].RoomCode, list[1].RoomCode}
	assert.ElementsMatch(t, []string{waiting.Code(), other.Code()}, codes)
	assert.Less(t, list[0].RoomCode, list[1].RoomCode)

	for _, info := range list {
		assert.Equal(t, 1, info.NumOfPlayers)
	}
}

func TestRegistry_RemoveIfEmpty(t *testing.T) {
	reg := newTestRegistry()
	alice := newFakeMember()
	room, err := reg.Create("alice", alice)
	require.NoError(t, err)

	assert.False(t, reg.RemoveIfEmpty(room.Code()))

	require.NoError(t, room.Leave("alice", alice))
	assert.True(t, reg.RemoveIfEmpty(room.Code()))
	assert.Zero(t, reg.Len())

	// a join holding a stale reference loses the race cleanly
	assert.ErrorIs(t, room.Join("bob", newFakeMember()), internal.ErrRoomNotFound)
}

func TestRegistry_LeaveAll(t *testing.T) {
	reg := newTestRegistry()
	alice, bob, carol := newFakeMember(), newFakeMember(), newFakeMember()

	shared, err := reg.Create("alice", alice)
	require.NoError(t, err)
	require.NoError(t, shared.Join("bob", bob))
	_, err = reg.Create("solo", carol)
	require.NoError(t, err)

	assert.Equal(t, 1, reg.LeaveAll(alice))
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"bob"}, shared.Members())
	assert.Equal(t, "bob", shared.Owner())
	assert.Zero(t, reg.LeaveAll(alice))

	assert.Equal(t, 1, reg.LeaveAll(carol))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RoomOf(t *testing.T) {
	reg := newTestRegistry()
	alice, bob := newFakeMember(), newFakeMember()

	_, ok := reg.RoomOf(alice)
	assert.False(t, ok)

	room, err := reg.Create("alice", alice)
	require.NoError(t, err)
	require.NoError(t, room.Join("bob", bob))

	got, ok := reg.RoomOf(bob)
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.True(t, room.Has(alice))

	require.NoError(t, room.Leave("bob", bob))
	_, ok = reg.RoomOf(bob)
	assert.False(t, ok)
	assert.False(t, room.Has(bob))
}

func TestRegistry_CloseStopsTimers(t *testing.T) {
	sched := newFakeScheduler()
	reg := NewRegistry(Settings{Words: testWords, Scheduler: sched, BotEnabled: true})
	alice, bob := newFakeMember(), newFakeMember()
	room, err := reg.Create("alice", alice)
	require.NoError(t, err)
	require.NoError(t, room.Join("bob", bob))
	require.NoError(t, room.StartGame("alice", alice))
	require.NotEmpty(t, sched.pending())

	reg.Close()

	assert.Empty(t, sched.pending())
	assert.Zero(t, reg.Len())
	assert.ErrorIs(t, room.Chat("alice", "hi", alice), internal.ErrRoomNotFound)
}

func TestRandomGuesser(t *testing.T) {
	g := NewRandomGuesser([]string{"cat"})
	assert.Contains(t, hurryUpTexts, g.Guess())

	g.AddStroke(internal.Stroke{{1, 1}})
	assert.Equal(t, "cat", g.Guess())

	g.UndoStroke()
	g.UndoStroke()
	assert.Contains(t, hurryUpTexts, g.Guess())

	empty := NewRandomGuesser(nil)
	empty.AddStroke(internal.Stroke{{1, 1}})
	assert.Equal(t, FallbackGuess, guessSafely(empty))
	assert.Equal(t, FallbackGuess, guessSafely(&stubGuesser{panics: true}))
}
