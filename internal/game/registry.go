package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

// Settings are shared by every room a registry creates.
type Settings struct {
	ScoreLimit    int
	RoundDuration time.Duration
	Words         []string
	BotEnabled    bool
	NewGuesser    func(words []string) Guesser
	Scheduler     Scheduler
	Recorder      ResultRecorder
}

func (s Settings) withDefaults() Settings {
	if s.ScoreLimit <= 0 {
		s.ScoreLimit = internal.DefaultScoreLimit
	}
	if s.RoundDuration <= 0 {
		s.RoundDuration = internal.DefaultRoundDuration
	}
	if len(s.Words) == 0 {
		s.Words = utils.DefaultWords
	}
	if s.NewGuesser == nil {
		s.NewGuesser = NewRandomGuesser
	}
	if s.Scheduler == nil {
		s.Scheduler = SystemScheduler{}
	}
	return s
}

// Registry owns every live room. Lock order is registry then room; rooms
// never call back into the registry.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	settings Settings
}

func NewRegistry(settings Settings) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		settings: settings.withDefaults(),
	}
}

// Create opens a room owned by owner and returns it.
func (reg *Registry) Create(owner string, m internal.Member) (*Room, error) {
	if !utils.ValidUsername(owner) {
		return nil, internal.ErrInvalidUsername
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := utils.GenerateRoomCode(internal.RoomCodeLength, func(c string) bool {
		_, taken := reg.rooms[c]
		return taken
	})
	room := newRoom(code, owner, m, reg.settings)
	reg.rooms[code] = room
	return room, nil
}

func (reg *Registry) Get(code string) (*Room, error) {
	if !utils.ValidRoomCode(code) {
		return nil, internal.ErrInvalidRoomCode
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, internal.ErrRoomNotFound
	}
	return room, nil
}

// RemoveIfEmpty deletes and closes the room if nobody is left in it.
func (reg *Registry) RemoveIfEmpty(code string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return false
	}

	if !room.closeIfEmpty() {
		return false
	}

	delete(reg.rooms, code)
	log.Info().Str("room", code).Int("rooms", len(reg.rooms)).Msg("[RemoveIfEmpty] room deleted")
	return true
}

// LeaveAll removes m from every room it joined and deletes rooms left empty.
// Used when a session goes away.
func (reg *Registry) LeaveAll(m internal.Member) int {
	left := 0
	for _, room := range reg.snapshot() {
		if room.LeaveMember(m) {
			left++
			reg.RemoveIfEmpty(room.Code())
		}
	}
	return left
}

// RoomOf returns the room m is a member of. A session belongs to at most
// one room; the dispatcher checks this before create and join.
func (reg *Registry) RoomOf(m internal.Member) (*Room, bool) {
	for _, room := range reg.snapshot() {
		if room.Has(m) {
			return room, true
		}
	}
	return nil, false
}

// List returns the joinable rooms sorted by code.
func (reg *Registry) List() []internal.RoomInfo {
	infos := make([]internal.RoomInfo, 0)
	for _, room := range reg.snapshot() {
		if info, joinable := room.Info(); joinable {
			infos = append(infos, info)
		}
	}
	internal.SortRoomInfos(infos)
	return infos
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Close shuts down every room.
func (reg *Registry) Close() {
	reg.mu.Lock()
	rooms := reg.rooms
	reg.rooms = make(map[string]*Room)
	reg.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
	log.Info().Int("rooms", len(rooms)).Msg("[Close] registry closed")
}

func (reg *Registry) snapshot() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
