package game

import (
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/utils"
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

// Room is one game lobby and its state machine. Every field is guarded by mu,
// and every transition plus the broadcasts it causes happen under one hold
// of mu, so all members observe room events in the same order.
type Room struct {
	mu  sync.Mutex
	log zerolog.Logger

	code    string
	owner   string
	members map[string]internal.Member
	scores  internal.ScoreBoard
	state   internal.RoomState
	closed  bool

	// Current game.
	gameID        string
	game          uint64
	gameStartedAt time.Time
	rounds        int
	turnOrder     []string
	artist        string
	candidates    []string
	currentWord   string
	hint          *utils.Hint

	// Current round.
	round   uint64
	timer   *RoundTimer
	botTick Timer

	scoreLimit    int
	roundDuration time.Duration
	words         []string
	botEnabled    bool
	guesser       Guesser
	sched         Scheduler
	recorder      ResultRecorder
}

func newRoom(code, owner string, m internal.Member, s Settings) *Room {
	r := &Room{
		log:           log.With().Str("room", code).Logger(),
		code:          code,
		owner:         owner,
		members:       map[string]internal.Member{owner: m},
		scores:        internal.NewScoreBoard(owner),
		state:         internal.StatePregame,
		scoreLimit:    s.ScoreLimit,
		roundDuration: s.RoundDuration,
		words:         s.Words,
		botEnabled:    s.BotEnabled,
		guesser:       s.NewGuesser(s.Words),
		sched:         s.Scheduler,
		recorder:      s.Recorder,
	}
	r.log.Info().Str("owner", owner).Msg("[newRoom] room created")
	return r
}

func (r *Room) Code() string {
	return r.code
}

// =============================================================================
// MEMBERSHIP
// =============================================================================

// Join adds a player to the room and sends them the JoinRoomResp. The
// response reaches the joiner before any broadcast their arrival causes.
func (r *Room) Join(user string, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return internal.ErrRoomNotFound
	}

	// 1. Username checks come before the state check
	if utils.IsReservedName(user) {
		return internal.ErrUsernameTaken.With(r.usernameTakenInfo(user))
	}
	if !utils.ValidUsername(user) {
		return internal.ErrInvalidUsername
	}
	if _, taken := r.members[user]; taken {
		return internal.ErrUsernameTaken.With(r.usernameTakenInfo(user))
	}
	if r.memberName(m) != "" {
		return internal.ErrAlreadyJoined
	}

	// 2. Nobody joins a running game
	if r.state.Active() {
		return internal.ErrGameStarted
	}

	r.members[user] = m
	r.scores[user] = 0
	r.log.Info().Str("user", user).Int("members", len(r.members)).Msg("[Join] player joined")

	r.send(m, internal.JoinRoomResp{
		Status:      internal.StatusOK,
		Owner:       r.owner,
		UsersInRoom: r.scores.Clone(),
	})
	r.broadcast(internal.ServerChat("%s has joined the game", user))
	r.broadcast(internal.UpdateScoreboardBc{UsersInRoom: r.scores.Clone()})
	return nil
}

func (r *Room) usernameTakenInfo(user string) string {
	return fmt.Sprintf("Username %s already taken in room with code %s", user, r.code)
}

// Leave removes user on behalf of the session that owns that name.
func (r *Room) Leave(user string, m internal.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(user, m); err != nil {
		return err
	}
	r.removeMember(user)
	return nil
}

// LeaveMember removes whatever name m holds in the room. It reports whether
// m was a member.
func (r *Room) LeaveMember(m internal.Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.memberName(m)
	if user == "" {
		return false
	}
	r.removeMember(user)
	return true
}

// removeMember runs the leave flow. Caller holds r.mu.
func (r *Room) removeMember(user string) {
	delete(r.members, user)
	delete(r.scores, user)
	r.log.Info().Str("user", user).Int("members", len(r.members)).Msg("[removeMember] player left")

	r.broadcast(internal.ServerChat("%s has left the game", user))
	r.broadcast(internal.UpdateScoreboardBc{UsersInRoom: r.scores.Clone()})

	if user == r.owner && len(r.members) > 0 {
		r.chooseNewOwner()
	}

	if !r.state.Active() {
		return
	}

	if len(r.members) < internal.MinPlayersToStart {
		r.finishGame("Game Interrupted - less than 2 human players left!")
		return
	}

	r.turnOrder = slices.DeleteFunc(r.turnOrder, func(name string) bool { return name == user })
	if user == r.artist {
		r.interruptRound()
	}
}

func (r *Room) chooseNewOwner() {
	names := r.memberNames()
	r.owner = names[rand.IntN(len(names))]
	r.log.Info().Str("owner", r.owner).Msg("[chooseNewOwner] ownership transferred")
	r.broadcast(internal.OwnerChangedBc{Owner: r.owner})
}

// authorize checks that user is a member of the room and that m is the
// session that joined under that name. Caller holds r.mu.
func (r *Room) authorize(user string, m internal.Member) error {
	if r.closed {
		return internal.ErrRoomNotFound
	}
	member, ok := r.members[user]
	if !ok || m == nil || member.ID() != m.ID() {
		return internal.ErrNotMember
	}
	return nil
}

// memberName returns the name m holds in the room, or "".
func (r *Room) memberName(m internal.Member) string {
	if m == nil {
		return ""
	}
	for name, member := range r.members {
		if member.ID() == m.ID() {
			return name
		}
	}
	return ""
}

// Has reports whether m holds a name in the room.
func (r *Room) Has(m internal.Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberName(m) != ""
}

func (r *Room) memberNames() []string {
	names := make([]string, 0, len(r.members))
	for name := range r.members {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close stops every pending callback. A closed room rejects all operations.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.close()
}

// closeIfEmpty closes the room only when it has no members, in the same
// critical section as the check so a concurrent Join either lands first or
// sees the room closed.
func (r *Room) closeIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) > 0 {
		return false
	}
	r.close()
	return true
}

func (r *Room) close() {
	if r.closed {
		return
	}
	r.closed = true
	r.stopRound()
	r.stopBot()
	r.log.Info().Msg("[close] room closed")
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (r *Room) State() internal.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) Owner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

func (r *Room) Artist() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.artist
}

func (r *Room) CurrentWord() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentWord
}

func (r *Room) Hint() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hint == nil {
		return ""
	}
	return r.hint.String()
}

func (r *Room) Scores() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores.Clone()
}

func (r *Room) TurnOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.turnOrder)
}

func (r *Room) Candidates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.candidates)
}

func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberNames()
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Info returns the lobby listing entry and whether the room is joinable.
func (r *Room) Info() (internal.RoomInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := internal.RoomInfo{
		OwnerName:    r.owner,
		NumOfPlayers: len(r.members),
		RoomCode:     r.code,
	}
	return info, !r.closed && !r.state.Active() && len(r.members) > 0
}

// =============================================================================
// OUTBOUND
// =============================================================================

// send delivers one message. A failed send is logged and otherwise ignored;
// the failing session tears itself down and leaves through its read loop.
func (r *Room) send(m internal.Member, msg internal.Message) {
	if err := m.Send(msg); err != nil {
		r.log.Warn().Err(err).Uint64("session", m.ID()).Str("msg", msg.MsgName()).Msg("[send] delivery failed")
	}
}

func (r *Room) sendTo(user string, msg internal.Message) {
	if m, ok := r.members[user]; ok {
		r.send(m, msg)
	}
}

func (r *Room) broadcast(msg internal.Message) {
	for _, name := range r.memberNames() {
		r.send(r.members[name], msg)
	}
}

// recoverPanic keeps a bug in one room from taking down the process. It is
// deferred by callbacks that run on scheduler goroutines.
func (r *Room) recoverPanic(where string) {
	if p := recover(); p != nil {
		r.log.Error().
			Str("where", where).
			Interface("panic", p).
			Bytes("stack", debug.Stack()).
			Msg("[recoverPanic] recovered from panic")
	}
}
