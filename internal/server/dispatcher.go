package server

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
	"github.com/scythe504/sketchroom/internal/game"
)

// Dispatcher routes decoded requests to the registry and rooms. It holds no
// locks of its own.
type Dispatcher struct {
	registry *game.Registry
}

func NewDispatcher(registry *game.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch handles one request from sender. It returns false when the sender
// asked to disconnect.
func (d *Dispatcher) Dispatch(sender internal.Member, req internal.Request) (keep bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Uint64("session", sender.ID()).
				Str("msg", req.MsgName()).
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("[Dispatch] recovered from panic")
			keep = true
		}
	}()

	switch r := req.(type) {
	case internal.CreateRoomReq:
		d.createRoom(sender, r)
	case internal.JoinRoomReq:
		d.joinRoom(sender, r)
	case internal.StartGameReq:
		d.startGame(sender, r)
	case internal.ExitClientReq:
		d.exitClient(sender, r)
	case internal.ChatMessageReq:
		d.inRoom(sender, r, r.RoomCode, func(room *game.Room) error {
			return room.Chat(r.UserName, r.Message, sender)
		})
	case internal.WordSelectionResp:
		d.inRoom(sender, r, r.RoomCode, func(room *game.Room) error {
			return room.SelectWord(r.UserName, r.SelectedWord, sender)
		})
	case internal.DrawStrokeReq:
		d.inRoom(sender, r, r.RoomCode, func(room *game.Room) error {
			return room.DrawStroke(r.UserName, r.StrokeCoordinates, sender)
		})
	case internal.UndoLastStrokeReq:
		d.inRoom(sender, r, r.RoomCode, func(room *game.Room) error {
			return room.UndoStroke(r.UserName, sender)
		})
	case internal.ClearCanvasReq:
		d.inRoom(sender, r, r.RoomCode, func(room *game.Room) error {
			return room.ClearCanvas(r.UserName, sender)
		})
	case internal.GameRoomListReq:
		_ = sender.Send(internal.GameRoomListResp{RoomList: d.registry.List()})
	case internal.DisconnectSocketReq:
		log.Debug().Uint64("session", sender.ID()).Msg("[Dispatch] client asked to disconnect")
		return false
	default:
		log.Warn().Uint64("session", sender.ID()).Str("msg", req.MsgName()).Msg("[Dispatch] no handler")
	}
	return true
}

func (d *Dispatcher) createRoom(sender internal.Member, r internal.CreateRoomReq) {
	var room *game.Room
	err := d.checkRoomless(sender)
	if err == nil {
		room, err = d.registry.Create(r.UserName, sender)
	}
	if err != nil {
		_ = sender.Send(internal.CreateRoomResp{Status: internal.StatusNotOK, Info: internal.InfoOf(err)})
		return
	}
	_ = sender.Send(internal.CreateRoomResp{Status: internal.StatusOK, RoomCode: room.Code()})
}

func (d *Dispatcher) joinRoom(sender internal.Member, r internal.JoinRoomReq) {
	var room *game.Room
	err := d.checkRoomless(sender)
	if err == nil {
		room, err = d.lookup(r.RoomCode)
	}
	if err == nil {
		err = room.Join(r.UserName, sender)
	}
	if err != nil {
		log.Debug().Err(err).Str("room", r.RoomCode).Str("user", r.UserName).Msg("[joinRoom] rejected")
		_ = sender.Send(internal.JoinRoomResp{Status: internal.StatusNotOK, Info: internal.InfoOf(err)})
	}
}

func (d *Dispatcher) startGame(sender internal.Member, r internal.StartGameReq) {
	room, err := d.lookup(r.RoomCode)
	if err == nil {
		err = room.StartGame(r.UserName, sender)
	}
	if err != nil {
		log.Debug().Err(err).Str("room", r.RoomCode).Str("user", r.UserName).Msg("[startGame] rejected")
		_ = sender.Send(internal.StartGameResp{Status: internal.StatusNotOK, Info: internal.InfoOf(err)})
	}
}

func (d *Dispatcher) exitClient(sender internal.Member, r internal.ExitClientReq) {
	d.inRoom(sender, r, r.RoomCode, func(room *game.Room) error {
		return room.Leave(r.UserName, sender)
	})
	d.registry.RemoveIfEmpty(r.RoomCode)
}

// inRoom runs a fire-and-forget room operation. Failures are only logged.
func (d *Dispatcher) inRoom(sender internal.Member, req internal.Request, code string, op func(*game.Room) error) {
	room, err := d.lookup(code)
	if err == nil {
		err = op(room)
	}
	if err != nil {
		log.Debug().
			Err(err).
			Uint64("session", sender.ID()).
			Str("room", code).
			Str("msg", req.MsgName()).
			Stringer("kind", internal.KindOf(err)).
			Msg("[Dispatch] request rejected")
	}
}

// checkRoomless fails when sender already belongs to a room. A session's
// requests are handled one at a time on its read loop, so nothing can add it
// to a room between this check and the create or join that follows.
func (d *Dispatcher) checkRoomless(sender internal.Member) error {
	if room, ok := d.registry.RoomOf(sender); ok {
		return internal.ErrAlreadyInRoom.With(fmt.Sprintf("You are already in room %s, leave it first!", room.Code()))
	}
	return nil
}

func (d *Dispatcher) lookup(code string) (*game.Room, error) {
	room, err := d.registry.Get(code)
	if err != nil && internal.KindOf(err) == internal.KindNotFound {
		return nil, internal.ErrRoomNotFound.With(fmt.Sprintf("Room with code %s not found", code))
	}
	return room, err
}
