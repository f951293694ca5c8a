package internal

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	StatusOK    = "OK"
	StatusNotOK = "NOT_OK"
)

// Message names as they travel in frame headers.
const (
	NameCreateRoomReq       = "CreateRoomReq"
	NameCreateRoomResp      = "CreateRoomResp"
	NameJoinRoomReq         = "JoinRoomReq"
	NameJoinRoomResp        = "JoinRoomResp"
	NameChatMessageReq      = "ChatMessageReq"
	NameChatMessageBc       = "ChatMessageBc"
	NameExitClientReq       = "ExitClientReq"
	NameStartGameReq        = "StartGameReq"
	NameStartGameResp       = "StartGameResp"
	NameStartGameBc         = "StartGameBc"
	NameArtistPickBc        = "ArtistPickBc"
	NameWordSelectionReq    = "WordSelectionReq"
	NameWordSelectionResp   = "WordSelectionResp"
	NameWordHintBc          = "WordHintBc"
	NameDrawStrokeReq       = "DrawStrokeReq"
	NameDrawStrokeBc        = "DrawStrokeBc"
	NameUndoLastStrokeReq   = "UndoLastStrokeReq"
	NameUndoLastStrokeBc    = "UndoLastStrokeBc"
	NameClearCanvasReq      = "ClearCanvasReq"
	NameClearCanvasBc       = "ClearCanvasBc"
	NameWordGuessedBc       = "WordGuessedBc"
	NameGameFinishedBc      = "GameFinishedBc"
	NameGameRoomListReq     = "GameRoomListReq"
	NameGameRoomListResp    = "GameRoomListResp"
	NameUpdateScoreboardBc  = "UpdateScoreboardBc"
	NameOwnerChangedBc      = "OwnerChangedBc"
	NameDisconnectSocketReq = "DisconnectSocketReq"
)

var ErrUnknownMessage = errors.New("unknown message name")

// Message is anything that can be framed onto the wire.
type Message interface {
	MsgName() string
}

// Request is the closed set of client to server messages.
type Request interface {
	Message
	isRequest()
}

// =============================================================================
// REQUESTS
// =============================================================================

type CreateRoomReq struct {
	UserName string `json:"user_name"`
}

type JoinRoomReq struct {
	UserName string `json:"user_name"`
	RoomCode string `json:"room_code"`
}

type ChatMessageReq struct {
	UserName string `json:"user_name"`
	RoomCode string `json:"room_code"`
	Message  string `json:"message"`
}

type ExitClientReq struct {
	UserName string `json:"user_name"`
	RoomCode string `json:"room_code"`
}

type StartGameReq struct {
	UserName string `json:"user_name"`
	RoomCode string `json:"room_code"`
}

type WordSelectionResp struct {
	UserName     string `json:"user_name"`
	RoomCode     string `json:"room_code"`
	SelectedWord string `json:"selected_word"`
}

type DrawStrokeReq struct {
	UserName          string `json:"user_name"`
	RoomCode          string `json:"room_code"`
	StrokeCoordinates Stroke `json:"stroke_coordinates"`
}

type UndoLastStrokeReq struct {
	UserName string `json:"user_name"`
	RoomCode string `json:"room_code"`
}

type ClearCanvasReq struct {
	UserName string `json:"user_name"`
	RoomCode string `json:"room_code"`
}

type GameRoomListReq struct{}

type DisconnectSocketReq struct{}

func (CreateRoomReq) MsgName() string       { return NameCreateRoomReq }
func (JoinRoomReq) MsgName() string         { return NameJoinRoomReq }
func (ChatMessageReq) MsgName() string      { return NameChatMessageReq }
func (ExitClientReq) MsgName() string       { return NameExitClientReq }
func (StartGameReq) MsgName() string        { return NameStartGameReq }
func (WordSelectionResp) MsgName() string   { return NameWordSelectionResp }
func (DrawStrokeReq) MsgName() string       { return NameDrawStrokeReq }
func (UndoLastStrokeReq) MsgName() string   { return NameUndoLastStrokeReq }
func (ClearCanvasReq) MsgName() string      { return NameClearCanvasReq }
func (GameRoomListReq) MsgName() string     { return NameGameRoomListReq }
func (DisconnectSocketReq) MsgName() string { return NameDisconnectSocketReq }

func (CreateRoomReq) isRequest()       {}
func (JoinRoomReq) isRequest()         {}
func (ChatMessageReq) isRequest()      {}
func (ExitClientReq) isRequest()       {}
func (StartGameReq) isRequest()        {}
func (WordSelectionResp) isRequest()   {}
func (DrawStrokeReq) isRequest()       {}
func (UndoLastStrokeReq) isRequest()   {}
func (ClearCanvasReq) isRequest()      {}
func (GameRoomListReq) isRequest()     {}
func (DisconnectSocketReq) isRequest() {}

// ParseRequest decodes a frame body into the request named in its header.
func ParseRequest(name string, body []byte) (Request, error) {
	var req Request
	switch name {
	case NameCreateRoomReq:
		req = decode[CreateRoomReq](body)
	case NameJoinRoomReq:
		req = decode[JoinRoomReq](body)
	case NameChatMessageReq:
		req = decode[ChatMessageReq](body)
	case NameExitClientReq:
		req = decode[ExitClientReq](body)
	case NameStartGameReq:
		req = decode[StartGameReq](body)
	case NameWordSelectionResp:
		req = decode[WordSelectionResp](body)
	case NameDrawStrokeReq:
		req = decode[DrawStrokeReq](body)
	case NameUndoLastStrokeReq:
		req = decode[UndoLastStrokeReq](body)
	case NameClearCanvasReq:
		req = decode[ClearCanvasReq](body)
	case NameGameRoomListReq:
		req = decode[GameRoomListReq](body)
	case NameDisconnectSocketReq:
		req = decode[DisconnectSocketReq](body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, name)
	}

	if bad, ok := req.(malformed); ok {
		return nil, fmt.Errorf("malformed %s body: %w", name, bad.err)
	}
	return req, nil
}

type malformed struct {
	name string
	err  error
}

func (m malformed) MsgName() string { return m.name }
func (malformed) isRequest()        {}

func decode[T Request](body []byte) Request {
	var req T
	if len(body) == 0 {
		return req
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return malformed{name: req.MsgName(), err: err}
	}
	return req
}

// =============================================================================
// RESPONSES & BROADCASTS
// =============================================================================

type CreateRoomResp struct {
	Status   string `json:"status"`
	RoomCode string `json:"room_code,omitempty"`
	Info     string `json:"info,omitempty"`
}

type JoinRoomResp struct {
	Status      string         `json:"status"`
	Owner       string         `json:"owner,omitempty"`
	UsersInRoom map[string]int `json:"users_in_room,omitempty"`
	Info        string         `json:"info,omitempty"`
}

type ChatMessageBc struct {
	Author  string `json:"author"`
	Message string `json:"message"`
}

type StartGameResp struct {
	Status string `json:"status"`
	Info   string `json:"info,omitempty"`
}

type StartGameBc struct {
	Artist       string         `json:"artist"`
	ScoreAwarded map[string]int `json:"score_awarded"`
}

type ArtistPickBc struct {
	Artist string `json:"artist"`
}

type WordSelectionReq struct {
	Artist   string   `json:"artist"`
	RoomCode string   `json:"room_code"`
	WordList []string `json:"word_list"`
}

type WordHintBc struct {
	WordHint string `json:"word_hint"`
}

type DrawStrokeBc struct {
	StrokeCoordinates Stroke `json:"stroke_coordinates"`
}

type UndoLastStrokeBc struct{}

type ClearCanvasBc struct{}

type WordGuessedBc struct {
	UserName     string         `json:"user_name"`
	Word         string         `json:"word"`
	ScoreAwarded map[string]int `json:"score_awarded"`
}

type GameFinishedBc struct {
	Info string `json:"info,omitempty"`
}

type GameRoomListResp struct {
	RoomList []RoomInfo `json:"room_list"`
}

type UpdateScoreboardBc struct {
	UsersInRoom map[string]int `json:"users_in_room"`
}

type OwnerChangedBc struct {
	Owner string `json:"owner"`
}

func (CreateRoomResp) MsgName() string     { return NameCreateRoomResp }
func (JoinRoomResp) MsgName() string       { return NameJoinRoomResp }
func (ChatMessageBc) MsgName() string      { return NameChatMessageBc }
func (StartGameResp) MsgName() string      { return NameStartGameResp }
func (StartGameBc) MsgName() string        { return NameStartGameBc }
func (ArtistPickBc) MsgName() string       { return NameArtistPickBc }
func (WordSelectionReq) MsgName() string   { return NameWordSelectionReq }
func (WordHintBc) MsgName() string         { return NameWordHintBc }
func (DrawStrokeBc) MsgName() string       { return NameDrawStrokeBc }
func (UndoLastStrokeBc) MsgName() string   { return NameUndoLastStrokeBc }
func (ClearCanvasBc) MsgName() string      { return NameClearCanvasBc }
func (WordGuessedBc) MsgName() string      { return NameWordGuessedBc }
func (GameFinishedBc) MsgName() string     { return NameGameFinishedBc }
func (GameRoomListResp) MsgName() string   { return NameGameRoomListResp }
func (UpdateScoreboardBc) MsgName() string { return NameUpdateScoreboardBc }
func (OwnerChangedBc) MsgName() string     { return NameOwnerChangedBc }

// ServerChat builds a chat line authored by the server itself.
func ServerChat(format string, args ...any) ChatMessageBc {
	return ChatMessageBc{Author: ServerName, Message: fmt.Sprintf(format, args...)}
}
