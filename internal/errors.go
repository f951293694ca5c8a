package internal

import "errors"

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindState
	KindAuthorization
	KindNotFound
	KindCapacity
	KindConnection
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindState:
		return "StateError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindCapacity:
		return "CapacityError"
	case KindConnection:
		return "ConnectionError"
	}
	return "UnknownError"
}

// Error is a game rule or protocol outcome. Info is safe to show to clients.
type Error struct {
	Kind ErrorKind
	Info string

	base *Error
}

func (e *Error) Error() string {
	return e.Info
}

// Is matches the sentinel an error was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || e.base == t
}

// With returns a copy of the sentinel carrying a more specific message.
func (e *Error) With(info string) *Error {
	base := e
	if e.base != nil {
		base = e.base
	}
	return &Error{Kind: e.Kind, Info: info, base: base}
}

var (
	ErrInvalidUsername  = &Error{Kind: KindValidation, Info: "Invalid username!"}
	ErrUsernameTaken    = &Error{Kind: KindValidation, Info: "Username already taken!"}
	ErrInvalidRoomCode  = &Error{Kind: KindValidation, Info: "Invalid room code!"}
	ErrInvalidWord      = &Error{Kind: KindValidation, Info: "Selected word was not offered!"}
	ErrInvalidStroke    = &Error{Kind: KindValidation, Info: "Invalid stroke!"}
	ErrAlreadyJoined    = &Error{Kind: KindValidation, Info: "You already joined this room!"}
	ErrGameStarted      = &Error{Kind: KindState, Info: "Game already started!"}
	ErrAlreadyInRoom    = &Error{Kind: KindState, Info: "Leave your current room first!"}
	ErrNotInPregame     = &Error{Kind: KindState, Info: "Trying to start game not in PREGAME state"}
	ErrWrongState       = &Error{Kind: KindState, Info: "Action not allowed in current room state"}
	ErrNotOwner         = &Error{Kind: KindAuthorization, Info: "Only room owner can start the game!"}
	ErrNotArtist        = &Error{Kind: KindAuthorization, Info: "Only the artist can do that!"}
	ErrNotMember        = &Error{Kind: KindAuthorization, Info: "User is not a member of this room!"}
	ErrRoomNotFound     = &Error{Kind: KindNotFound, Info: "Room not found"}
	ErrNotEnoughPlayers = &Error{Kind: KindCapacity, Info: "There must be at least 2 players to start the game!"}
	ErrConnectionClosed = &Error{Kind: KindConnection, Info: "Connection closed"}
)

func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// InfoOf returns the client-facing description of err.
func InfoOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Info
	}
	return "Unknown error occurred!"
}
