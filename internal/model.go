package internal

import "time"

const (
	DefaultHeaderLen     = 64
	DefaultMaxBodyLen    = 1 << 20
	DefaultScoreLimit    = 500
	DefaultRoundDuration = 60 * time.Second
	// A room sends under its lock, so one stalled reader can hold the room
	// for at most this long before its session is closed.
	DefaultWriteTimeout  = 2 * time.Second
	MinPlayersToStart    = 2
	WordChoicesCount     = 3
	RoomCodeLength       = 8

	GuesserPoints = 50
	HalfTimeHints = 2

	BotName    = "BOT"
	ServerName = "SERVER"
)

type RoomState int

const (
	StatePregame RoomState = iota
	StateStarting
	StateWordSelection
	StateDrawing
	StatePostgame
)

func (s RoomState) String() string {
	switch s {
	case StatePregame:
		return "PREGAME"
	case StateStarting:
		return "STARTING"
	case StateWordSelection:
		return "WORD_SELECTION"
	case StateDrawing:
		return "DRAWING"
	case StatePostgame:
		return "POSTGAME"
	}
	return "UNKNOWN"
}

// Active reports whether a game is in progress.
func (s RoomState) Active() bool {
	return s != StatePregame && s != StatePostgame
}

// GameResult describes a finished game for the archive.
type GameResult struct {
	GameID     string         `json:"game_id"`
	RoomCode   string         `json:"room_code"`
	Winner     string         `json:"winner"`
	Scores     map[string]int `json:"scores"`
	Rounds     int            `json:"rounds"`
	Reason     string         `json:"reason"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
