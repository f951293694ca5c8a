package internal

import (
	"cmp"
	"slices"
)

type RoomInfo struct {
	OwnerName    string `json:"owner_name"`
	NumOfPlayers int    `json:"num_of_players"`
	RoomCode     string `json:"room_code"`
}

func SortRoomInfos(infos []RoomInfo) {
	slices.SortFunc(infos, func(a, b RoomInfo) int {
		return cmp.Compare(a.RoomCode, b.RoomCode)
	})
}

// ScoreBoard maps usernames to points. The bot always has an entry.
type ScoreBoard map[string]int

func NewScoreBoard(users ...string) ScoreBoard {
	sb := ScoreBoard{BotName: 0}
	for _, u := range users {
		sb[u] = 0
	}
	return sb
}

// Clone copies the board so it can leave the room's lock.
func (sb ScoreBoard) Clone() map[string]int {
	out := make(map[string]int, len(sb))
	for k, v := range sb {
		out[k] = v
	}
	return out
}

func (sb ScoreBoard) Max() int {
	best := 0
	first := true
	for _, v := range sb {
		if first || v > best {
			best = v
			first = false
		}
	}
	return best
}

// Leader returns the highest scorer, ties broken alphabetically.
func (sb ScoreBoard) Leader() string {
	leader := ""
	for name, v := range sb {
		if leader == "" || v > sb[leader] || (v == sb[leader] && name < leader) {
			leader = name
		}
	}
	return leader
}
