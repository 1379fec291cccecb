/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package room

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Seednode/partyhost/games"
)

// State is the room-level lifecycle stage.
type State string

const (
	Waiting  State = "WAITING"
	Config   State = "CONFIG"
	Playing  State = "PLAYING"
	Finished State = "FINISHED"
)

// ParseState only accepts the four lifecycle stages.
func ParseState(s string) (State, error) {
	switch st := State(strings.ToUpper(s)); st {
	case Waiting, Config, Playing, Finished:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unrecognized room state %q", games.ErrInvalidState, s)
	}
}

// Player is a joined participant. ConnID is the transport handle currently
// carrying this player's events.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ConnID    string    `json:"-"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// QuizSettings are chosen by the host while the room is in CONFIG.
type QuizSettings struct {
	Language   string `json:"language"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Confirmed  bool   `json:"configReady"`
}

// SettingsUpdate carries a partial settings change; empty fields are left
// untouched.
type SettingsUpdate struct {
	Language   string `json:"language"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// GameState describes a game run entirely by the host screen. The server
// only records that it is running and relays traffic for it.
type GameState struct {
	Started     bool           `json:"started"`
	CurrentGame string         `json:"currentGame"`
	Scores      map[string]int `json:"scores"`
}

func defaultQuizSettings() QuizSettings {
	return QuizSettings{
		Language:   "English",
		Category:   "History",
		Difficulty: "Medium",
	}
}

type Room struct {
	Code         string
	CreatorConn  string
	Players      []*Player
	HostPlayerID string
	State        State
	Quiz         QuizSettings
	ActiveGame   games.Kind

	// Starting is set while a game is being prepared asynchronously, so a
	// second start request can be turned away instead of racing the first.
	Starting bool

	GameStarted bool
	CurrentGame string

	Scores     map[string]int
	CreatedAt  time.Time
	LastActive time.Time
}

// Player returns the roster entry for id, or nil.
func (r *Room) Player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerIDs returns the roster identities in join order.
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// Roster returns a copy of the players, safe to hand to the wire encoder.
func (r *Room) Roster() []Player {
	out := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, *p)
	}
	return out
}

// FirstPlayerID returns the earliest-joined player still present.
func (r *Room) FirstPlayerID() string {
	if len(r.Players) == 0 {
		return ""
	}
	first := slices.MinFunc(r.Players, func(a, b *Player) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})
	return first.ID
}

// ConnIDs returns every transport handle that belongs to the room: the
// creator connection first, then players in join order.
func (r *Room) ConnIDs() []string {
	ids := make([]string, 0, len(r.Players)+1)
	if r.CreatorConn != "" {
		ids = append(ids, r.CreatorConn)
	}
	for _, p := range r.Players {
		if p.ConnID != "" && p.ConnID != r.CreatorConn {
			ids = append(ids, p.ConnID)
		}
	}
	return ids
}

// HostedGame snapshots the host-driven game along with the room's scores.
func (r *Room) HostedGame() GameState {
	scores := maps.Clone(r.Scores)
	if scores == nil {
		scores = make(map[string]int)
	}
	return GameState{
		Started:     r.GameStarted,
		CurrentGame: r.CurrentGame,
		Scores:      scores,
	}
}
