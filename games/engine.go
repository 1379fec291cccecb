/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package games holds the pieces shared by every mini-game: the error
// taxonomy, the game tags stored on a room, and the Engine interface that
// per-room session managers implement.
package games

import (
	"fmt"
	"strings"
)

// Kind tags which mini-game a room is running.
type Kind string

const (
	None Kind = ""
	Quiz Kind = "quiz"
	Spy  Kind = "spy"
)

// ParseKind accepts the game names clients send with select-game.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiz":
		return Quiz, nil
	case "spy", "who-is-the-spy", "whoisthespy":
		return Spy, nil
	default:
		return None, fmt.Errorf("%w: unknown game type %q", ErrValidation, s)
	}
}

// Engine is implemented by each game's session manager. The hub picks the
// engine from the room's active game tag, so roster churn and room teardown
// never need to know which game is running.
type Engine interface {
	Kind() Kind

	// Active reports whether a session exists for the room.
	Active(code string) bool

	// AddPlayer seeds per-player bookkeeping for a player registered after
	// the session was created.
	AddPlayer(code, playerID string)

	// RemovePlayer drops every trace of playerID from the room's session.
	RemovePlayer(code, playerID string)

	// Delete discards the room's session, if any.
	Delete(code string)
}
