/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package room owns the room lifecycle: codes, rosters, the host
// designation and the WAITING → CONFIG → PLAYING → FINISHED state.
//
// A Store is not safe for concurrent use. It is owned by the hub's dispatch
// loop, which handles one event at a time.
package room

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Seednode/partyhost/games"
)

const MaxNameLength = 32

type Store struct {
	rooms map[string]*Room
	conns *Registry

	newCode func() string
	newID   func() string
	now     func() time.Time
}

type Option func(*Store)

// WithCodes replaces the room code generator.
func WithCodes(f func() string) Option {
	return func(s *Store) { s.newCode = f }
}

// WithIDs replaces the player identity generator.
func WithIDs(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// WithClock replaces the time source used for join and activity stamps.
func WithClock(f func() time.Time) Option {
	return func(s *Store) { s.now = f }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		rooms:   make(map[string]*Room),
		conns:   NewRegistry(),
		newCode: NewCode,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new room owned by the creator connection. Codes are
// regenerated until one is free.
func (s *Store) Create(creatorConn string) *Room {
	code := Normalize(s.newCode())
	for s.exists(code) {
		code = Normalize(s.newCode())
	}

	now := s.now()
	r := &Room{
		Code:        code,
		CreatorConn: creatorConn,
		State:       Waiting,
		Quiz:        defaultQuizSettings(),
		Scores:      make(map[string]int),
		CreatedAt:   now,
		LastActive:  now,
	}
	s.rooms[code] = r
	s.conns.Bind(creatorConn, Binding{Code: code, Role: RoleHost})

	return r
}

func (s *Store) exists(code string) bool {
	_, ok := s.rooms[code]
	return ok
}

// Get looks a room up by case-insensitive code.
func (s *Store) Get(code string) (*Room, error) {
	r, ok := s.rooms[Normalize(code)]
	if !ok {
		return nil, fmt.Errorf("%w: room %q", games.ErrNotFound, Normalize(code))
	}
	return r, nil
}

// AddPlayer appends a player to the roster. The first player ever added
// becomes the room's host player.
func (s *Store) AddPlayer(code, conn, name string) (*Player, error) {
	r, err := s.Get(code)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", games.ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: player name longer than %d characters", games.ErrValidation, MaxNameLength)
	}

	now := s.now()
	p := &Player{
		ID:        s.newID(),
		Name:      name,
		ConnID:    conn,
		Connected: true,
		JoinedAt:  now,
	}

	if len(r.Players) == 0 && r.HostPlayerID == "" {
		r.HostPlayerID = p.ID
	}
	r.Players = append(r.Players, p)
	r.Scores[p.ID] = 0
	r.LastActive = now

	s.conns.Bind(conn, Binding{Code: r.Code, Role: RolePlayer, PlayerID: p.ID})

	return p, nil
}

// RemovePlayer drops a player and their score. Missing rooms or players are
// ignored. The room is destroyed once its roster is empty.
func (s *Store) RemovePlayer(code, playerID string) (destroyed bool) {
	r, err := s.Get(code)
	if err != nil {
		return false
	}

	i := slices.IndexFunc(r.Players, func(p *Player) bool { return p.ID == playerID })
	if i < 0 {
		return false
	}

	p := r.Players[i]
	p.Connected = false
	if b, ok := s.conns.Lookup(p.ConnID); ok && b.PlayerID == playerID {
		s.conns.Unbind(p.ConnID)
	}

	r.Players = slices.Delete(r.Players, i, i+1)
	delete(r.Scores, playerID)
	r.LastActive = s.now()

	if len(r.Players) == 0 {
		s.Delete(r.Code)
		return true
	}

	return false
}

// Delete removes a room and releases every connection bound to it.
func (s *Store) Delete(code string) *Room {
	r, ok := s.rooms[Normalize(code)]
	if !ok {
		return nil
	}

	for _, conn := range r.ConnIDs() {
		if b, ok := s.conns.Lookup(conn); ok && b.Code == r.Code {
			s.conns.Unbind(conn)
		}
	}
	delete(s.rooms, r.Code)

	return r
}

// SetState moves a room to next. Ordering between states is up to the
// caller, since games take different paths through them.
func (s *Store) SetState(code string, next State) error {
	r, err := s.Get(code)
	if err != nil {
		return err
	}

	st, err := ParseState(string(next))
	if err != nil {
		return err
	}

	r.State = st
	r.LastActive = s.now()

	return nil
}

// SelectGame points the room at a game and resets whatever the previous
// game left behind. The quiz goes through CONFIG first; other games wait in
// the lobby until they are started.
func (s *Store) SelectGame(code string, kind games.Kind) (State, error) {
	r, err := s.Get(code)
	if err != nil {
		return "", err
	}
	if r.State == Playing || r.Starting {
		return r.State, fmt.Errorf("%w: a game is already in progress", games.ErrInvalidState)
	}

	r.ActiveGame = kind
	r.Quiz.Confirmed = false
	for id := range r.Scores {
		r.Scores[id] = 0
	}

	r.State = Waiting
	if kind == games.Quiz {
		r.State = Config
	}
	r.LastActive = s.now()

	return r.State, nil
}

// SetStarting flags a room as preparing a game. Setting it twice is an
// error, which is what keeps two start requests from both going through.
func (s *Store) SetStarting(code string, starting bool) error {
	r, err := s.Get(code)
	if err != nil {
		return err
	}
	if starting && r.Starting {
		return fmt.Errorf("%w: game is already starting", games.ErrInvalidState)
	}
	r.Starting = starting
	return nil
}

// StartHostedGame hands the room to a game the host screen runs itself.
// Any selected built-in game is dropped and the scores start over.
func (s *Store) StartHostedGame(code, name string) (GameState, error) {
	r, err := s.Get(code)
	if err != nil {
		return GameState{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return GameState{}, fmt.Errorf("%w: gameName is required", games.ErrValidation)
	}
	if r.State == Playing || r.Starting {
		return r.HostedGame(), fmt.Errorf("%w: a game is already in progress", games.ErrInvalidState)
	}

	r.ActiveGame = games.None
	r.Quiz.Confirmed = false
	r.GameStarted = true
	r.CurrentGame = name
	for id := range r.Scores {
		r.Scores[id] = 0
	}
	r.State = Playing
	r.LastActive = s.now()

	return r.HostedGame(), nil
}

// EndHostedGame stops the host-driven game and clears its name. Final scores are recorded for
// players still in the room; anyone else in final is ignored.
func (s *Store) EndHostedGame(code string, final map[string]int) (GameState, error) {
	r, err := s.Get(code)
	if err != nil {
		return GameState{}, err
	}
	if !r.GameStarted {
		return r.HostedGame(), fmt.Errorf("%w: no hosted game is running", games.ErrInvalidState)
	}

	for id, score := range final {
		if _, ok := r.Scores[id]; ok {
			r.Scores[id] = score
		}
	}
	r.GameStarted = false
	r.CurrentGame = ""
	r.State = Finished
	r.LastActive = s.now()

	return r.HostedGame(), nil
}

func (s *Store) IsHost(code, playerID string) bool {
	r, err := s.Get(code)
	if err != nil || playerID == "" {
		return false
	}
	return r.HostPlayerID == playerID
}

// FindByConnection resolves a transport handle to its room binding.
func (s *Store) FindByConnection(conn string) (Binding, bool) {
	return s.conns.Lookup(conn)
}

// UpdateQuizSettings merges a partial update into the room's quiz settings.
func (s *Store) UpdateQuizSettings(code string, u SettingsUpdate) (QuizSettings, error) {
	r, err := s.Get(code)
	if err != nil {
		return QuizSettings{}, err
	}
	if r.Quiz.Confirmed {
		return r.Quiz, fmt.Errorf("%w: quiz settings are locked", games.ErrInvalidState)
	}

	if v := strings.TrimSpace(u.Language); v != "" {
		r.Quiz.Language = v
	}
	if v := strings.TrimSpace(u.Category); v != "" {
		r.Quiz.Category = v
	}
	if v := strings.TrimSpace(u.Difficulty); v != "" {
		r.Quiz.Difficulty = v
	}
	r.LastActive = s.now()

	return r.Quiz, nil
}

// ConfirmQuizSettings locks the quiz settings.
func (s *Store) ConfirmQuizSettings(code string) (QuizSettings, error) {
	r, err := s.Get(code)
	if err != nil {
		return QuizSettings{}, err
	}
	r.Quiz.Confirmed = true
	r.LastActive = s.now()
	return r.Quiz, nil
}

// Touch records activity on a room for the idle reaper.
func (s *Store) Touch(code string) {
	if r, err := s.Get(code); err == nil {
		r.LastActive = s.now()
	}
}

// IdleSince returns the codes of rooms with no activity after cutoff.
func (s *Store) IdleSince(cutoff time.Time) []string {
	var codes []string
	for code, r := range s.rooms {
		if r.LastActive.Before(cutoff) {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes
}

// Codes returns every live room code, sorted.
func (s *Store) Codes() []string {
	codes := slices.Collect(maps.Keys(s.rooms))
	slices.Sort(codes)
	return codes
}

// Stats reports the number of live rooms and joined players.
func (s *Store) Stats() (rooms, players int) {
	for _, r := range s.rooms {
		players += len(r.Players)
	}
	return len(s.rooms), players
}
