/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package spy runs the hidden-role deduction game: one secret spy, everyone
// else shares a location and holds a role, then the room votes.
package spy

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/Seednode/partyhost/games"
)

const (
	MinPlayers = 3

	// RoundSeconds seeds the countdown shown on displays. Nothing on the
	// server enforces it.
	RoundSeconds = 300
)

type Phase string

const (
	Reveal   Phase = "REVEAL"
	Gameplay Phase = "GAMEPLAY"
	Voting   Phase = "VOTING"
	Result   Phase = "RESULT"
)

// CanTransitionTo reports whether next directly follows p within a round.
// The discussion phase is optional: voting may open straight from the
// reveal. Starting another round builds a fresh session instead.
func (p Phase) CanTransitionTo(next Phase) bool {
	switch p {
	case Reveal:
		return next == Gameplay || next == Voting
	case Gameplay:
		return next == Voting
	case Voting:
		return next == Result
	default:
		return false
	}
}

type Winner string

const (
	SpyWins      Winner = "SPY"
	CiviliansWin Winner = "CIVILIANS"
)

const (
	ReasonNoVotes    = "No votes were cast"
	ReasonTie        = "Vote was tied"
	ReasonSpyFound   = "Spy was identified"
	ReasonWrongGuess = "A civilian was eliminated"
)

// Assignment is one player's secret. Role and Location are nil for the spy.
type Assignment struct {
	IsSpy    bool    `json:"isSpy"`
	Role     *string `json:"role"`
	Location *string `json:"location"`
}

type Session struct {
	Code      string
	Location  *Location
	Language  string
	SpyID     string
	PlayerIDs []string
	Phase     Phase
	Timer     int
	StartedAt time.Time

	// roles holds each civilian's index into Location.Roles.
	roles       map[string]int
	Assignments map[string]Assignment

	Votes  map[string]string
	Winner Winner
	Reason string
}

// Outcome is the resolved vote.
type Outcome struct {
	Winner     Winner         `json:"winner"`
	Reason     string         `json:"reason"`
	SpyID      string         `json:"spyId"`
	Location   string         `json:"location"`
	VoteCounts map[string]int `json:"voteCounts"`
	SuspectIDs []string       `json:"suspectIds"`
}

// Manager holds every room's deduction session. It is owned by a single
// dispatch loop and does no locking of its own.
type Manager struct {
	sessions  map[string]*Session
	locations []Location
	rng       *rand.Rand
	now       func() time.Time
}

type Option func(*Manager)

// WithRand replaces the random source used for location, spy and role draws.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithLocations replaces the location catalog.
func WithLocations(locs []Location) Option {
	return func(m *Manager) { m.locations = locs }
}

func NewManager(opts ...Option) *Manager {
	var seed [32]byte
	_, _ = crand.Read(seed[:])

	m := &Manager{
		sessions:  make(map[string]*Session),
		locations: Locations,
		rng:       rand.New(rand.NewChaCha8(seed)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Kind() games.Kind { return games.Spy }

// Create deals a new round: a random location, a random spy and, for every
// other player, a role drawn from a shuffled copy of the location's roles.
func (m *Manager) Create(code string, playerIDs []string, language string) (*Session, error) {
	if len(playerIDs) < MinPlayers {
		return nil, fmt.Errorf("%w: need at least %d players to start, have %d", games.ErrValidation, MinPlayers, len(playerIDs))
	}
	if len(m.locations) == 0 {
		return nil, fmt.Errorf("%w: no locations available", games.ErrValidation)
	}
	if i := slices.IndexFunc(m.locations, func(l Location) bool { return len(l.Roles) == 0 }); i >= 0 {
		return nil, fmt.Errorf("%w: location %q has no roles", games.ErrValidation, m.locations[i].Name.In(DefaultLanguage))
	}

	lang, err := ParseLanguage(language)
	if err != nil {
		return nil, err
	}

	loc := &m.locations[m.rng.IntN(len(m.locations))]

	s := &Session{
		Code:      code,
		Location:  loc,
		Language:  lang,
		SpyID:     playerIDs[m.rng.IntN(len(playerIDs))],
		PlayerIDs: slices.Clone(playerIDs),
		Phase:     Reveal,
		Timer:     RoundSeconds,
		StartedAt: m.now(),
		roles:     make(map[string]int, len(playerIDs)),
		Votes:     make(map[string]string),
	}

	order := m.shuffledRoles(len(loc.Roles))
	for i, id := range s.PlayerIDs {
		if id == s.SpyID {
			continue
		}
		s.roles[id] = order[i%len(order)]
	}
	s.localize()

	m.sessions[code] = s
	return s, nil
}

// shuffledRoles is a Fisher-Yates shuffle of the role indexes.
func (m *Manager) shuffledRoles(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := m.rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// localize rebuilds the per-player assignments in the session's language.
func (s *Session) localize() {
	s.Assignments = make(map[string]Assignment, len(s.PlayerIDs))
	name := s.Location.Name.In(s.Language)

	for _, id := range s.PlayerIDs {
		if id == s.SpyID {
			s.Assignments[id] = Assignment{IsSpy: true}
			continue
		}
		role := s.Location.Roles[s.roles[id]].In(s.Language)
		loc := name
		s.Assignments[id] = Assignment{Role: &role, Location: &loc}
	}
}

func (m *Manager) Get(code string) (*Session, bool) {
	s, ok := m.sessions[code]
	return s, ok
}

func (m *Manager) lookup(code string) (*Session, error) {
	s, ok := m.sessions[code]
	if !ok {
		return nil, fmt.Errorf("%w: no deduction game in room %q", games.ErrNotFound, code)
	}
	return s, nil
}

func (s *Session) transition(next Phase) error {
	if !s.Phase.CanTransitionTo(next) {
		return fmt.Errorf("%w: round cannot go from %s to %s", games.ErrInvalidState, s.Phase, next)
	}
	s.Phase = next
	return nil
}

// StartGame ends the reveal and begins the discussion.
func (m *Manager) StartGame(code string) (*Session, error) {
	s, err := m.lookup(code)
	if err != nil {
		return nil, err
	}
	if err := s.transition(Gameplay); err != nil {
		return nil, err
	}
	s.StartedAt = m.now()
	return s, nil
}

// PlayerAssignment returns one player's secret. It must only ever be sent to
// that player's own connection.
func (m *Manager) PlayerAssignment(code, playerID string) (Assignment, error) {
	s, err := m.lookup(code)
	if err != nil {
		return Assignment{}, err
	}
	a, ok := s.Assignments[playerID]
	if !ok {
		return Assignment{}, fmt.Errorf("%w: player has no assignment this round", games.ErrNotFound)
	}
	return a, nil
}

// StartVoting opens voting from either the reveal or the discussion.
func (m *Manager) StartVoting(code string) (*Session, error) {
	s, err := m.lookup(code)
	if err != nil {
		return nil, err
	}
	if err := s.transition(Voting); err != nil {
		return nil, err
	}
	clear(s.Votes)
	return s, nil
}

// SubmitVote records voterID's choice. A voter may change their mind until
// the votes are processed; only the last vote counts. It returns the number
// of distinct voters so far.
func (m *Manager) SubmitVote(code, voterID, votedForID string) (int, error) {
	s, err := m.lookup(code)
	if err != nil {
		return 0, err
	}
	if s.Phase != Voting {
		return 0, fmt.Errorf("%w: voting is not open", games.ErrInvalidState)
	}
	if !slices.Contains(s.PlayerIDs, voterID) {
		return 0, fmt.Errorf("%w: voter is not playing this round", games.ErrValidation)
	}
	if !slices.Contains(s.PlayerIDs, votedForID) {
		return 0, fmt.Errorf("%w: vote target is not playing this round", games.ErrValidation)
	}

	s.Votes[voterID] = votedForID
	return len(s.Votes), nil
}

// ProcessVotes tallies the votes and freezes the result. Abstention and ties
// both go to the spy.
func (m *Manager) ProcessVotes(code string) (Outcome, error) {
	s, err := m.lookup(code)
	if err != nil {
		return Outcome{}, err
	}
	if s.Phase != Voting {
		return Outcome{}, fmt.Errorf("%w: voting is not open", games.ErrInvalidState)
	}

	counts := make(map[string]int)
	for _, target := range s.Votes {
		counts[target]++
	}

	maxVotes := 0
	var suspects []string
	for _, id := range s.tallyOrder(counts) {
		switch c := counts[id]; {
		case c > maxVotes:
			maxVotes = c
			suspects = []string{id}
		case c == maxVotes:
			suspects = append(suspects, id)
		}
	}

	switch {
	case len(suspects) == 0:
		s.Winner, s.Reason = SpyWins, ReasonNoVotes
	case len(suspects) > 1:
		s.Winner, s.Reason = SpyWins, ReasonTie
	case suspects[0] == s.SpyID:
		s.Winner, s.Reason = CiviliansWin, ReasonSpyFound
	default:
		s.Winner, s.Reason = SpyWins, ReasonWrongGuess
	}

	if err := s.transition(Result); err != nil {
		return Outcome{}, err
	}

	if suspects == nil {
		suspects = []string{}
	}

	return Outcome{
		Winner:     s.Winner,
		Reason:     s.Reason,
		SpyID:      s.SpyID,
		Location:   s.Location.Name.In(s.Language),
		VoteCounts: counts,
		SuspectIDs: suspects,
	}, nil
}

// tallyOrder lists vote targets in roster order so ties come out the same
// way every time.
func (s *Session) tallyOrder(counts map[string]int) []string {
	order := make([]string, 0, len(counts))
	for _, id := range s.PlayerIDs {
		if counts[id] > 0 {
			order = append(order, id)
		}
	}
	var rest []string
	for id := range counts {
		if !slices.Contains(order, id) {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}

// ResetGame deals a brand-new round for the given roster in the session's
// current language.
func (m *Manager) ResetGame(code string, playerIDs []string) (*Session, error) {
	s, err := m.lookup(code)
	if err != nil {
		return nil, err
	}
	return m.Create(code, playerIDs, s.Language)
}

// SetLanguage re-renders the current round's assignments in lang. The spy,
// the location and every civilian's role stay the same.
func (m *Manager) SetLanguage(code, language string) (*Session, error) {
	s, err := m.lookup(code)
	if err != nil {
		return nil, err
	}
	lang, err := ParseLanguage(language)
	if err != nil {
		return nil, err
	}

	s.Language = lang
	s.localize()

	return s, nil
}

// UIText returns a UI string in the room's current language.
func (m *Manager) UIText(code, key string) string {
	s, ok := m.sessions[code]
	if !ok {
		return ""
	}
	return UIText(key, s.Language)
}

func (m *Manager) Active(code string) bool {
	_, ok := m.sessions[code]
	return ok
}

// AddPlayer is a no-op: players who join mid-round sit out until the next
// deal.
func (m *Manager) AddPlayer(code, playerID string) {}

// RemovePlayer takes a departed player out of the round, along with any vote
// they cast or received.
func (m *Manager) RemovePlayer(code, playerID string) {
	s, ok := m.sessions[code]
	if !ok {
		return
	}

	s.PlayerIDs = slices.DeleteFunc(s.PlayerIDs, func(id string) bool { return id == playerID })
	delete(s.roles, playerID)
	delete(s.Assignments, playerID)
	delete(s.Votes, playerID)
	for voter, target := range s.Votes {
		if target == playerID {
			delete(s.Votes, voter)
		}
	}
}

func (m *Manager) Delete(code string) {
	delete(m.sessions, code)
}

var _ games.Engine = (*Manager)(nil)
