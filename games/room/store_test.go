package room

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/partyhost/games"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestStore(codes ...string) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	next := 0
	ids := 0
	opts := []Option{
		WithClock(clock.now),
		WithIDs(func() string {
			ids++
			return fmt.Sprintf("p%d", ids)
		}),
	}
	if len(codes) > 0 {
		opts = append(opts, WithCodes(func() string {
			c := codes[next%len(codes)]
			next++
			return c
		}))
	}

	return NewStore(opts...), clock
}

func TestCreateRegeneratesCollidingCodes(t *testing.T) {
	s, _ := newTestStore("AAAAAA", "AAAAAA", "bbbbbb")

	first := s.Create("conn-1")
	second := s.Create("conn-2")

	assert.Equal(t, "AAAAAA", first.Code)
	assert.Equal(t, "BBBBBB", second.Code)
	assert.Equal(t, Waiting, second.State)
	assert.Empty(t, second.Players)

	b, ok := s.FindByConnection("conn-2")
	require.True(t, ok)
	assert.Equal(t, Binding{Code: "BBBBBB", Role: RoleHost}, b)
}

func TestAddPlayerAssignsHostToFirstJoiner(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	r := s.Create("display")

	p1, err := s.AddPlayer("room42", "c1", "Alice")
	require.NoError(t, err)
	p2, err := s.AddPlayer("ROOM42", "c2", "Bob")
	require.NoError(t, err)
	p3, err := s.AddPlayer("Room42", "c3", "Carol")
	require.NoError(t, err)

	assert.Equal(t, p1.ID, r.HostPlayerID)
	assert.True(t, s.IsHost("room42", p1.ID))
	assert.False(t, s.IsHost("ROOM42", p2.ID))
	assert.Equal(t, []string{p1.ID, p2.ID, p3.ID}, r.PlayerIDs())
	assert.Equal(t, map[string]int{p1.ID: 0, p2.ID: 0, p3.ID: 0}, r.Scores)
	assert.Equal(t, p1.ID, r.FirstPlayerID())

	// Host survives later departures of other players.
	assert.False(t, s.RemovePlayer("ROOM42", p2.ID))
	assert.Equal(t, p1.ID, r.HostPlayerID)
	_, err = s.AddPlayer("ROOM42", "c4", "Dave")
	require.NoError(t, err)
	assert.Equal(t, p1.ID, r.HostPlayerID)
}

func TestAddPlayerErrors(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	s.Create("display")

	_, err := s.AddPlayer("NOPE00", "c1", "Alice")
	assert.ErrorIs(t, err, games.ErrNotFound)

	_, err = s.AddPlayer("ROOM42", "c1", "   ")
	assert.ErrorIs(t, err, games.ErrValidation)

	_, err = s.AddPlayer("ROOM42", "c1", "abcdefghijklmnopqrstuvwxyzabcdefghij")
	assert.ErrorIs(t, err, games.ErrValidation)
}

func TestRemovePlayerDestroysEmptyRoom(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	s.Create("display")

	p1, _ := s.AddPlayer("ROOM42", "c1", "Alice")
	p2, _ := s.AddPlayer("ROOM42", "c2", "Bob")

	assert.False(t, s.RemovePlayer("ROOM42", "ghost"))
	assert.False(t, s.RemovePlayer("NOPE00", p1.ID))

	assert.False(t, s.RemovePlayer("ROOM42", p1.ID))
	_, ok := s.FindByConnection("c1")
	assert.False(t, ok)

	assert.True(t, s.RemovePlayer("ROOM42", p2.ID))
	_, err := s.Get("ROOM42")
	assert.ErrorIs(t, err, games.ErrNotFound)

	_, ok = s.FindByConnection("display")
	assert.False(t, ok, "creator binding released with the room")

	rooms, players := s.Stats()
	assert.Zero(t, rooms)
	assert.Zero(t, players)
}

func TestSetState(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	r := s.Create("display")

	require.NoError(t, s.SetState("room42", Config))
	assert.Equal(t, Config, r.State)

	// No graph enforcement at this layer.
	require.NoError(t, s.SetState("ROOM42", Finished))
	require.NoError(t, s.SetState("ROOM42", Waiting))

	assert.ErrorIs(t, s.SetState("ROOM42", State("LOBBY")), games.ErrInvalidState)
	assert.ErrorIs(t, s.SetState("NOPE00", Config), games.ErrNotFound)
}

func TestFindByConnection(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	s.Create("display")
	p, _ := s.AddPlayer("ROOM42", "c1", "Alice")

	b, ok := s.FindByConnection("c1")
	require.True(t, ok)
	assert.Equal(t, Binding{Code: "ROOM42", Role: RolePlayer, PlayerID: p.ID}, b)

	_, ok = s.FindByConnection("stranger")
	assert.False(t, ok)
}

func TestQuizSettings(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	r := s.Create("display")

	assert.Equal(t, QuizSettings{Language: "English", Category: "History", Difficulty: "Medium"}, r.Quiz)

	got, err := s.UpdateQuizSettings("ROOM42", SettingsUpdate{Category: "Science", Difficulty: " Hard "})
	require.NoError(t, err)
	assert.Equal(t, QuizSettings{Language: "English", Category: "Science", Difficulty: "Hard"}, got)

	got, err = s.ConfirmQuizSettings("ROOM42")
	require.NoError(t, err)
	assert.True(t, got.Confirmed)

	_, err = s.UpdateQuizSettings("ROOM42", SettingsUpdate{Language: "French"})
	assert.ErrorIs(t, err, games.ErrInvalidState)
	assert.Equal(t, "English", r.Quiz.Language)
}

func TestIdleSince(t *testing.T) {
	s, clock := newTestStore("AAAAAA", "BBBBBB")
	s.Create("d1")
	cutoff := clock.now()
	s.Create("d2")

	assert.Equal(t, []string{"AAAAAA"}, s.IdleSince(cutoff))

	s.Touch("aaaaaa")
	assert.Empty(t, s.IdleSince(cutoff))
}

func TestCodes(t *testing.T) {
	for range 50 {
		code := NewCode()
		assert.Len(t, code, CodeLength)
		assert.True(t, ValidCode(code), code)
		assert.True(t, ValidCode(strings.ToLower(code)))
	}

	assert.False(t, ValidCode("ABC"))
	assert.False(t, ValidCode("ABCDE0"))
}

func TestParseState(t *testing.T) {
	st, err := ParseState("playing")
	require.NoError(t, err)
	assert.Equal(t, Playing, st)

	_, err = ParseState("")
	assert.ErrorIs(t, err, games.ErrInvalidState)
}

func TestSelectGame(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	r := s.Create("display")
	_, err := s.AddPlayer(r.Code, "c1", "Ana")
	require.NoError(t, err)

	st, err := s.SelectGame(r.Code, games.Quiz)
	require.NoError(t, err)
	assert.Equal(t, Config, st)
	assert.Equal(t, games.Quiz, r.ActiveGame)

	_, err = s.ConfirmQuizSettings(r.Code)
	require.NoError(t, err)
	r.Scores["p1"] = 3

	st, err = s.SelectGame(r.Code, games.Spy)
	require.NoError(t, err)
	assert.Equal(t, Waiting, st)
	assert.False(t, r.Quiz.Confirmed)
	assert.Equal(t, 0, r.Scores["p1"])

	require.NoError(t, s.SetState(r.Code, Playing))
	_, err = s.SelectGame(r.Code, games.Quiz)
	assert.ErrorIs(t, err, games.ErrInvalidState)

	_, err = s.SelectGame("NOPE00", games.Quiz)
	assert.ErrorIs(t, err, games.ErrNotFound)
}

func TestSetStartingRejectsSecondStart(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	r := s.Create("display")

	require.NoError(t, s.SetStarting(r.Code, true))
	assert.ErrorIs(t, s.SetStarting(r.Code, true), games.ErrInvalidState)

	_, err := s.SelectGame(r.Code, games.Spy)
	assert.ErrorIs(t, err, games.ErrInvalidState, "no switching games mid-start")

	require.NoError(t, s.SetStarting(r.Code, false))
	require.NoError(t, s.SetStarting(r.Code, true))
}

func TestHostedGame(t *testing.T) {
	s, _ := newTestStore("ROOM42")
	r := s.Create("display")
	_, err := s.AddPlayer(r.Code, "c1", "Ana")
	require.NoError(t, err)
	_, err = s.AddPlayer(r.Code, "c2", "Ben")
	require.NoError(t, err)

	_, err = s.EndHostedGame(r.Code, nil)
	require.ErrorIs(t, err, games.ErrInvalidState)

	_, err = s.StartHostedGame(r.Code, "  ")
	require.ErrorIs(t, err, games.ErrValidation)

	_, err = s.SelectGame(r.Code, games.Spy)
	require.NoError(t, err)
	r.Scores["p1"] = 4

	g, err := s.StartHostedGame(r.Code, " Pictionary ")
	require.NoError(t, err)
	assert.Equal(t, GameState{
		Started:     true,
		CurrentGame: "Pictionary",
		Scores:      map[string]int{"p1": 0, "p2": 0},
	}, g)
	assert.Equal(t, Playing, r.State)
	assert.Equal(t, games.None, r.ActiveGame)

	_, err = s.StartHostedGame(r.Code, "Charades")
	require.ErrorIs(t, err, games.ErrInvalidState)

	g, err = s.EndHostedGame(r.Code, map[string]int{"p1": 7, "ghost": 99})
	require.NoError(t, err)
	assert.False(t, g.Started)
	assert.Empty(t, g.CurrentGame)
	assert.Equal(t, map[string]int{"p1": 7, "p2": 0}, g.Scores)
	assert.Equal(t, Finished, r.State)

	g.Scores["p1"] = 0
	assert.Equal(t, 7, r.Scores["p1"], "snapshot is a copy")
}
