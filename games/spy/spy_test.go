package spy

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/partyhost/games"
)

func newTestManager(seed uint64, opts ...Option) *Manager {
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(seed, seed+1)))}, opts...)
	return NewManager(opts...)
}

// votingSession deals a round for p1..p3 and opens voting.
func votingSession(t *testing.T) (*Manager, *Session) {
	t.Helper()

	m := newTestManager(7)
	s, err := m.Create("ROOM42", []string{"p1", "p2", "p3"}, "en")
	require.NoError(t, err)
	_, err = m.StartGame("ROOM42")
	require.NoError(t, err)
	_, err = m.StartVoting("ROOM42")
	require.NoError(t, err)
	return m, s
}

func civilians(s *Session) []string {
	var out []string
	for _, id := range s.PlayerIDs {
		if id != s.SpyID {
			out = append(out, id)
		}
	}
	return out
}

func TestCreateRequiresThreePlayers(t *testing.T) {
	m := newTestManager(1)

	_, err := m.Create("ROOM42", []string{"p1", "p2"}, "en")
	assert.ErrorIs(t, err, games.ErrValidation)
	assert.False(t, m.Active("ROOM42"))

	_, err = m.Create("ROOM42", []string{"p1", "p2", "p3"}, "klingon")
	assert.ErrorIs(t, err, games.ErrValidation)
}

func TestCreateDealsExactlyOneSpy(t *testing.T) {
	for seed := range uint64(25) {
		m := newTestManager(seed)
		players := []string{"p1", "p2", "p3", "p4", "p5"}

		s, err := m.Create("ROOM42", players, "")
		require.NoError(t, err)
		assert.Equal(t, Reveal, s.Phase)
		assert.Equal(t, RoundSeconds, s.Timer)
		assert.Equal(t, DefaultLanguage, s.Language)

		spies := 0
		for _, id := range players {
			a, err := m.PlayerAssignment("ROOM42", id)
			require.NoError(t, err)

			if a.IsSpy {
				spies++
				assert.Equal(t, s.SpyID, id)
				assert.Nil(t, a.Role)
				assert.Nil(t, a.Location)
				continue
			}
			require.NotNil(t, a.Role)
			require.NotNil(t, a.Location)
			assert.Equal(t, s.Location.Name.In("en"), *a.Location)
		}
		assert.Equal(t, 1, spies)
	}
}

func TestRolesAreDistinctUntilTheyCycle(t *testing.T) {
	loc := Location{
		Name:  Text{"en": "Lab"},
		Roles: []Text{{"en": "A"}, {"en": "B"}, {"en": "C"}},
	}

	m := newTestManager(3, WithLocations([]Location{loc}))
	s, err := m.Create("ROOM42", []string{"p1", "p2", "p3"}, "en")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, id := range civilians(s) {
		seen[*s.Assignments[id].Role] = true
	}
	assert.Len(t, seen, 2, "two civilians, three roles: no repeats")

	m = newTestManager(3, WithLocations([]Location{loc}))
	s, err = m.Create("ROOM42", []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}, "en")
	require.NoError(t, err)

	counts := map[string]int{}
	for _, id := range civilians(s) {
		counts[*s.Assignments[id].Role]++
	}
	assert.Len(t, counts, 3, "every role is used once players outnumber roles")
}

func TestPhaseGraph(t *testing.T) {
	for _, tt := range []struct {
		from, to Phase
		ok       bool
	}{
		{Reveal, Gameplay, true},
		{Reveal, Voting, true},
		{Reveal, Result, false},
		{Gameplay, Voting, true},
		{Gameplay, Reveal, false},
		{Voting, Result, true},
		{Voting, Gameplay, false},
		{Result, Voting, false},
		{Result, Reveal, false},
	} {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestRoundWithDiscussion(t *testing.T) {
	m := newTestManager(1)
	_, err := m.Create("ROOM42", []string{"p1", "p2", "p3"}, "en")
	require.NoError(t, err)

	_, err = m.ProcessVotes("ROOM42")
	assert.ErrorIs(t, err, games.ErrInvalidState)
	_, err = m.SubmitVote("ROOM42", "p1", "p2")
	assert.ErrorIs(t, err, games.ErrInvalidState)

	s, err := m.StartGame("ROOM42")
	require.NoError(t, err)
	assert.Equal(t, Gameplay, s.Phase)
	_, err = m.StartGame("ROOM42")
	assert.ErrorIs(t, err, games.ErrInvalidState)

	s, err = m.StartVoting("ROOM42")
	require.NoError(t, err)
	assert.Equal(t, Voting, s.Phase)

	_, err = m.ProcessVotes("ROOM42")
	require.NoError(t, err)
	assert.Equal(t, Result, s.Phase)

	_, err = m.StartVoting("ROOM42")
	assert.ErrorIs(t, err, games.ErrInvalidState)
	_, err = m.StartGame("NOPE00")
	assert.ErrorIs(t, err, games.ErrNotFound)
}

func TestVotingOpensStraightFromReveal(t *testing.T) {
	m := newTestManager(1)
	_, err := m.Create("ROOM42", []string{"p1", "p2", "p3"}, "en")
	require.NoError(t, err)

	s, err := m.StartVoting("ROOM42")
	require.NoError(t, err)
	assert.Equal(t, Voting, s.Phase)

	_, err = m.SubmitVote("ROOM42", "p1", "p2")
	require.NoError(t, err)

	out, err := m.ProcessVotes("ROOM42")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, out.SuspectIDs)

	_, err = m.StartGame("ROOM42")
	assert.ErrorIs(t, err, games.ErrInvalidState, "no discussion once the round is decided")
}

func TestCreateRejectsLocationWithoutRoles(t *testing.T) {
	m := newTestManager(1, WithLocations([]Location{
		{Name: Text{"en": "Lab"}, Roles: []Text{{"en": "A"}}},
		{Name: Text{"en": "Void"}},
	}))

	_, err := m.Create("ROOM42", []string{"p1", "p2", "p3"}, "en")
	require.ErrorIs(t, err, games.ErrValidation)
	assert.Contains(t, err.Error(), "Void")

	_, ok := m.Get("ROOM42")
	assert.False(t, ok)
}

func TestSubmitVoteLastWriteWins(t *testing.T) {
	m, _ := votingSession(t)

	n, err := m.SubmitVote("ROOM42", "p1", "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.SubmitVote("ROOM42", "p1", "p3")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "changing a vote does not add a voter")

	n, err = m.SubmitVote("ROOM42", "p2", "p3")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.SubmitVote("ROOM42", "p1", "nobody")
	assert.ErrorIs(t, err, games.ErrValidation)
	_, err = m.SubmitVote("ROOM42", "outsider", "p1")
	assert.ErrorIs(t, err, games.ErrValidation)

	out, err := m.ProcessVotes("ROOM42")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p3": 2}, out.VoteCounts)
	assert.Equal(t, []string{"p3"}, out.SuspectIDs)
}

func TestProcessVotesResolution(t *testing.T) {
	tests := []struct {
		name   string
		votes  func(s *Session) map[string]string
		winner Winner
		reason string
	}{
		{
			name:   "no votes",
			votes:  func(*Session) map[string]string { return nil },
			winner: SpyWins,
			reason: ReasonNoVotes,
		},
		{
			name: "tie",
			votes: func(s *Session) map[string]string {
				c := civilians(s)
				return map[string]string{c[0]: s.SpyID, c[1]: c[0]}
			},
			winner: SpyWins,
			reason: ReasonTie,
		},
		{
			name: "spy identified",
			votes: func(s *Session) map[string]string {
				c := civilians(s)
				return map[string]string{c[0]: s.SpyID, c[1]: s.SpyID, s.SpyID: c[0]}
			},
			winner: CiviliansWin,
			reason: ReasonSpyFound,
		},
		{
			name: "civilian eliminated",
			votes: func(s *Session) map[string]string {
				c := civilians(s)
				return map[string]string{s.SpyID: c[0], c[1]: c[0]}
			},
			winner: SpyWins,
			reason: ReasonWrongGuess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := votingSession(t)
			for voter, target := range tt.votes(s) {
				_, err := m.SubmitVote("ROOM42", voter, target)
				require.NoError(t, err)
			}

			out, err := m.ProcessVotes("ROOM42")
			require.NoError(t, err)
			assert.Equal(t, tt.winner, out.Winner)
			assert.Equal(t, tt.reason, out.Reason)
			assert.Equal(t, s.SpyID, out.SpyID)
			assert.Equal(t, s.Location.Name.In("en"), out.Location)
			assert.Equal(t, tt.winner, s.Winner)
		})
	}
}

func TestTieSuspectsFollowRosterOrder(t *testing.T) {
	m, _ := votingSession(t)

	_, err := m.SubmitVote("ROOM42", "p1", "p3")
	require.NoError(t, err)
	_, err = m.SubmitVote("ROOM42", "p3", "p1")
	require.NoError(t, err)

	out, err := m.ProcessVotes("ROOM42")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, out.SuspectIDs)
	assert.Equal(t, ReasonTie, out.Reason)
}

func TestStartVotingClearsVotes(t *testing.T) {
	m, s := votingSession(t)
	s.Votes["p1"] = "p2"

	s.Phase = Gameplay
	_, err := m.StartVoting("ROOM42")
	require.NoError(t, err)
	assert.Empty(t, s.Votes)
}

func TestSetLanguageKeepsSpyAndRoles(t *testing.T) {
	m := newTestManager(11)
	s, err := m.Create("ROOM42", []string{"p1", "p2", "p3", "p4"}, "en")
	require.NoError(t, err)

	spy := s.SpyID
	before := map[string]int{}
	for id, idx := range s.roles {
		before[id] = idx
	}

	s2, err := m.SetLanguage("ROOM42", "AR")
	require.NoError(t, err)
	assert.Same(t, s, s2)
	assert.Equal(t, "ar", s.Language)
	assert.Equal(t, spy, s.SpyID)
	assert.Equal(t, before, s.roles)

	for _, id := range civilians(s) {
		a := s.Assignments[id]
		assert.Equal(t, s.Location.Roles[s.roles[id]]["ar"], *a.Role)
		assert.Equal(t, s.Location.Name["ar"], *a.Location)
	}
	assert.True(t, s.Assignments[spy].IsSpy)

	_, err = m.SetLanguage("ROOM42", "xx")
	assert.ErrorIs(t, err, games.ErrValidation)
	assert.Equal(t, "ar", s.Language)
}

func TestResetGameDealsNewRound(t *testing.T) {
	m, old := votingSession(t)
	_, err := m.SetLanguage("ROOM42", "ar")
	require.NoError(t, err)
	_, err = m.ProcessVotes("ROOM42")
	require.NoError(t, err)

	s, err := m.ResetGame("ROOM42", []string{"p1", "p2", "p3", "p4"})
	require.NoError(t, err)
	assert.NotSame(t, old, s)
	assert.Equal(t, Reveal, s.Phase)
	assert.Equal(t, "ar", s.Language)
	assert.Len(t, s.Assignments, 4)
	assert.Empty(t, s.Votes)

	_, err = m.ResetGame("NOPE00", []string{"p1", "p2", "p3"})
	assert.ErrorIs(t, err, games.ErrNotFound)
}

func TestRemovePlayerDropsVotes(t *testing.T) {
	m, _ := votingSession(t)
	_, _ = m.SubmitVote("ROOM42", "p1", "p2")
	_, _ = m.SubmitVote("ROOM42", "p2", "p3")
	_, _ = m.SubmitVote("ROOM42", "p3", "p2")

	m.RemovePlayer("ROOM42", "p2")

	s, _ := m.Get("ROOM42")
	assert.Equal(t, []string{"p1", "p3"}, s.PlayerIDs)
	assert.Empty(t, s.Votes)

	_, err := m.PlayerAssignment("ROOM42", "p2")
	assert.ErrorIs(t, err, games.ErrNotFound)
}

func TestUIText(t *testing.T) {
	assert.Equal(t, "Vote now!", UIText("vote_now", "en"))
	assert.Equal(t, "صوّت الآن!", UIText("vote_now", "ar"))
	assert.Equal(t, "Vote now!", UIText("vote_now", "fr"))
	assert.Equal(t, "no_such_key", UIText("no_such_key", "ar"))

	all := AllUIText("ar")
	assert.Len(t, all, len(uiText))
	assert.Equal(t, "أنت الجاسوس!", all["spy_msg"])

	m := newTestManager(1)
	assert.Empty(t, m.UIText("ROOM42", "spy_msg"))
	_, err := m.Create("ROOM42", []string{"p1", "p2", "p3"}, "ar")
	require.NoError(t, err)
	assert.Equal(t, "أنت الجاسوس!", m.UIText("ROOM42", "spy_msg"))
}

func TestCatalogRolesAlignAcrossLanguages(t *testing.T) {
	for _, loc := range Locations {
		for _, lang := range languages {
			assert.NotEmpty(t, loc.Name[lang], loc.Name["en"])
		}
		for _, r := range loc.Roles {
			for _, lang := range languages {
				assert.NotEmpty(t, r[lang], "%s role %v", loc.Name["en"], r)
			}
		}
	}
	for key, text := range uiText {
		for _, lang := range languages {
			assert.NotEmpty(t, text[lang], key)
		}
	}
}
