/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"

	"github.com/Seednode/partyhost/games"
	"github.com/Seednode/partyhost/games/room"
	"github.com/Seednode/partyhost/games/spy"
)

func notPlayingSpy(r *room.Room) error {
	if r.ActiveGame != games.Spy {
		return fmt.Errorf("%w: room is not playing the deduction game", games.ErrInvalidState)
	}
	return nil
}

// spyRoom resolves a host request for a room running the deduction game.
func (h *Hub) spyRoom(req request, rr roomRequest) (*room.Room, error) {
	r, err := h.hostRoom(req, rr)
	if err != nil {
		return nil, err
	}
	if err := notPlayingSpy(r); err != nil {
		return nil, err
	}
	return r, nil
}

// roundPlayers returns the roster entries taking part in the round.
func roundPlayers(r *room.Room, s *spy.Session) []room.Player {
	out := make([]room.Player, 0, len(s.PlayerIDs))
	for _, id := range s.PlayerIDs {
		if p := r.Player(id); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// sendAssignments delivers each player's secret to that player alone.
func (h *Hub) sendAssignments(r *room.Room, s *spy.Session) {
	text := spy.AllUIText(s.Language)
	for _, id := range s.PlayerIDs {
		a, err := h.spy.PlayerAssignment(r.Code, id)
		if err != nil {
			continue
		}
		h.router.ToPlayer(r.Code, id, event(evSpyAssignment, payload{
			"isSpy":    a.IsSpy,
			"role":     a.Role,
			"location": a.Location,
			"language": s.Language,
			"uiText":   text,
		}))
	}
}

func (h *Hub) announceRound(r *room.Room, s *spy.Session) {
	h.sendAssignments(r, s)

	h.router.ToRoom(r.Code, event(evSpyGameStarted, payload{
		"phase":    s.Phase,
		"timer":    s.Timer,
		"language": s.Language,
		"players":  roundPlayers(r, s),
		"uiText":   spy.AllUIText(s.Language),
	}))
}

func (h *Hub) spyStartGame(req request) {
	var in spyStartRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.hostRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}
	if r.ActiveGame != games.Spy && r.ActiveGame != games.None {
		h.fail(req, fmt.Errorf("%w: room has selected %s", games.ErrInvalidState, r.ActiveGame))
		return
	}
	if r.State != room.Waiting {
		h.fail(req, fmt.Errorf("%w: room is %s, not waiting in the lobby", games.ErrInvalidState, r.State))
		return
	}

	s, err := h.spy.Create(r.Code, r.PlayerIDs(), in.Language)
	if err != nil {
		h.fail(req, err)
		return
	}
	if _, err := h.rooms.SelectGame(r.Code, games.Spy); err != nil {
		h.spy.Delete(r.Code)
		h.fail(req, err)
		return
	}
	if err := h.rooms.SetState(r.Code, room.Playing); err != nil {
		h.fail(req, err)
		return
	}

	logf(h.cfg, "SPY: Started round with %d players in room %s", len(s.PlayerIDs), r.Code)

	h.ack(req, payload{"gameState": payload{
		"phase":       s.Phase,
		"timer":       s.Timer,
		"language":    s.Language,
		"playerCount": len(s.PlayerIDs),
	}})

	h.announceRound(r, s)
}

func (h *Hub) spyStartDiscussion(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.spyRoom(req, in)
	if err != nil {
		h.fail(req, err)
		return
	}
	s, err := h.spy.StartGame(r.Code)
	if err != nil {
		h.fail(req, err)
		return
	}

	h.ack(req, payload{"phase": s.Phase})
	h.router.ToRoom(r.Code, event(evSpyPhaseChanged, payload{
		"phase": s.Phase,
		"timer": s.Timer,
	}))
}

func (h *Hub) spyStartVoting(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.spyRoom(req, in)
	if err != nil {
		h.fail(req, err)
		return
	}
	s, err := h.spy.StartVoting(r.Code)
	if err != nil {
		h.fail(req, err)
		return
	}

	h.ack(req, payload{"phase": s.Phase})
	h.router.ToRoom(r.Code, event(evSpyVotingStarted, payload{
		"phase":   s.Phase,
		"players": roundPlayers(r, s),
	}))
}

func (h *Hub) spySubmitVote(req request) {
	var in voteRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, playerID, err := h.playerRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}
	if err := notPlayingSpy(r); err != nil {
		h.fail(req, err)
		return
	}

	s, ok := h.spy.Get(r.Code)
	if !ok {
		h.fail(req, fmt.Errorf("%w: no round in progress", games.ErrNotFound))
		return
	}

	total, err := h.spy.SubmitVote(r.Code, playerID, in.VotedForID)
	if err != nil {
		h.fail(req, err)
		return
	}

	h.ack(req, payload{"totalVotes": total})
	h.router.ToRoom(r.Code, event(evSpyVoteUpdate, payload{
		"totalVotes":   total,
		"totalPlayers": len(s.PlayerIDs),
	}))
}

func (h *Hub) spyProcessVotes(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.spyRoom(req, in)
	if err != nil {
		h.fail(req, err)
		return
	}

	out, err := h.spy.ProcessVotes(r.Code)
	if err != nil {
		h.fail(req, err)
		return
	}
	if err := h.rooms.SetState(r.Code, room.Finished); err != nil {
		h.fail(req, err)
		return
	}

	var spyName string
	if p := r.Player(out.SpyID); p != nil {
		spyName = p.Name
	}

	logf(h.cfg, "SPY: Room %s round over, %s (%s)", r.Code, out.Winner, out.Reason)

	h.ack(req, payload{"result": out})
	h.router.ToRoom(r.Code, event(evSpyGameResult, payload{
		"winner":     out.Winner,
		"reason":     out.Reason,
		"spyId":      out.SpyID,
		"spyName":    spyName,
		"location":   out.Location,
		"voteCounts": out.VoteCounts,
		"suspectIds": out.SuspectIDs,
	}))
}

func (h *Hub) spyNextRound(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.spyRoom(req, in)
	if err != nil {
		h.fail(req, err)
		return
	}

	prev, ok := h.spy.Get(r.Code)
	if !ok {
		h.fail(req, fmt.Errorf("%w: no deduction game in room %s", games.ErrNotFound, r.Code))
		return
	}
	if prev.Phase != spy.Result {
		h.fail(req, fmt.Errorf("%w: the current round has not been resolved", games.ErrInvalidState))
		return
	}

	s, err := h.spy.ResetGame(r.Code, r.PlayerIDs())
	if err != nil {
		h.fail(req, err)
		return
	}
	if err := h.rooms.SetState(r.Code, room.Playing); err != nil {
		h.fail(req, err)
		return
	}

	logf(h.cfg, "SPY: Dealt a new round with %d players in room %s", len(s.PlayerIDs), r.Code)

	h.ack(req, payload{"gameState": payload{
		"phase":       s.Phase,
		"timer":       s.Timer,
		"language":    s.Language,
		"playerCount": len(s.PlayerIDs),
	}})

	h.announceRound(r, s)
}

func (h *Hub) spyChangeLanguage(req request) {
	var in spyStartRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.spyRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}

	s, err := h.spy.SetLanguage(r.Code, in.Language)
	if err != nil {
		h.fail(req, err)
		return
	}

	h.ack(req, payload{"language": s.Language})

	h.sendAssignments(r, s)
	h.router.ToRoom(r.Code, event(evSpyLanguageChanged, payload{
		"language": s.Language,
		"uiText":   spy.AllUIText(s.Language),
	}))
}
