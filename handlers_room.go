/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"

	"github.com/Seednode/partyhost/games"
	"github.com/Seednode/partyhost/games/room"
)

// bound rejects a connection that already belongs to a room.
func (h *Hub) bound(req request) error {
	if b, ok := h.rooms.FindByConnection(req.client.id); ok {
		return fmt.Errorf("%w: connection already belongs to room %s", games.ErrInvalidState, b.Code)
	}
	return nil
}

func (h *Hub) createRoom(req request) {
	if err := h.bound(req); err != nil {
		h.fail(req, err)
		return
	}

	r := h.rooms.Create(req.client.id)

	logf(h.cfg, "ROOMS: Created room %s for %s", r.Code, req.client.remote)

	h.ack(req, payload{"roomCode": r.Code})
}

func (h *Hub) joinRoom(req request) {
	var in joinRoomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}
	if err := h.bound(req); err != nil {
		h.fail(req, err)
		return
	}

	p, err := h.rooms.AddPlayer(in.RoomCode, req.client.id, in.PlayerName)
	if err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.rooms.Get(in.RoomCode)
	if err != nil {
		h.fail(req, err)
		return
	}

	if e, ok := h.activeEngine(r); ok {
		e.AddPlayer(r.Code, p.ID)
	}

	logf(h.cfg, "ROOMS: Player %q joined room %s", p.Name, r.Code)

	h.ack(req, payload{
		"playerId":      p.ID,
		"roomCode":      r.Code,
		"isHost":        r.HostPlayerID == p.ID,
		"isFirstPlayer": r.FirstPlayerID() == p.ID,
		"roomState":     r.State,
		"activeGame":    r.ActiveGame,
		"players":       r.Roster(),
		"hostPlayerId":  r.HostPlayerID,
	})

	h.router.ToRoomExcept(r.Code, req.client.id, event(evPlayerJoined, payload{
		"player":       *p,
		"players":      r.Roster(),
		"hostPlayerId": r.HostPlayerID,
	}))
}

func (h *Hub) selectGame(req request) {
	var in selectGameRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.hostRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}

	kind, err := games.ParseKind(in.GameType)
	if err != nil {
		h.fail(req, err)
		return
	}

	prev := r.ActiveGame
	state, err := h.rooms.SelectGame(r.Code, kind)
	if err != nil {
		h.fail(req, err)
		return
	}
	if e, ok := h.engines[prev]; ok {
		e.Delete(r.Code)
	}

	logf(h.cfg, "ROOMS: Room %s selected %s", r.Code, kind)

	h.ack(req, payload{"state": state, "gameType": kind})

	h.router.ToRoom(r.Code, event(evStateChanged, payload{
		"state":    state,
		"gameType": kind,
		"settings": r.Quiz,
	}))
}

// quizConfigRoom resolves a host request made while the room is configuring
// a quiz.
func (h *Hub) quizConfigRoom(req request, rr roomRequest) (*room.Room, error) {
	r, err := h.hostRoom(req, rr)
	if err != nil {
		return nil, err
	}
	if r.ActiveGame != games.Quiz || r.State != room.Config {
		return nil, fmt.Errorf("%w: room is not configuring a quiz", games.ErrInvalidState)
	}
	return r, nil
}

func (h *Hub) updateQuizSettings(req request) {
	var in quizSettingsRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.quizConfigRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}

	settings, err := h.rooms.UpdateQuizSettings(r.Code, in.Settings)
	if err != nil {
		h.fail(req, err)
		return
	}

	h.ack(req, payload{"settings": settings})

	h.router.ToRoom(r.Code, event(evQuizSettingsUpdated, payload{"settings": settings}))
}

func (h *Hub) confirmConfig(req request) {
	var in roomRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.quizConfigRoom(req, in)
	if err != nil {
		h.fail(req, err)
		return
	}

	settings, err := h.rooms.ConfirmQuizSettings(r.Code)
	if err != nil {
		h.fail(req, err)
		return
	}

	h.ack(req, payload{"settings": settings})

	h.router.ToRoom(r.Code, event(evConfigReady, payload{"settings": settings}))
}

func (h *Hub) ping(req request) {
	h.ack(req, payload{"pong": true, "timestamp": h.now().UnixMilli()})
}
