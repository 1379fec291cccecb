/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"

	"github.com/Seednode/partyhost/games"
)

// Hosted games keep their rules on the host screen. Phones act as
// controllers whose input goes to the host, and the host pushes its state
// back out to them.

func (h *Hub) controllerInput(req request) {
	var in controllerInputRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, playerID, err := h.playerRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}
	if len(in.Input) == 0 {
		h.fail(req, fmt.Errorf("%w: input is required", games.ErrValidation))
		return
	}

	h.ack(req, nil)
	h.router.ToHost(r.Code, event(evGameInput, payload{
		"playerId":  playerID,
		"input":     in.Input,
		"timestamp": h.now().UnixMilli(),
	}))
}

func (h *Hub) hostStartGame(req request) {
	var in hostStartRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.hostRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}

	// The selected game's session is dropped once the hosted game takes over.
	previous, selected := h.activeEngine(r)

	g, err := h.rooms.StartHostedGame(r.Code, in.GameName)
	if err != nil {
		h.fail(req, err)
		return
	}
	if selected {
		previous.Delete(r.Code)
	}

	logf(h.cfg, "HOSTED: Room %s started %q", r.Code, g.CurrentGame)

	h.ack(req, payload{"gameState": g})
	h.router.ToRoom(r.Code, event(evGameStarted, payload{
		"gameName":  g.CurrentGame,
		"gameState": g,
	}))
}

// hostGameState relays the host's state to everyone else in the room as-is.
func (h *Hub) hostGameState(req request) {
	var in gameStateRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.hostRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}
	if len(in.State) == 0 {
		h.fail(req, fmt.Errorf("%w: state is required", games.ErrValidation))
		return
	}

	h.ack(req, nil)
	h.router.ToRoomExcept(r.Code, req.client.id, event(evGameStateUpdate, in.State))
}

func (h *Hub) hostEndGame(req request) {
	var in endGameRequest
	if err := decode(req.data, &in); err != nil {
		h.fail(req, err)
		return
	}

	r, err := h.hostRoom(req, in.roomRequest)
	if err != nil {
		h.fail(req, err)
		return
	}

	g, err := h.rooms.EndHostedGame(r.Code, in.FinalScores)
	if err != nil {
		h.fail(req, err)
		return
	}

	logf(h.cfg, "HOSTED: Room %s finished", r.Code)

	h.ack(req, payload{"gameState": g})
	h.router.ToRoom(r.Code, event(evGameEnded, payload{
		"finalScores": g.Scores,
	}))
}
