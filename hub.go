/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Seednode/partyhost/games"
	"github.com/Seednode/partyhost/games/quiz"
	"github.com/Seednode/partyhost/games/room"
	"github.com/Seednode/partyhost/games/spy"
)

const (
	reasonHostLeft   = "Host disconnected"
	reasonEmpty      = "All players left"
	reasonTimedOut   = "Session timed out"
	reasonShutdown   = "Server shutting down"
	reasonUnknownMsg = "unknown event"
)

var (
	errInternal    = errors.New("internal error")
	errRateLimited = fmt.Errorf("%w: too many events, slow down", games.ErrValidation)
)

// questionSource is satisfied by *quiz.Source.
type questionSource interface {
	Questions(ctx context.Context, req quiz.Request) []quiz.Question
}

type inbound struct {
	client  *Client
	msg     ClientMessage
	limited bool
}

// request is one client event being handled. Handlers answer it exactly once
// with ack or fail.
type request struct {
	client *Client
	id     int64
	typ    string
	data   json.RawMessage
}

// generated carries oracle output back into the loop.
type generated struct {
	req       request
	code      string
	questions []quiz.Question
}

type healthStats struct {
	Rooms   int
	Players int
}

// Hub owns every room and session. All state is touched only from run, so
// handlers need no locks; the one slow call, question generation, runs on
// its own goroutine and re-enters the loop through generated.
type Hub struct {
	cfg     *Config
	rooms   *room.Store
	quiz    *quiz.Manager
	spy     *spy.Manager
	engines map[games.Kind]games.Engine
	source  questionSource
	router  *Router

	handlers map[string]func(request)

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	generated  chan generated
	stats      chan chan healthStats
	done       chan struct{}

	ctx context.Context
	now func() time.Time
}

type hubOption func(*Hub)

func withRooms(s *room.Store) hubOption {
	return func(h *Hub) { h.rooms = s }
}

func withSpy(m *spy.Manager) hubOption {
	return func(h *Hub) { h.spy = m }
}

func withSource(src questionSource) hubOption {
	return func(h *Hub) { h.source = src }
}

func newHub(cfg *Config, opts ...hubOption) *Hub {
	h := &Hub{
		cfg:        cfg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		generated:  make(chan generated),
		stats:      make(chan chan healthStats),
		done:       make(chan struct{}),
		ctx:        context.Background(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.rooms == nil {
		h.rooms = room.NewStore()
	}
	if h.spy == nil {
		h.spy = spy.NewManager()
	}
	if h.source == nil {
		h.source = &quiz.Source{
			Oracle: newGeminiOracle(cfg),
			Logf:   func(format string, args ...any) { logf(cfg, format, args...) },
		}
	}
	h.quiz = quiz.NewManager(cfg.questionTime)
	h.router = newRouter(cfg, h.rooms)

	h.engines = map[games.Kind]games.Engine{
		games.Quiz: h.quiz,
		games.Spy:  h.spy,
	}

	h.handlers = map[string]func(request){
		evCreateRoom:         h.createRoom,
		evJoinRoom:           h.joinRoom,
		evSelectGame:         h.selectGame,
		evUpdateQuizSettings: h.updateQuizSettings,
		evConfirmConfig:      h.confirmConfig,
		evQuizStart:          h.quizStart,
		evQuizSubmitAnswer:   h.quizSubmitAnswer,
		evQuizNextQuestion:   h.quizNextQuestion,
		evQuizGetQuestion:    h.quizGetQuestion,
		evSpyStartGame:       h.spyStartGame,
		evSpyStartDiscussion: h.spyStartDiscussion,
		evSpyStartVoting:     h.spyStartVoting,
		evSpySubmitVote:      h.spySubmitVote,
		evSpyProcessVotes:    h.spyProcessVotes,
		evSpyNextRound:       h.spyNextRound,
		evSpyChangeLanguage:  h.spyChangeLanguage,
		evControllerInput:    h.controllerInput,
		evHostStartGame:      h.hostStartGame,
		evHostGameState:      h.hostGameState,
		evHostEndGame:        h.hostEndGame,
		evPing:               h.ping,
	}

	return h
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	h.ctx = ctx

	var reap <-chan time.Time
	if h.cfg.sessionTimeout > 0 {
		ticker := time.NewTicker(h.cfg.sessionTimeout / 2)
		defer ticker.Stop()
		reap = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.router.add(c)

		case c := <-h.unregister:
			h.disconnect(c)

		case in := <-h.inbound:
			h.dispatch(in)

		case g := <-h.generated:
			h.finishQuizStart(g)

		case reply := <-h.stats:
			rooms, players := h.rooms.Stats()
			reply <- healthStats{Rooms: rooms, Players: players}

		case <-reap:
			h.reap()
		}
	}
}

// Stats asks the loop for room and player counts.
func (h *Hub) Stats(ctx context.Context) (healthStats, error) {
	reply := make(chan healthStats, 1)

	select {
	case h.stats <- reply:
	case <-h.done:
		return healthStats{}, errors.New("hub stopped")
	case <-ctx.Done():
		return healthStats{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return healthStats{}, ctx.Err()
	}
}

func (h *Hub) dispatch(in inbound) {
	req := request{
		client: in.client,
		id:     in.msg.ID,
		typ:    in.msg.Type,
		data:   in.msg.Data,
	}

	defer func() {
		if r := recover(); r != nil {
			errorf("HUB: Recovered from panic handling %q from %s: %v", req.typ, req.client.id, r)
			h.fail(req, errInternal)
		}
	}()

	if in.limited {
		h.fail(req, errRateLimited)
		return
	}

	handle, ok := h.handlers[req.typ]
	if !ok {
		h.fail(req, fmt.Errorf("%w: %s %q", games.ErrValidation, reasonUnknownMsg, req.typ))
		return
	}

	handle(req)
}

func (h *Hub) ack(req request, fields payload) {
	h.router.ToConn(req.client.id, ackMessage(req.id, success(fields)))
}

func (h *Hub) fail(req request, err error) {
	if games.Code(err) == "internal" {
		errorf("HUB: %s from %s failed: %v", req.typ, req.client.id, err)
	} else {
		logf(h.cfg, "HUB: Rejected %s from %s: %v", req.typ, req.client.id, err)
	}
	h.router.ToConn(req.client.id, ackMessage(req.id, failure(err)))
}

// member resolves code and checks that the sending connection belongs to it.
func (h *Hub) member(req request, code string) (*room.Room, room.Binding, error) {
	r, err := h.rooms.Get(code)
	if err != nil {
		return nil, room.Binding{}, err
	}

	b, ok := h.rooms.FindByConnection(req.client.id)
	if !ok || b.Code != r.Code {
		return nil, room.Binding{}, fmt.Errorf("%w: connection is not part of room %s", games.ErrUnauthorized, r.Code)
	}

	h.rooms.Touch(r.Code)

	return r, b, nil
}

// hostRoom resolves a room for a host-only request. The host display and the
// host player's connection both qualify.
func (h *Hub) hostRoom(req request, rr roomRequest) (*room.Room, error) {
	r, b, err := h.member(req, rr.RoomCode)
	if err != nil {
		return nil, err
	}
	if b.Role == room.RoleHost {
		return r, nil
	}
	if rr.PlayerID != "" && rr.PlayerID != b.PlayerID {
		return nil, fmt.Errorf("%w: playerId does not belong to this connection", games.ErrUnauthorized)
	}
	if !h.rooms.IsHost(r.Code, b.PlayerID) {
		return nil, fmt.Errorf("%w: only the host can do that", games.ErrUnauthorized)
	}
	return r, nil
}

// playerRoom resolves a room for a request made as a player, returning the
// sender's player id.
func (h *Hub) playerRoom(req request, rr roomRequest) (*room.Room, string, error) {
	r, b, err := h.member(req, rr.RoomCode)
	if err != nil {
		return nil, "", err
	}
	if b.Role != room.RolePlayer {
		return nil, "", fmt.Errorf("%w: only players can do that", games.ErrUnauthorized)
	}
	if rr.PlayerID != "" && rr.PlayerID != b.PlayerID {
		return nil, "", fmt.Errorf("%w: playerId does not belong to this connection", games.ErrUnauthorized)
	}
	return r, b.PlayerID, nil
}

// activeEngine returns the session engine the room is currently running.
func (h *Hub) activeEngine(r *room.Room) (games.Engine, bool) {
	e, ok := h.engines[r.ActiveGame]
	return e, ok
}

func (h *Hub) disconnect(c *Client) {
	h.router.remove(c)

	b, ok := h.rooms.FindByConnection(c.id)
	if !ok {
		return
	}
	r, err := h.rooms.Get(b.Code)
	if err != nil {
		return
	}

	switch b.Role {
	case room.RoleHost:
		h.closeRoom(r, reasonHostLeft)
	case room.RolePlayer:
		h.leave(r, b.PlayerID)
	}
}

// closeRoom tells everyone still connected that the room is gone, then tears
// down the room and every session it had.
func (h *Hub) closeRoom(r *room.Room, reason string) {
	h.router.ToRoom(r.Code, event(evRoomClosed, payload{"reason": reason}))

	for _, e := range h.engines {
		e.Delete(r.Code)
	}
	h.rooms.Delete(r.Code)

	logf(h.cfg, "ROOMS: Closed room %s (%s)", r.Code, reason)
}

func (h *Hub) leave(r *room.Room, playerID string) {
	var name string
	if p := r.Player(playerID); p != nil {
		name = p.Name
	}

	if e, ok := h.activeEngine(r); ok {
		e.RemovePlayer(r.Code, playerID)
	}

	creator := r.CreatorConn
	if h.rooms.RemovePlayer(r.Code, playerID) {
		for _, e := range h.engines {
			e.Delete(r.Code)
		}
		h.router.ToConn(creator, event(evRoomClosed, payload{"reason": reasonEmpty}))
		logf(h.cfg, "ROOMS: Closed room %s (%s)", r.Code, reasonEmpty)
		return
	}

	h.router.ToRoom(r.Code, event(evPlayerLeft, payload{
		"playerId":     playerID,
		"players":      r.Roster(),
		"hostPlayerId": r.HostPlayerID,
	}))

	logf(h.cfg, "ROOMS: Player %q left room %s", name, r.Code)
}

func (h *Hub) reap() {
	cutoff := h.now().Add(-h.cfg.sessionTimeout)
	for _, code := range h.rooms.IdleSince(cutoff) {
		if r, err := h.rooms.Get(code); err == nil {
			h.closeRoom(r, reasonTimedOut)
		}
	}
}

func (h *Hub) shutdown() {
	for _, code := range h.rooms.Codes() {
		if r, err := h.rooms.Get(code); err == nil {
			h.closeRoom(r, reasonShutdown)
		}
	}
	h.router.closeAll()
}
