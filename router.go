/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/Seednode/partyhost/games/room"
)

// Router fans server messages out to an audience within a room. Delivery is
// best effort: a client whose buffer is full is dropped rather than waited on.
type Router struct {
	cfg     *Config
	clients map[string]*Client
	rooms   *room.Store
}

func newRouter(cfg *Config, rooms *room.Store) *Router {
	return &Router{
		cfg:     cfg,
		clients: make(map[string]*Client),
		rooms:   rooms,
	}
}

func (r *Router) add(c *Client) {
	r.clients[c.id] = c
}

// remove forgets c and closes its send channel, which ends its write pump.
// It reports whether c was still known.
func (r *Router) remove(c *Client) bool {
	if _, ok := r.clients[c.id]; !ok {
		return false
	}
	delete(r.clients, c.id)
	close(c.send)
	return true
}

func (r *Router) closeAll() {
	for _, c := range r.clients {
		r.remove(c)
	}
}

func (r *Router) deliver(c *Client, msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		logf(r.cfg, "SOCKET: Dropping slow connection %s", c.id)
		r.remove(c)
	}
}

// ToConn sends to a single connection.
func (r *Router) ToConn(conn string, msg ServerMessage) {
	if c, ok := r.clients[conn]; ok {
		r.deliver(c, msg)
	}
}

// ToRoom sends to every connection in the room, host display included.
func (r *Router) ToRoom(code string, msg ServerMessage) {
	r.ToRoomExcept(code, "", msg)
}

// ToRoomExcept sends to every connection in the room but one.
func (r *Router) ToRoomExcept(code, except string, msg ServerMessage) {
	rm, err := r.rooms.Get(code)
	if err != nil {
		return
	}
	for _, conn := range rm.ConnIDs() {
		if conn != except {
			r.ToConn(conn, msg)
		}
	}
}

// ToHost sends to the connection that created the room.
func (r *Router) ToHost(code string, msg ServerMessage) {
	rm, err := r.rooms.Get(code)
	if err != nil {
		return
	}
	r.ToConn(rm.CreatorConn, msg)
}

// ToPlayer sends to whichever connection currently carries playerID.
func (r *Router) ToPlayer(code, playerID string, msg ServerMessage) {
	rm, err := r.rooms.Get(code)
	if err != nil {
		return
	}
	if p := rm.Player(playerID); p != nil {
		r.ToConn(p.ConnID, msg)
	}
}
