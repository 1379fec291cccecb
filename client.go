/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 64
)

// Client is one websocket connection. The hub addresses it by id; the id is
// also the handle the room store binds to rooms and players.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan ServerMessage
	limiter *rate.Limiter
	remote  string
}

func newClient(cfg *Config, conn *websocket.Conn, remote string) *Client {
	return &Client{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan ServerMessage, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.rateBurst),
		remote:  remote,
	}
}

func newUpgrader(cfg *Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(cfg.allowedOrigins, r.Header.Get("Origin"))
		},
	}
}

// originAllowed matches the Origin header against the allow-list by host.
// An empty list allows everything.
func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	if origin == "" {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return slices.ContainsFunc(allowed, func(a string) bool {
		a = strings.TrimSuffix(strings.TrimSpace(a), "/")
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
		return strings.EqualFold(a, u.Host)
	})
}

func (c *Client) readPump(h *Hub, playerTimeout time.Duration) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(playerTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(playerTimeout))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logf(h.cfg, "SOCKET: Connection %s from %s closed: %v", c.id, c.remote, err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(playerTimeout))

		select {
		case h.inbound <- inbound{client: c, msg: msg, limited: !c.limiter.Allow()}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump(playerTimeout time.Duration) {
	ticker := time.NewTicker(playerTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
