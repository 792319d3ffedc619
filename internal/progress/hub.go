// Package progress streams tracking-run events to connected clients:
// browsers over WebSocket, headless consumers over a line-oriented TCP
// feed. Every event is one JSON object per line/message.
package progress

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scantrack/internal/tracking"
)

const writeTimeout = 2 * time.Second

type Hub struct {
	mu        sync.Mutex
	tcpConns  map[net.Conn]struct{}
	wsClients map[*websocket.Conn]struct{}
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{
		tcpConns:  make(map[net.Conn]struct{}),
		wsClients: make(map[*websocket.Conn]struct{}),
	}
}

// Publish implements tracking.EventSink; the engine's workers call it
// for every discovered chapter and at the end of each run.
func (h *Hub) Publish(ev tracking.TrackingEvent) {
	h.BroadcastJSON(ev)
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.tcpConns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcpConns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	h.wsClients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastJSON sends v to every connected client, dropping clients
// whose writes fail.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.tcpConns {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.Write(b); err != nil {
			_ = c.Close()
			delete(h.tcpConns, c)
		}
	}

	for ws := range h.wsClients {
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcpConns),
		WSClients:  len(h.wsClients),
	}
}

// Welcome greets a freshly connected TCP client.
func (h *Hub) Welcome(conn net.Conn) {
	type welcome struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	b, err := json.Marshal(welcome{Type: "welcome", Message: "connected"})
	if err != nil {
		return
	}
	_, _ = conn.Write(append(b, '\n'))
}
