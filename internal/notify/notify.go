// Package notify pushes new-chapter notifications to registered UDP
// clients. Clients register themselves with a single JSON datagram and
// receive one datagram per discovered chapter.
package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"

	"scantrack/internal/tracking"
)

const (
	RegisterMessageType   = "register"
	NewChapterMessageType = "new_chapter"
)

type RegisterMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

type NewChapterMessage struct {
	Type       string `json:"type"`
	ItemID     string `json:"item_id"`
	Adapter    string `json:"adapter"`
	ChapterKey string `json:"chapter_key"`
	URL        string `json:"url,omitempty"`
}

type Client struct {
	ID   string
	Addr *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(clientID string, addr *net.UDPAddr) {
	if clientID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[clientID] = Client{ID: clientID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	delete(r.clients, clientID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger

	// conn is written by Run and read by Publish and Close from other
	// goroutines.
	mu   sync.Mutex
	conn *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Printf("[notify] UDP server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("[notify] invalid datagram from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.ClientID, addr)
		s.logger.Printf("[notify] registered client %s (%s)", msg.ClientID, addr)
	}
}

// Close stops the server; Run returns nil after Close.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// BoundAddr reports the listening address, nil until Run has bound it.
func (s *Server) BoundAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Publish implements tracking.EventSink: every discovered chapter goes
// out to all registered clients. Other event types are ignored.
func (s *Server) Publish(ev tracking.TrackingEvent) {
	if ev.Type != tracking.EventChapterNew {
		return
	}
	s.BroadcastNewChapter(ev.ItemID, ev.Adapter, ev.ChapterKey, ev.ChapterURL)
}

func (s *Server) BroadcastNewChapter(itemID, adapterName, chapterKey, url string) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.logger.Printf("[notify] UDP server not running")
		return
	}
	payload, err := json.Marshal(NewChapterMessage{
		Type:       NewChapterMessageType,
		ItemID:     itemID,
		Adapter:    adapterName,
		ChapterKey: chapterKey,
		URL:        url,
	})
	if err != nil {
		s.logger.Printf("[notify] failed to marshal broadcast: %v", err)
		return
	}

	for _, client := range s.registry.Snapshot() {
		s.sendWithRetry(conn, client, payload)
	}
}

func (s *Server) sendWithRetry(conn *net.UDPConn, client Client, payload []byte) {
	if err := sendOnce(conn, client, payload); err == nil {
		return
	}
	if err := sendOnce(conn, client, payload); err != nil {
		s.logger.Printf("[notify] failed to notify %s at %s: %v", client.ID, client.Addr, err)
		s.registry.Remove(client.ID)
	}
}

func sendOnce(conn *net.UDPConn, client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.ClientID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
