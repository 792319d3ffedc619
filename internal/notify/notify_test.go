package notify

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scantrack/internal/tracking"
)

func TestParseRegisterMessage(t *testing.T) {
	msg, err := parseRegisterMessage([]byte(`{"type":"register","client_id":"desk"}`))
	require.NoError(t, err)
	assert.Equal(t, RegisterMessageType, msg.Type)
	assert.Equal(t, "desk", msg.ClientID)

	_, err = parseRegisterMessage([]byte(`{"type":"register"}`))
	assert.Error(t, err)

	_, err = parseRegisterMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}

	r.Register("desk", addr)
	r.Register("", addr)   // ignored
	r.Register("nil", nil) // ignored

	clients := r.Snapshot()
	require.Len(t, clients, 1)
	assert.Equal(t, "desk", clients[0].ID)

	r.Remove("desk")
	assert.Empty(t, r.Snapshot())
}

func TestServerBroadcastsWhileRunning(t *testing.T) {
	reg := NewRegistry()
	srv := NewServer("127.0.0.1:0", reg, log.New(io.Discard, "", 0))

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()
	t.Cleanup(func() { _ = srv.Close() })

	require.Eventually(t, func() bool {
		return srv.BoundAddr() != nil
	}, 2*time.Second, 10*time.Millisecond)

	client, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer client.Close()

	reg.Register("desk", client.LocalAddr().(*net.UDPAddr))

	// Publish comes in from engine worker goroutines while Run owns the
	// read loop.
	srv.Publish(tracking.TrackingEvent{
		Type:       tracking.EventChapterNew,
		ItemID:     "solo-max",
		Adapter:    "ravenscans",
		ChapterKey: "42",
		ChapterURL: "https://example.org/solo-max/chapter-42",
	})
	// ignored event types produce no datagram
	srv.Publish(tracking.TrackingEvent{Type: tracking.EventRunFinished})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 2048)
	n, _, err := client.ReadFromUDP(buf)
	require.NoError(t, err)

	var msg NewChapterMessage
	require.NoError(t, json.Unmarshal(buf[:n], &msg))
	assert.Equal(t, NewChapterMessageType, msg.Type)
	assert.Equal(t, "solo-max", msg.ItemID)
	assert.Equal(t, "42", msg.ChapterKey)

	require.NoError(t, srv.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestServerBroadcastBeforeRunIsNoop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewRegistry(), log.New(io.Discard, "", 0))
	srv.BroadcastNewChapter("solo-max", "ravenscans", "1", "")
	assert.NoError(t, srv.Close())
}
