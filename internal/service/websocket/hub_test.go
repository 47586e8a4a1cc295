package websocket

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"plantidentifier/internal/dto"
	"plantidentifier/internal/logger"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func setupTestHub(t *testing.T) (*HubService, *httptest.Server) {
	t.Helper()
	return setupTestHubWithWriteWait(t, defaultWriteWait)
}

func setupTestHubWithWriteWait(t *testing.T, writeWait time.Duration) (*HubService, *httptest.Server) {
	t.Helper()

	l, err := logger.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	hub := NewHubService(l)
	hub.writeWait = writeWait
	go hub.Run()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		hub.Register(conn)
	}))
	t.Cleanup(server.Close)

	return hub, server
}

func dialViewer(t *testing.T, hub *HubService, server *httptest.Server) *websocket.Conn {
	t.Helper()

	before := hub.GetClientCount()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() <= before {
		if time.Now().After(deadline) {
			t.Fatal("Viewer was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

// serverConn returns the hub side of the only registered viewer.
func serverConn(hub *HubService) *websocket.Conn {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	var conn *websocket.Conn
	for c := range hub.clients {
		conn = c
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) dto.Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var event dto.Event
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("Invalid event JSON %s: %v", message, err)
	}
	return event
}

func TestHub_BroadcastState(t *testing.T) {
	hub, server := setupTestHub(t)
	conn := dialViewer(t, hub, server)

	hub.BroadcastState(dto.State{CaptureID: "abc", Loading: true})

	event := readEvent(t, conn)
	if event.Type != dto.EventState {
		t.Fatalf("Expected state event, got %s", event.Type)
	}
	if event.State == nil || event.State.CaptureID != "abc" || !event.State.Loading {
		t.Errorf("Unexpected state payload: %+v", event.State)
	}
}

func TestHub_BroadcastFrame(t *testing.T) {
	hub, server := setupTestHub(t)
	conn := dialViewer(t, hub, server)

	frame := []byte{0xFF, 0xD8, 0x00, 0xFF, 0xD9}
	hub.BroadcastFrame(frame)

	event := readEvent(t, conn)
	if event.Type != dto.EventFrame {
		t.Fatalf("Expected frame event, got %s", event.Type)
	}
	if string(event.Frame) != string(frame) {
		t.Errorf("Frame bytes did not survive the round trip: %v", event.Frame)
	}
}

func TestHub_UnregisterRemovesViewer(t *testing.T) {
	hub, server := setupTestHub(t)
	dialViewer(t, hub, server)

	hub.Unregister(serverConn(hub))

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected 0 viewers, got %d", hub.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastFrameWithoutRunDoesNotBlock(t *testing.T) {
	l, err := logger.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Close()

	hub := NewHubService(l)
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.BroadcastFrame([]byte{1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastFrame blocked with a full queue")
	}
}

func TestHub_SendStateTargetsOneViewer(t *testing.T) {
	hub, server := setupTestHub(t)
	first := dialViewer(t, hub, server)
	target := serverConn(hub)
	second := dialViewer(t, hub, server)

	hub.SendState(target, dto.State{CaptureID: "initial"})
	hub.BroadcastState(dto.State{CaptureID: "shared"})

	if event := readEvent(t, first); event.State == nil || event.State.CaptureID != "initial" {
		t.Errorf("Targeted viewer should get its state first, got %+v", event.State)
	}
	if event := readEvent(t, first); event.State == nil || event.State.CaptureID != "shared" {
		t.Errorf("Targeted viewer should then get the broadcast, got %+v", event.State)
	}
	if event := readEvent(t, second); event.State == nil || event.State.CaptureID != "shared" {
		t.Errorf("Other viewer should only get the broadcast, got %+v", event.State)
	}
}

func TestHub_StalledViewerDoesNotBlockBroadcastState(t *testing.T) {
	hub, server := setupTestHub(t)
	// never reads
	dialViewer(t, hub, server)

	frame := bytes.Repeat([]byte{0xAB}, 256<<10)
	for i := 0; i < 200; i++ {
		hub.BroadcastFrame(frame)
	}

	done := make(chan struct{})
	go func() {
		hub.BroadcastState(dto.State{CaptureID: "after-frames"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("BroadcastState blocked behind a viewer that stopped reading")
	}
}

func TestHub_StalledViewerIsDropped(t *testing.T) {
	hub, server := setupTestHubWithWriteWait(t, 100*time.Millisecond)
	// never reads
	dialViewer(t, hub, server)

	frame := bytes.Repeat([]byte{0xAB}, 256<<10)
	deadline := time.Now().Add(5 * time.Second)
	for hub.GetClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Stalled viewer was never disconnected")
		}
		hub.BroadcastFrame(frame)
		time.Sleep(time.Millisecond)
	}
}
