package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mimic/internal/api"
	"mimic/internal/logging"
	"mimic/internal/queue"
)

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsJobEvents(t *testing.T) {
	hub := NewHub(logging.NewNop())
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer server.Close()

	first := dialHub(t, server)
	second := dialHub(t, server)

	job := queue.Job{
		ID:       "job-1",
		Status:   queue.StatusProcessing,
		Progress: 50,
	}
	// The reader goroutines register asynchronously after the upgrade
	// response; give them a moment before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.Lock()
		n := len(hub.clients)
		hub.mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("clients never registered, have %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.JobUpdated(job)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read broadcast: %v", err)
		}
		var event api.JobEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type != "job_update" || event.JobID != "job-1" || event.Progress != 50 {
			t.Fatalf("unexpected event %#v", event)
		}
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(logging.NewNop())
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer server.Close()

	conn := dialHub(t, server)
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.Lock()
		n := len(hub.clients)
		hub.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	// The reader goroutine notices the close and deregisters.
	deadline = time.Now().Add(2 * time.Second)
	for {
		hub.mu.Lock()
		n := len(hub.clients)
		hub.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("client never dropped, still have %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
