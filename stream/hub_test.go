package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testSnapshot struct {
	Generation int `json:"generation"`
	Tick       int `json:"tick"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg.Type, msg.Data
}

func TestHubHelloAndBroadcast(t *testing.T) {
	hub := NewHub(map[string]string{"run_id": "abc"})
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	typ, data := readEnvelope(t, conn)
	if typ != TypeHello || !strings.Contains(string(data), "abc") {
		t.Fatalf("first message = %s %s, want hello", typ, data)
	}
	waitFor(t, func() bool { return hub.Len() == 1 })

	hub.Broadcast(testSnapshot{Generation: 3, Tick: 17})

	typ, data = readEnvelope(t, conn)
	if typ != TypeSnapshot {
		t.Fatalf("message type = %q, want %q", typ, TypeSnapshot)
	}
	var got testSnapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Generation != 3 || got.Tick != 17 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestHubCommands(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Len() == 1 })

	for _, typ := range []string{"bogus", TypePause, TypeStep} {
		if err := conn.WriteJSON(Command{Type: typ}); err != nil {
			t.Fatal(err)
		}
	}

	for _, want := range []string{TypePause, TypeStep} {
		select {
		case cmd := <-hub.Commands():
			if cmd.Type != want {
				t.Errorf("command = %q, want %q", cmd.Type, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Len() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Len() == 0 })

	// Broadcasting with no clients is a no-op
	hub.Broadcast(testSnapshot{})
}
