package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fistjump/internal/feed"
)

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestAPI_StateWebSocket(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping websocket test in short mode")
	}

	f := feed.New()
	srv := New(Config{Feed: f})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.state.Broadcast(ctx)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for srv.state.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	f.Publish(feed.Snapshot{Tick: 42, Score: 5})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap feed.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if snap.Tick != 42 || snap.Score != 5 {
		t.Errorf("snapshot = %+v, want tick 42 score 5", snap)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for srv.state.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not removed after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// startServer runs srv on a free local port and waits until it answers.
func startServer(t *testing.T, srv *Server) (addr string, cancel context.CancelFunc, errc <-chan error) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr = l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ch := make(chan error, 1)
	go func() { ch <- srv.Run(ctx, addr) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return addr, cancel, ch
}

func TestServer_RunShutdown(t *testing.T) {
	_, cancel, errc := startServer(t, New(Config{Feed: feed.New()}))

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after cancel", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestServer_RunShutdownWithStreamViewer(t *testing.T) {
	f := feed.New()
	addr, cancel, errc := startServer(t, New(Config{Feed: f}))

	resp, err := http.Get("http://" + addr + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	deadline := time.Now().Add(time.Second)
	for !f.Watching() {
		if time.Now().After(deadline) {
			t.Fatal("stream viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	start := time.Now()
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v, want nil with a viewer connected", err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("Run() took %v to shut down, want the stream to end with the run context", elapsed)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if f.Watching() {
		t.Error("stream viewer still registered after shutdown")
	}
}
