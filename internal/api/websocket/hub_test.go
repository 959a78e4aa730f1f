package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub()
	go h.Run(ctx)
	return h
}

func subscriber(h *Hub, gameID string) *Client {
	c := &Client{hub: h, send: make(chan []byte, 4), gameID: gameID}
	h.Register(c)
	return c
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, h.ClientCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) ([]byte, bool) {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg, true
	case <-time.After(100 * time.Millisecond):
		return nil, false
	}
}

func TestHubDeliversToMatchingGame(t *testing.T) {
	h := startHub(t)
	g1 := subscriber(h, "g1")
	g2 := subscriber(h, "g2")
	all := subscriber(h, "")

	h.Publish("g1", []byte("goal"))

	if msg, ok := receive(t, g1); !ok || string(msg) != "goal" {
		t.Errorf("g1 subscriber: got %q, %v", msg, ok)
	}
	if msg, ok := receive(t, all); !ok || string(msg) != "goal" {
		t.Errorf("all-games subscriber: got %q, %v", msg, ok)
	}
	if msg, ok := receive(t, g2); ok {
		t.Errorf("g2 subscriber should not receive g1 updates, got %q", msg)
	}
}

func TestHubEmptyGameReachesEveryone(t *testing.T) {
	h := startHub(t)
	a := subscriber(h, "g1")
	b := subscriber(h, "g2")

	h.Publish("", []byte("hello"))

	for _, c := range []*Client{a, b} {
		if _, ok := receive(t, c); !ok {
			t.Errorf("client on %s missed broadcast", c.gameID)
		}
	}
}

func TestHubUnregister(t *testing.T) {
	h := startHub(t)
	c := subscriber(h, "g1")
	waitForClients(t, h, 1)

	h.Unregister(c)
	h.Publish("g1", []byte("sync"))

	if _, ok := <-c.send; ok {
		t.Error("expected send channel closed after unregister")
	}
	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", h.ClientCount())
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := subscriber(h, "")
	cancel()
	<-done

	if _, ok := <-c.send; ok {
		t.Error("expected client closed on shutdown")
	}
	if h.Register(&Client{send: make(chan []byte)}) {
		t.Error("register after shutdown should fail")
	}
	h.Publish("g1", []byte("late"))
}

type fakeSummaries struct {
	fail bool
}

func (f fakeSummaries) GetSummary(_ context.Context, gameID string) (*scoring.GameSummary, error) {
	if f.fail {
		return nil, errors.New("db down")
	}
	return &scoring.GameSummary{Game: &store.Game{ID: gameID}, Goals: []scoring.GoalLine{}}, nil
}

func TestHandleNoticePushesSummary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(fakeSummaries{}, nil)
	go s.hub.Run(ctx)
	c := subscriber(s.hub, "g7")

	s.handleNotice(ctx, map[string]interface{}{"game_id": "g7", "kind": "goal", "play_id": "p-1", "timestamp": "1700000000"})

	msg, ok := receive(t, c)
	if !ok {
		t.Fatal("expected an update")
	}
	var u Update
	if err := json.Unmarshal(msg, &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.Type != "game.summary" || u.GameID != "g7" || u.PlayID != "p-1" || u.Summary == nil || u.Summary.Game.ID != "g7" {
		t.Errorf("unexpected update %+v", u)
	}
}

func TestHandleNoticeSkipsBadEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(fakeSummaries{fail: true}, nil)
	go s.hub.Run(ctx)
	c := subscriber(s.hub, "")

	s.handleNotice(ctx, map[string]interface{}{"kind": "goal"})
	s.handleNotice(ctx, map[string]interface{}{"game_id": "g1"})

	if msg, ok := receive(t, c); ok {
		t.Errorf("expected nothing pushed, got %q", msg)
	}
}

func TestLiveGamesEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(fakeSummaries{}, nil)
	go s.hub.Run(ctx)
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/games/live?game=g1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForClients(t, s.hub, 1)

	s.handleNotice(ctx, map[string]interface{}{"game_id": "g1", "kind": "shot"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"type":"game.summary"`) {
		t.Errorf("unexpected message %s", data)
	}

	resp, err := http.Get(srv.URL + "/ws/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	var health map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&health)
	if health["clients"] != float64(1) {
		t.Errorf("expected 1 client in health, got %v", health["clients"])
	}
}
