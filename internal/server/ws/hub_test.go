package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/polysentinel/sentinel/internal/cache/memory"
	"github.com/polysentinel/sentinel/internal/domain"
	"github.com/polysentinel/sentinel/internal/sink"
)

type fakeSnapshot struct {
	alerts []domain.ClusterAlert
	stats  domain.PipelineStats
}

func (f *fakeSnapshot) Alerts() []domain.ClusterAlert { return f.alerts }
func (f *fakeSnapshot) Stats() domain.PipelineStats   { return f.stats }

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSnapshotSentOnConnect(t *testing.T) {
	bus := memory.NewBus()
	snap := &fakeSnapshot{
		alerts: []domain.ClusterAlert{{
			ID:          "alert-1",
			OutcomeID:   "token-1",
			Question:    "Will it rain tomorrow?",
			TotalAmount: decimal.NewFromInt(500),
		}},
		stats: domain.PipelineStats{TradesSeen: 9, Connected: true},
	}
	hub := NewHub(bus, snap, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	var msg snapshotMsg
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if msg.Type != "snapshot" {
		t.Errorf("first frame must be the snapshot, got %q", msg.Type)
	}
	if len(msg.Alerts) != 1 || msg.Alerts[0].ID != "alert-1" {
		t.Errorf("unexpected snapshot alerts %+v", msg.Alerts)
	}
	if msg.Stats.TradesSeen != 9 {
		t.Errorf("unexpected snapshot stats %+v", msg.Stats)
	}
}

func TestBusMessagesReachClients(t *testing.T) {
	bus := memory.NewBus()
	hub := NewHub(bus, &fakeSnapshot{}, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)

	// Consume the snapshot frame first.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	// Give the hub's bus subscriptions a moment to attach before publishing.
	time.Sleep(50 * time.Millisecond)

	env := sink.Envelope{Type: sink.EventAlertNew, Alert: &domain.ClusterAlert{ID: "alert-2"}}
	payload, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(ctx, sink.ChannelAlert, payload); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}

	var received sink.Envelope
	if err := json.Unmarshal(got, &received); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if received.Type != sink.EventAlertNew || received.Alert == nil || received.Alert.ID != "alert-2" {
		t.Errorf("unexpected broadcast %+v", received)
	}
}
