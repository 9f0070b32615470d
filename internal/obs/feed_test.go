package obs_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"prosperity_go/internal/domain"
	"prosperity_go/internal/obs"
)

func TestBroadcasterDeliversDecisions(t *testing.T) {
	b := obs.NewBroadcaster()
	defer b.Close()

	srv := httptest.NewServer(b)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Registration races the first emit; retry briefly.
	want := obs.TickDecision{
		Timestamp: 100,
		Symbol:    "KELP",
		Fair:      2025.5,
		Regime:    "stable",
		Orders:    []domain.Order{{Symbol: "KELP", Price: 2024, Quantity: 10}},
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b.EmitTick(want)
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, data, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		var got obs.TickDecision
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if got.Symbol != want.Symbol || got.Fair != want.Fair || len(got.Orders) != 1 {
			t.Fatalf("decision mismatch: %+v", got)
		}
		return
	}
	t.Fatal("no decision received before deadline")
}

func TestMultiAndNoop(t *testing.T) {
	var count int
	rec := recorder{hits: &count}
	m := obs.Multi{obs.Noop{}, rec, rec}

	m.EmitTick(obs.TickDecision{Symbol: "KELP"})
	if count != 2 {
		t.Errorf("recorder hits = %d, want 2", count)
	}
}

type recorder struct{ hits *int }

func (r recorder) EmitTick(obs.TickDecision) { *r.hits++ }
