package feed

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/session"
)

func TestSubscriberDropsOldest(t *testing.T) {
	s := NewSubscriber("a", 2)
	for i := 1; i <= 4; i++ {
		s.Send(Message{Type: "t", Tick: uint64(i)})
	}
	if s.Dropped() != 2 {
		t.Errorf("expected 2 dropped, got %d", s.Dropped())
	}
	first := <-s.Messages()
	second := <-s.Messages()
	if first.Tick != 3 || second.Tick != 4 {
		t.Errorf("expected ticks 3,4, got %d,%d", first.Tick, second.Tick)
	}
}

func TestSubscriberClosedIgnoresSend(t *testing.T) {
	s := NewSubscriber("a", 0)
	s.Close()
	s.Close()
	s.Send(Message{Type: "t"})
	if len(s.Messages()) != 0 {
		t.Error("closed subscriber should not buffer messages")
	}
}

func TestHubRegisterBroadcast(t *testing.T) {
	h := NewHub()
	a := NewSubscriber("a", 4)
	b := NewSubscriber("b", 4)
	h.Register(a)
	h.Register(b)
	if h.Count() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", h.Count())
	}

	h.Broadcast(Message{Type: "x"})
	if len(a.Messages()) != 1 || len(b.Messages()) != 1 {
		t.Error("every subscriber should receive the broadcast")
	}

	h.Unregister("a")
	select {
	case <-a.Done():
	default:
		t.Error("unregistered subscriber should be closed")
	}
	if _, ok := h.Get("a"); ok {
		t.Error("unregistered subscriber still present")
	}

	replacement := NewSubscriber("b", 4)
	h.Register(replacement)
	select {
	case <-b.Done():
	default:
		t.Error("replaced subscriber should be closed")
	}

	h.Close()
	if h.Count() != 0 {
		t.Errorf("expected empty hub after Close, got %d", h.Count())
	}
	if h.Broadcasts() != 1 {
		t.Errorf("expected 1 broadcast, got %d", h.Broadcasts())
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		evt  events.Event
		want string
	}{
		{events.FireIgnited{Node: "a", Cascade: 2}, `{"type":"fire_ignited","tick":7,"time":1.5,"data":{"node":"a","cascade":2}}`},
		{events.FireExtinguished{Node: "a", Actor: 1}, `{"type":"fire_extinguished","tick":7,"time":1.5,"data":{"node":"a","actor":1}}`},
		{events.FireDamaged{Node: "a", Actor: 2, Amount: 5}, `{"type":"fire_damaged","tick":7,"time":1.5,"data":{"node":"a","actor":2,"amount":5}}`},
		{events.WaveStarted{Index: 1, Nodes: 3}, `{"type":"wave_started","tick":7,"time":1.5,"data":{"index":1,"nodes":3}}`},
		{events.ExperienceStopped{Reason: events.StopReasonInactivity}, `{"type":"experience_stopped","tick":7,"time":1.5,"data":{"reason":"inactivity"}}`},
		{events.ExperienceStarted{}, `{"type":"experience_started","tick":7,"time":1.5}`},
	}

	for _, tc := range tests {
		b, err := json.Marshal(Encode(tc.evt, 7, 1.5))
		if err != nil {
			t.Fatalf("marshal %T: %v", tc.evt, err)
		}
		if string(b) != tc.want {
			t.Errorf("Encode(%T):\n got %s\nwant %s", tc.evt, b, tc.want)
		}
	}
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.Options{
		Experience: config.DefaultExperience(),
		Layout:     config.DefaultLayout(),
		Preset:     config.PresetStandard,
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s
}

func TestPublisherForwardsEvents(t *testing.T) {
	s := newSession(t)
	h := NewHub()
	sub := NewSubscriber("a", 256)
	h.Register(sub)

	p := Attach(s, h, WithoutDamage(), WithSnapshotEvery(2))
	if err := s.StartExperience(); err != nil {
		t.Fatal(err)
	}

	var types []string
	for len(sub.Messages()) > 0 {
		types = append(types, (<-sub.Messages()).Type)
	}
	joined := strings.Join(types, ",")
	if !strings.Contains(joined, "experience_started") || !strings.Contains(joined, "wave_started") {
		t.Errorf("missing start events: %s", joined)
	}

	p.OnTick(session.Snapshot{Tick: 1})
	p.OnTick(session.Snapshot{Tick: 2})
	if len(sub.Messages()) != 1 {
		t.Fatalf("expected 1 snapshot message, got %d", len(sub.Messages()))
	}
	if msg := <-sub.Messages(); msg.Type != TypeSnapshot {
		t.Errorf("expected snapshot, got %s", msg.Type)
	}

	if !p.Detach() {
		t.Error("Detach should remove the subscription")
	}
	s.StopExperience(events.StopReasonManual)
	if len(sub.Messages()) != 0 {
		t.Error("detached publisher should not forward events")
	}
}

type fakeSource struct {
	mu   sync.Mutex
	cmds []session.Command
}

func (f *fakeSource) Snapshot() session.Snapshot {
	return session.Snapshot{Tick: 42, State: "idle"}
}

func (f *fakeSource) Send(cmd session.Command) {
	f.mu.Lock()
	f.cmds = append(f.cmds, cmd)
	f.mu.Unlock()
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cmds)
}

func TestServerStreamsAndControls(t *testing.T) {
	hub := NewHub()
	src := &fakeSource{}
	srv := NewServer(hub, src, log.New(io.Discard), 16)
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.Type != TypeSnapshot || first.Tick != 42 {
		t.Errorf("expected initial snapshot at tick 42, got %s/%d", first.Type, first.Tick)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Broadcast(Encode(events.WaveStarted{Index: 1, Nodes: 1}, 3, 0.1))

	var next Message
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if next.Type != "wave_started" || next.Tick != 3 {
		t.Errorf("unexpected message %s/%d", next.Type, next.Tick)
	}

	if err := conn.WriteJSON(ControlMsg{Type: "start"}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	if err := conn.WriteJSON(ControlMsg{Type: "stop"}); err != nil {
		t.Fatalf("write control: %v", err)
	}
	for src.count() < 2 && time.Now().Before(deadline.Add(time.Second)) {
		time.Sleep(5 * time.Millisecond)
	}
	if src.count() != 2 {
		t.Errorf("expected 2 commands, got %d", src.count())
	}
}

func TestSnapshotHandler(t *testing.T) {
	srv := NewServer(NewHub(), &fakeSource{}, log.New(io.Discard), 0)
	rec := httptest.NewRecorder()
	srv.SnapshotHandler()(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Tick != 42 {
		t.Errorf("expected tick 42, got %d", snap.Tick)
	}

	rec = httptest.NewRecorder()
	srv.SnapshotHandler()(rec, httptest.NewRequest(http.MethodPost, "/snapshot", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
