package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/session"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

// Source provides snapshots and accepts control commands. *session.Runner
// implements it.
type Source interface {
	Snapshot() session.Snapshot
	Send(cmd session.Command)
}

// ControlMsg is sent by clients to start or stop the experience.
type ControlMsg struct {
	Type string `json:"type"` // "start" or "stop"
}

// Server exposes the hub over websocket and plain HTTP.
type Server struct {
	hub    *Hub
	src    Source
	log    *log.Logger
	buffer int

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

// NewServer creates a feed server. bufferSize is the per-client queue length.
func NewServer(hub *Hub, src Source, logger *log.Logger, bufferSize int) *Server {
	return &Server{
		hub:    hub,
		src:    src,
		log:    logger,
		buffer: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes registers the feed endpoints on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/events", s.WSHandler())
	mux.HandleFunc("/snapshot", s.SnapshotHandler())
}

// SnapshotHandler serves the current snapshot as JSON.
func (s *Server) SnapshotHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.src.Snapshot())
	}
}

// WSHandler upgrades to a websocket and streams feed messages. The first
// message is always a snapshot.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		sub := NewSubscriber(SubscriberID(fmt.Sprintf("W%d", s.nextID.Add(1))), s.buffer)
		sub.Send(SnapshotMessage(s.src.Snapshot()))
		s.hub.Register(sub)
		defer s.hub.Unregister(sub.ID())
		s.log.Info("feed client connected", "id", sub.ID(), "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case <-sub.Done():
					// Hub closed: unblock the reader.
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
					_ = conn.Close()
					writeErr <- nil
					return
				case msg := <-sub.Messages():
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteJSON(msg); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var ctl ControlMsg
			if err := json.Unmarshal(raw, &ctl); err != nil {
				continue
			}
			switch ctl.Type {
			case "start":
				s.src.Send(session.StartCmd{})
			case "stop":
				s.src.Send(session.StopCmd{Reason: events.StopReasonManual})
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		s.log.Info("feed client disconnected", "id", sub.ID(), "dropped", sub.Dropped())
	}
}
