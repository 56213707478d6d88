package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"snct-watcher/internal/dispatcher"
	"snct-watcher/internal/model"
)

// sendBufferSize bounds how many undelivered pushes a slow client may
// accumulate before batches are dropped.
const sendBufferSize = 16

// wsSession is one open subscribe stream. It is the Subscriber registered
// with the dispatcher: deliveries go through a buffered channel drained by
// a single writer goroutine, so a stalled client never blocks the
// dispatcher and the connection only ever has one concurrent writer.
type wsSession struct {
	id     uuid.UUID
	conn   *websocket.Conn
	logger *slog.Logger

	send    chan any
	dropped atomic.Int64

	closeOnce sync.Once
	cleanup   func()
}

// Deliver implements dispatcher.Subscriber. Fire and forget: if the send
// buffer is full the batch is dropped and counted.
func (ws *wsSession) Deliver(added, removed []model.Appointment) {
	if added == nil {
		added = []model.Appointment{}
	}
	if removed == nil {
		removed = []model.Appointment{}
	}
	d := dispatcher.Delivery{Status: http.StatusOK, Added: added, Removed: removed}

	select {
	case ws.send <- d:
	default:
		n := ws.dropped.Add(1)
		ws.logger.Warn("dropping delivery for slow subscriber", "id", ws.id, "dropped_total", n)
	}
}

// reply queues an error reply, subject to the same non-blocking policy.
func (ws *wsSession) reply(status int, message string) {
	select {
	case ws.send <- errorBody{Message: message, Status: status}:
	default:
	}
}

// close tears the session down exactly once: unregister, stop the writer,
// close the connection. Safe to call from the read loop, the write loop,
// and server shutdown concurrently.
func (ws *wsSession) close() {
	ws.closeOnce.Do(func() {
		ws.cleanup()
		close(ws.send)
		ws.conn.Close()
	})
}

// writeLoop is the single writer for the connection.
func (ws *wsSession) writeLoop() {
	for msg := range ws.send {
		if err := ws.conn.WriteJSON(msg); err != nil {
			ws.logger.Debug("write failed, closing stream", "id", ws.id, "err", err)
			ws.conn.Close()
			// Keep draining so close() can complete.
		}
	}
}

// readLoop consumes criteria messages until the client goes away.
func (ws *wsSession) readLoop(disp *dispatcher.Dispatcher) {
	for {
		_, data, err := ws.conn.ReadMessage()
		if err != nil {
			return
		}

		var specs []dispatcher.CriterionSpec
		if err := json.Unmarshal(data, &specs); err != nil {
			ws.reply(http.StatusInternalServerError, "message must be a JSON array of criteria")
			continue
		}

		if err := disp.Register(ws.id, specs, ws); err != nil {
			ws.reply(http.StatusBadRequest, err.Error())
		}
	}
}

// handleSubscribe upgrades the connection and runs the session.
//
// Connection lifecycle: CONNECTED until the first valid criteria message,
// SUBSCRIBED afterwards (each valid message replaces the criteria and
// triggers a fresh initial push), CLOSED on client close, error, or server
// shutdown. An invalid message only produces an error reply.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		writeError(w, http.StatusForbidden, "This route is for WebSocket clients only")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	ws := &wsSession{
		id:     uuid.New(),
		conn:   conn,
		logger: s.logger,
		send:   make(chan any, sendBufferSize),
	}
	ws.cleanup = func() {
		s.dispatcher.Unregister(ws.id)
		s.untrackConn(conn)
	}

	s.trackConn(conn)
	s.logger.Info("subscriber connected", "id", ws.id, "remote", r.RemoteAddr)

	go ws.writeLoop()
	ws.readLoop(s.dispatcher)

	ws.close()
	s.logger.Info("subscriber disconnected", "id", ws.id, "dropped", ws.dropped.Load())
}
