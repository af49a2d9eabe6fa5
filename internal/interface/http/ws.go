// Package http implements the REST and WebSocket API for CampusConnect.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/campusconnect/collab-hub/internal/application/query"
	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEBSOCKET SESSION STREAM
// ══════════════════════════════════════════════════════════════════════════════

const (
	// wsWriteWait is the deadline for a single frame write.
	wsWriteWait = 10 * time.Second

	// wsPongWait is how long the connection survives without a pong.
	wsPongWait = 60 * time.Second

	// wsPingInterval must be shorter than wsPongWait.
	wsPingInterval = 30 * time.Second
)

// handleSessionStream upgrades the connection and streams session events.
// The stream is a refresh signal only: clients re-fetch the session log
// over REST after each event, the store stays the source of truth.
func (s *Server) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	viewerID := r.URL.Query().Get("viewer")

	// Authorize before upgrading: the viewer must be a participant.
	q := query.GetSessionQuery{SessionID: sessionID, ViewerID: viewerID}
	if err := q.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if _, err := s.deps.GetSessionHandler.Handle(r.Context(), q); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	sub, err := s.deps.Broadcaster.Subscribe(r.Context(), chat.SessionID(sessionID))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		sub.Unsubscribe()
		s.logger.Warn("websocket upgrade failed", logger.Err(err), logger.String("session_id", sessionID))
		return
	}

	s.logger.Info("websocket stream opened",
		logger.String("session_id", sessionID),
		logger.String("viewer_id", viewerID),
	)

	go s.wsReadLoop(conn, sub)
	s.wsWriteLoop(conn, sub, sessionID)
}

// wsReadLoop drains client frames and tears the stream down on close.
// Clients never send data frames; the read loop exists for close and
// pong handling.
func (s *Server) wsReadLoop(conn *websocket.Conn, sub chat.Subscription) {
	defer sub.Unsubscribe()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// wsWriteLoop forwards session events to the client and keeps the
// connection alive with pings.
func (s *Server) wsWriteLoop(conn *websocket.Conn, sub chat.Subscription, sessionID string) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		sub.Unsubscribe()
		_ = conn.Close()
		s.logger.Info("websocket stream closed", logger.String("session_id", sessionID))
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription closed"))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
