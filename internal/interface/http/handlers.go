// Package http implements the REST and WebSocket API for CampusConnect.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campusconnect/collab-hub/internal/application/command"
	"github.com/campusconnect/collab-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "CampusConnect Collab Hub API",
		"version":     "v1",
		"description": "Teammate matching and realtime collaboration chat",
		"endpoints": map[string]string{
			"health":          "/health",
			"recommendations": "/api/v1/users/{userID}/recommendations",
			"sessions":        "/api/v1/users/{userID}/sessions",
			"connect":         "/api/v1/sessions/connect",
		},
	}

	writeJSON(w, r, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, r, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, r, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCHING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetRecommendations returns ranked teammate recommendations for a user.
func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	q := query.GetRecommendationsQuery{
		UserID: chi.URLParam(r, "userID"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSONError(w, r, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		q.Limit = limit
	}

	if err := q.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.GetRecommendationsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// connectRequest is the body of POST /sessions/connect.
type connectRequest struct {
	InitiatorID string `json:"initiator_id"`
	TargetID    string `json:"target_id"`
}

// handleConnect opens (or reuses) a direct session between two users.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	cmd := command.ConnectCommand{
		InitiatorID:   req.InitiatorID,
		TargetID:      req.TargetID,
		CorrelationID: requestID(r),
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.ConnectHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.IsNewSession {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, map[string]interface{}{
		"session_id":     result.Session.ID.String(),
		"type":           string(result.Session.Type),
		"is_new_session": result.IsNewSession,
	})
}

// handleListSessions returns every session the user participates in.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := query.ListSessionsQuery{UserID: chi.URLParam(r, "userID")}
	if err := q.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.ListSessionsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// handleGetSession returns a session with its full message log.
// The viewer is identified by the required "viewer" query parameter.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	q := query.GetSessionQuery{
		SessionID: chi.URLParam(r, "sessionID"),
		ViewerID:  r.URL.Query().Get("viewer"),
	}
	if err := q.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.GetSessionHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// sendMessageRequest is the body of POST /sessions/{sessionID}/messages.
type sendMessageRequest struct {
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

// handleSendMessage appends a message to the session log.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	cmd := command.SendMessageCommand{
		SessionID:     chi.URLParam(r, "sessionID"),
		SenderID:      req.SenderID,
		Content:       req.Content,
		CorrelationID: requestID(r),
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.SendMessageHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]interface{}{
		"message_id": result.Message.ID.String(),
		"created_at": result.Message.CreatedAt,
	})
}

// shareFileRequest is the body of POST /sessions/{sessionID}/files.
type shareFileRequest struct {
	UploaderID  string `json:"uploader_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	FileURL     string `json:"file_url"`
}

// handleShareFile records a shared file in the session log.
// The content itself lives in external storage; only metadata is kept here.
func (s *Server) handleShareFile(w http.ResponseWriter, r *http.Request) {
	var req shareFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	cmd := command.ShareFileCommand{
		SessionID:     chi.URLParam(r, "sessionID"),
		UploaderID:    req.UploaderID,
		FileName:      req.FileName,
		ContentType:   req.ContentType,
		SizeBytes:     req.SizeBytes,
		FileURL:       req.FileURL,
		CorrelationID: requestID(r),
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.ShareFileHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]interface{}{
		"message_id": result.Message.ID.String(),
		"created_at": result.Message.CreatedAt,
	})
}

// markReadRequest is the body of POST /sessions/{sessionID}/read.
// With message_id set only that message is marked; otherwise every
// unread message not sent by viewer_id is swept.
type markReadRequest struct {
	MessageID string `json:"message_id,omitempty"`
	ViewerID  string `json:"viewer_id,omitempty"`
}

// handleMarkRead marks messages in the session as read.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	cmd := command.MarkReadCommand{
		CorrelationID: requestID(r),
	}
	if req.MessageID != "" {
		cmd.MessageID = req.MessageID
	} else {
		cmd.SessionID = chi.URLParam(r, "sessionID")
		cmd.ViewerID = req.ViewerID
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.deps.MarkReadHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"marked_count": result.MarkedCount,
	})
}
