package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/collab-hub/internal/application/command"
	"github.com/campusconnect/collab-hub/internal/application/query"
	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/internal/domain/matching"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeProfileRepo struct {
	profiles map[profile.ID]*profile.Profile
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id profile.ID) (*profile.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) GetCandidatePool(_ context.Context) ([]*profile.Profile, error) {
	pool := make([]*profile.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		pool = append(pool, p)
	}
	return pool, nil
}

type fakeChatRepo struct {
	sessions map[chat.SessionID]*chat.ChatSession
	messages map[chat.SessionID][]*chat.Message
	nextID   int
}

func (r *fakeChatRepo) CreateSession(_ context.Context, participants []profile.ID, sessionType chat.SessionType) (*chat.ChatSession, error) {
	r.nextID++
	id := chat.SessionID(fmt.Sprintf("sess-%d", r.nextID))
	session, err := chat.NewChatSession(chat.NewSessionParams{ID: id, Type: sessionType, Participants: participants})
	if err != nil {
		return nil, err
	}
	r.sessions[id] = session
	return session, nil
}

func (r *fakeChatRepo) FindDirectSession(_ context.Context, a, b profile.ID) (*chat.ChatSession, error) {
	for _, session := range r.sessions {
		if session.Type == chat.SessionDirect && session.HasParticipant(a) && session.HasParticipant(b) {
			return session, nil
		}
	}
	return nil, shared.ErrSessionNotFound
}

func (r *fakeChatRepo) GetByID(_ context.Context, sessionID chat.SessionID, viewerID profile.ID) (*chat.ChatSession, []*chat.Message, error) {
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil, shared.ErrSessionNotFound
	}
	unread := 0
	for _, m := range r.messages[sessionID] {
		if m.SenderID != viewerID && !m.IsRead {
			unread++
		}
	}
	session.UnreadCount = unread
	return session, r.messages[sessionID], nil
}

func (r *fakeChatRepo) AppendMessage(_ context.Context, m *chat.Message) (*chat.Message, error) {
	session, ok := r.sessions[m.SessionID]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	if !session.HasParticipant(m.SenderID) {
		return nil, shared.ErrNotParticipant
	}
	r.messages[m.SessionID] = append(r.messages[m.SessionID], m)
	return m, nil
}

func (r *fakeChatRepo) ListForUser(_ context.Context, userID profile.ID) ([]*chat.ChatSession, error) {
	var out []*chat.ChatSession
	for _, session := range r.sessions {
		if session.HasParticipant(userID) {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) MarkMessageRead(_ context.Context, messageID chat.MessageID) error {
	for _, log := range r.messages {
		for _, m := range log {
			if m.ID == messageID {
				m.MarkRead()
				return nil
			}
		}
	}
	return shared.ErrMessageNotFound
}

func (r *fakeChatRepo) MarkSessionRead(_ context.Context, sessionID chat.SessionID, viewerID profile.ID) (int, error) {
	if _, ok := r.sessions[sessionID]; !ok {
		return 0, shared.ErrSessionNotFound
	}
	count := 0
	for _, m := range r.messages[sessionID] {
		if m.SenderID != viewerID && !m.IsRead {
			m.MarkRead()
			count++
		}
	}
	return count, nil
}

type fakeSubscription struct {
	events chan chat.SessionEvent
}

func (s *fakeSubscription) Events() <-chan chat.SessionEvent { return s.events }
func (s *fakeSubscription) Unsubscribe()                     {}

type fakeBroadcaster struct {
	sub *fakeSubscription
}

func (b *fakeBroadcaster) Publish(_ context.Context, _ chat.SessionID, event chat.SessionEvent) error {
	if b.sub != nil {
		b.sub.events <- event
	}
	return nil
}

func (b *fakeBroadcaster) Subscribe(_ context.Context, _ chat.SessionID) (chat.Subscription, error) {
	if b.sub == nil {
		b.sub = &fakeSubscription{events: make(chan chat.SessionEvent, 8)}
	}
	return b.sub, nil
}

type nopBus struct{}

func (nopBus) Publish(shared.Event) error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Test server setup
// ─────────────────────────────────────────────────────────────────────────────

func testProfile(id profile.ID, interests ...string) *profile.Profile {
	p := &profile.Profile{
		ID:                id,
		Name:              string(id),
		AcademicLevel:     profile.AcademicUndergraduate,
		Department:        "CS",
		ResearchInterests: interests,
		ThesisPhase:       profile.ThesisResearch,
	}
	p.Normalize()
	return p
}

func newTestServer(t *testing.T) (*Server, *fakeChatRepo, *fakeBroadcaster) {
	t.Helper()

	profileRepo := &fakeProfileRepo{profiles: map[profile.ID]*profile.Profile{
		"alice": testProfile("alice", "AI", "NLP"),
		"bob":   testProfile("bob", "AI", "NLP"),
	}}
	chatRepo := &fakeChatRepo{
		sessions: make(map[chat.SessionID]*chat.ChatSession),
		messages: make(map[chat.SessionID][]*chat.Message),
	}
	broadcaster := &fakeBroadcaster{}
	bus := nopBus{}

	config := DefaultConfig()
	config.RateLimitPerMinute = 0

	server := NewServer(config, Dependencies{
		GetRecommendationsHandler: query.NewGetRecommendationsHandler(profileRepo, nil, matching.NewGenerator(), bus),
		ListSessionsHandler:       query.NewListSessionsHandler(chatRepo),
		GetSessionHandler:         query.NewGetSessionHandler(chatRepo),
		ConnectHandler:            command.NewConnectHandler(profileRepo, chatRepo, bus),
		SendMessageHandler:        command.NewSendMessageHandler(chatRepo, broadcaster, bus),
		ShareFileHandler:          command.NewShareFileHandler(chatRepo, broadcaster, bus),
		MarkReadHandler:           command.NewMarkReadHandler(chatRepo, broadcaster, bus),
		Broadcaster:               broadcaster,
	})
	return server, chatRepo, broadcaster
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

func TestHandleHealth(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

// ─────────────────────────────────────────────────────────────────────────────
// Recommendations
// ─────────────────────────────────────────────────────────────────────────────

func TestHandleGetRecommendations(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/users/alice/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	recs, ok := data["recommendations"].([]interface{})
	require.True(t, ok)
	require.Len(t, recs, 1)
}

func TestHandleGetRecommendations_UnknownUser(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/users/ghost/recommendations", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetRecommendations_BadLimit(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/users/alice/recommendations?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Connect
// ─────────────────────────────────────────────────────────────────────────────

func TestHandleConnect_CreatesThenReuses(t *testing.T) {
	server, _, _ := newTestServer(t)

	body := map[string]string{"initiator_id": "alice", "target_id": "bob"}

	first := doRequest(t, server, http.MethodPost, "/api/v1/sessions/connect", body)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(t, server, http.MethodPost, "/api/v1/sessions/connect", body)
	require.Equal(t, http.StatusOK, second.Code)

	resp := decodeResponse(t, second)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["is_new_session"])
}

func TestHandleConnect_SelfRejected(t *testing.T) {
	server, _, _ := newTestServer(t)

	body := map[string]string{"initiator_id": "alice", "target_id": "alice"}
	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/connect", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleConnect_InvalidJSON(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/connect", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Messages
// ─────────────────────────────────────────────────────────────────────────────

func connectPair(t *testing.T, server *Server) string {
	t.Helper()
	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/connect",
		map[string]string{"initiator_id": "alice", "target_id": "bob"})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	return resp.Data.(map[string]interface{})["session_id"].(string)
}

func TestHandleSendMessage(t *testing.T) {
	server, chatRepo, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages",
		map[string]string{"sender_id": "alice", "content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, chatRepo.messages[chat.SessionID(sessionID)], 1)
	assert.Equal(t, "hello", chatRepo.messages[chat.SessionID(sessionID)][0].Content)
}

func TestHandleSendMessage_EmptyContent(t *testing.T) {
	server, _, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages",
		map[string]string{"sender_id": "alice", "content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSendMessage_NonParticipant(t *testing.T) {
	server, _, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages",
		map[string]string{"sender_id": "mallory", "content": "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleShareFile(t *testing.T) {
	server, chatRepo, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/files",
		map[string]interface{}{
			"uploader_id":  "alice",
			"file_name":    "paper.pdf",
			"content_type": "application/pdf",
			"size_bytes":   2048,
			"file_url":     "https://files/paper.pdf",
		})
	require.Equal(t, http.StatusCreated, rec.Code)

	messages := chatRepo.messages[chat.SessionID(sessionID)]
	require.Len(t, messages, 1)
	require.NotNil(t, messages[0].File)
	assert.Equal(t, "paper.pdf", messages[0].File.Name)
}

// ─────────────────────────────────────────────────────────────────────────────
// Session view & read state
// ─────────────────────────────────────────────────────────────────────────────

func TestHandleGetSession(t *testing.T) {
	server, _, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages",
		map[string]string{"sender_id": "bob", "content": "hey alice"})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/sessions/"+sessionID+"?viewer=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["unread_count"])
}

func TestHandleGetSession_NonParticipant(t *testing.T) {
	server, _, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/sessions/"+sessionID+"?viewer=mallory", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleGetSession_MissingViewer(t *testing.T) {
	server, _, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMarkRead_Sweep(t *testing.T) {
	server, _, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages",
		map[string]string{"sender_id": "bob", "content": "one"})
	doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages",
		map[string]string{"sender_id": "bob", "content": "two"})

	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/read",
		map[string]string{"viewer_id": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["marked_count"])

	// Second sweep finds nothing.
	again := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/read",
		map[string]string{"viewer_id": "alice"})
	resp = decodeResponse(t, again)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["marked_count"])
}

func TestHandleListSessions(t *testing.T) {
	server, _, _ := newTestServer(t)
	connectPair(t, server)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/users/alice/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	sessions := data["sessions"].([]interface{})
	assert.Len(t, sessions, 1)
}

// ─────────────────────────────────────────────────────────────────────────────
// WebSocket stream
// ─────────────────────────────────────────────────────────────────────────────

func TestSessionStream_DeliversEvents(t *testing.T) {
	server, _, broadcaster := newTestServer(t)
	sessionID := connectPair(t, server)

	ts := httptest.NewServer(server.router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/api/v1/sessions/" + sessionID + "/ws?viewer=alice"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	// A message sent over REST must surface as a stream event.
	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+sessionID+"/messages",
		map[string]string{"sender_id": "bob", "content": "realtime"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, broadcaster.sub)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event chat.SessionEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, chat.EventKindMessage, event.Kind)
	assert.Equal(t, chat.SessionID(sessionID), event.SessionID)
}

func TestSessionStream_NonParticipantRejected(t *testing.T) {
	server, _, _ := newTestServer(t)
	sessionID := connectPair(t, server)

	ts := httptest.NewServer(server.router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/api/v1/sessions/" + sessionID + "/ws?viewer=mallory"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
