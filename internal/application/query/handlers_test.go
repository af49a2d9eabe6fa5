package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	poolHits int
}

func (r *fakeProfileRepo) GetByID(_ context.Context, userID profile.ID) (*profile.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) GetCandidatePool(_ context.Context) ([]*profile.Profile, error) {
	r.poolHits++
	pool := make([]*profile.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		pool = append(pool, p)
	}
	return pool, nil
}

type fakeProfileCache struct {
	pool []*profile.Profile
	sets int
}

func (c *fakeProfileCache) GetPool(_ context.Context) ([]*profile.Profile, error) {
	if c.pool == nil {
		return nil, shared.ErrNotFound
	}
	return c.pool, nil
}

func (c *fakeProfileCache) SetPool(_ context.Context, pool []*profile.Profile, _ time.Duration) error {
	c.pool = pool
	c.sets++
	return nil
}

func (c *fakeProfileCache) Invalidate(_ context.Context) error {
	c.pool = nil
	return nil
}

type fakeChatRepo struct {
	sessions map[chat.SessionID]*chat.ChatSession
	messages map[chat.SessionID][]*chat.Message
}

func (r *fakeChatRepo) CreateSession(_ context.Context, _ []profile.ID, _ chat.SessionType) (*chat.ChatSession, error) {
	panic("not used in query tests")
}

func (r *fakeChatRepo) FindDirectSession(_ context.Context, _, _ profile.ID) (*chat.ChatSession, error) {
	panic("not used in query tests")
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

func (r *fakeChatRepo) AppendMessage(_ context.Context, _ *chat.Message) (*chat.Message, error) {
	panic("not used in query tests")
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

func (r *fakeChatRepo) MarkMessageRead(_ context.Context, _ chat.MessageID) error {
	panic("not used in query tests")
}

func (r *fakeChatRepo) MarkSessionRead(_ context.Context, _ chat.SessionID, _ profile.ID) (int, error) {
	panic("not used in query tests")
}

type nopBus struct{}

func (nopBus) Publish(shared.Event) error { return nil }

func sampleProfile(id profile.ID, interests ...string) *profile.Profile {
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

// ─────────────────────────────────────────────────────────────────────────────
// Get recommendations
// ─────────────────────────────────────────────────────────────────────────────

func TestGetRecommendationsHandler_ExcludesSelfAndRanks(t *testing.T) {
	alice := sampleProfile("alice", "AI", "NLP")
	bob := sampleProfile("bob", "AI", "NLP")
	bob.Skills = []profile.Skill{
		{Name: "Go", Category: profile.SkillCategoryTechnical},
		{Name: "SQL", Category: profile.SkillCategoryTechnical},
	}
	repo := &fakeProfileRepo{profiles: map[profile.ID]*profile.Profile{"alice": alice, "bob": bob}}

	handler := NewGetRecommendationsHandler(repo, nil, matching.NewGenerator(), nopBus{})
	result, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "alice"})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, "rec-alice-bob", rec.ID)
	assert.Equal(t, "bob", rec.Teammates[0].UserID)
	assert.GreaterOrEqual(t, rec.Score, 40)
	assert.False(t, result.FromCache)
}

func TestGetRecommendationsHandler_NoCandidatesYieldsEmptyList(t *testing.T) {
	alice := sampleProfile("alice", "AI")
	repo := &fakeProfileRepo{profiles: map[profile.ID]*profile.Profile{"alice": alice}}

	handler := NewGetRecommendationsHandler(repo, nil, matching.NewGenerator(), nopBus{})
	result, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "alice"})
	require.NoError(t, err)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
}

func TestGetRecommendationsHandler_UsesPoolCache(t *testing.T) {
	alice := sampleProfile("alice", "AI")
	bob := sampleProfile("bob", "AI")
	repo := &fakeProfileRepo{profiles: map[profile.ID]*profile.Profile{"alice": alice, "bob": bob}}
	cache := &fakeProfileCache{}

	handler := NewGetRecommendationsHandler(repo, cache, matching.NewGenerator(), nopBus{})

	// First call misses the cache and fills it.
	first, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "alice"})
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, repo.poolHits)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from the cache.
	second, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "alice"})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, repo.poolHits)
}

func TestGetRecommendationsHandler_UnknownUser(t *testing.T) {
	repo := &fakeProfileRepo{profiles: map[profile.ID]*profile.Profile{}}
	handler := NewGetRecommendationsHandler(repo, nil, matching.NewGenerator(), nopBus{})

	_, err := handler.Handle(context.Background(), GetRecommendationsQuery{UserID: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

func buildSession(t *testing.T, id chat.SessionID, participants ...profile.ID) *chat.ChatSession {
	t.Helper()
	session, err := chat.NewChatSession(chat.NewSessionParams{ID: id, Participants: participants})
	require.NoError(t, err)
	for _, pid := range participants {
		session.ParticipantProfiles = append(session.ParticipantProfiles, sampleProfile(pid))
	}
	return session
}

func TestListSessionsHandler(t *testing.T) {
	session := buildSession(t, "sess-1", "alice", "bob")
	session.LastMessage = &chat.Message{
		ID:        "m1",
		SessionID: "sess-1",
		SenderID:  "bob",
		Content:   "hello",
		CreatedAt: time.Now().UTC().Add(-2 * time.Minute),
	}
	session.UnreadCount = 1
	repo := &fakeChatRepo{
		sessions: map[chat.SessionID]*chat.ChatSession{"sess-1": session},
		messages: map[chat.SessionID][]*chat.Message{},
	}

	handler := NewListSessionsHandler(repo)
	result, err := handler.Handle(context.Background(), ListSessionsQuery{UserID: "alice"})
	require.NoError(t, err)

	require.Len(t, result.Sessions, 1)
	summary := result.Sessions[0]
	assert.Equal(t, "sess-1", summary.SessionID)
	assert.Len(t, summary.Participants, 2)
	require.NotNil(t, summary.LastMessage)
	assert.Equal(t, "hello", summary.LastMessage.Content)
	assert.NotEmpty(t, summary.LastMessage.SentAgo)
	assert.Equal(t, 1, summary.UnreadCount)
}

func TestGetSessionHandler_FullLogAndUnread(t *testing.T) {
	session := buildSession(t, "sess-1", "alice", "bob")
	messages := []*chat.Message{
		{ID: "m1", SessionID: "sess-1", SenderID: "alice", Content: "hi", CreatedAt: time.Now().UTC()},
		{ID: "m2", SessionID: "sess-1", SenderID: "bob", Content: "hey", CreatedAt: time.Now().UTC()},
		{ID: "m3", SessionID: "sess-1", SenderID: "bob", Content: "", CreatedAt: time.Now().UTC(),
			File: &chat.FileAttachment{Name: "notes.md", ContentType: "text/markdown", SizeBytes: 64, URL: "https://files/notes.md"}},
	}
	repo := &fakeChatRepo{
		sessions: map[chat.SessionID]*chat.ChatSession{"sess-1": session},
		messages: map[chat.SessionID][]*chat.Message{"sess-1": messages},
	}

	handler := NewGetSessionHandler(repo)
	result, err := handler.Handle(context.Background(), GetSessionQuery{SessionID: "sess-1", ViewerID: "alice"})
	require.NoError(t, err)

	require.Len(t, result.Messages, 3)
	assert.Equal(t, "m1", result.Messages[0].MessageID)
	require.NotNil(t, result.Messages[2].File)
	assert.Equal(t, "notes.md", result.Messages[2].File.Name)

	// Two messages from bob, none read yet.
	assert.Equal(t, 2, result.UnreadCount)
}

func TestGetSessionHandler_TiedTimestampsKeepAppendOrder(t *testing.T) {
	session := buildSession(t, "sess-1", "alice", "bob")

	// Messages landing within the same clock tick still come back in
	// the order they were appended, not in ID order.
	at := time.Now().UTC()
	messages := []*chat.Message{
		{ID: "m-z", SessionID: "sess-1", SenderID: "alice", Content: "first", CreatedAt: at},
		{ID: "m-a", SessionID: "sess-1", SenderID: "bob", Content: "second", CreatedAt: at},
		{ID: "m-k", SessionID: "sess-1", SenderID: "alice", Content: "third", CreatedAt: at},
	}
	repo := &fakeChatRepo{
		sessions: map[chat.SessionID]*chat.ChatSession{"sess-1": session},
		messages: map[chat.SessionID][]*chat.Message{"sess-1": messages},
	}

	handler := NewGetSessionHandler(repo)
	result, err := handler.Handle(context.Background(), GetSessionQuery{SessionID: "sess-1", ViewerID: "alice"})
	require.NoError(t, err)

	require.Len(t, result.Messages, 3)
	assert.Equal(t, "first", result.Messages[0].Content)
	assert.Equal(t, "second", result.Messages[1].Content)
	assert.Equal(t, "third", result.Messages[2].Content)
}

func TestGetSessionHandler_NonParticipantForbidden(t *testing.T) {
	session := buildSession(t, "sess-1", "alice", "bob")
	repo := &fakeChatRepo{
		sessions: map[chat.SessionID]*chat.ChatSession{"sess-1": session},
		messages: map[chat.SessionID][]*chat.Message{},
	}

	handler := NewGetSessionHandler(repo)
	_, err := handler.Handle(context.Background(), GetSessionQuery{SessionID: "sess-1", ViewerID: "mallory"})
	assert.True(t, shared.IsForbidden(err))
}

func TestGetSessionHandler_UnknownSession(t *testing.T) {
	repo := &fakeChatRepo{sessions: map[chat.SessionID]*chat.ChatSession{}, messages: map[chat.SessionID][]*chat.Message{}}
	handler := NewGetSessionHandler(repo)

	_, err := handler.Handle(context.Background(), GetSessionQuery{SessionID: "missing", ViewerID: "alice"})
	assert.True(t, shared.IsNotFound(err))
}
