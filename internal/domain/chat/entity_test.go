package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

func TestNewChatSession_Direct(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session, err := NewChatSession(NewSessionParams{
		ID:           "sess-1",
		Participants: []profile.ID{"alice", "bob"},
		Now:          now,
	})
	require.NoError(t, err)

	// Type defaults to direct.
	assert.Equal(t, SessionDirect, session.Type)
	assert.Equal(t, now, session.CreatedAt)
	assert.Equal(t, now, session.UpdatedAt)
	assert.True(t, session.HasParticipant("alice"))
	assert.True(t, session.HasParticipant("bob"))
	assert.False(t, session.HasParticipant("carol"))
}

func TestNewChatSession_TooFewParticipants(t *testing.T) {
	_, err := NewChatSession(NewSessionParams{
		ID:           "sess-1",
		Participants: []profile.ID{"alice"},
	})
	assert.ErrorIs(t, err, ErrTooFewParticipants)

	// Duplicates collapse to one participant.
	_, err = NewChatSession(NewSessionParams{
		ID:           "sess-2",
		Participants: []profile.ID{"alice", "alice"},
	})
	assert.ErrorIs(t, err, ErrTooFewParticipants)

	// Group sessions require at least three.
	_, err = NewChatSession(NewSessionParams{
		ID:           "sess-3",
		Type:         SessionGroup,
		Participants: []profile.ID{"alice", "bob"},
	})
	assert.ErrorIs(t, err, ErrTooFewParticipants)
}

func TestChatSession_SameParticipants(t *testing.T) {
	session, err := NewChatSession(NewSessionParams{
		ID:           "sess-1",
		Participants: []profile.ID{"alice", "bob"},
	})
	require.NoError(t, err)

	assert.True(t, session.SameParticipants([]profile.ID{"bob", "alice"}))
	assert.True(t, session.SameParticipants([]profile.ID{"alice", "bob", "bob"}))
	assert.False(t, session.SameParticipants([]profile.ID{"alice"}))
	assert.False(t, session.SameParticipants([]profile.ID{"alice", "carol"}))
}

func TestValidateContent(t *testing.T) {
	assert.NoError(t, ValidateContent("hi"))
	assert.ErrorIs(t, ValidateContent(""), ErrEmptyContent)
	assert.ErrorIs(t, ValidateContent("   \t\n"), ErrEmptyContent)
}

func TestMessage_MarkReadIdempotent(t *testing.T) {
	msg := &Message{ID: "m1", SessionID: "sess-1", SenderID: "alice", Content: "hi"}

	msg.MarkRead()
	assert.True(t, msg.IsRead)

	// Second call is a no-op, not an error.
	msg.MarkRead()
	assert.True(t, msg.IsRead)
}

func TestFileAttachment_Validate(t *testing.T) {
	valid := &FileAttachment{Name: "draft.pdf", ContentType: "application/pdf", SizeBytes: 2048}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&FileAttachment{Name: "  "}).Validate())
	assert.Error(t, (&FileAttachment{Name: "a", SizeBytes: -1}).Validate())
}
