package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK READ COMMAND
// Marks messages as read, either one message or everything a viewer has
// not yet read in a session. The transition is monotonic (false to true)
// and idempotent, so retries are always safe.
// ══════════════════════════════════════════════════════════════════════════════

// MarkReadCommand contains the data to mark messages as read.
// Exactly one of MessageID or SessionID must be set: MessageID marks a
// single message, SessionID marks every unread message not sent by ViewerID.
type MarkReadCommand struct {
	// MessageID is a single message to mark (single-message mode).
	MessageID string

	// SessionID is a session to sweep (bulk mode).
	SessionID string

	// ViewerID is the reading user; required in bulk mode.
	ViewerID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c MarkReadCommand) Validate() error {
	if c.MessageID == "" && c.SessionID == "" {
		return errors.New("mark_read: either message_id or session_id is required")
	}
	if c.MessageID != "" && c.SessionID != "" {
		return errors.New("mark_read: message_id and session_id are mutually exclusive")
	}
	if c.SessionID != "" && c.ViewerID == "" {
		return errors.New("mark_read: viewer_id is required for session-wide mark")
	}
	return nil
}

// MarkReadResult contains the result of marking messages read.
type MarkReadResult struct {
	// MarkedCount is how many messages actually transitioned to read.
	MarkedCount int

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// MarkReadHandler handles the MarkReadCommand.
type MarkReadHandler struct {
	chatRepo       chat.Repository
	broadcaster    chat.Broadcaster
	eventPublisher shared.EventPublisher
}

// NewMarkReadHandler creates a new MarkReadHandler.
func NewMarkReadHandler(
	chatRepo chat.Repository,
	broadcaster chat.Broadcaster,
	eventPublisher shared.EventPublisher,
) *MarkReadHandler {
	return &MarkReadHandler{
		chatRepo:       chatRepo,
		broadcaster:    broadcaster,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the mark read command.
func (h *MarkReadHandler) Handle(ctx context.Context, cmd MarkReadCommand) (*MarkReadResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("mark_read: validation failed: %w", err)
	}

	if cmd.MessageID != "" {
		if err := h.chatRepo.MarkMessageRead(ctx, chat.MessageID(cmd.MessageID)); err != nil {
			return nil, fmt.Errorf("mark_read: %w", err)
		}
		return &MarkReadResult{MarkedCount: 1, Events: []shared.Event{}}, nil
	}

	count, err := h.chatRepo.MarkSessionRead(ctx, chat.SessionID(cmd.SessionID), profile.ID(cmd.ViewerID))
	if err != nil {
		return nil, fmt.Errorf("mark_read: %w", err)
	}

	result := &MarkReadResult{MarkedCount: count, Events: make([]shared.Event, 0)}
	if count == 0 {
		return result, nil
	}

	_ = h.broadcaster.Publish(ctx, chat.SessionID(cmd.SessionID), chat.SessionEvent{
		Kind:      chat.EventKindRead,
		SessionID: chat.SessionID(cmd.SessionID),
		ReaderID:  profile.ID(cmd.ViewerID),
	})

	event := shared.NewMessagesReadEvent(cmd.SessionID, cmd.ViewerID, count)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, event)
	_ = h.eventPublisher.Publish(event)

	return result, nil
}
