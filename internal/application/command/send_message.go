package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEND MESSAGE COMMAND
// Appends a message to a session's log and notifies the session channel.
// The store write is authoritative; the broadcast is only a refresh signal
// and its failure never rolls back a persisted message.
// ══════════════════════════════════════════════════════════════════════════════

// SendMessageCommand contains the data to send a message.
type SendMessageCommand struct {
	// SessionID is the target session.
	SessionID string

	// SenderID is the author; must be a session participant.
	SenderID string

	// Content is the message text.
	Content string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SendMessageCommand) Validate() error {
	if c.SessionID == "" {
		return errors.New("send_message: session_id is required")
	}
	if c.SenderID == "" {
		return errors.New("send_message: sender_id is required")
	}
	if err := chat.ValidateContent(c.Content); err != nil {
		return shared.ErrEmptyMessage
	}
	return nil
}

// SendMessageResult contains the result of sending a message.
type SendMessageResult struct {
	// Message is the persisted message as returned by the store.
	Message *chat.Message

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SendMessageHandler handles the SendMessageCommand.
type SendMessageHandler struct {
	chatRepo       chat.Repository
	broadcaster    chat.Broadcaster
	eventPublisher shared.EventPublisher
}

// NewSendMessageHandler creates a new SendMessageHandler.
func NewSendMessageHandler(
	chatRepo chat.Repository,
	broadcaster chat.Broadcaster,
	eventPublisher shared.EventPublisher,
) *SendMessageHandler {
	return &SendMessageHandler{
		chatRepo:       chatRepo,
		broadcaster:    broadcaster,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the send message command.
func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (*SendMessageResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	message := &chat.Message{
		ID:        chat.MessageID(uuid.New().String()),
		SessionID: chat.SessionID(cmd.SessionID),
		SenderID:  profile.ID(cmd.SenderID),
		Content:   cmd.Content,
		CreatedAt: time.Now().UTC(),
	}

	persisted, err := h.chatRepo.AppendMessage(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("send_message: append failed: %w", err)
	}

	// Best-effort fan-out. Subscribers reconcile against the store,
	// so a lost broadcast degrades to a delayed refresh.
	_ = h.broadcaster.Publish(ctx, persisted.SessionID, chat.SessionEvent{
		Kind:      chat.EventKindMessage,
		SessionID: persisted.SessionID,
		Message:   persisted,
	})

	event := shared.NewMessageSentEvent(
		cmd.SessionID,
		persisted.ID.String(),
		cmd.SenderID,
		persisted.Content,
		persisted.CreatedAt,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &SendMessageResult{
		Message: persisted,
		Events:  []shared.Event{event},
	}, nil
}
