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
// SHARE FILE COMMAND
// Appends a file-share entry to a session's log. The file content itself
// lives in external storage; the session log only records the metadata,
// so sharing follows the same append-and-broadcast path as a message.
// ══════════════════════════════════════════════════════════════════════════════

// ShareFileCommand contains the data to share a file into a session.
type ShareFileCommand struct {
	// SessionID is the target session.
	SessionID string

	// UploaderID is the sharing user; must be a session participant.
	UploaderID string

	// FileName is the original file name.
	FileName string

	// ContentType is the MIME type.
	ContentType string

	// SizeBytes is the file size.
	SizeBytes int64

	// FileURL points at the content in external storage.
	FileURL string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ShareFileCommand) Validate() error {
	if c.SessionID == "" {
		return errors.New("share_file: session_id is required")
	}
	if c.UploaderID == "" {
		return errors.New("share_file: uploader_id is required")
	}
	attachment := chat.FileAttachment{
		Name:        c.FileName,
		ContentType: c.ContentType,
		SizeBytes:   c.SizeBytes,
		URL:         c.FileURL,
	}
	if err := attachment.Validate(); err != nil {
		return shared.WrapError("chat", "ShareFile", shared.ErrValidation, "invalid file metadata", err)
	}
	return nil
}

// ShareFileResult contains the result of sharing a file.
type ShareFileResult struct {
	// Message is the persisted file-share entry.
	Message *chat.Message

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ShareFileHandler handles the ShareFileCommand.
type ShareFileHandler struct {
	chatRepo       chat.Repository
	broadcaster    chat.Broadcaster
	eventPublisher shared.EventPublisher
}

// NewShareFileHandler creates a new ShareFileHandler.
func NewShareFileHandler(
	chatRepo chat.Repository,
	broadcaster chat.Broadcaster,
	eventPublisher shared.EventPublisher,
) *ShareFileHandler {
	return &ShareFileHandler{
		chatRepo:       chatRepo,
		broadcaster:    broadcaster,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the share file command.
func (h *ShareFileHandler) Handle(ctx context.Context, cmd ShareFileCommand) (*ShareFileResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	message := &chat.Message{
		ID:        chat.MessageID(uuid.New().String()),
		SessionID: chat.SessionID(cmd.SessionID),
		SenderID:  profile.ID(cmd.UploaderID),
		Content:   fmt.Sprintf("Shared a file: %s", cmd.FileName),
		CreatedAt: time.Now().UTC(),
		File: &chat.FileAttachment{
			Name:        cmd.FileName,
			ContentType: cmd.ContentType,
			SizeBytes:   cmd.SizeBytes,
			URL:         cmd.FileURL,
		},
	}

	persisted, err := h.chatRepo.AppendMessage(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("share_file: append failed: %w", err)
	}

	_ = h.broadcaster.Publish(ctx, persisted.SessionID, chat.SessionEvent{
		Kind:      chat.EventKindFile,
		SessionID: persisted.SessionID,
		Message:   persisted,
	})

	event := shared.NewFileSharedEvent(
		cmd.SessionID,
		persisted.ID.String(),
		cmd.UploaderID,
		cmd.FileName,
		cmd.FileURL,
		cmd.ContentType,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &ShareFileResult{
		Message: persisted,
		Events:  []shared.Event{event},
	}, nil
}
