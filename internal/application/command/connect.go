// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONNECT COMMAND
// Opens (or reuses) a direct chat session between two matched users.
// This is the bridge from a recommendation to an actual collaboration:
// accepting a teammate suggestion lands both users in a shared session.
// ══════════════════════════════════════════════════════════════════════════════

// ConnectCommand contains the data to open a direct session.
type ConnectCommand struct {
	// InitiatorID is the user accepting the recommendation.
	InitiatorID string

	// TargetID is the recommended teammate.
	TargetID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ConnectCommand) Validate() error {
	if c.InitiatorID == "" {
		return errors.New("connect: initiator_id is required")
	}
	if c.TargetID == "" {
		return errors.New("connect: target_id is required")
	}
	if c.InitiatorID == c.TargetID {
		return errors.New("connect: cannot connect to self")
	}
	return nil
}

// ConnectResult contains the result of opening a session.
type ConnectResult struct {
	// Session is the direct session shared by both users.
	Session *chat.ChatSession

	// IsNewSession indicates whether the session was created by this call.
	IsNewSession bool

	// Events contains domain events generated.
	Events []shared.Event

	// CreatedAt is when the command completed.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ConnectHandler handles the ConnectCommand.
type ConnectHandler struct {
	profileRepo    profile.Repository
	chatRepo       chat.Repository
	eventPublisher shared.EventPublisher
}

// NewConnectHandler creates a new ConnectHandler.
func NewConnectHandler(
	profileRepo profile.Repository,
	chatRepo chat.Repository,
	eventPublisher shared.EventPublisher,
) *ConnectHandler {
	return &ConnectHandler{
		profileRepo:    profileRepo,
		chatRepo:       chatRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the connect command.
//
// Lookup-then-create is not atomic: two simultaneous connects for the
// same pair may each miss the other's in-flight create and produce two
// sessions. De-duplication is best effort.
func (h *ConnectHandler) Handle(ctx context.Context, cmd ConnectCommand) (*ConnectResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("connect: validation failed: %w", err)
	}

	initiatorID := profile.ID(cmd.InitiatorID)
	targetID := profile.ID(cmd.TargetID)

	// Verify both users resolve to profiles before touching the store.
	if _, err := h.profileRepo.GetByID(ctx, initiatorID); err != nil {
		return nil, fmt.Errorf("connect: initiator not found: %w", err)
	}
	if _, err := h.profileRepo.GetByID(ctx, targetID); err != nil {
		return nil, fmt.Errorf("connect: target not found: %w", err)
	}

	result := &ConnectResult{
		CreatedAt: time.Now().UTC(),
		Events:    make([]shared.Event, 0),
	}

	existing, err := h.chatRepo.FindDirectSession(ctx, initiatorID, targetID)
	if err == nil {
		result.Session = existing
		return result, nil
	}
	if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("connect: session lookup failed: %w", err)
	}

	session, err := h.chatRepo.CreateSession(ctx, []profile.ID{initiatorID, targetID}, chat.SessionDirect)
	if err != nil {
		return nil, fmt.Errorf("connect: failed to create session: %w", err)
	}

	result.Session = session
	result.IsNewSession = true

	event := shared.NewSessionCreatedEvent(
		session.ID.String(),
		string(session.Type),
		[]string{cmd.InitiatorID, cmd.TargetID},
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, event)
	_ = h.eventPublisher.Publish(event)

	connected := shared.NewUsersConnectedEvent(cmd.InitiatorID, cmd.TargetID, session.ID.String(), true)
	if cmd.CorrelationID != "" {
		connected.BaseEvent = connected.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, connected)
	_ = h.eventPublisher.Publish(connected)

	return result, nil
}
