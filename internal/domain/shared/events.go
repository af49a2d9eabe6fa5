// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Chat events
	EventSessionCreated EventType = "chat.session_created"
	EventMessageSent    EventType = "chat.message_sent"
	EventFileShared     EventType = "chat.file_shared"
	EventMessagesRead   EventType = "chat.messages_read"

	// Matching events
	EventRecommendationsGenerated EventType = "matching.recommendations_generated"
	EventUsersConnected           EventType = "matching.users_connected"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Chat Events
// ═══════════════════════════════════════════════════════════════════════════

// SessionCreatedEvent is emitted when a new chat session is created.
// The aggregate ID is the session ID.
type SessionCreatedEvent struct {
	BaseEvent
	SessionType    string   `json:"session_type"`
	ParticipantIDs []string `json:"participant_ids"`
}

// NewSessionCreatedEvent creates a SessionCreatedEvent.
func NewSessionCreatedEvent(sessionID, sessionType string, participantIDs []string) *SessionCreatedEvent {
	return &SessionCreatedEvent{
		BaseEvent:      NewBaseEvent(EventSessionCreated, sessionID),
		SessionType:    sessionType,
		ParticipantIDs: participantIDs,
	}
}

// Payload implements Event interface.
func (e *SessionCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":      e.AggregateId,
		"session_type":    e.SessionType,
		"participant_ids": e.ParticipantIDs,
	}
}

// MessageSentEvent is emitted when a message is appended to a session.
// The aggregate ID is the session ID; consumers re-fetch from the store
// and must not rely on delivery order across sessions.
type MessageSentEvent struct {
	BaseEvent
	MessageID string    `json:"message_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

// NewMessageSentEvent creates a MessageSentEvent.
func NewMessageSentEvent(sessionID, messageID, senderID, content string, sentAt time.Time) *MessageSentEvent {
	return &MessageSentEvent{
		BaseEvent: NewBaseEvent(EventMessageSent, sessionID),
		MessageID: messageID,
		SenderID:  senderID,
		Content:   content,
		SentAt:    sentAt,
	}
}

// Payload implements Event interface.
func (e *MessageSentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.AggregateId,
		"message_id": e.MessageID,
		"sender_id":  e.SenderID,
		"content":    e.Content,
		"sent_at":    e.SentAt,
	}
}

// FileSharedEvent is emitted when a file is shared into a session.
type FileSharedEvent struct {
	BaseEvent
	FileID     string `json:"file_id"`
	UploaderID string `json:"uploader_id"`
	FileName   string `json:"file_name"`
	FileURL    string `json:"file_url"`
	FileType   string `json:"file_type"`
}

// NewFileSharedEvent creates a FileSharedEvent.
func NewFileSharedEvent(sessionID, fileID, uploaderID, fileName, fileURL, fileType string) *FileSharedEvent {
	return &FileSharedEvent{
		BaseEvent:  NewBaseEvent(EventFileShared, sessionID),
		FileID:     fileID,
		UploaderID: uploaderID,
		FileName:   fileName,
		FileURL:    fileURL,
		FileType:   fileType,
	}
}

// Payload implements Event interface.
func (e *FileSharedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.AggregateId,
		"file_id":     e.FileID,
		"uploader_id": e.UploaderID,
		"file_name":   e.FileName,
		"file_url":    e.FileURL,
		"file_type":   e.FileType,
	}
}

// MessagesReadEvent is emitted when a viewer marks session messages as read.
type MessagesReadEvent struct {
	BaseEvent
	ReaderID  string `json:"reader_id"`
	MarkCount int    `json:"mark_count"`
}

// NewMessagesReadEvent creates a MessagesReadEvent.
func NewMessagesReadEvent(sessionID, readerID string, markCount int) *MessagesReadEvent {
	return &MessagesReadEvent{
		BaseEvent: NewBaseEvent(EventMessagesRead, sessionID),
		ReaderID:  readerID,
		MarkCount: markCount,
	}
}

// Payload implements Event interface.
func (e *MessagesReadEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.AggregateId,
		"reader_id":  e.ReaderID,
		"mark_count": e.MarkCount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Matching Events
// ═══════════════════════════════════════════════════════════════════════════

// UsersConnectedEvent is emitted when one user connects with another from
// the recommendation list. The aggregate ID is the initiator's profile ID.
type UsersConnectedEvent struct {
	BaseEvent
	OtherID   string `json:"other_id"`
	SessionID string `json:"session_id"`
	IsNew     bool   `json:"is_new"`
}

// NewUsersConnectedEvent creates a UsersConnectedEvent.
func NewUsersConnectedEvent(initiatorID, otherID, sessionID string, isNew bool) *UsersConnectedEvent {
	return &UsersConnectedEvent{
		BaseEvent: NewBaseEvent(EventUsersConnected, initiatorID),
		OtherID:   otherID,
		SessionID: sessionID,
		IsNew:     isNew,
	}
}

// Payload implements Event interface.
func (e *UsersConnectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"initiator_id": e.AggregateId,
		"other_id":     e.OtherID,
		"session_id":   e.SessionID,
		"is_new":       e.IsNew,
	}
}

// RecommendationsGeneratedEvent is emitted after a recommendation pass.
// Recommendations themselves are ephemeral and never persisted; the event
// only carries aggregate counts for observability.
type RecommendationsGeneratedEvent struct {
	BaseEvent
	CandidateCount int `json:"candidate_count"`
	ResultCount    int `json:"result_count"`
	TopScore       int `json:"top_score"`
}

// NewRecommendationsGeneratedEvent creates a RecommendationsGeneratedEvent.
func NewRecommendationsGeneratedEvent(userID string, candidateCount, resultCount, topScore int) *RecommendationsGeneratedEvent {
	return &RecommendationsGeneratedEvent{
		BaseEvent:      NewBaseEvent(EventRecommendationsGenerated, userID),
		CandidateCount: candidateCount,
		ResultCount:    resultCount,
		TopScore:       topScore,
	}
}

// Payload implements Event interface.
func (e *RecommendationsGeneratedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.AggregateId,
		"candidate_count": e.CandidateCount,
		"result_count":    e.ResultCount,
		"top_score":       e.TopScore,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to all subscribed handlers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber

	// Close shuts down the event bus.
	Close() error
}
