package query

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
// GET SESSION QUERY
// Возвращает сессию с полным журналом сообщений для открытого экрана
// чата. Журнал упорядочен порядком записи в хранилище - этот порядок
// авторитетен, а не порядок прибытия realtime-событий.
// ══════════════════════════════════════════════════════════════════════════════

// GetSessionQuery содержит параметры запроса сессии.
type GetSessionQuery struct {
	// SessionID - запрашиваемая сессия.
	SessionID string

	// ViewerID - участник, открывающий сессию. Не-участники
	// получают отказ доступа.
	ViewerID string
}

// Validate проверяет корректность параметров.
func (q *GetSessionQuery) Validate() error {
	if q.SessionID == "" {
		return errors.New("session_id is required")
	}
	if q.ViewerID == "" {
		return errors.New("viewer_id is required")
	}
	return nil
}

// FileDTO - метаданные файла в сообщении.
type FileDTO struct {
	// Name - имя файла.
	Name string `json:"name"`

	// ContentType - MIME-тип.
	ContentType string `json:"content_type"`

	// SizeBytes - размер.
	SizeBytes int64 `json:"size_bytes"`

	// URL - ссылка на содержимое.
	URL string `json:"url"`
}

// MessageDTO - одно сообщение журнала.
type MessageDTO struct {
	// MessageID - идентификатор.
	MessageID string `json:"message_id"`

	// SenderID - автор.
	SenderID string `json:"sender_id"`

	// Content - текст.
	Content string `json:"content"`

	// IsRead - флаг прочтения.
	IsRead bool `json:"is_read"`

	// CreatedAt - момент записи в журнал.
	CreatedAt time.Time `json:"created_at"`

	// File - метаданные файла (nil для текстовых сообщений).
	File *FileDTO `json:"file,omitempty"`
}

// GetSessionResult - результат запроса.
type GetSessionResult struct {
	// SessionID - идентификатор сессии.
	SessionID string `json:"session_id"`

	// Type - тип сессии.
	Type string `json:"type"`

	// Participants - участники.
	Participants []ParticipantDTO `json:"participants"`

	// Messages - полный журнал в порядке записи.
	Messages []MessageDTO `json:"messages"`

	// UnreadCount - непрочитанное для наблюдателя.
	UnreadCount int `json:"unread_count"`

	// CreatedAt - момент создания сессии.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt - момент последней активности.
	UpdatedAt time.Time `json:"updated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetSessionHandler обрабатывает запрос сессии.
type GetSessionHandler struct {
	chatRepo chat.Repository
}

// NewGetSessionHandler создаёт обработчик.
func NewGetSessionHandler(chatRepo chat.Repository) *GetSessionHandler {
	return &GetSessionHandler{chatRepo: chatRepo}
}

// Handle выполняет запрос сессии.
func (h *GetSessionHandler) Handle(ctx context.Context, q GetSessionQuery) (*GetSessionResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_session: %w", err)
	}

	session, messages, err := h.chatRepo.GetByID(ctx, chat.SessionID(q.SessionID), profile.ID(q.ViewerID))
	if err != nil {
		return nil, fmt.Errorf("get_session: %w", err)
	}

	if !session.HasParticipant(profile.ID(q.ViewerID)) {
		return nil, shared.ErrNotParticipant
	}

	result := &GetSessionResult{
		SessionID:    session.ID.String(),
		Type:         string(session.Type),
		Participants: make([]ParticipantDTO, 0, len(session.ParticipantProfiles)),
		Messages:     make([]MessageDTO, 0, len(messages)),
		UnreadCount:  session.UnreadCount,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
	for _, participant := range session.ParticipantProfiles {
		result.Participants = append(result.Participants, ParticipantDTO{
			UserID:    participant.ID.String(),
			Name:      participant.Name,
			AvatarURL: participant.AvatarURL,
		})
	}
	for _, message := range messages {
		dto := MessageDTO{
			MessageID: message.ID.String(),
			SenderID:  message.SenderID.String(),
			Content:   message.Content,
			IsRead:    message.IsRead,
			CreatedAt: message.CreatedAt,
		}
		if message.File != nil {
			dto.File = &FileDTO{
				Name:        message.File.Name,
				ContentType: message.File.ContentType,
				SizeBytes:   message.File.SizeBytes,
				URL:         message.File.URL,
			}
		}
		result.Messages = append(result.Messages, dto)
	}
	return result, nil
}
