package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SESSIONS QUERY
// Возвращает сессии участника для экрана списка чатов: краткие профили
// собеседников, последнее сообщение и счётчик непрочитанного. Полный
// журнал сообщений сюда не грузится - его запрашивают при открытии.
// ══════════════════════════════════════════════════════════════════════════════

// ListSessionsQuery содержит параметры запроса списка сессий.
type ListSessionsQuery struct {
	// UserID - участник, чьи сессии запрашиваются.
	UserID string
}

// Validate проверяет корректность параметров.
func (q *ListSessionsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// ParticipantDTO - краткий профиль участника сессии.
type ParticipantDTO struct {
	// UserID - идентификатор профиля.
	UserID string `json:"user_id"`

	// Name - отображаемое имя.
	Name string `json:"name"`

	// AvatarURL - ссылка на аватар.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// LastMessageDTO - последнее сообщение сессии.
type LastMessageDTO struct {
	// MessageID - идентификатор сообщения.
	MessageID string `json:"message_id"`

	// SenderID - автор.
	SenderID string `json:"sender_id"`

	// Content - текст.
	Content string `json:"content"`

	// IsFile - сообщение несёт файл.
	IsFile bool `json:"is_file"`

	// SentAt - момент отправки.
	SentAt time.Time `json:"sent_at"`

	// SentAgo - человекочитаемое "когда" для списка чатов.
	SentAgo string `json:"sent_ago"`
}

// SessionSummaryDTO - одна сессия в списке.
type SessionSummaryDTO struct {
	// SessionID - идентификатор сессии.
	SessionID string `json:"session_id"`

	// Type - тип сессии: direct или group.
	Type string `json:"type"`

	// Participants - участники сессии.
	Participants []ParticipantDTO `json:"participants"`

	// LastMessage - последнее сообщение (nil для пустой сессии).
	LastMessage *LastMessageDTO `json:"last_message,omitempty"`

	// UnreadCount - непрочитанные сообщения для запрашивающего.
	UnreadCount int `json:"unread_count"`

	// UpdatedAt - момент последней активности.
	UpdatedAt time.Time `json:"updated_at"`
}

// ListSessionsResult - результат запроса.
type ListSessionsResult struct {
	// UserID - запрашивающий участник.
	UserID string `json:"user_id"`

	// Sessions - сессии по убыванию последней активности.
	Sessions []SessionSummaryDTO `json:"sessions"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListSessionsHandler обрабатывает запрос списка сессий.
type ListSessionsHandler struct {
	chatRepo chat.Repository
}

// NewListSessionsHandler создаёт обработчик.
func NewListSessionsHandler(chatRepo chat.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{chatRepo: chatRepo}
}

// Handle выполняет запрос списка сессий.
func (h *ListSessionsHandler) Handle(ctx context.Context, q ListSessionsQuery) (*ListSessionsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("list_sessions: %w", err)
	}

	sessions, err := h.chatRepo.ListForUser(ctx, profile.ID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("list_sessions: %w", err)
	}

	result := &ListSessionsResult{
		UserID:   q.UserID,
		Sessions: make([]SessionSummaryDTO, 0, len(sessions)),
	}
	for _, session := range sessions {
		result.Sessions = append(result.Sessions, toSessionSummaryDTO(session))
	}
	return result, nil
}

func toSessionSummaryDTO(session *chat.ChatSession) SessionSummaryDTO {
	dto := SessionSummaryDTO{
		SessionID:    session.ID.String(),
		Type:         string(session.Type),
		Participants: make([]ParticipantDTO, 0, len(session.ParticipantProfiles)),
		UnreadCount:  session.UnreadCount,
		UpdatedAt:    session.UpdatedAt,
	}
	for _, participant := range session.ParticipantProfiles {
		dto.Participants = append(dto.Participants, ParticipantDTO{
			UserID:    participant.ID.String(),
			Name:      participant.Name,
			AvatarURL: participant.AvatarURL,
		})
	}
	if session.LastMessage != nil {
		dto.LastMessage = &LastMessageDTO{
			MessageID: session.LastMessage.ID.String(),
			SenderID:  session.LastMessage.SenderID.String(),
			Content:   session.LastMessage.Content,
			IsFile:    session.LastMessage.File != nil,
			SentAt:    session.LastMessage.CreatedAt,
			SentAgo:   timeutil.FormatRelative(session.LastMessage.CreatedAt),
		}
	}
	return dto
}
