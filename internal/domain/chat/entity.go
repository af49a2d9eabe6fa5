// Package chat содержит доменную модель сессий общения между участниками.
//
// Философия: хранилище - единственный источник истины. Список сообщений
// сессии - упорядоченный append-only журнал; канал realtime-доставки лишь
// сигнализирует об изменениях и никогда не заменяет данные хранилища.
package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// SessionID представляет идентификатор сессии (UUID в строковом формате).
type SessionID string

// IsValid проверяет, что идентификатор непустой.
func (s SessionID) IsValid() bool {
	return strings.TrimSpace(string(s)) != ""
}

// String возвращает строковое представление.
func (s SessionID) String() string {
	return string(s)
}

// MessageID представляет идентификатор сообщения.
type MessageID string

// IsValid проверяет, что идентификатор непустой.
func (m MessageID) IsValid() bool {
	return strings.TrimSpace(string(m)) != ""
}

// String возвращает строковое представление.
func (m MessageID) String() string {
	return string(m)
}

// SessionType определяет тип сессии.
type SessionType string

const (
	// SessionDirect - диалог ровно двух участников.
	SessionDirect SessionType = "direct"

	// SessionGroup - групповая сессия (три и более участников).
	SessionGroup SessionType = "group"
)

// IsValid проверяет корректность типа сессии.
func (t SessionType) IsValid() bool {
	switch t {
	case SessionDirect, SessionGroup:
		return true
	default:
		return false
	}
}

// MinParticipants возвращает минимальное число участников для типа.
func (t SessionType) MinParticipants() int {
	if t == SessionGroup {
		return 3
	}
	return 2
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE
// ══════════════════════════════════════════════════════════════════════════════

// ErrEmptyContent - содержимое сообщения пустое или из одних пробелов.
var ErrEmptyContent = errors.New("chat: message content is empty")

// Message представляет одно сообщение в журнале сессии.
// После записи в хранилище изменяется только флаг IsRead (false -> true).
type Message struct {
	// ID - идентификатор сообщения.
	ID MessageID

	// SessionID - сессия, которой принадлежит сообщение.
	SessionID SessionID

	// SenderID - автор сообщения.
	SenderID profile.ID

	// Content - текст сообщения.
	Content string

	// CreatedAt - момент записи в журнал (UTC).
	CreatedAt time.Time

	// IsRead - флаг прочтения. Монотонный: переход только false -> true.
	IsRead bool

	// File - метаданные прикреплённого файла (nil для текстовых сообщений).
	File *FileAttachment
}

// ValidateContent проверяет текст сообщения перед записью в журнал.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// MarkRead помечает сообщение прочитанным. Идемпотентно: повторный
// вызов для уже прочитанного сообщения не ошибка.
func (m *Message) MarkRead() {
	m.IsRead = true
}

// FileAttachment представляет метаданные файла, которым поделились в сессии.
// Само содержимое файла хранится вне подсистемы; здесь только ссылка.
type FileAttachment struct {
	// Name - исходное имя файла.
	Name string

	// ContentType - MIME-тип.
	ContentType string

	// SizeBytes - размер файла в байтах.
	SizeBytes int64

	// URL - ссылка на содержимое во внешнем хранилище.
	URL string
}

// Validate проверяет минимальную корректность метаданных файла.
func (f *FileAttachment) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("chat: file name is required")
	}
	if f.SizeBytes < 0 {
		return errors.New("chat: negative file size")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT SESSION
// ══════════════════════════════════════════════════════════════════════════════

// ChatSession представляет сессию общения.
//
// Инварианты:
//   - Participants назначается один раз при создании и далее не меняется.
//   - Messages - append-only журнал; порядок записи в хранилище авторитетен.
//   - UnreadCount и IsRead меняются только через хранилище сессий.
type ChatSession struct {
	// ID - идентификатор сессии.
	ID SessionID

	// Type - тип сессии.
	Type SessionType

	// Participants - участники сессии (write-once).
	Participants []profile.ID

	// ParticipantProfiles - краткие профили участников для списков сессий.
	// Заполняется хранилищем при выборке, в скоринге не участвует.
	ParticipantProfiles []*profile.Profile

	// LastMessage - последнее сообщение для списков сессий (может быть nil).
	LastMessage *Message

	// UnreadCount - число непрочитанных сообщений для конкретного
	// наблюдателя. Заполняется выборкой, не хранится в самой сессии.
	UnreadCount int

	// CreatedAt - момент создания (UTC).
	CreatedAt time.Time

	// UpdatedAt - момент последней активности (UTC). Обновляется при
	// каждой записи в журнал.
	UpdatedAt time.Time
}

// NewSessionParams - параметры создания сессии.
type NewSessionParams struct {
	ID           SessionID
	Type         SessionType
	Participants []profile.ID
	Now          time.Time
}

// NewChatSession создаёт сессию, проверяя инварианты участников.
func NewChatSession(params NewSessionParams) (*ChatSession, error) {
	if !params.ID.IsValid() {
		return nil, errors.New("chat: session id is required")
	}

	sessionType := params.Type
	if sessionType == "" {
		sessionType = SessionDirect
	}
	if !sessionType.IsValid() {
		return nil, errors.New("chat: unknown session type")
	}

	participants := dedupeParticipants(params.Participants)
	if len(participants) < sessionType.MinParticipants() {
		return nil, ErrTooFewParticipants
	}
	for _, id := range participants {
		if !id.IsValid() {
			return nil, errors.New("chat: empty participant id")
		}
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &ChatSession{
		ID:           params.ID,
		Type:         sessionType,
		Participants: participants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ErrTooFewParticipants - участников меньше, чем требует тип сессии.
var ErrTooFewParticipants = errors.New("chat: too few participants")

// HasParticipant проверяет, входит ли участник в сессию.
func (s *ChatSession) HasParticipant(userID profile.ID) bool {
	for _, id := range s.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// SameParticipants проверяет, совпадает ли множество участников сессии
// с заданным (без учёта порядка).
func (s *ChatSession) SameParticipants(ids []profile.ID) bool {
	if len(s.Participants) != len(dedupeParticipants(ids)) {
		return false
	}
	for _, id := range ids {
		if !s.HasParticipant(id) {
			return false
		}
	}
	return true
}

// Touch обновляет момент последней активности.
func (s *ChatSession) Touch(now time.Time) {
	s.UpdatedAt = now
}

func dedupeParticipants(ids []profile.ID) []profile.ID {
	seen := make(map[profile.ID]struct{}, len(ids))
	out := make([]profile.ID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
