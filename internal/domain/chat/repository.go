package chat

import (
	"context"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

// Repository определяет хранилище сессий и сообщений.
//
// Все операции возвращают типизированные ошибки из пакета shared:
// ErrSessionNotFound, ErrNotParticipant, ErrEmptyMessage и так далее.
// Хранилище не повторяет неудавшиеся операции само - политика повторов,
// если она нужна, принадлежит вызывающей стороне.
type Repository interface {
	// CreateSession создаёт сессию с фиксированным множеством участников.
	// Возвращает ошибку персистентности, если любой из участников
	// не разрешается в существующий профиль.
	CreateSession(ctx context.Context, participants []profile.ID, sessionType SessionType) (*ChatSession, error)

	// FindDirectSession ищет существующую direct-сессию с множеством
	// участников, равным {userID, otherID}. Возвращает
	// shared.ErrSessionNotFound при отсутствии.
	//
	// Поиск и создание не атомарны: одновременные вызовы для одной пары
	// могут дать две сессии. Дедупликация - best effort.
	FindDirectSession(ctx context.Context, userID, otherID profile.ID) (*ChatSession, error)

	// GetByID возвращает сессию с полным журналом сообщений.
	// UnreadCount считается с точки зрения viewerID.
	GetByID(ctx context.Context, sessionID SessionID, viewerID profile.ID) (*ChatSession, []*Message, error)

	// AppendMessage дописывает сообщение в журнал сессии и обновляет
	// UpdatedAt сессии в одной транзакции. При любой ошибке журнал
	// остаётся без частично записанного сообщения.
	AppendMessage(ctx context.Context, message *Message) (*Message, error)

	// ListForUser возвращает сессии участника, отсортированные по
	// убыванию UpdatedAt. Каждая запись несёт краткие профили участников
	// и последнее сообщение, но не полный журнал.
	ListForUser(ctx context.Context, userID profile.ID) ([]*ChatSession, error)

	// MarkMessageRead помечает одно сообщение прочитанным.
	// Идемпотентно: повторная пометка не ошибка.
	MarkMessageRead(ctx context.Context, messageID MessageID) error

	// MarkSessionRead помечает прочитанными все сообщения сессии,
	// отправленные не viewerID. Возвращает число изменённых сообщений.
	MarkSessionRead(ctx context.Context, sessionID SessionID, viewerID profile.ID) (int, error)
}

// Broadcaster определяет realtime-доставку событий сессии.
//
// Один логический канал на сессию. Доставка at-least-once; порядок
// прибытия не авторитетен - клиенты сверяются с журналом хранилища.
type Broadcaster interface {
	// Publish отправляет событие всем подписчикам канала сессии.
	Publish(ctx context.Context, sessionID SessionID, event SessionEvent) error

	// Subscribe открывает подписку на канал сессии.
	Subscribe(ctx context.Context, sessionID SessionID) (Subscription, error)
}

// Subscription представляет открытую подписку наблюдателя на сессию.
type Subscription interface {
	// Events возвращает канал входящих событий. Канал закрывается
	// после Unsubscribe или при невосстановимом обрыве соединения.
	Events() <-chan SessionEvent

	// Unsubscribe закрывает подписку. Идемпотентно.
	Unsubscribe()
}

// SessionEvent - событие канала сессии, передаваемое подписчикам.
// Несёт достаточно данных для слияния в локальное представление,
// но источником истины остаётся хранилище.
type SessionEvent struct {
	// Kind - вид события: "message", "file" или "read".
	Kind string `json:"kind"`

	// SessionID - сессия, к которой относится событие.
	SessionID SessionID `json:"session_id"`

	// Message - новое сообщение (для "message" и "file").
	Message *Message `json:"message,omitempty"`

	// ReaderID - участник, прочитавший сообщения (для "read").
	ReaderID profile.ID `json:"reader_id,omitempty"`
}

// Виды событий канала сессии.
const (
	EventKindMessage = "message"
	EventKindFile    = "file"
	EventKindRead    = "read"
)
