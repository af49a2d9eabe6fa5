package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHAT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ChatRepository implements chat.Repository for PostgreSQL.
//
// The message log is append-only: rows are inserted, never updated,
// except for the monotonic is_read flag. Session updated_at moves in
// the same transaction as the message insert, so list ordering can
// never observe a message without its session bump.
type ChatRepository struct {
	conn *Connection
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(conn *Connection) *ChatRepository {
	return &ChatRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

// CreateSession creates a session with a write-once participant set.
func (r *ChatRepository) CreateSession(ctx context.Context, participants []profile.ID, sessionType chat.SessionType) (*chat.ChatSession, error) {
	session, err := chat.NewChatSession(chat.NewSessionParams{
		ID:           chat.SessionID(uuid.New().String()),
		Type:         sessionType,
		Participants: participants,
	})
	if err != nil {
		return nil, err
	}

	err = r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO chat_sessions (id, type, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
		`, session.ID.String(), string(session.Type), session.CreatedAt, session.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		for _, userID := range session.Participants {
			_, err := tx.Exec(ctx, `
				INSERT INTO chat_participants (session_id, user_id)
				VALUES ($1, $2)
			`, session.ID.String(), userID.String())
			if err != nil {
				if IsForeignKeyViolation(err) {
					return shared.ErrUnknownParticipant
				}
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// FindDirectSession looks up a direct session whose participant set equals
// {userID, otherID}. Lookup and create are deliberately separate calls, so
// two simultaneous connects for the same pair may race into two sessions.
func (r *ChatRepository) FindDirectSession(ctx context.Context, userID, otherID profile.ID) (*chat.ChatSession, error) {
	query := `
		SELECT s.id, s.type, s.created_at, s.updated_at
		FROM chat_sessions s
		WHERE s.type = 'direct'
		  AND EXISTS (SELECT 1 FROM chat_participants WHERE session_id = s.id AND user_id = $1)
		  AND EXISTS (SELECT 1 FROM chat_participants WHERE session_id = s.id AND user_id = $2)
		  AND (SELECT count(*) FROM chat_participants WHERE session_id = s.id) = 2
		ORDER BY s.created_at
		LIMIT 1
	`

	session, err := scanSession(r.conn.QueryRow(ctx, query, userID.String(), otherID.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find direct session: %w", err)
	}

	if err := r.loadParticipants(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetByID returns a session with its full message log. The unread count
// is computed for viewerID: messages not sent by the viewer, still unread.
func (r *ChatRepository) GetByID(ctx context.Context, sessionID chat.SessionID, viewerID profile.ID) (*chat.ChatSession, []*chat.Message, error) {
	session, err := scanSession(r.conn.QueryRow(ctx, `
		SELECT id, type, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`, sessionID.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, nil, shared.ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}

	if err := r.loadParticipants(ctx, session); err != nil {
		return nil, nil, err
	}

	messages, err := r.loadMessages(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	for _, m := range messages {
		if m.SenderID != viewerID && !m.IsRead {
			session.UnreadCount++
		}
	}
	return session, messages, nil
}

// ListForUser returns the user's sessions ordered by most recent activity.
// Each entry carries participant summaries and the last message, not the
// full log.
func (r *ChatRepository) ListForUser(ctx context.Context, userID profile.ID) ([]*chat.ChatSession, error) {
	query := `
		SELECT s.id, s.type, s.created_at, s.updated_at
		FROM chat_sessions s
		JOIN chat_participants p ON p.session_id = s.id
		WHERE p.user_id = $1
		ORDER BY s.updated_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*chat.ChatSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, session := range sessions {
		if err := r.loadParticipants(ctx, session); err != nil {
			return nil, err
		}
		if err := r.attachListExtras(ctx, session, userID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// attachListExtras fills LastMessage and UnreadCount for a list entry.
func (r *ChatRepository) attachListExtras(ctx context.Context, session *chat.ChatSession, viewerID profile.ID) error {
	last, err := r.loadLastMessage(ctx, session.ID)
	if err != nil {
		return err
	}
	session.LastMessage = last

	err = r.conn.QueryRow(ctx, `
		SELECT count(*)
		FROM messages
		WHERE session_id = $1 AND sender_id <> $2 AND is_read = FALSE
	`, session.ID.String(), viewerID.String()).Scan(&session.UnreadCount)
	if err != nil {
		return fmt.Errorf("failed to count unread: %w", err)
	}
	return nil
}

// loadParticipants fills Participants and ParticipantProfiles.
func (r *ChatRepository) loadParticipants(ctx context.Context, session *chat.ChatSession) error {
	rows, err := r.conn.Query(ctx, `
		SELECT u.user_id, u.name, u.avatar_url
		FROM chat_participants p
		JOIN user_profiles u ON u.user_id = p.user_id
		WHERE p.session_id = $1
		ORDER BY p.joined_at
	`, session.ID.String())
	if err != nil {
		return fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	session.Participants = session.Participants[:0]
	session.ParticipantProfiles = session.ParticipantProfiles[:0]
	for rows.Next() {
		var userID, name string
		var avatarURL *string
		if err := rows.Scan(&userID, &name, &avatarURL); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}

		p := &profile.Profile{ID: profile.ID(userID), Name: name}
		if avatarURL != nil {
			p.AvatarURL = *avatarURL
		}
		session.Participants = append(session.Participants, p.ID)
		session.ParticipantProfiles = append(session.ParticipantProfiles, p)
	}
	return rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Messages
// ─────────────────────────────────────────────────────────────────────────────

// AppendMessage inserts a message and bumps the session's updated_at in
// one transaction. A failed send leaves no partial message behind.
func (r *ChatRepository) AppendMessage(ctx context.Context, message *chat.Message) (*chat.Message, error) {
	if err := chat.ValidateContent(message.Content); err != nil {
		return nil, shared.ErrEmptyMessage
	}

	var isParticipant bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat_participants
			WHERE session_id = $1 AND user_id = $2
		)
	`, message.SessionID.String(), message.SenderID.String()).Scan(&isParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to check participant: %w", err)
	}

	var sessionExists bool
	err = r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1)
	`, message.SessionID.String()).Scan(&sessionExists)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !sessionExists {
		return nil, shared.ErrSessionNotFound
	}
	if !isParticipant {
		return nil, shared.ErrNotParticipant
	}

	if message.ID == "" {
		message.ID = chat.MessageID(uuid.New().String())
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	err = r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO messages (id, session_id, sender_id, content, created_at, is_read)
			VALUES ($1, $2, $3, $4, $5, FALSE)
		`, message.ID.String(), message.SessionID.String(), message.SenderID.String(),
			message.Content, message.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}

		if message.File != nil {
			_, err := tx.Exec(ctx, `
				INSERT INTO chat_files (message_id, file_name, content_type, size_bytes, file_url)
				VALUES ($1, $2, $3, $4, $5)
			`, message.ID.String(), message.File.Name, message.File.ContentType,
				message.File.SizeBytes, message.File.URL)
			if err != nil {
				return fmt.Errorf("failed to insert file metadata: %w", err)
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE chat_sessions SET updated_at = $1 WHERE id = $2
		`, message.CreatedAt, message.SessionID.String())
		if err != nil {
			return fmt.Errorf("failed to touch session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// MarkMessageRead marks one message as read. Idempotent.
func (r *ChatRepository) MarkMessageRead(ctx context.Context, messageID chat.MessageID) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE messages SET is_read = TRUE WHERE id = $1
	`, messageID.String())
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrMessageNotFound
	}
	return nil
}

// MarkSessionRead marks all messages in the session not sent by viewerID
// as read and returns how many rows actually transitioned.
func (r *ChatRepository) MarkSessionRead(ctx context.Context, sessionID chat.SessionID, viewerID profile.ID) (int, error) {
	var sessionExists bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1)
	`, sessionID.String()).Scan(&sessionExists)
	if err != nil {
		return 0, fmt.Errorf("failed to check session: %w", err)
	}
	if !sessionExists {
		return 0, shared.ErrSessionNotFound
	}

	tag, err := r.conn.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE session_id = $1 AND sender_id <> $2 AND is_read = FALSE
	`, sessionID.String(), viewerID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to mark session read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// loadMessages returns the full log in append order. Ordering by seq,
// not created_at, keeps same-timestamp messages in insertion order.
func (r *ChatRepository) loadMessages(ctx context.Context, sessionID chat.SessionID) ([]*chat.Message, error) {
	query := `
		SELECT m.id, m.session_id, m.sender_id, m.content, m.created_at, m.is_read,
			   f.file_name, f.content_type, f.size_bytes, f.file_url
		FROM messages m
		LEFT JOIN chat_files f ON f.message_id = m.id
		WHERE m.session_id = $1
		ORDER BY m.seq
	`

	rows, err := r.conn.Query(ctx, query, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*chat.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// loadLastMessage returns the most recent message or nil for an empty session.
func (r *ChatRepository) loadLastMessage(ctx context.Context, sessionID chat.SessionID) (*chat.Message, error) {
	query := `
		SELECT m.id, m.session_id, m.sender_id, m.content, m.created_at, m.is_read,
			   f.file_name, f.content_type, f.size_bytes, f.file_url
		FROM messages m
		LEFT JOIN chat_files f ON f.message_id = m.id
		WHERE m.session_id = $1
		ORDER BY m.seq DESC
		LIMIT 1
	`

	message, err := scanMessage(r.conn.QueryRow(ctx, query, sessionID.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load last message: %w", err)
	}
	return message, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanSession(row rowScanner) (*chat.ChatSession, error) {
	var (
		id, sessionType      string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &sessionType, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return &chat.ChatSession{
		ID:        chat.SessionID(id),
		Type:      chat.SessionType(sessionType),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func scanMessage(row rowScanner) (*chat.Message, error) {
	var (
		id, sessionID, senderID, content string
		createdAt                        time.Time
		isRead                           bool
		fileName, contentType, fileURL   *string
		sizeBytes                        *int64
	)
	err := row.Scan(&id, &sessionID, &senderID, &content, &createdAt, &isRead,
		&fileName, &contentType, &sizeBytes, &fileURL)
	if err != nil {
		return nil, err
	}

	message := &chat.Message{
		ID:        chat.MessageID(id),
		SessionID: chat.SessionID(sessionID),
		SenderID:  profile.ID(senderID),
		Content:   content,
		CreatedAt: createdAt,
		IsRead:    isRead,
	}
	if fileName != nil {
		message.File = &chat.FileAttachment{Name: *fileName}
		if contentType != nil {
			message.File.ContentType = *contentType
		}
		if sizeBytes != nil {
			message.File.SizeBytes = *sizeBytes
		}
		if fileURL != nil {
			message.File.URL = *fileURL
		}
	}
	return message, nil
}
