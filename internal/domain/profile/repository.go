package profile

import (
	"context"
	"time"
)

// Repository определяет доступ к хранилищу профилей.
// Реализация читает записи пользователей и их навыки и собирает
// нормализованные профили; хранилище доступно только для чтения.
type Repository interface {
	// GetByID возвращает профиль по идентификатору пользователя.
	// Возвращает shared.ErrProfileNotFound, если профиль не найден.
	GetByID(ctx context.Context, userID ID) (*Profile, error)

	// GetCandidatePool возвращает все профили, доступные для подбора.
	// Исключение самого запрашивающего - обязанность вызывающей стороны.
	GetCandidatePool(ctx context.Context) ([]*Profile, error)
}

// Cache определяет кеш профилей поверх основного хранилища.
// Промах кеша - не ошибка: вызывающая сторона идёт в хранилище.
type Cache interface {
	// GetPool возвращает закешированный пул кандидатов или ошибку промаха.
	GetPool(ctx context.Context) ([]*Profile, error)

	// SetPool сохраняет пул кандидатов с ограниченным временем жизни.
	SetPool(ctx context.Context, profiles []*Profile, ttl time.Duration) error

	// Invalidate сбрасывает закешированный пул.
	Invalidate(ctx context.Context) error
}
