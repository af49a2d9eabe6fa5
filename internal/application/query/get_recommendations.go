// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusconnect/collab-hub/internal/domain/matching"
	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RECOMMENDATIONS QUERY
// Подбирает напарников для участника. Рекомендации эфемерны:
// пересчитываются на каждый запрос поверх закешированного пула
// кандидатов и никогда не сохраняются.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultPoolCacheTTL - время жизни закешированного пула кандидатов.
const DefaultPoolCacheTTL = 5 * time.Minute

// GetRecommendationsQuery содержит параметры запроса рекомендаций.
type GetRecommendationsQuery struct {
	// UserID - участник, который ищет команду.
	UserID string

	// Limit - максимум рекомендаций (0 = без ограничения).
	Limit int
}

// Validate проверяет корректность параметров.
func (q *GetRecommendationsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user_id is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// TeammateDTO - краткий профиль рекомендованного напарника.
type TeammateDTO struct {
	// UserID - идентификатор профиля.
	UserID string `json:"user_id"`

	// Name - отображаемое имя.
	Name string `json:"name"`

	// AvatarURL - ссылка на аватар.
	AvatarURL string `json:"avatar_url,omitempty"`

	// Department - кафедра.
	Department string `json:"department,omitempty"`

	// AcademicLevel - академический уровень.
	AcademicLevel string `json:"academic_level"`

	// ResearchInterests - исследовательские интересы.
	ResearchInterests []string `json:"research_interests"`
}

// RecommendationDTO - одна рекомендация для выдачи наружу.
type RecommendationDTO struct {
	// ID - идентификатор рекомендации.
	ID string `json:"id"`

	// Teammates - рекомендованные напарники.
	Teammates []TeammateDTO `json:"teammates"`

	// Score - оценка совместимости (0-100).
	Score int `json:"score"`

	// Quality - качественная оценка: excellent, good, fair.
	Quality string `json:"quality"`

	// Reasons - причины совместимости.
	Reasons []string `json:"reasons"`

	// SuggestedRoles - предложенные роли по идентификаторам.
	SuggestedRoles map[string]string `json:"suggested_roles"`

	// SuggestedProjectTitles - рабочие названия проектов.
	SuggestedProjectTitles []string `json:"suggested_project_titles"`
}

// GetRecommendationsResult - результат запроса.
type GetRecommendationsResult struct {
	// UserID - участник, для которого строились рекомендации.
	UserID string `json:"user_id"`

	// Recommendations - отсортированный список (может быть пустым).
	Recommendations []RecommendationDTO `json:"recommendations"`

	// CandidateCount - размер пула кандидатов до фильтрации.
	CandidateCount int `json:"candidate_count"`

	// FromCache - пул кандидатов пришёл из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - момент генерации.
	GeneratedAt time.Time `json:"generated_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetRecommendationsHandler обрабатывает запрос рекомендаций.
type GetRecommendationsHandler struct {
	profileRepo    profile.Repository
	profileCache   profile.Cache
	generator      *matching.Generator
	eventPublisher shared.EventPublisher
	cacheTTL       time.Duration
}

// NewGetRecommendationsHandler создаёт обработчик.
// profileCache может быть nil - тогда пул читается из хранилища напрямую.
func NewGetRecommendationsHandler(
	profileRepo profile.Repository,
	profileCache profile.Cache,
	generator *matching.Generator,
	eventPublisher shared.EventPublisher,
) *GetRecommendationsHandler {
	return &GetRecommendationsHandler{
		profileRepo:    profileRepo,
		profileCache:   profileCache,
		generator:      generator,
		eventPublisher: eventPublisher,
		cacheTTL:       DefaultPoolCacheTTL,
	}
}

// WithPoolCacheTTL задаёт время жизни пула кандидатов в кеше.
// Неположительные значения игнорируются.
func (h *GetRecommendationsHandler) WithPoolCacheTTL(ttl time.Duration) *GetRecommendationsHandler {
	if ttl > 0 {
		h.cacheTTL = ttl
	}
	return h
}

// Handle выполняет запрос рекомендаций.
//
// Сбой генерации никогда не превращается в пустую панику наружу:
// отсутствие кандидатов выше порога - это пустой список, не ошибка.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, q GetRecommendationsQuery) (*GetRecommendationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_recommendations: %w", err)
	}

	user, err := h.profileRepo.GetByID(ctx, profile.ID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: %w", err)
	}

	pool, fromCache, err := h.loadPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: candidate pool: %w", err)
	}

	recommendations := h.generator.Generate(user, pool)
	if q.Limit > 0 && len(recommendations) > q.Limit {
		recommendations = recommendations[:q.Limit]
	}

	result := &GetRecommendationsResult{
		UserID:          q.UserID,
		Recommendations: make([]RecommendationDTO, 0, len(recommendations)),
		CandidateCount:  len(pool),
		FromCache:       fromCache,
		GeneratedAt:     time.Now().UTC(),
	}
	for _, rec := range recommendations {
		result.Recommendations = append(result.Recommendations, toRecommendationDTO(rec))
	}

	topScore := 0
	if len(recommendations) > 0 {
		topScore = int(recommendations[0].CompatibilityScore)
	}
	_ = h.eventPublisher.Publish(shared.NewRecommendationsGeneratedEvent(
		q.UserID, len(pool), len(recommendations), topScore,
	))

	return result, nil
}

// loadPool читает пул кандидатов из кеша, при промахе - из хранилища
// с последующим заполнением кеша. Ошибки кеша не фатальны.
func (h *GetRecommendationsHandler) loadPool(ctx context.Context) ([]*profile.Profile, bool, error) {
	if h.profileCache != nil {
		if pool, err := h.profileCache.GetPool(ctx); err == nil && len(pool) > 0 {
			return pool, true, nil
		}
	}

	pool, err := h.profileRepo.GetCandidatePool(ctx)
	if err != nil {
		return nil, false, err
	}

	if h.profileCache != nil {
		_ = h.profileCache.SetPool(ctx, pool, h.cacheTTL)
	}
	return pool, false, nil
}

func toRecommendationDTO(rec *matching.TeamRecommendation) RecommendationDTO {
	dto := RecommendationDTO{
		ID:                     rec.ID,
		Teammates:              make([]TeammateDTO, 0, len(rec.RecommendedTeammates)),
		Score:                  int(rec.CompatibilityScore),
		Quality:                string(rec.CompatibilityScore.Quality()),
		Reasons:                rec.MatchReasoning,
		SuggestedRoles:         make(map[string]string, len(rec.SuggestedRoles)),
		SuggestedProjectTitles: rec.SuggestedProjectTitles,
	}
	for _, teammate := range rec.RecommendedTeammates {
		dto.Teammates = append(dto.Teammates, TeammateDTO{
			UserID:            teammate.ID.String(),
			Name:              teammate.Name,
			AvatarURL:         teammate.AvatarURL,
			Department:        teammate.Department,
			AcademicLevel:     string(teammate.AcademicLevel),
			ResearchInterests: teammate.ResearchInterests,
		})
	}
	for id, role := range rec.SuggestedRoles {
		dto.SuggestedRoles[id.String()] = role
	}
	return dto
}
