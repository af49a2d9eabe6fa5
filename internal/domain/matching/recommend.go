package matching

import (
	"fmt"
	"sort"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEAM RECOMMENDATIONS
// Применяет скоринг к пулу кандидатов, фильтрует, ранжирует
// и назначает роли и рабочие названия проектов.
// ══════════════════════════════════════════════════════════════════════════════

// MinRecommendationScore - жёсткий порог отбора: кандидаты с оценкой
// ниже никогда не показываются.
const MinRecommendationScore Score = 40

// Предлагаемые роли в команде.
const (
	// RoleTeamLead - для участника с предпочтением Leader.
	RoleTeamLead = "Team Lead"

	// RoleResearcher - роль участника по умолчанию.
	RoleResearcher = "Researcher"

	// RoleLeadDeveloper - для кандидата с техническими навыками.
	RoleLeadDeveloper = "Lead Developer"

	// RoleDomainAnalyst - для кандидата без технических навыков.
	RoleDomainAnalyst = "Domain Analyst"
)

// Литералы-заглушки для названий проектов при пустом списке интересов.
const (
	fallbackUserInterest      = "Tech"
	fallbackCandidateInterest = "Innovation"
)

// TeamRecommendation представляет рекомендацию напарника.
// Эфемерный объект: пересчитывается на каждый запрос, на сервере
// не кешируется и не сохраняется.
type TeamRecommendation struct {
	// ID - идентификатор конкретного экземпляра рекомендации.
	ID string

	// TargetUser - участник, который ищет команду.
	TargetUser *profile.Profile

	// RecommendedTeammates - предложенные напарники (в базовом
	// поведении ровно один).
	RecommendedTeammates []*profile.Profile

	// CompatibilityScore - оценка совместимости (0-100).
	CompatibilityScore Score

	// MatchReasoning - причины совместимости.
	MatchReasoning []string

	// SuggestedRoles - предложенные роли по идентификаторам профилей.
	SuggestedRoles map[profile.ID]string

	// SuggestedProjectTitles - рабочие названия проектов.
	SuggestedProjectTitles []string
}

// Generator применяет скоринг к пулу кандидатов.
type Generator struct {
	// MinScore - порог отбора.
	MinScore Score

	// Weights - веса факторов скоринга.
	Weights Weights
}

// NewGenerator создаёт генератор с порогом и весами по умолчанию.
func NewGenerator() *Generator {
	return &Generator{
		MinScore: MinRecommendationScore,
		Weights:  DefaultWeights(),
	}
}

// Generate строит рекомендации для участника по пулу кандидатов.
//
// Алгоритм:
//  1. Кандидат с тем же ID, что и участник, пропускается.
//  2. Кандидаты с оценкой ниже порога отбрасываются.
//  3. Выжившим назначаются роли и названия проектов.
//  4. Сортировка по убыванию оценки, стабильная: при равных оценках
//     сохраняется относительный порядок входного списка.
//
// Функция тотальна: при пустом или полностью отфильтрованном пуле
// возвращается пустой список, не ошибка.
func (g *Generator) Generate(user *profile.Profile, candidates []*profile.Profile) []*TeamRecommendation {
	recommendations := make([]*TeamRecommendation, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.ID == user.ID {
			continue
		}

		result := ScoreCompatibilityWeighted(user, candidate, g.Weights)
		if result.Score < g.MinScore {
			continue
		}

		recommendations = append(recommendations, g.build(user, candidate, result))
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].CompatibilityScore > recommendations[j].CompatibilityScore
	})

	return recommendations
}

// build собирает рекомендацию для пары участник-кандидат.
func (g *Generator) build(user, candidate *profile.Profile, result CompatibilityResult) *TeamRecommendation {
	candidateRole := RoleDomainAnalyst
	if candidate.HasTechnicalSkill() {
		candidateRole = RoleLeadDeveloper
	}

	userRole := RoleResearcher
	if user.CollaborationPreference == profile.CollabLeader {
		userRole = RoleTeamLead
	}

	return &TeamRecommendation{
		ID:                   fmt.Sprintf("rec-%s-%s", user.ID, candidate.ID),
		TargetUser:           user,
		RecommendedTeammates: []*profile.Profile{candidate},
		CompatibilityScore:   result.Score,
		MatchReasoning:       result.Reasons,
		SuggestedRoles: map[profile.ID]string{
			user.ID:      userRole,
			candidate.ID: candidateRole,
		},
		SuggestedProjectTitles: []string{
			fmt.Sprintf("AI-Driven Analysis in %s", user.FirstInterest(fallbackUserInterest)),
			fmt.Sprintf("Collaborative Study on %s", candidate.FirstInterest(fallbackCandidateInterest)),
		},
	}
}
