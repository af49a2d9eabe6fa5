package matching

import (
	"math"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPATIBILITY SCORER
// Сводит примитивы похожести в одну взвешенную оценку 0-100
// с человекочитаемыми причинами.
// ══════════════════════════════════════════════════════════════════════════════

// Причины совместимости в фиксированном порядке вычисления.
const (
	// ReasonSharedInterests - пересечение интересов выше половины.
	ReasonSharedInterests = "Shared Research Interests"

	// ReasonComplementarySkills - кандидат приносит заметно новые навыки.
	ReasonComplementarySkills = "Complementary Skill Sets"

	// ReasonAlignedTimeline - полная совместимость академических траекторий.
	ReasonAlignedTimeline = "Aligned Academic Timeline"

	// ReasonInterdisciplinary - участники с разных кафедр.
	ReasonInterdisciplinary = "Interdisciplinary Potential"
)

// Score представляет оценку совместимости (0-100).
type Score int

// IsValid проверяет корректность оценки.
func (s Score) IsValid() bool {
	return s >= 0 && s <= 100
}

// Quality возвращает качественную оценку совместимости.
func (s Score) Quality() Quality {
	switch {
	case s >= 80:
		return QualityExcellent
	case s >= 60:
		return QualityGood
	case s >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Quality определяет качество подбора.
type Quality string

const (
	// QualityExcellent - отличная совместимость (80-100).
	QualityExcellent Quality = "excellent"

	// QualityGood - хорошая совместимость (60-79).
	QualityGood Quality = "good"

	// QualityFair - удовлетворительная совместимость (40-59).
	QualityFair Quality = "fair"

	// QualityPoor - ниже порога отбора (0-39).
	QualityPoor Quality = "poor"
)

// CompatibilityResult представляет результат оценки пары профилей.
// Эфемерный объект: вычисляется на каждый запрос и не сохраняется.
type CompatibilityResult struct {
	// Score - итоговая оценка совместимости (0-100).
	Score Score

	// Reasons - причины совместимости в фиксированном порядке.
	Reasons []string
}

// Weights задаёт веса факторов итоговой оценки.
type Weights struct {
	// Interest - вес пересечения исследовательских интересов.
	Interest float64

	// Skill - вес взаимодополняемости навыков.
	Skill float64

	// Academic - вес академической совместимости.
	Academic float64
}

// DefaultWeights возвращает веса по умолчанию: 40/40/20.
func DefaultWeights() Weights {
	return Weights{
		Interest: 0.4,
		Skill:    0.4,
		Academic: 0.2,
	}
}

// ScoreCompatibility вычисляет совместимость пары профилей с весами
// по умолчанию. Функция тотальна для нормализованных профилей
// и не имеет побочных эффектов.
func ScoreCompatibility(user, candidate *profile.Profile) CompatibilityResult {
	return ScoreCompatibilityWeighted(user, candidate, DefaultWeights())
}

// ScoreCompatibilityWeighted вычисляет совместимость с заданными весами.
//
// Алгоритм:
//  1. interestScore = Jaccard(интересы) * 100
//  2. skillScore = SkillComplementarity(навыки)
//  3. academicScore = AcademicFit(уровень, фаза)
//  4. итог = round(interest*wI + skill*wS + academic*wA)
//
// Причины оцениваются независимо друг от друга (невзаимоисключающие).
func ScoreCompatibilityWeighted(user, candidate *profile.Profile, w Weights) CompatibilityResult {
	interestScore := Jaccard(user.ResearchInterests, candidate.ResearchInterests) * 100
	skillScore := SkillComplementarity(user.Skills, candidate.Skills)
	academicScore := AcademicFit(user, candidate)

	total := interestScore*w.Interest + float64(skillScore)*w.Skill + float64(academicScore)*w.Academic

	reasons := make([]string, 0, 4)
	if interestScore > 50 {
		reasons = append(reasons, ReasonSharedInterests)
	}
	if skillScore > 50 {
		reasons = append(reasons, ReasonComplementarySkills)
	}
	if academicScore == 100 {
		reasons = append(reasons, ReasonAlignedTimeline)
	}
	if user.Department != candidate.Department {
		reasons = append(reasons, ReasonInterdisciplinary)
	}

	return CompatibilityResult{
		Score:   Score(math.Round(total)),
		Reasons: reasons,
	}
}
