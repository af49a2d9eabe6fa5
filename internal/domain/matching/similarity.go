// Package matching реализует движок подбора участников команды.
//
// Философия подбора: "Лучшие команды собираются из разных людей".
//
// При подборе напарников мы приоритизируем:
// 1. Общие исследовательские интересы (есть о чём работать вместе)
// 2. Взаимодополняющие навыки (кандидат приносит то, чего нет у участника)
// 3. Совместимость академических траекторий (уровень и фаза диплома)
//
// НЕ приоритизируем:
// - Чистое совпадение навыков (дубли навыков не усиливают команду)
// - Популярность кандидата (не хотим перегружать сильных участников)
package matching

import (
	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// SIMILARITY PRIMITIVES
// Чистые функции без побочных эффектов и ввода-вывода.
// ══════════════════════════════════════════════════════════════════════════════

// Jaccard возвращает коэффициент Жаккара двух множеств строк:
// |A ∩ B| / |A ∪ B|. Для двух пустых множеств возвращает 0
// (особый случай пустого объединения вместо деления на ноль).
func Jaccard(setA, setB []string) float64 {
	union := make(map[string]struct{}, len(setA)+len(setB))
	inA := make(map[string]struct{}, len(setA))
	for _, v := range setA {
		union[v] = struct{}{}
		inA[v] = struct{}{}
	}

	intersection := 0
	seenB := make(map[string]struct{}, len(setB))
	for _, v := range setB {
		if _, dup := seenB[v]; dup {
			continue
		}
		seenB[v] = struct{}{}
		union[v] = struct{}{}
		if _, ok := inA[v]; ok {
			intersection++
		}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// SkillComplementarity оценивает, сколько новых навыков кандидат приносит
// участнику: количество имён навыков кандидата, отсутствующих у участника,
// умноженное на 20 с ограничением в 100 (5+ новых навыков дают максимум).
// Сравнение только по имени, с учётом регистра; категория и уровень
// не учитываются.
func SkillComplementarity(userSkills, candidateSkills []profile.Skill) int {
	userNames := make(map[string]struct{}, len(userSkills))
	for _, s := range userSkills {
		userNames[s.Name] = struct{}{}
	}

	novel := 0
	seen := make(map[string]struct{}, len(candidateSkills))
	for _, s := range candidateSkills {
		if _, dup := seen[s.Name]; dup {
			continue
		}
		seen[s.Name] = struct{}{}
		if _, ok := userNames[s.Name]; !ok {
			novel++
		}
	}

	score := novel * 20
	if score > 100 {
		score = 100
	}
	return score
}

// AcademicFit оценивает совместимость академических траекторий:
//
//	0   - разный академический уровень (строгое требование);
//	50  - одинаковый уровень, но фазы диплома указаны у обоих и различаются;
//	100 - одинаковый уровень и совместимые фазы.
func AcademicFit(user, candidate *profile.Profile) int {
	if user.AcademicLevel != candidate.AcademicLevel {
		return 0
	}
	if !user.SamePhase(candidate) {
		return 50
	}
	return 100
}
