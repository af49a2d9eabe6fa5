// Package profile содержит доменную модель участника платформы CampusConnect.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
//
// Профиль создаётся из персистентных записей пользователя и доступен движку
// подбора только для чтения: движок никогда не изменяет профиль.
package profile

import (
	"errors"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ID представляет уникальный идентификатор профиля.
type ID string

// IsValid проверяет, что идентификатор не пустой.
func (id ID) IsValid() bool {
	return strings.TrimSpace(string(id)) != ""
}

// String возвращает строковое представление идентификатора.
func (id ID) String() string {
	return string(id)
}

// SkillCategory определяет категорию навыка.
type SkillCategory string

const (
	// SkillCategoryTechnical - технические навыки (языки, фреймворки).
	SkillCategoryTechnical SkillCategory = "Technical"

	// SkillCategoryDomain - предметные навыки (биология, экономика).
	SkillCategoryDomain SkillCategory = "Domain"

	// SkillCategorySoft - гибкие навыки (коммуникация, лидерство).
	SkillCategorySoft SkillCategory = "Soft"

	// SkillCategoryTool - инструментальные навыки (Figma, Excel).
	SkillCategoryTool SkillCategory = "Tool"
)

// IsValid проверяет корректность категории.
func (c SkillCategory) IsValid() bool {
	switch c {
	case SkillCategoryTechnical, SkillCategoryDomain, SkillCategorySoft, SkillCategoryTool:
		return true
	default:
		return false
	}
}

// SkillLevel определяет уровень владения навыком.
type SkillLevel string

const (
	// SkillLevelBeginner - начальный уровень.
	SkillLevelBeginner SkillLevel = "Beginner"

	// SkillLevelIntermediate - средний уровень.
	SkillLevelIntermediate SkillLevel = "Intermediate"

	// SkillLevelAdvanced - продвинутый уровень.
	SkillLevelAdvanced SkillLevel = "Advanced"

	// SkillLevelExpert - экспертный уровень.
	SkillLevelExpert SkillLevel = "Expert"
)

// IsValid проверяет корректность уровня.
func (l SkillLevel) IsValid() bool {
	switch l {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced, SkillLevelExpert:
		return true
	default:
		return false
	}
}

// LevelFromProficiency переводит числовой уровень владения (0-100)
// из хранилища в уровень навыка по фиксированным порогам.
func LevelFromProficiency(proficiency int) SkillLevel {
	switch {
	case proficiency > 80:
		return SkillLevelExpert
	case proficiency > 60:
		return SkillLevelAdvanced
	default:
		return SkillLevelIntermediate
	}
}

// Skill представляет навык участника. Неизменяемый объект-значение.
type Skill struct {
	// Name - название навыка (уникально в пределах профиля).
	Name string

	// Category - категория навыка.
	Category SkillCategory

	// Level - уровень владения.
	Level SkillLevel
}

// AcademicLevel определяет академический уровень участника.
type AcademicLevel string

const (
	// AcademicUndergraduate - бакалавриат.
	AcademicUndergraduate AcademicLevel = "Undergraduate"

	// AcademicGraduate - магистратура и выше.
	AcademicGraduate AcademicLevel = "Graduate"
)

// Availability определяет доступность участника для проектов.
type Availability string

const (
	// AvailabilityPartTime - частичная занятость.
	AvailabilityPartTime Availability = "Part-time"

	// AvailabilityFullTime - полная занятость.
	AvailabilityFullTime Availability = "Full-time"
)

// CollaborationPreference определяет предпочитаемую роль в команде.
type CollaborationPreference string

const (
	// CollabLeader - хочет вести команду.
	CollabLeader CollaborationPreference = "Leader"

	// CollabCoAuthor - хочет быть соавтором.
	CollabCoAuthor CollaborationPreference = "Co-author"

	// CollabContributor - хочет быть участником (значение по умолчанию).
	CollabContributor CollaborationPreference = "Contributor"
)

// ParseCollaborationPreference переводит свободное поле "desired_role" из
// хранилища в предпочтение. Неизвестные значения дают Contributor.
func ParseCollaborationPreference(desiredRole string) CollaborationPreference {
	switch strings.ToLower(strings.TrimSpace(desiredRole)) {
	case "leader", "team lead", "lead":
		return CollabLeader
	case "co-author", "coauthor":
		return CollabCoAuthor
	default:
		return CollabContributor
	}
}

// ThesisPhase определяет фазу дипломной работы (пустая = не применимо).
type ThesisPhase string

const (
	ThesisProposal    ThesisPhase = "Proposal"
	ThesisResearch    ThesisPhase = "Research"
	ThesisDevelopment ThesisPhase = "Development"
	ThesisWriting     ThesisPhase = "Writing"
	ThesisSubmission  ThesisPhase = "Submission"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidProfile - профиль не прошёл валидацию.
var ErrInvalidProfile = errors.New("profile: invalid profile")

// Profile представляет участника, доступного для подбора.
//
// Движок подбора рассматривает профиль как снимок: все поля заполняются
// адаптером хранилища (отсутствующие - безопасными значениями по умолчанию),
// после чего профиль не изменяется.
type Profile struct {
	// ID - уникальный идентификатор (UUID из хранилища пользователей).
	ID ID

	// Name - отображаемое имя.
	Name string

	// Email - адрес электронной почты.
	Email string

	// AvatarURL - ссылка на аватар (может быть пустой).
	AvatarURL string

	// AcademicLevel - академический уровень.
	AcademicLevel AcademicLevel

	// Department - кафедра/факультет.
	Department string

	// University - университет.
	University string

	// ResearchInterests - исследовательские интересы (множество строк).
	ResearchInterests []string

	// Skills - навыки, имена уникальны в пределах профиля.
	Skills []Skill

	// ProjectPreferences - предпочитаемые типы проектов.
	ProjectPreferences []string

	// Availability - доступность.
	Availability Availability

	// CollaborationPreference - предпочитаемая роль в команде.
	CollaborationPreference CollaborationPreference

	// ThesisPhase - фаза дипломной работы (пустая = не применимо).
	ThesisPhase ThesisPhase
}

// Validate проверяет минимальную корректность профиля.
func (p *Profile) Validate() error {
	if !p.ID.IsValid() {
		return ErrInvalidProfile
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidProfile
	}
	return nil
}

// Normalize заполняет отсутствующие поля безопасными значениями.
// Вызывается адаптером хранилища до передачи профиля в скоринг,
// чтобы сами функции скоринга оставались тотальными.
func (p *Profile) Normalize() {
	if p.ResearchInterests == nil {
		p.ResearchInterests = make([]string, 0)
	}
	if p.Skills == nil {
		p.Skills = make([]Skill, 0)
	}
	if p.ProjectPreferences == nil {
		p.ProjectPreferences = make([]string, 0)
	}
	if p.CollaborationPreference == "" {
		p.CollaborationPreference = CollabContributor
	}
	if p.Availability == "" {
		p.Availability = AvailabilityPartTime
	}
}

// SkillNames возвращает множество имён навыков.
func (p *Profile) SkillNames() map[string]struct{} {
	names := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		names[s.Name] = struct{}{}
	}
	return names
}

// HasTechnicalSkill проверяет, есть ли у участника технический навык.
func (p *Profile) HasTechnicalSkill() bool {
	for _, s := range p.Skills {
		if s.Category == SkillCategoryTechnical {
			return true
		}
	}
	return false
}

// FirstInterest возвращает первый исследовательский интерес
// или fallback, если список пуст.
func (p *Profile) FirstInterest(fallback string) string {
	if len(p.ResearchInterests) > 0 {
		return p.ResearchInterests[0]
	}
	return fallback
}

// AddSkill добавляет навык, сохраняя уникальность имён.
// Используется адаптером при сборке профиля из строк хранилища.
func (p *Profile) AddSkill(skill Skill) {
	for _, existing := range p.Skills {
		if existing.Name == skill.Name {
			return
		}
	}
	p.Skills = append(p.Skills, skill)
}

// SamePhase проверяет совместимость фаз дипломной работы.
// Расхождением считается только случай, когда фазы указаны у обоих
// и различаются; отсутствие фазы у любой из сторон - не конфликт.
func (p *Profile) SamePhase(other *Profile) bool {
	if p.ThesisPhase == "" || other.ThesisPhase == "" {
		return true
	}
	return p.ThesisPhase == other.ThesisPhase
}
