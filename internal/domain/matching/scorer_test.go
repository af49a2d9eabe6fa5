package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

func mlUser() *profile.Profile {
	return &profile.Profile{
		ID:                "user-1",
		Name:              "Aigerim",
		AcademicLevel:     profile.AcademicUndergraduate,
		Department:        "Computer Science",
		ResearchInterests: []string{"Machine Learning", "Healthcare", "Computer Vision"},
		Skills: []profile.Skill{
			{Name: "Python", Category: profile.SkillCategoryTechnical, Level: profile.SkillLevelAdvanced},
			{Name: "TensorFlow", Category: profile.SkillCategoryTechnical, Level: profile.SkillLevelIntermediate},
		},
		ThesisPhase: profile.ThesisResearch,
	}
}

func TestScoreCompatibility_BelowThreshold(t *testing.T) {
	user := mlUser()
	candidate := &profile.Profile{
		ID:                "cand-1",
		Name:              "Dana",
		AcademicLevel:     profile.AcademicUndergraduate,
		Department:        "Biology",
		ResearchInterests: []string{"Healthcare", "Genomics"},
		Skills: []profile.Skill{
			{Name: "Biology", Category: profile.SkillCategoryDomain, Level: profile.SkillLevelExpert},
		},
		ThesisPhase: profile.ThesisResearch,
	}

	// interest 25 (1/4 jaccard), skill 20 (1 novel), academic 100:
	// round(25*0.4 + 20*0.4 + 100*0.2) = 38.
	result := ScoreCompatibility(user, candidate)
	assert.Equal(t, Score(38), result.Score)
	assert.True(t, result.Score < MinRecommendationScore)
}

func TestScoreCompatibility_IncludedWithReasons(t *testing.T) {
	user := mlUser()
	candidate := &profile.Profile{
		ID:                "cand-2",
		Name:              "Timur",
		AcademicLevel:     profile.AcademicUndergraduate,
		Department:        "Computer Science",
		ResearchInterests: []string{"Machine Learning", "Healthcare"},
		Skills: []profile.Skill{
			{Name: "Go", Category: profile.SkillCategoryTechnical, Level: profile.SkillLevelAdvanced},
			{Name: "Statistics", Category: profile.SkillCategoryDomain, Level: profile.SkillLevelIntermediate},
		},
		ThesisPhase: profile.ThesisResearch,
	}

	// interest 66.7 (2/3 jaccard), skill 40 (2 novel), academic 100:
	// round(26.67 + 16 + 20) = 63.
	result := ScoreCompatibility(user, candidate)
	assert.Equal(t, Score(63), result.Score)
	assert.Contains(t, result.Reasons, ReasonSharedInterests)
	assert.Contains(t, result.Reasons, ReasonAlignedTimeline)

	// Skill score 40 stays under the reason threshold of 50.
	assert.NotContains(t, result.Reasons, ReasonComplementarySkills)

	// Same department, so no interdisciplinary reason.
	assert.NotContains(t, result.Reasons, ReasonInterdisciplinary)
}

func TestScoreCompatibility_PhaseMismatchHalvesAcademic(t *testing.T) {
	user := mlUser()
	candidate := mlUser()
	candidate.ID = "cand-3"
	candidate.ThesisPhase = profile.ThesisDevelopment

	// Identical interests and skills: interest 100, skill 0, academic 50.
	// round(40 + 0 + 10) = 50.
	result := ScoreCompatibility(user, candidate)
	assert.Equal(t, Score(50), result.Score)
	assert.NotContains(t, result.Reasons, ReasonAlignedTimeline)
}

func TestScoreCompatibility_ReasonOrder(t *testing.T) {
	user := mlUser()
	candidate := &profile.Profile{
		ID:                "cand-4",
		Name:              "Sara",
		AcademicLevel:     profile.AcademicUndergraduate,
		Department:        "Design",
		ResearchInterests: []string{"Machine Learning", "Healthcare", "Computer Vision"},
		Skills: []profile.Skill{
			{Name: "Figma", Category: profile.SkillCategoryTool, Level: profile.SkillLevelExpert},
			{Name: "Illustration", Category: profile.SkillCategoryDomain, Level: profile.SkillLevelAdvanced},
			{Name: "UX Research", Category: profile.SkillCategoryDomain, Level: profile.SkillLevelAdvanced},
		},
		ThesisPhase: profile.ThesisResearch,
	}

	// interest 100, skill 60, academic 100, departments differ:
	// all four reasons fire, in their fixed order.
	result := ScoreCompatibility(user, candidate)
	assert.Equal(t, []string{
		ReasonSharedInterests,
		ReasonComplementarySkills,
		ReasonAlignedTimeline,
		ReasonInterdisciplinary,
	}, result.Reasons)
}

func TestScoreCompatibility_EmptyProfiles(t *testing.T) {
	user := &profile.Profile{ID: "a", Name: "A", AcademicLevel: profile.AcademicGraduate}
	candidate := &profile.Profile{ID: "b", Name: "B", AcademicLevel: profile.AcademicGraduate}
	user.Normalize()
	candidate.Normalize()

	// No interests, no skills, same level, no phases: only the academic
	// component contributes.
	result := ScoreCompatibility(user, candidate)
	assert.Equal(t, Score(20), result.Score)
	assert.Equal(t, []string{ReasonAlignedTimeline}, result.Reasons)
}

func TestScore_Quality(t *testing.T) {
	assert.Equal(t, QualityExcellent, Score(85).Quality())
	assert.Equal(t, QualityGood, Score(63).Quality())
	assert.Equal(t, QualityFair, Score(40).Quality())
	assert.Equal(t, QualityPoor, Score(38).Quality())
}
