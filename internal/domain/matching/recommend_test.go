package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
)

func strongCandidate(id profile.ID, name string) *profile.Profile {
	return &profile.Profile{
		ID:                id,
		Name:              name,
		AcademicLevel:     profile.AcademicUndergraduate,
		Department:        "Design",
		ResearchInterests: []string{"Machine Learning", "Healthcare", "Computer Vision"},
		Skills: []profile.Skill{
			{Name: "Figma", Category: profile.SkillCategoryTool, Level: profile.SkillLevelExpert},
			{Name: "UX Research", Category: profile.SkillCategoryDomain, Level: profile.SkillLevelAdvanced},
			{Name: "Illustration", Category: profile.SkillCategoryDomain, Level: profile.SkillLevelAdvanced},
		},
		ThesisPhase: profile.ThesisResearch,
	}
}

func TestGenerator_SkipsSelfAndLowScores(t *testing.T) {
	user := mlUser()
	weak := &profile.Profile{
		ID:            "weak",
		Name:          "Weak Match",
		AcademicLevel: profile.AcademicGraduate,
	}
	weak.Normalize()

	recs := NewGenerator().Generate(user, []*profile.Profile{
		user, // self, must be skipped even with a perfect score
		weak, // different level, scores 0
		strongCandidate("strong", "Strong Match"),
	})

	require.Len(t, recs, 1)
	assert.Equal(t, profile.ID("strong"), recs[0].RecommendedTeammates[0].ID)
	for _, rec := range recs {
		assert.True(t, rec.CompatibilityScore >= MinRecommendationScore)
		assert.NotEqual(t, user.ID, rec.RecommendedTeammates[0].ID)
	}
}

func TestGenerator_RecommendationShape(t *testing.T) {
	user := mlUser()
	user.CollaborationPreference = profile.CollabLeader
	candidate := strongCandidate("cand-1", "Sara")

	recs := NewGenerator().Generate(user, []*profile.Profile{candidate})
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "rec-user-1-cand-1", rec.ID)
	assert.Equal(t, user, rec.TargetUser)
	require.Len(t, rec.RecommendedTeammates, 1)

	// Leader preference gives Team Lead; candidate has no Technical skill.
	assert.Equal(t, RoleTeamLead, rec.SuggestedRoles[user.ID])
	assert.Equal(t, RoleDomainAnalyst, rec.SuggestedRoles[candidate.ID])

	assert.Equal(t, []string{
		"AI-Driven Analysis in Machine Learning",
		"Collaborative Study on Machine Learning",
	}, rec.SuggestedProjectTitles)
}

func TestGenerator_RolesDependOnSkillsAndPreference(t *testing.T) {
	user := mlUser() // Contributor by default
	candidate := strongCandidate("cand-2", "Timur")
	candidate.AddSkill(profile.Skill{
		Name:     "Go",
		Category: profile.SkillCategoryTechnical,
		Level:    profile.SkillLevelAdvanced,
	})

	recs := NewGenerator().Generate(user, []*profile.Profile{candidate})
	require.Len(t, recs, 1)

	assert.Equal(t, RoleResearcher, recs[0].SuggestedRoles[user.ID])
	assert.Equal(t, RoleLeadDeveloper, recs[0].SuggestedRoles[candidate.ID])
}

func TestGenerator_FallbackProjectTitles(t *testing.T) {
	// Candidate with no interests still scores via skills and academics.
	user := &profile.Profile{
		ID:            "u",
		Name:          "U",
		AcademicLevel: profile.AcademicGraduate,
	}
	user.Normalize()
	candidate := &profile.Profile{
		ID:            "c",
		Name:          "C",
		AcademicLevel: profile.AcademicGraduate,
		Skills: []profile.Skill{
			{Name: "Rust", Category: profile.SkillCategoryTechnical},
			{Name: "SQL", Category: profile.SkillCategoryTechnical},
			{Name: "Docker", Category: profile.SkillCategoryTool},
		},
	}
	candidate.Normalize()

	recs := NewGenerator().Generate(user, []*profile.Profile{candidate})
	require.Len(t, recs, 1)
	assert.Equal(t, []string{
		"AI-Driven Analysis in Tech",
		"Collaborative Study on Innovation",
	}, recs[0].SuggestedProjectTitles)
}

func TestGenerator_SortsDescendingStable(t *testing.T) {
	user := mlUser()

	// Perfect overlap plus novel skills and another department.
	best := strongCandidate("best", "Best")

	// Same profile but a conflicting thesis phase lowers the academic score.
	mid1 := strongCandidate("mid-1", "Mid One")
	mid1.ThesisPhase = profile.ThesisWriting
	mid2 := strongCandidate("mid-2", "Mid Two")
	mid2.ThesisPhase = profile.ThesisDevelopment

	recs := NewGenerator().Generate(user, []*profile.Profile{mid1, best, mid2})
	require.Len(t, recs, 3)

	assert.Equal(t, profile.ID("best"), recs[0].RecommendedTeammates[0].ID)

	// Equal scores keep the input order of the candidate pool.
	assert.Equal(t, recs[1].CompatibilityScore, recs[2].CompatibilityScore)
	assert.Equal(t, profile.ID("mid-1"), recs[1].RecommendedTeammates[0].ID)
	assert.Equal(t, profile.ID("mid-2"), recs[2].RecommendedTeammates[0].ID)
}

func TestGenerator_EmptyPool(t *testing.T) {
	recs := NewGenerator().Generate(mlUser(), nil)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
