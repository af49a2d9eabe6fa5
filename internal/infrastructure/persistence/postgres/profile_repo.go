package postgres

import (
	"context"
	"fmt"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements profile.Repository for PostgreSQL.
// The profile tables are owned by the campus account service; this
// repository only reads them and assembles normalized profiles.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// GetByID returns a profile with its skills.
func (r *ProfileRepository) GetByID(ctx context.Context, userID profile.ID) (*profile.Profile, error) {
	query := `
		SELECT user_id, name, email, avatar_url, academic_level, major,
			   university, research_interests, project_preferences,
			   availability, desired_role, thesis_phase
		FROM user_profiles
		WHERE user_id = $1
	`

	row := r.conn.QueryRow(ctx, query, userID.String())
	p, err := scanProfile(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := r.loadSkills(ctx, map[profile.ID]*profile.Profile{p.ID: p}); err != nil {
		return nil, err
	}

	p.Normalize()
	return p, nil
}

// GetCandidatePool returns every profile in the system with skills attached.
// Excluding the requester is the caller's job.
func (r *ProfileRepository) GetCandidatePool(ctx context.Context) ([]*profile.Profile, error) {
	query := `
		SELECT user_id, name, email, avatar_url, academic_level, major,
			   university, research_interests, project_preferences,
			   availability, desired_role, thesis_phase
		FROM user_profiles
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate pool: %w", err)
	}
	defer rows.Close()

	pool := make([]*profile.Profile, 0)
	byID := make(map[profile.ID]*profile.Profile)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		pool = append(pool, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadSkills(ctx, byID); err != nil {
		return nil, err
	}

	for _, p := range pool {
		p.Normalize()
	}
	return pool, nil
}

// loadSkills attaches skill rows to the given profiles in one query.
func (r *ProfileRepository) loadSkills(ctx context.Context, profiles map[profile.ID]*profile.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id.String())
	}

	query := `
		SELECT user_id, skill_name, skill_category, proficiency_level
		FROM user_skills
		WHERE user_id = ANY($1)
	`

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, name, category string
		var proficiency int
		if err := rows.Scan(&userID, &name, &category, &proficiency); err != nil {
			return fmt.Errorf("failed to scan skill row: %w", err)
		}

		p, ok := profiles[profile.ID(userID)]
		if !ok {
			continue
		}
		p.AddSkill(profile.Skill{
			Name:     name,
			Category: profile.SkillCategory(category),
			Level:    profile.LevelFromProficiency(proficiency),
		})
	}
	return rows.Err()
}

// rowScanner matches both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProfile maps one user_profiles row into a Profile. Nullable columns
// become safe defaults so the scoring core never sees missing fields.
func scanProfile(row rowScanner) (*profile.Profile, error) {
	var (
		userID, name, email string
		avatarURL           *string
		academicLevel       string
		major, university   *string
		interests           []string
		preferences         []string
		availability        *string
		desiredRole         *string
		thesisPhase         *string
	)

	err := row.Scan(
		&userID,
		&name,
		&email,
		&avatarURL,
		&academicLevel,
		&major,
		&university,
		&interests,
		&preferences,
		&availability,
		&desiredRole,
		&thesisPhase,
	)
	if err != nil {
		return nil, err
	}

	p := &profile.Profile{
		ID:                 profile.ID(userID),
		Name:               name,
		Email:              email,
		AcademicLevel:      profile.AcademicLevel(academicLevel),
		ResearchInterests:  interests,
		ProjectPreferences: preferences,
	}
	if avatarURL != nil {
		p.AvatarURL = *avatarURL
	}
	if major != nil {
		p.Department = *major
	}
	if university != nil {
		p.University = *university
	}
	if availability != nil {
		p.Availability = profile.Availability(*availability)
	}
	if desiredRole != nil {
		p.CollaborationPreference = profile.ParseCollaborationPreference(*desiredRole)
	}
	if thesisPhase != nil {
		p.ThesisPhase = profile.ThesisPhase(*thesisPhase)
	}
	return p, nil
}
