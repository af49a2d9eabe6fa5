// Package postgres implements the PostgreSQL persistence layer for
// CampusConnect Collab Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROFILES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create user profile tables
-- Version: 001

-- User profiles. In a full campus deployment these rows are written by
-- the account service; this subsystem only reads them.
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    avatar_url TEXT,
    academic_level VARCHAR(20) NOT NULL DEFAULT 'Undergraduate',
    major VARCHAR(100),
    university VARCHAR(100),
    research_interests TEXT[] NOT NULL DEFAULT '{}',
    project_preferences TEXT[] NOT NULL DEFAULT '{}',
    availability VARCHAR(20),
    desired_role VARCHAR(50),
    thesis_phase VARCHAR(20),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_academic_level CHECK (academic_level IN ('Undergraduate', 'Graduate'))
);

-- Per-user skill rows with a numeric proficiency 0-100. The level label
-- (Intermediate/Advanced/Expert) is derived at read time, not stored.
CREATE TABLE IF NOT EXISTS user_skills (
    user_id UUID NOT NULL REFERENCES user_profiles(user_id) ON DELETE CASCADE,
    skill_name VARCHAR(100) NOT NULL,
    skill_category VARCHAR(20) NOT NULL DEFAULT 'Technical',
    proficiency_level INTEGER NOT NULL DEFAULT 50,

    PRIMARY KEY (user_id, skill_name),
    CONSTRAINT valid_proficiency CHECK (proficiency_level >= 0 AND proficiency_level <= 100),
    CONSTRAINT valid_category CHECK (skill_category IN ('Technical', 'Domain', 'Soft', 'Tool'))
);

CREATE INDEX IF NOT EXISTS idx_user_skills_user_id ON user_skills(user_id);
CREATE INDEX IF NOT EXISTS idx_user_profiles_academic_level ON user_profiles(academic_level);
`

const migration001Down = `
DROP TABLE IF EXISTS user_skills;
DROP TABLE IF EXISTS user_profiles;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE CHAT
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create chat session tables
-- Version: 002

CREATE TABLE IF NOT EXISTS chat_sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    type VARCHAR(10) NOT NULL DEFAULT 'direct',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_session_type CHECK (type IN ('direct', 'group'))
);

-- Participant set is write-once at session creation.
CREATE TABLE IF NOT EXISTS chat_participants (
    session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES user_profiles(user_id) ON DELETE CASCADE,
    joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (session_id, user_id)
);

-- Append-only message log. is_read transitions false -> true only.
-- seq is the insertion order; created_at alone cannot break ties.
CREATE TABLE IF NOT EXISTS messages (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    seq BIGSERIAL NOT NULL UNIQUE,
    session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
    sender_id UUID NOT NULL REFERENCES user_profiles(user_id),
    content TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    is_read BOOLEAN NOT NULL DEFAULT FALSE
);

-- Shared file metadata; the file content lives in external storage.
CREATE TABLE IF NOT EXISTS chat_files (
    message_id UUID PRIMARY KEY REFERENCES messages(id) ON DELETE CASCADE,
    file_name VARCHAR(255) NOT NULL,
    content_type VARCHAR(100),
    size_bytes BIGINT NOT NULL DEFAULT 0,
    file_url TEXT NOT NULL,

    CONSTRAINT valid_size CHECK (size_bytes >= 0)
);

CREATE INDEX IF NOT EXISTS idx_chat_participants_user_id ON chat_participants(user_id);
CREATE INDEX IF NOT EXISTS idx_messages_session_seq ON messages(session_id, seq);
CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(session_id, sender_id) WHERE is_read = FALSE;
CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated_at ON chat_sessions(updated_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS chat_files;
DROP TABLE IF EXISTS messages;
DROP TABLE IF EXISTS chat_participants;
DROP TABLE IF EXISTS chat_sessions;
`
