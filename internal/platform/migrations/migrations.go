// Package migrations applies the schema for the PostgreSQL backend.
// Statements are idempotent so Apply can run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		zip_code TEXT NOT NULL DEFAULT '',
		current_job TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_assessments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		current_occupation TEXT NOT NULL,
		interested_sectors TEXT[] NOT NULL DEFAULT '{}',
		skill_level TEXT,
		education_level TEXT,
		years_experience INTEGER,
		willing_to_relocate BOOLEAN,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_assessments_user_created
		ON user_assessments (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS saved_opportunities (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		job_title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL,
		salary_range TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, job_id)
	)`,
	`CREATE TABLE IF NOT EXISTS job_applications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		job_title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL,
		salary_range TEXT,
		certification_required TEXT,
		status TEXT NOT NULL DEFAULT 'submitted',
		applied_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_applications_user_created
		ON job_applications (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS grant_applications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		ssn_last_four TEXT,
		annual_income TEXT,
		grant_amount INTEGER NOT NULL DEFAULT 4500,
		grant_type TEXT NOT NULL DEFAULT 'chips_workforce',
		status TEXT NOT NULL DEFAULT 'submitted',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_grant_applications_user_created
		ON grant_applications (user_id, created_at DESC)`,
}

// Apply runs every schema statement in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}
