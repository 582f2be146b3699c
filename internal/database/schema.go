// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"fmt"
)

// createTables initializes the community schema. All statements are
// idempotent so startup is safe against an existing database file.
func (db *DB) createTables() error {
	ctx, cancel := db.startupContext()
	defer cancel()

	statements := []string{
		// Dancer profiles. Skill levels run 1-5 per axis, 0 means the
		// dancer has not set that axis. Tags hold dance styles as a
		// comma-separated list.
		`CREATE TABLE IF NOT EXISTS profiles (
			id BIGINT PRIMARY KEY,
			display_name VARCHAR NOT NULL,
			city VARCHAR NOT NULL DEFAULT '',
			country VARCHAR NOT NULL DEFAULT '',
			lead_level INTEGER NOT NULL DEFAULT 0,
			follow_level INTEGER NOT NULL DEFAULT 0,
			tags VARCHAR NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		// Friendship edges are stored once per pair; status 'accepted'
		// makes the relationship a friendship in both directions.
		`CREATE TABLE IF NOT EXISTS relationships (
			subject_id BIGINT NOT NULL,
			other_id BIGINT NOT NULL,
			status VARCHAR NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (subject_id, other_id)
		)`,

		// One-directional follow edges.
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id BIGINT NOT NULL,
			followee_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (follower_id, followee_id)
		)`,

		// Events. The first entry in styles is the primary style.
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY,
			title VARCHAR NOT NULL,
			city VARCHAR NOT NULL DEFAULT '',
			country VARCHAR NOT NULL DEFAULT '',
			styles VARCHAR NOT NULL DEFAULT '',
			starts_at TIMESTAMP NOT NULL,
			attendee_count INTEGER NOT NULL DEFAULT 0,
			published BOOLEAN NOT NULL DEFAULT false
		)`,

		`CREATE TABLE IF NOT EXISTS event_rsvps (
			profile_id BIGINT NOT NULL,
			event_id BIGINT NOT NULL,
			status VARCHAR NOT NULL DEFAULT 'going',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (profile_id, event_id)
		)`,

		`CREATE TABLE IF NOT EXISTS instructors (
			id BIGINT PRIMARY KEY,
			display_name VARCHAR NOT NULL,
			city VARCHAR NOT NULL DEFAULT '',
			country VARCHAR NOT NULL DEFAULT '',
			specialties VARCHAR NOT NULL DEFAULT '',
			years_teaching INTEGER NOT NULL DEFAULT 0,
			avg_rating DOUBLE NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT true
		)`,

		`CREATE TABLE IF NOT EXISTS groups (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			profile_id BIGINT NOT NULL,
			group_id BIGINT NOT NULL,
			joined_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (profile_id, group_id)
		)`,

		// Posts. group_id 0 means the post is not in a group.
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY,
			author_id BIGINT NOT NULL,
			group_id BIGINT NOT NULL DEFAULT 0,
			body VARCHAR NOT NULL DEFAULT '',
			like_count INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		// Login accounts, linked to a profile.
		`CREATE TABLE IF NOT EXISTS accounts (
			username VARCHAR PRIMARY KEY,
			password_hash VARCHAR NOT NULL,
			profile_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		// Indexes for the batched recommendation queries.
		`CREATE INDEX IF NOT EXISTS idx_relationships_other ON relationships(other_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_follower ON follows(follower_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rsvps_event ON event_rsvps(event_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_group_members_profile ON group_members(profile_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	return nil
}
