// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stepsocial/stepsocial/internal/logging"
)

// seedDemoData populates an empty database with a small dance
// community so the service is explorable out of the box. Seeding is
// skipped when profiles already exist.
func (db *DB) seedDemoData() error {
	ctx, cancel := db.startupContext()
	defer cancel()

	var profileCount int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&profileCount); err != nil {
		return fmt.Errorf("failed to check for existing profiles: %w", err)
	}
	if profileCount > 0 {
		return nil
	}

	now := time.Now().UTC()

	profiles := []struct {
		id                     int64
		name, city, country    string
		leadLevel, followLevel int
		tags                   string
	}{
		{1, "Ana Reyes", "Berlin", "Germany", 3, 4, "salsa,bachata"},
		{2, "Marco Duarte", "Berlin", "Germany", 4, 2, "salsa,kizomba"},
		{3, "Lena Hoffmann", "Hamburg", "Germany", 2, 3, "bachata,zouk"},
		{4, "Tomas Silva", "Lisbon", "Portugal", 5, 5, "kizomba,semba"},
		{5, "Ines Costa", "Lisbon", "Portugal", 0, 0, "forro"},
		{6, "Yuki Tanaka", "Berlin", "Germany", 3, 3, "salsa,bachata,zouk"},
	}
	for _, p := range profiles {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO profiles (id, display_name, city, country, lead_level, follow_level, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.id, p.name, p.city, p.country, p.leadLevel, p.followLevel, p.tags); err != nil {
			return fmt.Errorf("failed to seed profile %d: %w", p.id, err)
		}
	}

	relationships := [][2]int64{{1, 2}, {1, 3}, {2, 4}, {3, 6}}
	for _, r := range relationships {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO relationships (subject_id, other_id, status) VALUES (?, ?, 'accepted')`,
			r[0], r[1]); err != nil {
			return fmt.Errorf("failed to seed relationship: %w", err)
		}
	}

	follows := [][2]int64{{1, 4}, {1, 6}, {2, 1}, {3, 1}}
	for _, f := range follows {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO follows (follower_id, followee_id) VALUES (?, ?)`, f[0], f[1]); err != nil {
			return fmt.Errorf("failed to seed follow: %w", err)
		}
	}

	events := []struct {
		id                   int64
		title, city, country string
		styles               string
		startsAt             time.Time
		attendees            int
	}{
		{1, "Berlin Salsa Social", "Berlin", "Germany", "salsa,bachata", now.AddDate(0, 0, 7), 24},
		{2, "Kizomba Night", "Lisbon", "Portugal", "kizomba", now.AddDate(0, 0, 14), 40},
		{3, "Bachata Workshop Weekend", "Hamburg", "Germany", "bachata", now.AddDate(0, 0, 21), 12},
		{4, "Zouk Flow Lab", "Berlin", "Germany", "zouk,bachata", now.AddDate(0, 0, 30), 8},
	}
	for _, e := range events {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO events (id, title, city, country, styles, starts_at, attendee_count, published)
			VALUES (?, ?, ?, ?, ?, ?, ?, true)`,
			e.id, e.title, e.city, e.country, e.styles, e.startsAt, e.attendees); err != nil {
			return fmt.Errorf("failed to seed event %d: %w", e.id, err)
		}
	}

	rsvps := []struct {
		profileID, eventID int64
	}{{2, 1}, {3, 3}, {4, 2}, {6, 1}, {6, 4}}
	for _, r := range rsvps {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (?, ?, 'going')`,
			r.profileID, r.eventID); err != nil {
			return fmt.Errorf("failed to seed rsvp: %w", err)
		}
	}

	instructors := []struct {
		id                  int64
		name, city, country string
		specialties         string
		years               int
		rating              float64
		reviews             int
	}{
		{1, "Carla Mendes", "Berlin", "Germany", "salsa,bachata", 12, 4.8, 31},
		{2, "Diego Fuentes", "Lisbon", "Portugal", "kizomba,semba", 7, 4.5, 18},
		{3, "Mia Keller", "Hamburg", "Germany", "zouk", 3, 4.2, 6},
	}
	for _, i := range instructors {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO instructors (id, display_name, city, country, specialties, years_teaching, avg_rating, review_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i.id, i.name, i.city, i.country, i.specialties, i.years, i.rating, i.reviews); err != nil {
			return fmt.Errorf("failed to seed instructor %d: %w", i.id, err)
		}
	}

	if _, err := db.conn.ExecContext(ctx, `INSERT INTO groups (id, name) VALUES (1, 'Berlin Social Dancers')`); err != nil {
		return fmt.Errorf("failed to seed group: %w", err)
	}
	for _, profileID := range []int64{1, 2, 6} {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO group_members (profile_id, group_id) VALUES (?, 1)`, profileID); err != nil {
			return fmt.Errorf("failed to seed group member: %w", err)
		}
	}

	posts := []struct {
		id, authorID, groupID int64
		body                  string
		likes, comments       int
		createdAt             time.Time
	}{
		{1, 2, 1, "Great turnout at the social last night!", 14, 3, now.Add(-2 * time.Hour)},
		{2, 4, 0, "New kizomba playlist is up.", 8, 1, now.Add(-26 * time.Hour)},
		{3, 6, 1, "Looking for a practice partner in Berlin.", 3, 5, now.Add(-72 * time.Hour)},
	}
	for _, p := range posts {
		if _, err := db.conn.ExecContext(ctx, `
			INSERT INTO posts (id, author_id, group_id, body, like_count, comment_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.id, p.authorID, p.groupID, p.body, p.likes, p.comments, p.createdAt); err != nil {
			return fmt.Errorf("failed to seed post %d: %w", p.id, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO accounts (username, password_hash, profile_id) VALUES ('demo', ?, 1)`,
		string(hash)); err != nil {
		return fmt.Errorf("failed to seed demo account: %w", err)
	}

	logging.Info().Int("profiles", len(profiles)).Msg("Seeded demo community data")
	return nil
}
