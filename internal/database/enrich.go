// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/stepsocial/stepsocial/internal/database/query"
	"github.com/stepsocial/stepsocial/internal/metrics"
)

// Enrichment records carry the display fields the API layer merges with
// engine scores. Each lookup is one IN query over the ranked id set;
// results come back as a map so the caller can preserve ranked order.

// ProfileRecord is the display form of a member profile.
type ProfileRecord struct {
	ID          int64    `json:"id"`
	DisplayName string   `json:"display_name"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
	LeadLevel   int      `json:"lead_level,omitempty"`
	FollowLevel int      `json:"follow_level,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// EventRecord is the display form of an event.
type EventRecord struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	City          string    `json:"city,omitempty"`
	Country       string    `json:"country,omitempty"`
	Styles        []string  `json:"styles,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	AttendeeCount int       `json:"attendee_count"`
}

// InstructorRecord is the display form of an instructor.
type InstructorRecord struct {
	ID            int64    `json:"id"`
	DisplayName   string   `json:"display_name"`
	City          string   `json:"city,omitempty"`
	Country       string   `json:"country,omitempty"`
	Specialties   []string `json:"specialties,omitempty"`
	YearsTeaching int      `json:"years_teaching"`
	AvgRating     float64  `json:"avg_rating"`
	ReviewCount   int      `json:"review_count"`
}

// PostRecord is the display form of a post, including the resolved
// author name.
type PostRecord struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"author_id"`
	AuthorName   string    `json:"author"`
	GroupID      int64     `json:"group_id,omitempty"`
	Body         string    `json:"body"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetProfilesByIDs loads display profiles for the given ids.
func (db *DB) GetProfilesByIDs(ctx context.Context, ids []int64) (map[int64]ProfileRecord, error) {
	if len(ids) == 0 {
		return map[int64]ProfileRecord{}, nil
	}
	start := time.Now()

	sqlQuery := fmt.Sprintf(`
		SELECT id, display_name, city, country, lead_level, follow_level, tags
		FROM profiles
		WHERE id IN (%s)`, query.Placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, sqlQuery, query.Int64Args(ids)...)
	metrics.ObserveDBQuery("enrich_profiles", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]ProfileRecord, len(ids))
	for rows.Next() {
		var rec ProfileRecord
		var tags string
		if err := rows.Scan(&rec.ID, &rec.DisplayName, &rec.City, &rec.Country,
			&rec.LeadLevel, &rec.FollowLevel, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan profile record: %w", err)
		}
		rec.Tags = splitTags(tags)
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile record iteration failed: %w", err)
	}
	return records, nil
}

// GetEventsByIDs loads display events for the given ids.
func (db *DB) GetEventsByIDs(ctx context.Context, ids []int64) (map[int64]EventRecord, error) {
	if len(ids) == 0 {
		return map[int64]EventRecord{}, nil
	}
	start := time.Now()

	sqlQuery := fmt.Sprintf(`
		SELECT id, title, city, country, styles, starts_at, attendee_count
		FROM events
		WHERE id IN (%s)`, query.Placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, sqlQuery, query.Int64Args(ids)...)
	metrics.ObserveDBQuery("enrich_events", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]EventRecord, len(ids))
	for rows.Next() {
		var rec EventRecord
		var styles string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.City, &rec.Country,
			&styles, &rec.StartsAt, &rec.AttendeeCount); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		rec.Styles = splitTags(styles)
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event record iteration failed: %w", err)
	}
	return records, nil
}

// GetInstructorsByIDs loads display instructors for the given ids.
func (db *DB) GetInstructorsByIDs(ctx context.Context, ids []int64) (map[int64]InstructorRecord, error) {
	if len(ids) == 0 {
		return map[int64]InstructorRecord{}, nil
	}
	start := time.Now()

	sqlQuery := fmt.Sprintf(`
		SELECT id, display_name, city, country, specialties, years_teaching, avg_rating, review_count
		FROM instructors
		WHERE id IN (%s)`, query.Placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, sqlQuery, query.Int64Args(ids)...)
	metrics.ObserveDBQuery("enrich_instructors", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load instructors: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]InstructorRecord, len(ids))
	for rows.Next() {
		var rec InstructorRecord
		var specialties string
		if err := rows.Scan(&rec.ID, &rec.DisplayName, &rec.City, &rec.Country,
			&specialties, &rec.YearsTeaching, &rec.AvgRating, &rec.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan instructor record: %w", err)
		}
		rec.Specialties = splitTags(specialties)
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("instructor record iteration failed: %w", err)
	}
	return records, nil
}

// GetPostsByIDs loads display posts for the given ids, resolving the
// author name in the same query.
func (db *DB) GetPostsByIDs(ctx context.Context, ids []int64) (map[int64]PostRecord, error) {
	if len(ids) == 0 {
		return map[int64]PostRecord{}, nil
	}
	start := time.Now()

	sqlQuery := fmt.Sprintf(`
		SELECT p.id, p.author_id, COALESCE(pr.display_name, ''),
		       p.group_id, p.body, p.like_count, p.comment_count, p.created_at
		FROM posts p
		LEFT JOIN profiles pr ON pr.id = p.author_id
		WHERE p.id IN (%s)`, query.Placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, sqlQuery, query.Int64Args(ids)...)
	metrics.ObserveDBQuery("enrich_posts", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]PostRecord, len(ids))
	for rows.Next() {
		var rec PostRecord
		if err := rows.Scan(&rec.ID, &rec.AuthorID, &rec.AuthorName,
			&rec.GroupID, &rec.Body, &rec.LikeCount, &rec.CommentCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post record: %w", err)
		}
		records[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post record iteration failed: %w", err)
	}
	return records, nil
}
