// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stepsocial/stepsocial/internal/database/query"
	"github.com/stepsocial/stepsocial/internal/metrics"
	"github.com/stepsocial/stepsocial/internal/recommend"
)

// Provider implements recommend.DataProvider on top of the DuckDB
// store. Every factor context lookup is a single batched query over the
// full candidate-id set; the engine never asks for per-candidate reads.
// All reads go through a circuit breaker so a persistently failing
// database degrades to fast errors instead of piling up slow queries.
type Provider struct {
	db      *DB
	breaker *storeBreaker
}

// Compile-time interface check.
var _ recommend.DataProvider = (*Provider)(nil)

// NewProvider wraps the database in the recommendation data provider.
func NewProvider(db *DB) *Provider {
	return &Provider{
		db:      db,
		breaker: newStoreBreaker("recommend-store"),
	}
}

// Subject returns the requesting profile.
func (p *Provider) Subject(ctx context.Context, id int64) (*recommend.Profile, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		row := p.db.conn.QueryRowContext(ctx, `
			SELECT id, display_name, city, country, lead_level, follow_level, tags, active
			FROM profiles
			WHERE id = ?`, id)

		var profile recommend.Profile
		var tags string
		if err := row.Scan(&profile.ID, &profile.DisplayName, &profile.City, &profile.Country,
			&profile.LeadLevel, &profile.FollowLevel, &tags, &profile.Active); err != nil {
			return nil, fmt.Errorf("failed to load profile %d: %w", id, err)
		}
		profile.Tags = splitTags(tags)
		return &profile, nil
	})
	metrics.ObserveDBQuery("subject", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[*recommend.Profile](result)
}

// PeopleCandidates returns active profiles that are not the subject and
// have no accepted relationship with the subject in either direction.
func (p *Provider) PeopleCandidates(ctx context.Context, subjectID int64, limit int) ([]recommend.Profile, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		rows, err := p.db.conn.QueryContext(ctx, `
			SELECT pr.id, pr.display_name, pr.city, pr.country,
			       pr.lead_level, pr.follow_level, pr.tags, pr.active
			FROM profiles pr
			WHERE pr.active
			  AND pr.id <> ?
			  AND NOT EXISTS (
			      SELECT 1 FROM relationships r
			      WHERE r.status = 'accepted'
			        AND ((r.subject_id = ? AND r.other_id = pr.id)
			          OR (r.subject_id = pr.id AND r.other_id = ?))
			  )
			ORDER BY pr.id
			LIMIT ?`, subjectID, subjectID, subjectID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to query people candidates: %w", err)
		}
		defer rows.Close()

		var profiles []recommend.Profile
		for rows.Next() {
			var profile recommend.Profile
			var tags string
			if err := rows.Scan(&profile.ID, &profile.DisplayName, &profile.City, &profile.Country,
				&profile.LeadLevel, &profile.FollowLevel, &tags, &profile.Active); err != nil {
				return nil, fmt.Errorf("failed to scan profile: %w", err)
			}
			profile.Tags = splitTags(tags)
			profiles = append(profiles, profile)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("people candidate iteration failed: %w", err)
		}
		return profiles, nil
	})
	metrics.ObserveDBQuery("people_candidates", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[[]recommend.Profile](result)
}

// MutualFriendCounts counts, per candidate, the accepted connections
// shared with the subject. One query over the whole candidate set.
func (p *Provider) MutualFriendCounts(ctx context.Context, subjectID int64, candidateIDs []int64) (map[int64]int, error) {
	if len(candidateIDs) == 0 {
		return map[int64]int{}, nil
	}
	start := time.Now()

	// Normalize the single-row-per-pair storage into directed edges,
	// then intersect the subject's friend set with each candidate's.
	sqlQuery := fmt.Sprintf(`
		WITH edges AS (
			SELECT subject_id AS a, other_id AS b FROM relationships WHERE status = 'accepted'
			UNION ALL
			SELECT other_id AS a, subject_id AS b FROM relationships WHERE status = 'accepted'
		),
		subject_friends AS (
			SELECT b AS friend_id FROM edges WHERE a = ?
		)
		SELECT e.a, COUNT(*)
		FROM edges e
		JOIN subject_friends sf ON sf.friend_id = e.b
		WHERE e.a IN (%s)
		GROUP BY e.a`, query.Placeholders(len(candidateIDs)))

	result, err := p.breaker.execute(func() (interface{}, error) {
		return p.scanCounts(ctx, sqlQuery, query.Int64Args(candidateIDs, subjectID))
	})
	metrics.ObserveDBQuery("mutual_friend_counts", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[map[int64]int](result)
}

// SharedEventCounts counts, per candidate, the events both the subject
// and the candidate went to.
func (p *Provider) SharedEventCounts(ctx context.Context, subjectID int64, candidateIDs []int64) (map[int64]int, error) {
	if len(candidateIDs) == 0 {
		return map[int64]int{}, nil
	}
	start := time.Now()

	sqlQuery := fmt.Sprintf(`
		SELECT theirs.profile_id, COUNT(*)
		FROM event_rsvps mine
		JOIN event_rsvps theirs ON theirs.event_id = mine.event_id
		WHERE mine.profile_id = ? AND mine.status = 'going'
		  AND theirs.status = 'going'
		  AND theirs.profile_id IN (%s)
		GROUP BY theirs.profile_id`, query.Placeholders(len(candidateIDs)))

	result, err := p.breaker.execute(func() (interface{}, error) {
		return p.scanCounts(ctx, sqlQuery, query.Int64Args(candidateIDs, subjectID))
	})
	metrics.ObserveDBQuery("shared_event_counts", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[map[int64]int](result)
}

// EventCandidates returns published future events inside the window
// that the subject has not already committed to.
func (p *Provider) EventCandidates(ctx context.Context, subjectID int64, until time.Time, limit int) ([]recommend.Event, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		rows, err := p.db.conn.QueryContext(ctx, `
			SELECT e.id, e.title, e.city, e.country, e.styles,
			       e.starts_at, e.attendee_count, e.published
			FROM events e
			WHERE e.published
			  AND e.starts_at > current_timestamp
			  AND e.starts_at <= ?
			  AND NOT EXISTS (
			      SELECT 1 FROM event_rsvps r
			      WHERE r.event_id = e.id AND r.profile_id = ?
			  )
			ORDER BY e.id
			LIMIT ?`, until, subjectID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to query event candidates: %w", err)
		}
		defer rows.Close()

		var events []recommend.Event
		for rows.Next() {
			var event recommend.Event
			var styles string
			if err := rows.Scan(&event.ID, &event.Title, &event.City, &event.Country,
				&styles, &event.StartsAt, &event.AttendeeCount, &event.Published); err != nil {
				return nil, fmt.Errorf("failed to scan event: %w", err)
			}
			event.Styles = splitTags(styles)
			events = append(events, event)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("event candidate iteration failed: %w", err)
		}
		return events, nil
	})
	metrics.ObserveDBQuery("event_candidates", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[[]recommend.Event](result)
}

// FriendAttendanceCounts counts, per event, how many of the subject's
// accepted connections are going.
func (p *Provider) FriendAttendanceCounts(ctx context.Context, subjectID int64, eventIDs []int64) (map[int64]int, error) {
	if len(eventIDs) == 0 {
		return map[int64]int{}, nil
	}
	start := time.Now()

	sqlQuery := fmt.Sprintf(`
		WITH subject_friends AS (
			SELECT other_id AS friend_id FROM relationships WHERE status = 'accepted' AND subject_id = ?
			UNION ALL
			SELECT subject_id AS friend_id FROM relationships WHERE status = 'accepted' AND other_id = ?
		)
		SELECT r.event_id, COUNT(*)
		FROM event_rsvps r
		JOIN subject_friends sf ON sf.friend_id = r.profile_id
		WHERE r.status = 'going'
		  AND r.event_id IN (%s)
		GROUP BY r.event_id`, query.Placeholders(len(eventIDs)))

	result, err := p.breaker.execute(func() (interface{}, error) {
		return p.scanCounts(ctx, sqlQuery, query.Int64Args(eventIDs, subjectID, subjectID))
	})
	metrics.ObserveDBQuery("friend_attendance_counts", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[map[int64]int](result)
}

// TopEventStyles returns the subject's most-attended primary event
// styles, most frequent first. Ties break alphabetically so the result
// is stable.
func (p *Provider) TopEventStyles(ctx context.Context, subjectID int64, n int) ([]string, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		// DuckDB lists are 1-indexed; element 1 of the styles list is
		// the event's primary style.
		rows, err := p.db.conn.QueryContext(ctx, `
			SELECT trim(string_split(e.styles, ',')[1]) AS style, COUNT(*) AS cnt
			FROM event_rsvps r
			JOIN events e ON e.id = r.event_id
			WHERE r.profile_id = ? AND r.status = 'going'
			GROUP BY style
			HAVING style <> ''
			ORDER BY cnt DESC, style
			LIMIT ?`, subjectID, n)
		if err != nil {
			return nil, fmt.Errorf("failed to query top event styles: %w", err)
		}
		defer rows.Close()

		var styles []string
		for rows.Next() {
			var style string
			var count int
			if err := rows.Scan(&style, &count); err != nil {
				return nil, fmt.Errorf("failed to scan style: %w", err)
			}
			styles = append(styles, style)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("top style iteration failed: %w", err)
		}
		return styles, nil
	})
	metrics.ObserveDBQuery("top_event_styles", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[[]string](result)
}

// InstructorCandidates returns active instructor profiles.
func (p *Provider) InstructorCandidates(ctx context.Context, limit int) ([]recommend.Instructor, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		rows, err := p.db.conn.QueryContext(ctx, `
			SELECT id, display_name, city, country, specialties,
			       years_teaching, avg_rating, review_count, active
			FROM instructors
			WHERE active
			ORDER BY id
			LIMIT ?`, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to query instructor candidates: %w", err)
		}
		defer rows.Close()

		var instructors []recommend.Instructor
		for rows.Next() {
			var inst recommend.Instructor
			var specialties string
			if err := rows.Scan(&inst.ID, &inst.DisplayName, &inst.City, &inst.Country,
				&specialties, &inst.YearsTeaching, &inst.AvgRating, &inst.ReviewCount, &inst.Active); err != nil {
				return nil, fmt.Errorf("failed to scan instructor: %w", err)
			}
			inst.Specialties = splitTags(specialties)
			instructors = append(instructors, inst)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("instructor candidate iteration failed: %w", err)
		}
		return instructors, nil
	})
	metrics.ObserveDBQuery("instructor_candidates", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[[]recommend.Instructor](result)
}

// ContentCandidates returns recent posts not authored by the subject.
func (p *Provider) ContentCandidates(ctx context.Context, subjectID int64, since time.Time, limit int) ([]recommend.Post, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		rows, err := p.db.conn.QueryContext(ctx, `
			SELECT id, author_id, group_id, created_at, like_count, comment_count
			FROM posts
			WHERE created_at >= ?
			  AND author_id <> ?
			ORDER BY id
			LIMIT ?`, since, subjectID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to query content candidates: %w", err)
		}
		defer rows.Close()

		var posts []recommend.Post
		for rows.Next() {
			var post recommend.Post
			if err := rows.Scan(&post.ID, &post.AuthorID, &post.GroupID,
				&post.CreatedAt, &post.LikeCount, &post.CommentCount); err != nil {
				return nil, fmt.Errorf("failed to scan post: %w", err)
			}
			posts = append(posts, post)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("content candidate iteration failed: %w", err)
		}
		return posts, nil
	})
	metrics.ObserveDBQuery("content_candidates", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[[]recommend.Post](result)
}

// FriendIDs returns the subject's accepted connections.
func (p *Provider) FriendIDs(ctx context.Context, subjectID int64) (recommend.IDSet, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		return p.scanIDSet(ctx, `
			SELECT other_id FROM relationships WHERE status = 'accepted' AND subject_id = ?
			UNION
			SELECT subject_id FROM relationships WHERE status = 'accepted' AND other_id = ?`,
			subjectID, subjectID)
	})
	metrics.ObserveDBQuery("friend_ids", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[recommend.IDSet](result)
}

// FollowingIDs returns the profiles the subject follows.
func (p *Provider) FollowingIDs(ctx context.Context, subjectID int64) (recommend.IDSet, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		return p.scanIDSet(ctx, `SELECT followee_id FROM follows WHERE follower_id = ?`, subjectID)
	})
	metrics.ObserveDBQuery("following_ids", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[recommend.IDSet](result)
}

// GroupIDs returns the groups the subject belongs to.
func (p *Provider) GroupIDs(ctx context.Context, subjectID int64) (recommend.IDSet, error) {
	start := time.Now()

	result, err := p.breaker.execute(func() (interface{}, error) {
		return p.scanIDSet(ctx, `SELECT group_id FROM group_members WHERE profile_id = ?`, subjectID)
	})
	metrics.ObserveDBQuery("group_ids", start, err)
	if err != nil {
		return nil, err
	}
	return castResult[recommend.IDSet](result)
}

// scanCounts runs a two-column (id, count) query into a map.
func (p *Provider) scanCounts(ctx context.Context, sqlQuery string, args []interface{}) (map[int64]int, error) {
	rows, err := p.db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count iteration failed: %w", err)
	}
	return counts, nil
}

// scanIDSet runs a single-column id query into an IDSet.
func (p *Provider) scanIDSet(ctx context.Context, sqlQuery string, args ...interface{}) (recommend.IDSet, error) {
	rows, err := p.db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("id set query failed: %w", err)
	}
	defer rows.Close()

	ids := make(recommend.IDSet)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("id set iteration failed: %w", err)
	}
	return ids, nil
}

// splitTags parses a comma-separated tag column into a slice, trimming
// whitespace and dropping empties.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// joinTags is the inverse of splitTags, used by seeding and tests.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}
