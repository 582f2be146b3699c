// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stepsocial/stepsocial/internal/config"
)

// newTestDB opens an in-memory database with the schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		MaxMemory:      "256MB",
		Threads:        2,
		StartupTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func mustExec(t *testing.T, db *DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.conn.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v\nquery: %s", err, query)
	}
}

func insertProfile(t *testing.T, db *DB, id int64, name, city, country string, lead, follow int, tags string) {
	t.Helper()
	mustExec(t, db, `
		INSERT INTO profiles (id, display_name, city, country, lead_level, follow_level, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, id, name, city, country, lead, follow, tags)
}

func insertFriendship(t *testing.T, db *DB, a, b int64) {
	t.Helper()
	mustExec(t, db, `INSERT INTO relationships (subject_id, other_id, status) VALUES (?, ?, 'accepted')`, a, b)
}

func TestPeopleCandidatesExcludesSelfAndFriends(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	insertProfile(t, db, 1, "Subject", "Berlin", "Germany", 3, 3, "salsa")
	insertProfile(t, db, 2, "Friend", "Berlin", "Germany", 3, 3, "salsa")
	insertProfile(t, db, 3, "ReverseFriend", "Berlin", "Germany", 3, 3, "salsa")
	insertProfile(t, db, 4, "Stranger", "Berlin", "Germany", 3, 3, "salsa")
	insertProfile(t, db, 5, "Pending", "Berlin", "Germany", 3, 3, "salsa")
	insertProfile(t, db, 6, "Inactive", "Berlin", "Germany", 3, 3, "salsa")

	insertFriendship(t, db, 1, 2)
	insertFriendship(t, db, 3, 1)
	mustExec(t, db, `INSERT INTO relationships (subject_id, other_id, status) VALUES (1, 5, 'pending')`)
	mustExec(t, db, `UPDATE profiles SET active = false WHERE id = 6`)

	candidates, err := p.PeopleCandidates(context.Background(), 1, 150)
	if err != nil {
		t.Fatalf("PeopleCandidates failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(candidates), candidates)
	}
	// Pending relationships are not exclusions; order is ascending id.
	if candidates[0].ID != 4 || candidates[1].ID != 5 {
		t.Errorf("got candidate ids [%d, %d], want [4, 5]", candidates[0].ID, candidates[1].ID)
	}
	if got := candidates[0].Tags; len(got) != 1 || got[0] != "salsa" {
		t.Errorf("tags not parsed: %v", got)
	}
}

func TestPeopleCandidatesRespectsLimit(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	insertProfile(t, db, 1, "Subject", "", "", 0, 0, "")
	for id := int64(2); id <= 10; id++ {
		insertProfile(t, db, id, fmt.Sprintf("Dancer %d", id), "", "", 0, 0, "")
	}

	candidates, err := p.PeopleCandidates(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("PeopleCandidates failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}
	for i, want := range []int64{2, 3, 4} {
		if candidates[i].ID != want {
			t.Errorf("candidates[%d].ID = %d, want %d", i, candidates[i].ID, want)
		}
	}
}

func TestMutualFriendCounts(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	for id := int64(1); id <= 6; id++ {
		insertProfile(t, db, id, fmt.Sprintf("Dancer %d", id), "", "", 0, 0, "")
	}
	// Subject 1 is friends with 2 and 3 (one edge in each direction).
	insertFriendship(t, db, 1, 2)
	insertFriendship(t, db, 3, 1)
	// Candidate 4 shares both; candidate 5 shares only 2; candidate 6
	// shares none.
	insertFriendship(t, db, 4, 2)
	insertFriendship(t, db, 3, 4)
	insertFriendship(t, db, 2, 5)
	insertFriendship(t, db, 5, 6)

	counts, err := p.MutualFriendCounts(context.Background(), 1, []int64{4, 5, 6})
	if err != nil {
		t.Fatalf("MutualFriendCounts failed: %v", err)
	}

	if counts[4] != 2 {
		t.Errorf("counts[4] = %d, want 2", counts[4])
	}
	if counts[5] != 1 {
		t.Errorf("counts[5] = %d, want 1", counts[5])
	}
	if _, ok := counts[6]; ok {
		t.Errorf("candidate 6 should be absent from counts, got %d", counts[6])
	}
}

func TestSharedEventCounts(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	past := time.Now().Add(-24 * time.Hour)
	for id := int64(1); id <= 3; id++ {
		mustExec(t, db, `
			INSERT INTO events (id, title, starts_at, published) VALUES (?, ?, ?, true)`,
			id, fmt.Sprintf("Event %d", id), past)
	}
	rsvps := []struct{ profile, event int64 }{
		{1, 1}, {1, 2},
		{2, 1}, {2, 2},
		{3, 2},
	}
	for _, r := range rsvps {
		mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (?, ?, 'going')`, r.profile, r.event)
	}
	// Interested does not count as shared attendance.
	mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (3, 1, 'interested')`)

	counts, err := p.SharedEventCounts(context.Background(), 1, []int64{2, 3})
	if err != nil {
		t.Fatalf("SharedEventCounts failed: %v", err)
	}
	if counts[2] != 2 {
		t.Errorf("counts[2] = %d, want 2", counts[2])
	}
	if counts[3] != 1 {
		t.Errorf("counts[3] = %d, want 1", counts[3])
	}
}

func TestEventCandidatesWindowAndExclusions(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	now := time.Now()
	events := []struct {
		id        int64
		startsAt  time.Time
		published bool
	}{
		{1, now.Add(-time.Hour), true},           // past
		{2, now.Add(48 * time.Hour), true},       // in window
		{3, now.Add(48 * time.Hour), false},      // unpublished
		{4, now.AddDate(0, 0, 120), true},        // beyond window
		{5, now.Add(72 * time.Hour), true},       // already committed
		{6, now.Add(24 * time.Hour), true},       // in window
	}
	for _, e := range events {
		mustExec(t, db, `
			INSERT INTO events (id, title, starts_at, published) VALUES (?, ?, ?, ?)`,
			e.id, fmt.Sprintf("Event %d", e.id), e.startsAt, e.published)
	}
	mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (9, 5, 'going')`)

	until := now.AddDate(0, 0, 90)
	candidates, err := p.EventCandidates(context.Background(), 9, until, 150)
	if err != nil {
		t.Fatalf("EventCandidates failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(candidates), candidates)
	}
	if candidates[0].ID != 2 || candidates[1].ID != 6 {
		t.Errorf("got event ids [%d, %d], want [2, 6]", candidates[0].ID, candidates[1].ID)
	}
}

func TestFriendAttendanceCounts(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	insertFriendship(t, db, 1, 2)
	insertFriendship(t, db, 3, 1)

	future := time.Now().Add(48 * time.Hour)
	mustExec(t, db, `INSERT INTO events (id, title, starts_at, published) VALUES (1, 'Social', ?, true)`, future)
	mustExec(t, db, `INSERT INTO events (id, title, starts_at, published) VALUES (2, 'Workshop', ?, true)`, future)

	mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (2, 1, 'going')`)
	mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (3, 1, 'going')`)
	// Non-friend and interested rsvps do not count.
	mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (8, 1, 'going')`)
	mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (2, 2, 'interested')`)

	counts, err := p.FriendAttendanceCounts(context.Background(), 1, []int64{1, 2})
	if err != nil {
		t.Fatalf("FriendAttendanceCounts failed: %v", err)
	}
	if counts[1] != 2 {
		t.Errorf("counts[1] = %d, want 2", counts[1])
	}
	if _, ok := counts[2]; ok {
		t.Errorf("event 2 should be absent from counts, got %d", counts[2])
	}
}

func TestTopEventStylesUsesPrimaryStyle(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	past := time.Now().Add(-24 * time.Hour)
	events := []struct {
		id     int64
		styles string
	}{
		{1, "salsa,bachata"},
		{2, "salsa"},
		{3, "bachata,salsa"},
		{4, "zouk"},
		{5, ""},
	}
	for _, e := range events {
		mustExec(t, db, `
			INSERT INTO events (id, title, styles, starts_at, published) VALUES (?, ?, ?, ?, true)`,
			e.id, fmt.Sprintf("Event %d", e.id), e.styles, past)
	}
	for _, eventID := range []int64{1, 2, 3, 4, 5} {
		mustExec(t, db, `INSERT INTO event_rsvps (profile_id, event_id, status) VALUES (1, ?, 'going')`, eventID)
	}

	styles, err := p.TopEventStyles(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("TopEventStyles failed: %v", err)
	}

	// salsa twice as primary, bachata and zouk once each; ties break
	// alphabetically and the untagged event is ignored.
	want := []string{"salsa", "bachata", "zouk"}
	if len(styles) != len(want) {
		t.Fatalf("got %v, want %v", styles, want)
	}
	for i := range want {
		if styles[i] != want[i] {
			t.Errorf("styles[%d] = %q, want %q", i, styles[i], want[i])
		}
	}
}

func TestInstructorCandidatesActiveOnly(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	mustExec(t, db, `
		INSERT INTO instructors (id, display_name, city, country, specialties, years_teaching, avg_rating, review_count, active)
		VALUES (1, 'Carla', 'Berlin', 'Germany', 'salsa,bachata', 12, 4.8, 31, true)`)
	mustExec(t, db, `
		INSERT INTO instructors (id, display_name, active) VALUES (2, 'Retired', false)`)

	instructors, err := p.InstructorCandidates(context.Background(), 150)
	if err != nil {
		t.Fatalf("InstructorCandidates failed: %v", err)
	}
	if len(instructors) != 1 {
		t.Fatalf("got %d instructors, want 1", len(instructors))
	}
	inst := instructors[0]
	if inst.ID != 1 || inst.YearsTeaching != 12 || inst.AvgRating != 4.8 || inst.ReviewCount != 31 {
		t.Errorf("unexpected instructor: %+v", inst)
	}
	if len(inst.Specialties) != 2 {
		t.Errorf("specialties not parsed: %v", inst.Specialties)
	}
}

func TestContentCandidatesWindowAndOwnPosts(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	now := time.Now()
	posts := []struct {
		id, author int64
		createdAt  time.Time
	}{
		{1, 2, now.Add(-time.Hour)},
		{2, 1, now.Add(-time.Hour)},        // own post
		{3, 3, now.AddDate(0, 0, -45)},     // too old
		{4, 4, now.Add(-20 * time.Hour)},
	}
	for _, post := range posts {
		mustExec(t, db, `
			INSERT INTO posts (id, author_id, created_at) VALUES (?, ?, ?)`,
			post.id, post.author, post.createdAt)
	}

	since := now.AddDate(0, 0, -30)
	candidates, err := p.ContentCandidates(context.Background(), 1, since, 150)
	if err != nil {
		t.Fatalf("ContentCandidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d posts, want 2: %+v", len(candidates), candidates)
	}
	if candidates[0].ID != 1 || candidates[1].ID != 4 {
		t.Errorf("got post ids [%d, %d], want [1, 4]", candidates[0].ID, candidates[1].ID)
	}
}

func TestMembershipSets(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)
	ctx := context.Background()

	insertFriendship(t, db, 1, 2)
	insertFriendship(t, db, 3, 1)
	mustExec(t, db, `INSERT INTO relationships (subject_id, other_id, status) VALUES (1, 4, 'pending')`)
	mustExec(t, db, `INSERT INTO follows (follower_id, followee_id) VALUES (1, 5)`)
	mustExec(t, db, `INSERT INTO group_members (profile_id, group_id) VALUES (1, 7)`)

	friends, err := p.FriendIDs(ctx, 1)
	if err != nil {
		t.Fatalf("FriendIDs failed: %v", err)
	}
	if len(friends) != 2 || !friends.Contains(2) || !friends.Contains(3) {
		t.Errorf("friends = %v, want {2, 3}", friends)
	}

	following, err := p.FollowingIDs(ctx, 1)
	if err != nil {
		t.Fatalf("FollowingIDs failed: %v", err)
	}
	if len(following) != 1 || !following.Contains(5) {
		t.Errorf("following = %v, want {5}", following)
	}

	groups, err := p.GroupIDs(ctx, 1)
	if err != nil {
		t.Fatalf("GroupIDs failed: %v", err)
	}
	if len(groups) != 1 || !groups.Contains(7) {
		t.Errorf("groups = %v, want {7}", groups)
	}
}

func TestSubjectNotFound(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	if _, err := p.Subject(context.Background(), 999); err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestEmptyCandidateSetsSkipQueries(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)
	ctx := context.Background()

	counts, err := p.MutualFriendCounts(ctx, 1, nil)
	if err != nil {
		t.Fatalf("MutualFriendCounts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected empty map, got %v", counts)
	}

	counts, err = p.FriendAttendanceCounts(ctx, 1, []int64{})
	if err != nil {
		t.Fatalf("FriendAttendanceCounts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected empty map, got %v", counts)
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"salsa", 1},
		{"salsa,bachata", 2},
		{" salsa , bachata ", 2},
		{",,", 0},
	}
	for _, tt := range tests {
		if got := splitTags(tt.raw); len(got) != tt.want {
			t.Errorf("splitTags(%q) = %v, want %d entries", tt.raw, got, tt.want)
		}
	}
}

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	db, err := New(&config.DatabaseConfig{
		MaxMemory:      "256MB",
		Threads:        2,
		StartupTimeout: 5 * time.Second,
		SeedDemoData:   true,
	})
	if err != nil {
		t.Fatalf("failed to open seeded database: %v", err)
	}
	defer db.Close()

	var before int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&before); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if before == 0 {
		t.Fatal("expected seeded profiles")
	}

	if err := db.seedDemoData(); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	var after int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&after); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if after != before {
		t.Errorf("profile count changed from %d to %d", before, after)
	}
}

func TestRequestReadsUseCallerContext(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db)

	insertProfile(t, db, 1, "Subject", "Berlin", "Germany", 3, 3, "salsa")

	// The startup timeout must not leak into request reads. If reads
	// derived a deadline from it, this query would fail immediately.
	db.startupTimeout = time.Nanosecond
	if _, err := p.Subject(context.Background(), 1); err != nil {
		t.Fatalf("Subject failed with background context: %v", err)
	}

	// Caller cancellation still propagates to in-flight reads.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Subject(ctx, 1); err == nil {
		t.Fatal("expected error for canceled caller context")
	}
}
