// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

// Package recommend implements the multi-factor recommendation scoring
// engine. It ranks candidates across four domains (people, events,
// instructors, content) using deterministic, explainable, weighted
// scoring: each domain has an ordered table of independently capped
// factors whose caps sum to 100, so every score lands on a normalized
// 0-100 scale with human-readable reasons attached.
//
// The engine is stateless and read-only. It recomputes from the current
// data snapshot on every call; nothing is persisted or cached.
package recommend

import (
	"context"
	"time"
)

// Note: this package has no dependencies on other internal packages.
// The DataProvider interface lets the database layer plug in without
// creating circular imports.

// Score is the engine's output for one ranked candidate. The enrichment
// boundary resolves ID to a full record and merges Score and Reasons
// onto it.
type Score struct {
	ID      int64    `json:"id"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Profile is a community member as the engine sees it. LeadLevel and
// FollowLevel are the two skill axes, each 1-5.
type Profile struct {
	ID          int64
	DisplayName string
	City        string
	Country     string
	LeadLevel   int
	FollowLevel int
	Tags        []string
	Active      bool
}

// SkillLevel returns the profile's overall level, the mean of the two
// skill axes.
func (p *Profile) SkillLevel() float64 {
	return float64(p.LeadLevel+p.FollowLevel) / 2
}

// Event is an upcoming dance event. The first entry in Styles is the
// event's primary style.
type Event struct {
	ID            int64
	Title         string
	City          string
	Country       string
	Styles        []string
	StartsAt      time.Time
	AttendeeCount int
	Published     bool
}

// PrimaryStyle returns the event's primary style, or empty string when
// the event carries no style tags.
func (e *Event) PrimaryStyle() string {
	if len(e.Styles) == 0 {
		return ""
	}
	return e.Styles[0]
}

// Instructor is a teaching profile.
type Instructor struct {
	ID            int64
	DisplayName   string
	City          string
	Country       string
	Specialties   []string
	YearsTeaching int
	AvgRating     float64
	ReviewCount   int
	Active        bool
}

// Post is a content item. GroupID is zero when the post was not made in
// a group.
type Post struct {
	ID           int64
	AuthorID     int64
	GroupID      int64
	CreatedAt    time.Time
	LikeCount    int
	CommentCount int
}

// IDSet is a set of entity IDs, used for membership context (friends,
// follows, groups).
type IDSet map[int64]struct{}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// DataProvider defines the storage reads the engine needs. It is
// implemented by the database layer.
//
// Candidate loaders apply the exclusion rules (self, accepted
// relationships, committed events, own posts) and liveness filters, and
// return at most limit rows in ascending id order so enumeration is
// deterministic. Count methods answer for the whole candidate-id set in
// one batched query and return a map keyed by candidate id; absent keys
// mean zero.
type DataProvider interface {
	// Subject returns the requesting profile.
	Subject(ctx context.Context, id int64) (*Profile, error)

	// PeopleCandidates returns active profiles that are not the subject
	// and not already an accepted connection of the subject.
	PeopleCandidates(ctx context.Context, subjectID int64, limit int) ([]Profile, error)

	// MutualFriendCounts returns, per candidate, the number of accepted
	// connections shared with the subject.
	MutualFriendCounts(ctx context.Context, subjectID int64, candidateIDs []int64) (map[int64]int, error)

	// SharedEventCounts returns, per candidate, the number of events
	// both the subject and the candidate have gone to.
	SharedEventCounts(ctx context.Context, subjectID int64, candidateIDs []int64) (map[int64]int, error)

	// EventCandidates returns published future events within the window
	// that the subject has not already committed to.
	EventCandidates(ctx context.Context, subjectID int64, until time.Time, limit int) ([]Event, error)

	// FriendAttendanceCounts returns, per event, how many of the
	// subject's accepted connections are going.
	FriendAttendanceCounts(ctx context.Context, subjectID int64, eventIDs []int64) (map[int64]int, error)

	// TopEventStyles returns the subject's most-attended event styles,
	// most frequent first, at most n entries.
	TopEventStyles(ctx context.Context, subjectID int64, n int) ([]string, error)

	// InstructorCandidates returns active instructor profiles.
	InstructorCandidates(ctx context.Context, limit int) ([]Instructor, error)

	// ContentCandidates returns posts created at or after since, not
	// authored by the subject.
	ContentCandidates(ctx context.Context, subjectID int64, since time.Time, limit int) ([]Post, error)

	// FriendIDs returns the subject's accepted connections.
	FriendIDs(ctx context.Context, subjectID int64) (IDSet, error)

	// FollowingIDs returns the profiles the subject follows.
	FollowingIDs(ctx context.Context, subjectID int64) (IDSet, error)

	// GroupIDs returns the groups the subject belongs to.
	GroupIDs(ctx context.Context, subjectID int64) (IDSet, error)
}
