// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Engine runs the four domain pipelines. It is stateless and safe for
// concurrent use; the four domain calls are independent and may be
// issued concurrently for the same subject.
//
// Every domain method degrades silently: storage failures are logged
// and produce an empty result, indistinguishable at the public contract
// from "no recommendations available right now". Context cancellation
// likewise yields an empty result, never a partial list.
type Engine struct {
	config *Config
	logger zerolog.Logger
	data   DataProvider

	// now is injectable for deterministic recency scoring in tests.
	now func() time.Time
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, data DataProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("data provider is required")
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		data:   data,
		now:    time.Now,
	}, nil
}

// SetClock overrides the engine's clock. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// RecommendFriends ranks people the subject may want to connect with.
func (e *Engine) RecommendFriends(ctx context.Context, subjectID int64, limit int) []Score {
	limit = e.clampLimit(limit, e.config.FriendsLimit)

	subject, err := e.data.Subject(ctx, subjectID)
	if err != nil {
		return e.degrade(ctx, "friends", subjectID, err)
	}

	candidates, err := e.data.PeopleCandidates(ctx, subjectID, e.config.PoolSize)
	if err != nil {
		return e.degrade(ctx, "friends", subjectID, err)
	}
	if len(candidates) == 0 {
		return emptyResult()
	}

	ids := make([]int64, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}

	mutual, err := e.data.MutualFriendCounts(ctx, subjectID, ids)
	if err != nil {
		return e.degrade(ctx, "friends", subjectID, err)
	}
	shared, err := e.data.SharedEventCounts(ctx, subjectID, ids)
	if err != nil {
		return e.degrade(ctx, "friends", subjectID, err)
	}

	factors := peopleFactors(subject, &peopleContext{
		mutualFriends: mutual,
		sharedEvents:  shared,
	})

	scored := scoreCandidates(factors, func(p *Profile) int64 { return p.ID }, candidates)
	result := rank(scored, limit)
	e.logDone(ctx, "friends", subjectID, len(candidates), len(result))
	return result
}

// RecommendEvents ranks upcoming events for the subject.
func (e *Engine) RecommendEvents(ctx context.Context, subjectID int64, limit int) []Score {
	limit = e.clampLimit(limit, e.config.EventsLimit)

	subject, err := e.data.Subject(ctx, subjectID)
	if err != nil {
		return e.degrade(ctx, "events", subjectID, err)
	}

	until := e.now().Add(e.config.UpcomingWindow)
	candidates, err := e.data.EventCandidates(ctx, subjectID, until, e.config.PoolSize)
	if err != nil {
		return e.degrade(ctx, "events", subjectID, err)
	}
	if len(candidates) == 0 {
		return emptyResult()
	}

	ids := make([]int64, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}

	attendance, err := e.data.FriendAttendanceCounts(ctx, subjectID, ids)
	if err != nil {
		return e.degrade(ctx, "events", subjectID, err)
	}
	topStyles, err := e.data.TopEventStyles(ctx, subjectID, e.config.TopStyleCount)
	if err != nil {
		return e.degrade(ctx, "events", subjectID, err)
	}

	factors := eventFactors(subject, newEventContext(attendance, topStyles))

	scored := scoreCandidates(factors, func(ev *Event) int64 { return ev.ID }, candidates)
	result := rank(scored, limit)
	e.logDone(ctx, "events", subjectID, len(candidates), len(result))
	return result
}

// RecommendTeachers ranks instructors for the subject.
func (e *Engine) RecommendTeachers(ctx context.Context, subjectID int64, limit int) []Score {
	limit = e.clampLimit(limit, e.config.TeachersLimit)

	subject, err := e.data.Subject(ctx, subjectID)
	if err != nil {
		return e.degrade(ctx, "teachers", subjectID, err)
	}

	candidates, err := e.data.InstructorCandidates(ctx, e.config.PoolSize)
	if err != nil {
		return e.degrade(ctx, "teachers", subjectID, err)
	}
	if len(candidates) == 0 {
		return emptyResult()
	}

	factors := instructorFactors(subject)

	scored := scoreCandidates(factors, func(in *Instructor) int64 { return in.ID }, candidates)
	result := rank(scored, limit)
	e.logDone(ctx, "teachers", subjectID, len(candidates), len(result))
	return result
}

// RecommendContent ranks recent posts for the subject.
func (e *Engine) RecommendContent(ctx context.Context, subjectID int64, limit int) []Score {
	limit = e.clampLimit(limit, e.config.ContentLimit)

	since := e.now().Add(-e.config.ContentWindow)
	candidates, err := e.data.ContentCandidates(ctx, subjectID, since, e.config.PoolSize)
	if err != nil {
		return e.degrade(ctx, "content", subjectID, err)
	}
	if len(candidates) == 0 {
		return emptyResult()
	}

	friends, err := e.data.FriendIDs(ctx, subjectID)
	if err != nil {
		return e.degrade(ctx, "content", subjectID, err)
	}
	following, err := e.data.FollowingIDs(ctx, subjectID)
	if err != nil {
		return e.degrade(ctx, "content", subjectID, err)
	}
	groups, err := e.data.GroupIDs(ctx, subjectID)
	if err != nil {
		return e.degrade(ctx, "content", subjectID, err)
	}

	factors := contentFactors(&contentContext{
		friends:   friends,
		following: following,
		groups:    groups,
		now:       e.now(),
	})

	scored := scoreCandidates(factors, func(p *Post) int64 { return p.ID }, candidates)
	result := rank(scored, limit)
	e.logDone(ctx, "content", subjectID, len(candidates), len(result))
	return result
}

// clampLimit applies the domain default and the hard ceiling.
func (e *Engine) clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > e.config.MaxLimit {
		return e.config.MaxLimit
	}
	return limit
}

// degrade logs a storage or cancellation failure and returns the empty
// result the public contract promises. Callers cannot distinguish this
// from "no eligible candidates"; the log line is the only trace.
func (e *Engine) degrade(ctx context.Context, domain string, subjectID int64, err error) []Score {
	evt := e.logger.Error()
	if ctx.Err() != nil {
		evt = e.logger.Debug()
	}
	evt.Err(err).
		Str("domain", domain).
		Int64("subject_id", subjectID).
		Msg("recommendation degraded to empty result")
	return emptyResult()
}

// logDone records a completed domain call.
func (e *Engine) logDone(_ context.Context, domain string, subjectID int64, candidates, returned int) {
	e.logger.Debug().
		Str("domain", domain).
		Int64("subject_id", subjectID).
		Int("candidates", candidates).
		Int("returned", returned).
		Msg("recommendation complete")
}

// emptyResult returns a non-nil empty slice so callers encode an empty
// JSON array rather than null.
func emptyResult() []Score {
	return []Score{}
}
