// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import (
	"fmt"
	"time"
)

// Config holds engine tuning knobs.
type Config struct {
	// PoolSize bounds the candidate pool loaded per request, keeping
	// per-request cost predictable.
	PoolSize int

	// Default result limits per domain, used when the caller passes no
	// limit.
	FriendsLimit  int
	EventsLimit   int
	TeachersLimit int
	ContentLimit  int

	// MaxLimit is the hard ceiling on the caller-supplied limit.
	MaxLimit int

	// UpcomingWindow bounds how far into the future event candidates
	// are considered.
	UpcomingWindow time.Duration

	// ContentWindow is the rolling recency window for content
	// candidates.
	ContentWindow time.Duration

	// TopStyleCount is how many of the subject's most-attended styles
	// count as favorites for the event style-match factor.
	TopStyleCount int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		PoolSize:       150,
		FriendsLimit:   10,
		EventsLimit:    10,
		TeachersLimit:  10,
		ContentLimit:   20,
		MaxLimit:       50,
		UpcomingWindow: 90 * 24 * time.Hour,
		ContentWindow:  30 * 24 * time.Hour,
		TopStyleCount:  3,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.PoolSize < 1 {
		return fmt.Errorf("pool size must be positive, got %d", c.PoolSize)
	}
	if c.MaxLimit < 1 {
		return fmt.Errorf("max limit must be positive, got %d", c.MaxLimit)
	}
	for name, limit := range map[string]int{
		"friends":  c.FriendsLimit,
		"events":   c.EventsLimit,
		"teachers": c.TeachersLimit,
		"content":  c.ContentLimit,
	} {
		if limit < 1 || limit > c.MaxLimit {
			return fmt.Errorf("%s limit must be between 1 and %d, got %d", name, c.MaxLimit, limit)
		}
	}
	if c.UpcomingWindow <= 0 {
		return fmt.Errorf("upcoming window must be positive, got %s", c.UpcomingWindow)
	}
	if c.ContentWindow <= 0 {
		return fmt.Errorf("content window must be positive, got %s", c.ContentWindow)
	}
	if c.TopStyleCount < 1 {
		return fmt.Errorf("top style count must be positive, got %d", c.TopStyleCount)
	}
	return nil
}
