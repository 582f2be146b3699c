// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import (
	"fmt"
	"math"
)

// peopleContext carries the batched lookups for one people-domain call.
type peopleContext struct {
	// mutualFriends maps candidate id to the number of accepted
	// connections shared with the subject.
	mutualFriends map[int64]int
	// sharedEvents maps candidate id to the number of events both the
	// subject and the candidate have gone to.
	sharedEvents map[int64]int
}

// peopleFactors builds the people-domain factor table. Caps sum to 100:
// mutual friends 40, skill similarity 20, location 20, shared event
// attendance 15, shared interest tags 5.
func peopleFactors(subject *Profile, pctx *peopleContext) []factor[Profile] {
	return []factor[Profile]{
		{
			name: "mutual_friends",
			cap:  40,
			score: func(c *Profile) (float64, string) {
				count := pctx.mutualFriends[c.ID]
				if count < 1 {
					return 0, ""
				}
				return float64(count) * 8, plural(count, "mutual friend", "mutual friends")
			},
		},
		{
			name: "skill_similarity",
			cap:  20,
			score: func(c *Profile) (float64, string) {
				// No signal when either side has not set skill levels.
				if !hasSkillLevels(subject) || !hasSkillLevels(c) {
					return 0, ""
				}
				points := 20 - 4*skillDelta(subject, c)
				if points < 0 {
					points = 0
				}
				if points >= 12 {
					return points, "Similar skill level"
				}
				return points, ""
			},
		},
		{
			name: "location",
			cap:  20,
			score: func(c *Profile) (float64, string) {
				switch {
				case sameCity(subject.City, subject.Country, c.City, c.Country):
					return 20, fmt.Sprintf("Lives in %s", c.City)
				case sameCountry(subject.Country, c.Country):
					return 10, fmt.Sprintf("Also in %s", c.Country)
				default:
					return 0, ""
				}
			},
		},
		{
			name: "shared_events",
			cap:  15,
			score: func(c *Profile) (float64, string) {
				count := pctx.sharedEvents[c.ID]
				if count < 1 {
					return 0, ""
				}
				return float64(count) * 5, fmt.Sprintf("Went to %d of the same events", count)
			},
		},
		{
			name: "shared_tags",
			cap:  5,
			score: func(c *Profile) (float64, string) {
				count := overlapCount(subject.Tags, c.Tags)
				if count < 1 {
					return 0, ""
				}
				return float64(count) * 2.5, plural(count, "shared interest", "shared interests")
			},
		},
	}
}

// hasSkillLevels reports whether the profile has any skill axis set.
func hasSkillLevels(p *Profile) bool {
	return p.LeadLevel > 0 || p.FollowLevel > 0
}

// skillDelta returns the mean absolute level difference across the two
// skill axes.
func skillDelta(a, b *Profile) float64 {
	lead := math.Abs(float64(a.LeadLevel - b.LeadLevel))
	follow := math.Abs(float64(a.FollowLevel - b.FollowLevel))
	return (lead + follow) / 2
}
