// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import "fmt"

// eventContext carries the batched lookups for one events-domain call.
type eventContext struct {
	// friendAttendance maps event id to how many of the subject's
	// accepted connections are going.
	friendAttendance map[int64]int
	// topStyles is the subject's top-3 most-attended event styles,
	// normalized for comparison.
	topStyles map[string]struct{}
}

// newEventContext normalizes the subject's top styles for lookup.
func newEventContext(friendAttendance map[int64]int, topStyles []string) *eventContext {
	styles := make(map[string]struct{}, len(topStyles))
	for _, s := range topStyles {
		if key := normalizeTag(s); key != "" {
			styles[key] = struct{}{}
		}
	}
	return &eventContext{friendAttendance: friendAttendance, topStyles: styles}
}

// eventFactors builds the events-domain factor table. Caps sum to 100:
// location 30, friend attendance 25, top-style match 20, style overlap
// 15, popularity 10.
func eventFactors(subject *Profile, ectx *eventContext) []factor[Event] {
	return []factor[Event]{
		{
			name: "location",
			cap:  30,
			score: func(c *Event) (float64, string) {
				switch {
				case sameCity(subject.City, subject.Country, c.City, c.Country):
					return 30, "In your city"
				case sameCountry(subject.Country, c.Country):
					return 15, "In your country"
				default:
					return 0, ""
				}
			},
		},
		{
			name: "friend_attendance",
			cap:  25,
			score: func(c *Event) (float64, string) {
				count := ectx.friendAttendance[c.ID]
				if count < 1 {
					return 0, ""
				}
				reason := fmt.Sprintf("%d friends are going", count)
				if count == 1 {
					reason = "1 friend is going"
				}
				return float64(count) * 8, reason
			},
		},
		{
			name: "favorite_style",
			cap:  20,
			score: func(c *Event) (float64, string) {
				primary := normalizeTag(c.PrimaryStyle())
				if primary == "" {
					return 0, ""
				}
				if _, ok := ectx.topStyles[primary]; !ok {
					return 0, ""
				}
				return 20, "Matches your favorite styles"
			},
		},
		{
			name: "style_overlap",
			cap:  15,
			score: func(c *Event) (float64, string) {
				count := overlapCount(c.Styles, subject.Tags)
				if count < 1 {
					return 0, ""
				}
				return float64(count) * 7.5, fmt.Sprintf("Matches %d of your styles", count)
			},
		},
		{
			name: "popularity",
			cap:  10,
			score: func(c *Event) (float64, string) {
				points := float64(c.AttendeeCount) * 0.5
				if points >= 5 {
					return points, "Popular event"
				}
				return points, ""
			},
		},
	}
}
