// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import "time"

// contentContext carries the subject's connection sets for one
// content-domain call.
type contentContext struct {
	friends   IDSet
	following IDSet
	groups    IDSet
	now       time.Time
}

// contentFactors builds the content-domain factor table. Caps sum to
// 100: friend author 40, followed author 25, joined group 20,
// engagement 10, recency 5.
func contentFactors(cctx *contentContext) []factor[Post] {
	return []factor[Post]{
		{
			name: "friend_author",
			cap:  40,
			score: func(c *Post) (float64, string) {
				if !cctx.friends.Contains(c.AuthorID) {
					return 0, ""
				}
				return 40, "Posted by your friend"
			},
		},
		{
			name: "followed_author",
			cap:  25,
			score: func(c *Post) (float64, string) {
				if !cctx.following.Contains(c.AuthorID) {
					return 0, ""
				}
				return 25, "Posted by someone you follow"
			},
		},
		{
			name: "joined_group",
			cap:  20,
			score: func(c *Post) (float64, string) {
				if c.GroupID == 0 || !cctx.groups.Contains(c.GroupID) {
					return 0, ""
				}
				return 20, "Posted in your group"
			},
		},
		{
			name: "engagement",
			cap:  10,
			score: func(c *Post) (float64, string) {
				engagement := float64(c.LikeCount + 2*c.CommentCount)
				points := engagement * 0.5
				if points >= 5 {
					return points, "Trending post"
				}
				return points, ""
			},
		},
		{
			name: "recency",
			cap:  5,
			score: func(c *Post) (float64, string) {
				hours := cctx.now.Sub(c.CreatedAt).Hours()
				if hours < 0 {
					hours = 0
				}
				points := 5 - hours/24
				if points < 0 {
					points = 0
				}
				if points >= 4 {
					return points, "Posted recently"
				}
				return points, ""
			},
		},
	}
}
