// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// factor is one scoring rule in a domain's table: a point cap and a
// pure compute function over a candidate plus precomputed context
// (captured by the closure). The returned points are clamped to
// [0, cap]. The reason string is empty when the factor's reporting
// threshold is not met; thresholds are independent of the cap.
type factor[C any] struct {
	name  string
	cap   float64
	score func(c *C) (float64, string)
}

// scoreCandidates runs a domain's factor table over every candidate,
// sums the capped contributions, rounds to one decimal, and drops
// zero-score candidates. Reasons are collected in factor-table order,
// not score order, so users read "why" in a stable narrative order.
func scoreCandidates[C any](factors []factor[C], id func(*C) int64, candidates []C) []Score {
	scored := make([]Score, 0, len(candidates))

	for i := range candidates {
		c := &candidates[i]

		var total float64
		reasons := make([]string, 0, len(factors))

		for _, f := range factors {
			points, reason := f.score(c)
			total += clamp(points, f.cap)
			if reason != "" {
				reasons = append(reasons, reason)
			}
		}

		total = round1(total)
		if total == 0 {
			continue
		}

		scored = append(scored, Score{ID: id(c), Score: total, Reasons: reasons})
	}

	return scored
}

// rank orders scored candidates by score descending. Equal scores
// break ties by lower candidate id so output is deterministic
// regardless of storage return order. The result is truncated to limit.
func rank(scored []Score, limit int) []Score {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// clamp bounds a factor contribution to [0, upper].
func clamp(points, upper float64) float64 {
	if points < 0 {
		return 0
	}
	if points > upper {
		return upper
	}
	return points
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// overlapCount returns how many entries of a also appear in b,
// case-insensitively. Duplicate entries in a count once.
func overlapCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[normalizeTag(v)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a))
	count := 0
	for _, v := range a {
		key := normalizeTag(v)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := set[key]; ok {
			count++
		}
	}
	return count
}

// normalizeTag folds a tag for comparison.
func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sameCity reports whether both city and country match, ignoring case.
// Empty city never matches.
func sameCity(aCity, aCountry, bCity, bCountry string) bool {
	return aCity != "" && strings.EqualFold(aCity, bCity) && sameCountry(aCountry, bCountry)
}

// sameCountry reports whether the countries match, ignoring case.
// Empty country never matches.
func sameCountry(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// plural formats a count with a singular or plural noun phrase.
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
