// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import "fmt"

// Experience-tier thresholds for the instructor match factor.
const (
	noviceMaxLevel      = 2.0
	advancedMinLevel    = 4.0
	experiencedMinYears = 5
	seniorMinYears      = 10
	partialMinYears     = 3
)

// instructorFactors builds the instructors-domain factor table. Caps
// sum to 100: location 35, experience-tier match 25, specialty overlap
// 20, rating quality 15, profile completeness 5.
func instructorFactors(subject *Profile) []factor[Instructor] {
	return []factor[Instructor]{
		{
			name: "location",
			cap:  35,
			score: func(c *Instructor) (float64, string) {
				switch {
				case sameCity(subject.City, subject.Country, c.City, c.Country):
					return 35, "Teaches in your city"
				case sameCountry(subject.Country, c.Country):
					return 17, "Teaches in your country"
				default:
					return 0, ""
				}
			},
		},
		{
			name: "experience_tier",
			cap:  25,
			score: func(c *Instructor) (float64, string) {
				points := experienceTierPoints(subject.SkillLevel(), c.YearsTeaching)
				if points == 25 {
					return points, "Experienced instructor for your level"
				}
				return points, ""
			},
		},
		{
			name: "specialty_overlap",
			cap:  20,
			score: func(c *Instructor) (float64, string) {
				count := overlapCount(c.Specialties, subject.Tags)
				if count < 1 {
					return 0, ""
				}
				return float64(count) * 10, fmt.Sprintf("Specializes in %d of your styles", count)
			},
		},
		{
			name: "rating_quality",
			cap:  15,
			score: func(c *Instructor) (float64, string) {
				points := (c.AvgRating/5)*10 + clamp(float64(c.ReviewCount)*0.5, 5)
				if c.AvgRating >= 4 && c.ReviewCount >= 5 {
					return points, fmt.Sprintf("Highly rated (%.1f from %d reviews)", c.AvgRating, c.ReviewCount)
				}
				return points, ""
			},
		},
		{
			name: "profile_completeness",
			cap:  5,
			score: func(c *Instructor) (float64, string) {
				var points float64
				if c.City != "" {
					points += 1
				}
				if len(c.Specialties) > 0 {
					points += 2
				}
				if c.YearsTeaching > 0 {
					points += 2
				}
				// Completeness contributes score but never a reason.
				return points, ""
			},
		},
	}
}

// experienceTierPoints matches the subject's level to the instructor's
// teaching experience. A novice paired with an experienced instructor
// or an advanced dancer paired with a senior instructor earns the full
// 25; otherwise instructors with at least three years earn 10 partial
// credit.
func experienceTierPoints(subjectLevel float64, yearsTeaching int) float64 {
	switch {
	case subjectLevel <= noviceMaxLevel && yearsTeaching >= experiencedMinYears:
		return 25
	case subjectLevel >= advancedMinLevel && yearsTeaching >= seniorMinYears:
		return 25
	case yearsTeaching >= partialMinYears:
		return 10
	default:
		return 0
	}
}
