// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package recommend

import (
	"reflect"
	"testing"
)

func scoreEvent(subject *Profile, ectx *eventContext, candidate Event) (float64, []string) {
	factors := eventFactors(subject, ectx)
	scored := scoreCandidates(factors, func(e *Event) int64 { return e.ID }, []Event{candidate})
	if len(scored) == 0 {
		return 0, nil
	}
	return scored[0].Score, scored[0].Reasons
}

// Same city, two friends going, primary style in the subject's top-3,
// one style tag overlap, twelve attendees: 30+16+20+7.5+6 = 79.5.
func TestEventFullScenario(t *testing.T) {
	subject := &Profile{ID: 1, City: "Berlin", Country: "Germany", Tags: []string{"bachata"}}
	candidate := Event{
		ID:            10,
		City:          "Berlin",
		Country:       "Germany",
		Styles:        []string{"salsa", "bachata"},
		AttendeeCount: 12,
		Published:     true,
	}
	ectx := newEventContext(map[int64]int{10: 2}, []string{"salsa", "tango", "zouk"})

	score, reasons := scoreEvent(subject, ectx, candidate)

	if score != 79.5 {
		t.Errorf("score = %v, want 79.5", score)
	}
	want := []string{
		"In your city",
		"2 friends are going",
		"Matches your favorite styles",
		"Matches 1 of your styles",
		"Popular event",
	}
	if !reflect.DeepEqual(reasons, want) {
		t.Errorf("reasons = %v, want %v", reasons, want)
	}
}

func TestEventLocationTiers(t *testing.T) {
	subject := &Profile{ID: 1, City: "Lisbon", Country: "Portugal"}
	ectx := newEventContext(map[int64]int{}, nil)

	tests := []struct {
		name      string
		candidate Event
		want      float64
	}{
		{"same city", Event{ID: 1, City: "Lisbon", Country: "Portugal"}, 30},
		{"same country", Event{ID: 1, City: "Porto", Country: "Portugal"}, 15},
		{"abroad", Event{ID: 1, City: "Lisbon", Country: "Spain"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := scoreEvent(subject, ectx, tt.candidate)
			if score != tt.want {
				t.Errorf("score = %v, want %v", score, tt.want)
			}
		})
	}
}

func TestEventFriendAttendanceCapAndSingular(t *testing.T) {
	subject := &Profile{ID: 1}
	ectx := newEventContext(map[int64]int{10: 1, 11: 6}, nil)

	score, reasons := scoreEvent(subject, ectx, Event{ID: 10})
	if score != 8 {
		t.Errorf("one friend: score = %v, want 8", score)
	}
	if len(reasons) != 1 || reasons[0] != "1 friend is going" {
		t.Errorf("one friend: reasons = %v", reasons)
	}

	score, _ = scoreEvent(subject, ectx, Event{ID: 11})
	if score != 25 {
		t.Errorf("six friends: score = %v, want capped 25", score)
	}
}

func TestEventTopStyleMatchUsesPrimaryStyleOnly(t *testing.T) {
	subject := &Profile{ID: 1}
	ectx := newEventContext(map[int64]int{}, []string{"salsa"})

	// Secondary style matches the favorites but the primary does not;
	// the factor must not fire, leaving the event with zero score.
	score, reasons := scoreEvent(subject, ectx, Event{ID: 1, Styles: []string{"tango", "salsa"}})
	if score != 0 {
		t.Errorf("secondary match: score = %v, want 0", score)
	}
	if len(reasons) != 0 {
		t.Errorf("secondary match: reasons = %v, want none", reasons)
	}

	// Primary style matches.
	score, reasons = scoreEvent(subject, ectx, Event{ID: 1, Styles: []string{"salsa"}})
	if score != 20 {
		t.Errorf("primary match: score = %v, want 20", score)
	}
	if len(reasons) != 1 || reasons[0] != "Matches your favorite styles" {
		t.Errorf("primary match: reasons = %v", reasons)
	}
}

func TestEventPopularityThreshold(t *testing.T) {
	subject := &Profile{ID: 1}
	ectx := newEventContext(map[int64]int{}, nil)

	// 8 attendees: 4 points, below the reason threshold.
	score, reasons := scoreEvent(subject, ectx, Event{ID: 1, AttendeeCount: 8})
	if score != 4 {
		t.Errorf("score = %v, want 4", score)
	}
	if len(reasons) != 0 {
		t.Errorf("no reason expected below threshold, got %v", reasons)
	}

	// 40 attendees: capped at 10 with reason.
	score, reasons = scoreEvent(subject, ectx, Event{ID: 1, AttendeeCount: 40})
	if score != 10 {
		t.Errorf("score = %v, want capped 10", score)
	}
	if len(reasons) != 1 || reasons[0] != "Popular event" {
		t.Errorf("reasons = %v", reasons)
	}
}
