// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestGetProfilesByIDs(t *testing.T) {
	db := newTestDB(t)

	insertProfile(t, db, 1, "Ana", "Berlin", "Germany", 3, 4, "salsa,bachata")
	insertProfile(t, db, 2, "Marco", "Lisbon", "Portugal", 4, 2, "")

	records, err := db.GetProfilesByIDs(context.Background(), []int64{1, 2, 99})
	if err != nil {
		t.Fatalf("GetProfilesByIDs failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	ana := records[1]
	if ana.DisplayName != "Ana" || ana.City != "Berlin" || len(ana.Tags) != 2 {
		t.Errorf("unexpected record: %+v", ana)
	}
	if _, ok := records[99]; ok {
		t.Error("missing id should be absent from result map")
	}
}

func TestGetEventsByIDs(t *testing.T) {
	db := newTestDB(t)

	startsAt := time.Now().Add(48 * time.Hour)
	mustExec(t, db, `
		INSERT INTO events (id, title, city, country, styles, starts_at, attendee_count, published)
		VALUES (1, 'Salsa Social', 'Berlin', 'Germany', 'salsa,bachata', ?, 24, true)`, startsAt)

	records, err := db.GetEventsByIDs(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("GetEventsByIDs failed: %v", err)
	}
	rec, ok := records[1]
	if !ok {
		t.Fatal("event 1 missing from result map")
	}
	if rec.Title != "Salsa Social" || rec.AttendeeCount != 24 || len(rec.Styles) != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestGetInstructorsByIDs(t *testing.T) {
	db := newTestDB(t)

	mustExec(t, db, `
		INSERT INTO instructors (id, display_name, city, country, specialties, years_teaching, avg_rating, review_count)
		VALUES (1, 'Carla', 'Berlin', 'Germany', 'salsa', 12, 4.8, 31)`)

	records, err := db.GetInstructorsByIDs(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("GetInstructorsByIDs failed: %v", err)
	}
	rec, ok := records[1]
	if !ok {
		t.Fatal("instructor 1 missing from result map")
	}
	if rec.DisplayName != "Carla" || rec.AvgRating != 4.8 || rec.YearsTeaching != 12 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestGetPostsByIDsResolvesAuthor(t *testing.T) {
	db := newTestDB(t)

	insertProfile(t, db, 2, "Marco", "", "", 0, 0, "")
	mustExec(t, db, `
		INSERT INTO posts (id, author_id, group_id, body, like_count, comment_count)
		VALUES (1, 2, 0, 'Great social!', 14, 3)`)
	mustExec(t, db, `
		INSERT INTO posts (id, author_id, body) VALUES (2, 999, 'Orphaned post')`)

	records, err := db.GetPostsByIDs(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("GetPostsByIDs failed: %v", err)
	}
	if records[1].AuthorName != "Marco" || records[1].LikeCount != 14 {
		t.Errorf("unexpected record: %+v", records[1])
	}
	// Posts with no matching profile still come back, with an empty
	// author name.
	if records[2].AuthorName != "" {
		t.Errorf("orphaned post author = %q, want empty", records[2].AuthorName)
	}
}

func TestEnrichEmptyIDSets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if records, err := db.GetProfilesByIDs(ctx, nil); err != nil || len(records) != 0 {
		t.Errorf("GetProfilesByIDs(nil) = %v, %v", records, err)
	}
	if records, err := db.GetPostsByIDs(ctx, []int64{}); err != nil || len(records) != 0 {
		t.Errorf("GetPostsByIDs(empty) = %v, %v", records, err)
	}
}

func TestAccountRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	if err := db.CreateAccount(ctx, "ana", string(hash), 1); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	account, err := db.GetAccountByUsername(ctx, "ana")
	if err != nil {
		t.Fatalf("GetAccountByUsername failed: %v", err)
	}
	if account.ProfileID != 1 {
		t.Errorf("profile id = %d, want 1", account.ProfileID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestGetAccountByUsernameNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetAccountByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}
}
