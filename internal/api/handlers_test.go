// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/stepsocial/stepsocial/internal/auth"
	"github.com/stepsocial/stepsocial/internal/config"
	"github.com/stepsocial/stepsocial/internal/database"
	"github.com/stepsocial/stepsocial/internal/recommend"
)

// mockRecommender returns canned scores and records the limit it was
// called with.
type mockRecommender struct {
	scores    []recommend.Score
	lastLimit int
}

func (m *mockRecommender) RecommendFriends(_ context.Context, _ int64, limit int) []recommend.Score {
	m.lastLimit = limit
	return m.scores
}

func (m *mockRecommender) RecommendEvents(_ context.Context, _ int64, limit int) []recommend.Score {
	m.lastLimit = limit
	return m.scores
}

func (m *mockRecommender) RecommendTeachers(_ context.Context, _ int64, limit int) []recommend.Score {
	m.lastLimit = limit
	return m.scores
}

func (m *mockRecommender) RecommendContent(_ context.Context, _ int64, limit int) []recommend.Score {
	m.lastLimit = limit
	return m.scores
}

// mockStore serves enrichment and account reads from maps. Setting
// failEnrich makes every enrichment call error.
type mockStore struct {
	profiles    map[int64]database.ProfileRecord
	events      map[int64]database.EventRecord
	instructors map[int64]database.InstructorRecord
	posts       map[int64]database.PostRecord
	accounts    map[string]*database.Account
	failEnrich  bool
	pingErr     error
}

var errMockStore = errors.New("store unavailable")

func (m *mockStore) GetProfilesByIDs(_ context.Context, ids []int64) (map[int64]database.ProfileRecord, error) {
	if m.failEnrich {
		return nil, errMockStore
	}
	return filterByIDs(m.profiles, ids), nil
}

func (m *mockStore) GetEventsByIDs(_ context.Context, ids []int64) (map[int64]database.EventRecord, error) {
	if m.failEnrich {
		return nil, errMockStore
	}
	return filterByIDs(m.events, ids), nil
}

func (m *mockStore) GetInstructorsByIDs(_ context.Context, ids []int64) (map[int64]database.InstructorRecord, error) {
	if m.failEnrich {
		return nil, errMockStore
	}
	return filterByIDs(m.instructors, ids), nil
}

func (m *mockStore) GetPostsByIDs(_ context.Context, ids []int64) (map[int64]database.PostRecord, error) {
	if m.failEnrich {
		return nil, errMockStore
	}
	return filterByIDs(m.posts, ids), nil
}

func (m *mockStore) GetAccountByUsername(_ context.Context, username string) (*database.Account, error) {
	account, ok := m.accounts[username]
	if !ok {
		return nil, database.ErrAccountNotFound
	}
	return account, nil
}

func (m *mockStore) Ping(_ context.Context) error {
	return m.pingErr
}

func filterByIDs[V any](all map[int64]V, ids []int64) map[int64]V {
	out := make(map[int64]V, len(ids))
	for _, id := range ids {
		if v, ok := all[id]; ok {
			out[id] = v
		}
	}
	return out
}

type testServer struct {
	handler http.Handler
	engine  *mockRecommender
	store   *mockStore
	jwt     *auth.JWTManager
	limiter *auth.LoginRateLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret-that-is-at-least-32-chars!",
			TokenTTL:  time.Hour,
		},
		Recommend: config.RecommendConfig{
			PoolSize:       150,
			FriendsLimit:   10,
			EventsLimit:    10,
			TeachersLimit:  10,
			ContentLimit:   20,
			MaxLimit:       50,
			UpcomingWindow: 90 * 24 * time.Hour,
		},
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	limiter := auth.NewLoginRateLimiter(100, 100)
	t.Cleanup(limiter.Stop)

	engine := &mockRecommender{}
	store := &mockStore{
		profiles:    map[int64]database.ProfileRecord{},
		events:      map[int64]database.EventRecord{},
		instructors: map[int64]database.InstructorRecord{},
		posts:       map[int64]database.PostRecord{},
		accounts:    map[string]*database.Account{},
	}

	handler := NewHandler(cfg, engine, store, jwtManager, limiter)
	return &testServer{
		handler: NewRouter(handler),
		engine:  engine,
		store:   store,
		jwt:     jwtManager,
		limiter: limiter,
	}
}

func (ts *testServer) bearerToken(t *testing.T, profileID int64) string {
	t.Helper()
	token, err := ts.jwt.GenerateToken("tester", profileID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return token
}

func (ts *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestRecommendationsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/recommendations/friends",
		"/api/recommendations/events",
		"/api/recommendations/teachers",
		"/api/recommendations/content",
	} {
		rec := ts.get(t, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestRecommendFriendsReturnsEnrichedArray(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.scores = []recommend.Score{
		{ID: 7, Score: 44.0, Reasons: []string{"3 mutual friends", "Lives in Berlin"}},
		{ID: 3, Score: 20.0, Reasons: []string{"Also in Germany"}},
	}
	ts.store.profiles = map[int64]database.ProfileRecord{
		7: {ID: 7, DisplayName: "Yuki Tanaka", City: "Berlin", Country: "Germany"},
		3: {ID: 3, DisplayName: "Lena Hoffmann", City: "Hamburg", Country: "Germany"},
	}

	rec := ts.get(t, "/api/recommendations/friends", ts.bearerToken(t, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	body := strings.TrimSpace(rec.Body.String())
	if !strings.HasPrefix(body, "[") {
		t.Fatalf("expected bare JSON array, got: %s", body)
	}

	var results []friendResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	first := results[0]
	if first.ID != 7 || first.DisplayName != "Yuki Tanaka" || first.Score != 44.0 {
		t.Errorf("unexpected first result: %+v", first)
	}
	if len(first.Reasons) != 2 || first.Reasons[0] != "3 mutual friends" {
		t.Errorf("unexpected reasons: %v", first.Reasons)
	}
}

func TestRecommendationsEmptyResultIsEmptyArray(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.scores = []recommend.Score{}

	rec := ts.get(t, "/api/recommendations/events", ts.bearerToken(t, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestRecommendationsDegradeOnEnrichmentFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.scores = []recommend.Score{{ID: 1, Score: 50, Reasons: []string{"Popular event"}}}
	ts.store.failEnrich = true

	for _, path := range []string{
		"/api/recommendations/friends",
		"/api/recommendations/events",
		"/api/recommendations/teachers",
		"/api/recommendations/content",
	} {
		rec := ts.get(t, path, ts.bearerToken(t, 1))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("GET %s: body = %q, want []", path, got)
		}
	}
}

func TestLimitValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bearerToken(t, 1)

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"no limit uses default", "", http.StatusOK},
		{"valid limit", "?limit=5", http.StatusOK},
		{"max limit", "?limit=50", http.StatusOK},
		{"zero", "?limit=0", http.StatusBadRequest},
		{"negative", "?limit=-3", http.StatusBadRequest},
		{"too large", "?limit=51", http.StatusBadRequest},
		{"non-numeric", "?limit=abc", http.StatusBadRequest},
		{"float", "?limit=2.5", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.get(t, "/api/recommendations/friends"+tt.query, token)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestLimitPassedToEngine(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bearerToken(t, 1)

	ts.get(t, "/api/recommendations/content?limit=7", token)
	if ts.engine.lastLimit != 7 {
		t.Errorf("engine limit = %d, want 7", ts.engine.lastLimit)
	}

	// Missing limit is passed through as zero so the engine applies
	// the domain default.
	ts.get(t, "/api/recommendations/content", token)
	if ts.engine.lastLimit != 0 {
		t.Errorf("engine limit = %d, want 0", ts.engine.lastLimit)
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	ts.store.accounts["ana"] = &database.Account{
		Username:     "ana",
		PasswordHash: hash,
		ProfileID:    42,
	}

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		rec := post(`{"username":"ana","password":"correct-horse"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
		}
		var resp loginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if resp.ProfileID != 42 || resp.Token == "" {
			t.Errorf("unexpected response: %+v", resp)
		}
		// The issued token must work on a protected endpoint.
		authed := ts.get(t, "/api/recommendations/friends", resp.Token)
		if authed.Code != http.StatusOK {
			t.Errorf("issued token rejected: status = %d", authed.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := post(`{"username":"ana","password":"wrong-password"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := post(`{"username":"nobody","password":"whatever-else"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := post(`{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := post(`{"username":"ana"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestLoginRateLimited(t *testing.T) {
	ts := newTestServer(t)
	limiter := auth.NewLoginRateLimiter(1, 1)
	t.Cleanup(limiter.Stop)
	ts.handler = NewRouter(NewHandler(
		&config.Config{
			Server: config.ServerConfig{Port: 8080, Timeout: 30 * time.Second, Environment: "development"},
			Auth:   config.AuthConfig{JWTSecret: "test-secret-that-is-at-least-32-chars!", TokenTTL: time.Hour},
			Recommend: config.RecommendConfig{
				PoolSize: 150, FriendsLimit: 10, EventsLimit: 10, TeachersLimit: 10,
				ContentLimit: 20, MaxLimit: 50, UpcomingWindow: 90 * 24 * time.Hour,
			},
		},
		ts.engine, ts.store, ts.jwt, limiter,
	))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"ana","password":"whatever-else"}`))
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := post(); rec.Code != http.StatusUnauthorized {
		t.Fatalf("first attempt: status = %d, want 401", rec.Code)
	}
	if rec := post(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt: status = %d, want 429", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get(t, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "up" {
		t.Errorf("unexpected response: %+v", resp)
	}

	ts.store.pingErr = errMockStore
	rec = ts.get(t, "/api/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestResultsSkipMissingRecords(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.scores = []recommend.Score{
		{ID: 1, Score: 60, Reasons: []string{"Posted by your friend"}},
		{ID: 2, Score: 40, Reasons: []string{"Trending post"}},
	}
	// Only post 2 still exists at enrichment time.
	ts.store.posts = map[int64]database.PostRecord{
		2: {ID: 2, AuthorID: 9, AuthorName: "Marco", Body: "hi"},
	}

	rec := ts.get(t, "/api/recommendations/content", ts.bearerToken(t, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var results []contentResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != 2 {
		t.Errorf("results = %+v, want only post 2", results)
	}
}
