// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/stepsocial/stepsocial/internal/auth"
	"github.com/stepsocial/stepsocial/internal/config"
	"github.com/stepsocial/stepsocial/internal/database"
	"github.com/stepsocial/stepsocial/internal/logging"
	"github.com/stepsocial/stepsocial/internal/metrics"
	"github.com/stepsocial/stepsocial/internal/recommend"
	"github.com/stepsocial/stepsocial/internal/validation"
)

// Recommender produces ranked, explained recommendations per domain.
// Implemented by recommend.Engine. Failures degrade inside the engine,
// so these methods never error; worst case is an empty slice.
type Recommender interface {
	RecommendFriends(ctx context.Context, subjectID int64, limit int) []recommend.Score
	RecommendEvents(ctx context.Context, subjectID int64, limit int) []recommend.Score
	RecommendTeachers(ctx context.Context, subjectID int64, limit int) []recommend.Score
	RecommendContent(ctx context.Context, subjectID int64, limit int) []recommend.Score
}

// Store covers the enrichment and account reads the handlers need.
// Implemented by database.DB.
type Store interface {
	GetProfilesByIDs(ctx context.Context, ids []int64) (map[int64]database.ProfileRecord, error)
	GetEventsByIDs(ctx context.Context, ids []int64) (map[int64]database.EventRecord, error)
	GetInstructorsByIDs(ctx context.Context, ids []int64) (map[int64]database.InstructorRecord, error)
	GetPostsByIDs(ctx context.Context, ids []int64) (map[int64]database.PostRecord, error)
	GetAccountByUsername(ctx context.Context, username string) (*database.Account, error)
	Ping(ctx context.Context) error
}

// Handler holds the dependencies for all API endpoints.
type Handler struct {
	cfg          *config.Config
	engine       Recommender
	store        Store
	jwt          *auth.JWTManager
	loginLimiter *auth.LoginRateLimiter
}

// NewHandler wires the API handlers.
func NewHandler(cfg *config.Config, engine Recommender, store Store, jwtManager *auth.JWTManager, loginLimiter *auth.LoginRateLimiter) *Handler {
	return &Handler{
		cfg:          cfg,
		engine:       engine,
		store:        store,
		jwt:          jwtManager,
		loginLimiter: loginLimiter,
	}
}

// healthResponse reports service and database liveness.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports whether the service and its database are reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "up"}
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check database ping failed")
		resp.Status = "degraded"
		resp.Database = "down"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, resp)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	ProfileID int64  `json:"profile_id"`
}

// Login verifies credentials and issues a bearer token. Attempts are
// rate limited per client IP, and username and password failures are
// indistinguishable in the response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := auth.ClientIP(r)
	if !h.loginLimiter.Allow(ip) {
		metrics.AuthLoginAttempts.WithLabelValues("rate_limited").Inc()
		writeTooManyRequests(w, r, "too many login attempts, try again later")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	account, err := h.store.GetAccountByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, database.ErrAccountNotFound) {
			logging.CtxErr(r.Context(), err).Msg("Account lookup failed")
			writeInternalError(w, r, "login failed")
			return
		}
		metrics.AuthLoginAttempts.WithLabelValues("failure").Inc()
		writeUnauthorized(w, r, "invalid credentials")
		return
	}

	if err := auth.VerifyPassword(account.PasswordHash, req.Password); err != nil {
		metrics.AuthLoginAttempts.WithLabelValues("failure").Inc()
		writeUnauthorized(w, r, "invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(account.Username, account.ProfileID)
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Token generation failed")
		writeInternalError(w, r, "login failed")
		return
	}

	metrics.AuthLoginAttempts.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.jwt.TokenTTL().Seconds()),
		ProfileID: account.ProfileID,
	})
}
