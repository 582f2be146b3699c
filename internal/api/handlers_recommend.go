// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/stepsocial/stepsocial/internal/auth"
	"github.com/stepsocial/stepsocial/internal/database"
	"github.com/stepsocial/stepsocial/internal/logging"
	"github.com/stepsocial/stepsocial/internal/metrics"
	"github.com/stepsocial/stepsocial/internal/recommend"
	"github.com/stepsocial/stepsocial/internal/validation"
)

// Result types merge the enrichment record with the engine's score and
// reasons. Embedding keeps the record fields flat in the JSON output.

type friendResult struct {
	database.ProfileRecord
	Score   float64  `json:"recommendationScore"`
	Reasons []string `json:"recommendationReasons"`
}

type eventResult struct {
	database.EventRecord
	Score   float64  `json:"recommendationScore"`
	Reasons []string `json:"recommendationReasons"`
}

type teacherResult struct {
	database.InstructorRecord
	Score   float64  `json:"recommendationScore"`
	Reasons []string `json:"recommendationReasons"`
}

type contentResult struct {
	database.PostRecord
	Score   float64  `json:"recommendationScore"`
	Reasons []string `json:"recommendationReasons"`
}

type limitParams struct {
	Limit int `validate:"min=1,max=50"`
}

// parseLimit reads the optional limit query parameter. Zero means "use
// the domain default". An unparsable or out-of-range value is a 400;
// the false return indicates the response has been written.
func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeBadRequest(w, r, "limit must be an integer")
		return 0, false
	}
	if err := validation.ValidateStruct(&limitParams{Limit: limit}); err != nil {
		writeBadRequest(w, r, err.Error())
		return 0, false
	}
	if limit > h.cfg.Recommend.MaxLimit {
		writeBadRequest(w, r, fmt.Sprintf("limit must be at most %d", h.cfg.Recommend.MaxLimit))
		return 0, false
	}
	return limit, true
}

// subjectID resolves the authenticated member from the bearer claims.
func (h *Handler) subjectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "authentication required")
		return 0, false
	}
	return claims.ProfileID, true
}

func scoreIDs(scores []recommend.Score) []int64 {
	ids := make([]int64, len(scores))
	for i, s := range scores {
		ids[i] = s.ID
	}
	return ids
}

// RecommendFriends returns ranked people suggestions for the caller.
func (h *Handler) RecommendFriends(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectID(w, r)
	if !ok {
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	start := time.Now()
	scores := h.engine.RecommendFriends(r.Context(), subject, limit)
	metrics.ObserveRecommendation("friends", len(scores), start)

	results := make([]friendResult, 0, len(scores))
	records, err := h.store.GetProfilesByIDs(r.Context(), scoreIDs(scores))
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Friend enrichment failed")
		writeJSON(w, http.StatusOK, results)
		return
	}
	for _, s := range scores {
		rec, found := records[s.ID]
		if !found {
			continue
		}
		results = append(results, friendResult{ProfileRecord: rec, Score: s.Score, Reasons: s.Reasons})
	}
	writeJSON(w, http.StatusOK, results)
}

// RecommendEvents returns ranked upcoming events for the caller.
func (h *Handler) RecommendEvents(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectID(w, r)
	if !ok {
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	start := time.Now()
	scores := h.engine.RecommendEvents(r.Context(), subject, limit)
	metrics.ObserveRecommendation("events", len(scores), start)

	results := make([]eventResult, 0, len(scores))
	records, err := h.store.GetEventsByIDs(r.Context(), scoreIDs(scores))
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Event enrichment failed")
		writeJSON(w, http.StatusOK, results)
		return
	}
	for _, s := range scores {
		rec, found := records[s.ID]
		if !found {
			continue
		}
		results = append(results, eventResult{EventRecord: rec, Score: s.Score, Reasons: s.Reasons})
	}
	writeJSON(w, http.StatusOK, results)
}

// RecommendTeachers returns ranked instructors for the caller.
func (h *Handler) RecommendTeachers(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectID(w, r)
	if !ok {
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	start := time.Now()
	scores := h.engine.RecommendTeachers(r.Context(), subject, limit)
	metrics.ObserveRecommendation("teachers", len(scores), start)

	results := make([]teacherResult, 0, len(scores))
	records, err := h.store.GetInstructorsByIDs(r.Context(), scoreIDs(scores))
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Teacher enrichment failed")
		writeJSON(w, http.StatusOK, results)
		return
	}
	for _, s := range scores {
		rec, found := records[s.ID]
		if !found {
			continue
		}
		results = append(results, teacherResult{InstructorRecord: rec, Score: s.Score, Reasons: s.Reasons})
	}
	writeJSON(w, http.StatusOK, results)
}

// RecommendContent returns ranked recent posts for the caller.
func (h *Handler) RecommendContent(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subjectID(w, r)
	if !ok {
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	start := time.Now()
	scores := h.engine.RecommendContent(r.Context(), subject, limit)
	metrics.ObserveRecommendation("content", len(scores), start)

	results := make([]contentResult, 0, len(scores))
	records, err := h.store.GetPostsByIDs(r.Context(), scoreIDs(scores))
	if err != nil {
		logging.CtxErr(r.Context(), err).Msg("Content enrichment failed")
		writeJSON(w, http.StatusOK, results)
		return
	}
	for _, s := range scores {
		rec, found := records[s.ID]
		if !found {
			continue
		}
		results = append(results, contentResult{PostRecord: rec, Score: s.Score, Reasons: s.Reasons})
	}
	writeJSON(w, http.StatusOK, results)
}
