// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

// Package query provides SQL query building utilities for the database
// package. The batched recommendation queries all filter on candidate-id
// sets, so the helpers here center on parameterized IN clauses.
package query

import "strings"

// Placeholders returns a comma-separated list of n "?" placeholders for
// use inside an IN clause. Returns an empty string for n <= 0.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Int64Args converts an id slice to the []interface{} form that
// database/sql expects, optionally prefixed by leading arguments.
func Int64Args(ids []int64, leading ...interface{}) []interface{} {
	args := make([]interface{}, 0, len(leading)+len(ids))
	args = append(args, leading...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
