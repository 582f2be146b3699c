// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/stepsocial/stepsocial/internal/logging"
	"github.com/stepsocial/stepsocial/internal/metrics"
)

// storeBreaker shields the recommendation read path from a misbehaving
// database. When queries fail persistently the breaker opens and reads
// fail fast, which the engine degrades to empty results.
type storeBreaker struct {
	name    string
	breaker *gobreaker.CircuitBreaker[interface{}]
}

func newStoreBreaker(name string) *storeBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip on a 60% failure ratio once we have a meaningful
			// sample.
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(gobreaker.StateClosed))

	return &storeBreaker{
		name:    name,
		breaker: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// execute runs fn through the breaker and records the outcome.
func (sb *storeBreaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := sb.breaker.Execute(fn)
	if err != nil {
		metrics.CircuitBreakerRequests.WithLabelValues(sb.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(sb.name, "success").Inc()
	return result, nil
}

// castResult converts a breaker result to the expected type.
func castResult[T any](result interface{}) (T, error) {
	var zero T
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
