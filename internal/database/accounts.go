// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stepsocial/stepsocial/internal/metrics"
)

// ErrAccountNotFound is returned when no account matches the username.
var ErrAccountNotFound = errors.New("account not found")

// Account is a login credential record linked to a profile.
type Account struct {
	Username     string
	PasswordHash string
	ProfileID    int64
	CreatedAt    time.Time
}

// GetAccountByUsername loads the account for a login attempt.
func (db *DB) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	start := time.Now()

	row := db.conn.QueryRowContext(ctx, `
		SELECT username, password_hash, profile_id, created_at
		FROM accounts
		WHERE username = ?`, username)

	var account Account
	err := row.Scan(&account.Username, &account.PasswordHash, &account.ProfileID, &account.CreatedAt)
	metrics.ObserveDBQuery("account_by_username", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &account, nil
}

// CreateAccount inserts a login credential record.
func (db *DB) CreateAccount(ctx context.Context, username, passwordHash string, profileID int64) error {
	start := time.Now()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO accounts (username, password_hash, profile_id)
		VALUES (?, ?, ?)`, username, passwordHash, profileID)
	metrics.ObserveDBQuery("create_account", start, err)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}
