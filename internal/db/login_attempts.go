package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	DefaultAttemptLimit = 100
	MaxAttemptLimit     = 1000
)

// LoginAttempt is one recorded login, successful or not.
type LoginAttempt struct {
	ID            int64     `json:"id"`
	MaskedCode    string    `json:"submitted_code"`
	CodeLabel     *string   `json:"code_label"`
	CodeRole      *string   `json:"code_role"`
	Success       bool      `json:"success"`
	FailureReason *string   `json:"failure_reason"`
	ClientIP      string    `json:"client_ip"`
	CreatedAt     time.Time `json:"created_at"`
	PrevHash      string    `json:"prev_hash"`
	Hash          string    `json:"hash"`
}

// ClampAttemptLimit maps a requested page size onto [1, MaxAttemptLimit],
// using DefaultAttemptLimit for anything below one.
func ClampAttemptLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultAttemptLimit
	case limit > MaxAttemptLimit:
		return MaxAttemptLimit
	default:
		return limit
	}
}

// CreateLoginAttempt inserts a login attempt and fills in its ID.
func (db *DB) CreateLoginAttempt(ctx context.Context, a *LoginAttempt) error {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO login_attempts
			(submitted_code, code_label, code_role, success, failure_reason, client_ip, created_at, prev_hash, hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.MaskedCode, a.CodeLabel, a.CodeRole, a.Success, a.FailureReason,
		a.ClientIP, a.CreatedAt, a.PrevHash, a.Hash,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("creating login attempt: %w", err)
	}
	return nil
}

// ListLoginAttempts returns the most recent attempts, newest first. Order is
// by id, the order the hash chain was built in, not by created_at.
func (db *DB) ListLoginAttempts(ctx context.Context, limit int) ([]LoginAttempt, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, submitted_code, code_label, code_role, success, failure_reason,
		        COALESCE(client_ip, ''), created_at, prev_hash, hash
		 FROM login_attempts
		 ORDER BY id DESC
		 LIMIT $1`,
		ClampAttemptLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing login attempts: %w", err)
	}
	defer rows.Close()

	var attempts []LoginAttempt
	for rows.Next() {
		var a LoginAttempt
		if err := rows.Scan(&a.ID, &a.MaskedCode, &a.CodeLabel, &a.CodeRole, &a.Success,
			&a.FailureReason, &a.ClientIP, &a.CreatedAt, &a.PrevHash, &a.Hash); err != nil {
			return nil, fmt.Errorf("scanning login attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// LastLoginAttemptHash returns the hash of the newest attempt, or "" when
// the table is empty.
func (db *DB) LastLoginAttemptHash(ctx context.Context) (string, error) {
	var hash string
	err := db.Pool.QueryRow(ctx,
		`SELECT hash FROM login_attempts ORDER BY id DESC LIMIT 1`,
	).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting last login attempt hash: %w", err)
	}
	return hash, nil
}
