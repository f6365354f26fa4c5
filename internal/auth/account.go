// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authforms/authforms/internal/validation"
)

// Account is a registered user identified by email.
type Account struct {
	ID              ulid.ULID
	Email           string
	PasswordHash    string
	FailedAttempts  int
	LockedUntil     *time.Time
	TermsAcceptedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccount creates a validated Account. The email is normalized.
func NewAccount(email, passwordHash string, now time.Time) (*Account, error) {
	email = NormalizeEmail(email)
	if !validation.IsEmail(email) {
		return nil, oops.Code(CodeInvalidEmail).With("email", email).Errorf("invalid email address")
	}
	if strings.TrimSpace(passwordHash) == "" {
		return nil, oops.Code(CodeInvalidAccount).Errorf("password hash cannot be empty")
	}
	return &Account{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsLocked returns true if the account is locked at now.
func (a *Account) IsLocked(now time.Time) bool {
	return IsLockedOut(a.LockedUntil, now)
}

// RecordFailure increments the failure counter and applies the lockout
// policy.
func (a *Account) RecordFailure(policy LockoutPolicy, now time.Time) {
	a.FailedAttempts++
	a.LockedUntil = policy.LockUntil(a.FailedAttempts, now)
	a.UpdatedAt = now
}

// RecordSuccess clears the failure counter and any lockout.
func (a *Account) RecordSuccess(now time.Time) {
	a.FailedAttempts = 0
	a.LockedUntil = nil
	a.UpdatedAt = now
}

// AccountRepository manages account storage.
type AccountRepository interface {
	// Create stores a new account. Returns ErrEmailTaken if the email is in use.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	// Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update replaces an existing account.
	Update(ctx context.Context, account *Account) error

	// UpdatePassword updates only the password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// RecordFailure atomically applies a failed login to the stored account
	// under policy and returns the updated account.
	RecordFailure(ctx context.Context, id ulid.ULID, policy LockoutPolicy, now time.Time) (*Account, error)
}
