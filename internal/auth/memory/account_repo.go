// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package memory provides in-memory implementations of the auth repositories.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authforms/authforms/internal/auth"
)

// AccountRepository implements auth.AccountRepository in memory.
// Stored accounts are copied on the way in and out.
type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[ulid.ULID]*auth.Account
	byEmail map[string]ulid.ULID
}

// NewAccountRepository creates an empty AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[ulid.ULID]*auth.Account),
		byEmail: make(map[string]ulid.ULID),
	}
}

// Create stores a new account.
func (r *AccountRepository) Create(_ context.Context, account *auth.Account) error {
	if account == nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").Errorf("account is required")
	}
	email := auth.NormalizeEmail(account.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return oops.With("email", email).Wrap(auth.ErrEmailTaken)
	}
	if _, ok := r.byID[account.ID]; ok {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("account_id", account.ID.String()).
			Errorf("account already exists")
	}
	stored := cloneAccount(account)
	stored.Email = email
	r.byID[account.ID] = stored
	r.byEmail[email] = account.ID
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, oops.With("account_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return cloneAccount(account), nil
}

// GetByEmail retrieves an account by email, ignoring case.
func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, oops.Wrap(auth.ErrNotFound)
	}
	return cloneAccount(r.byID[id]), nil
}

// Update replaces an existing account. The email cannot change.
func (r *AccountRepository) Update(_ context.Context, account *auth.Account) error {
	if account == nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").Errorf("account is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[account.ID]
	if !ok {
		return oops.With("account_id", account.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	stored := cloneAccount(account)
	stored.Email = existing.Email
	r.byID[account.ID] = stored
	return nil
}

// UpdatePassword replaces the password hash and clears any lockout.
func (r *AccountRepository) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok {
		return oops.With("account_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	account.PasswordHash = passwordHash
	account.FailedAttempts = 0
	account.LockedUntil = nil
	return nil
}

// RecordFailure increments the stored failure counter and applies policy
// under the repository lock.
func (r *AccountRepository) RecordFailure(_ context.Context, id ulid.ULID, policy auth.LockoutPolicy, now time.Time) (*auth.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, oops.With("account_id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	account.RecordFailure(policy, now)
	return cloneAccount(account), nil
}

// Len returns the number of stored accounts.
func (r *AccountRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func cloneAccount(a *auth.Account) *auth.Account {
	c := *a
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		c.LockedUntil = &t
	}
	if a.TermsAcceptedAt != nil {
		t := *a.TermsAcceptedAt
		c.TermsAcceptedAt = &t
	}
	return &c
}

var _ auth.AccountRepository = (*AccountRepository)(nil)
