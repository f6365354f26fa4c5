// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authforms/authforms/internal/auth"
)

// PasswordResetRepository implements auth.PasswordResetRepository in memory.
type PasswordResetRepository struct {
	mu     sync.RWMutex
	byHash map[string]auth.PasswordReset
}

// NewPasswordResetRepository creates an empty PasswordResetRepository.
func NewPasswordResetRepository() *PasswordResetRepository {
	return &PasswordResetRepository{byHash: make(map[string]auth.PasswordReset)}
}

// Create stores a new password reset request.
func (r *PasswordResetRepository) Create(_ context.Context, reset *auth.PasswordReset) error {
	if reset == nil {
		return oops.Code("RESET_CREATE_FAILED").Errorf("reset is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[reset.TokenHash]; ok {
		return oops.Code("RESET_CREATE_FAILED").Errorf("token hash already exists")
	}
	r.byHash[reset.TokenHash] = *reset
	return nil
}

// GetByTokenHash retrieves a reset request by its token hash.
func (r *PasswordResetRepository) GetByTokenHash(_ context.Context, tokenHash string) (*auth.PasswordReset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reset, ok := r.byHash[tokenHash]
	if !ok {
		return nil, oops.Wrap(auth.ErrNotFound)
	}
	return &reset, nil
}

// DeleteByAccount removes all reset requests for an account.
func (r *PasswordResetRepository) DeleteByAccount(_ context.Context, accountID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, reset := range r.byHash {
		if reset.AccountID == accountID {
			delete(r.byHash, hash)
		}
	}
	return nil
}

// DeleteExpired removes all reset requests expired at now and returns how
// many were removed.
func (r *PasswordResetRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, reset := range r.byHash {
		if reset.IsExpired(now) {
			delete(r.byHash, hash)
			n++
		}
	}
	return n, nil
}

var _ auth.PasswordResetRepository = (*PasswordResetRepository)(nil)
