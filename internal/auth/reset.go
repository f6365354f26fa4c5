// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes  = 32        // 32 bytes = 64 hex chars
	ResetTokenExpiry = time.Hour // 1 hour expiry
)

// PasswordReset is a pending password reset. Only the token hash is stored.
type PasswordReset struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewPasswordReset creates a validated PasswordReset.
func NewPasswordReset(accountID ulid.ULID, tokenHash string, expiresAt, now time.Time) (*PasswordReset, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code(CodeResetInvalid).Errorf("account ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code(CodeResetInvalid).Errorf("token hash cannot be empty")
	}
	if !expiresAt.After(now) {
		return nil, oops.Code(CodeResetInvalid).
			With("expires_at", expiresAt).
			Errorf("expiry must be in the future")
	}
	return &PasswordReset{
		ID:        ulid.Make(),
		AccountID: accountID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// IsExpired returns true if the reset has expired at now.
func (r *PasswordReset) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// GenerateResetToken creates a secure random token and its hash.
// The plaintext token goes into the reset link; only the hash is stored.
func GenerateResetToken() (token, hash string, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code(CodeResetTokenGenerate).Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	return token, HashResetToken(token), nil
}

// VerifyResetToken checks if the plaintext token matches the stored hash in
// constant time.
func VerifyResetToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashResetToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// HashResetToken computes the hex SHA-256 of a token.
func HashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// PasswordResetRepository manages pending resets.
type PasswordResetRepository interface {
	// Create stores a new password reset request.
	Create(ctx context.Context, reset *PasswordReset) error

	// GetByTokenHash retrieves a reset request by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error)

	// DeleteByAccount removes all reset requests for an account.
	DeleteByAccount(ctx context.Context, accountID ulid.ULID) error

	// DeleteExpired removes all reset requests expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
