// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authforms/authforms/pkg/errutil"
)

// dummyPasswordHash is verified when an account doesn't exist so that
// response time does not reveal which emails are registered. It never
// matches any password.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service is the authentication backend behind the forms.
type Service struct {
	accounts AccountRepository
	resets   PasswordResetRepository
	hasher   PasswordHasher
	lockout  LockoutPolicy
	latency  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLatency delays every call by d to simulate a remote backend.
func WithLatency(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.latency = d
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLockoutPolicy sets the login lockout policy.
func WithLockoutPolicy(p LockoutPolicy) ServiceOption {
	return func(s *Service) {
		s.lockout = p.withDefaults()
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service.
func NewService(accounts AccountRepository, resets PasswordResetRepository, hasher PasswordHasher, opts ...ServiceOption) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code(CodeServiceInvalid).Errorf("accounts repository is required")
	}
	if resets == nil {
		return nil, oops.Code(CodeServiceInvalid).Errorf("resets repository is required")
	}
	if hasher == nil {
		return nil, oops.Code(CodeServiceInvalid).Errorf("password hasher is required")
	}

	s := &Service{
		accounts: accounts,
		resets:   resets,
		hasher:   hasher,
		lockout:  DefaultLockoutPolicy(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// wait blocks for the configured latency or until ctx is done.
func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Login verifies credentials and returns the account.
//
// Unknown emails and wrong passwords both return ErrInvalidCredentials, and
// the password is verified in both cases to keep timing uniform. Lockout is
// checked after verification for the same reason.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, error) {
	if err := s.wait(ctx); err != nil {
		return nil, oops.Code(CodeLoginFailed).With("operation", "wait").Wrap(err)
	}

	account, lookupErr := s.accounts.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = account.PasswordHash
		exists = true
	case !errors.Is(lookupErr, ErrNotFound):
		return nil, oops.Code(CodeLoginFailed).
			With("operation", "get account by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !exists {
			return nil, oops.Code(CodeInvalidCredentials).Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code(CodeLoginFailed).
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	now := s.now()
	if !exists || !valid {
		if exists {
			s.recordFailure(ctx, account.ID, now)
		}
		return nil, oops.Code(CodeInvalidCredentials).Wrap(ErrInvalidCredentials)
	}

	if account.IsLocked(now) {
		return nil, oops.Code(CodeAccountLocked).
			With("locked_until", account.LockedUntil).
			Wrap(ErrAccountLocked)
	}

	account.RecordSuccess(now)
	if s.hasher.NeedsUpgrade(account.PasswordHash) {
		if newHash, err := s.hasher.Hash(password); err == nil {
			account.PasswordHash = newHash
		}
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		errutil.LogErrorContext(ctx, s.logger, "failed to record login success", err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID.String())
	return account, nil
}

// recordFailure counts a failed login against the account and logs how many
// attempts remain before lockout.
func (s *Service) recordFailure(ctx context.Context, id ulid.ULID, now time.Time) {
	updated, err := s.accounts.RecordFailure(ctx, id, s.lockout, now)
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "failed to record login failure", err)
		return
	}
	status := s.lockout.Check(updated.FailedAttempts, updated.LockedUntil, now)
	if status.Locked {
		s.logger.WarnContext(ctx, "account locked after failed logins",
			"account_id", id.String(), "failed_attempts", updated.FailedAttempts, "locked_for", status.Remaining)
		return
	}
	s.logger.DebugContext(ctx, "login failed", "account_id", id.String(), "attempts_left", status.AttemptsLeft)
}

// Register creates an account. Returns an error wrapping ErrEmailTaken if the
// email is already registered.
func (s *Service) Register(ctx context.Context, email, password string, termsAccepted bool) (*Account, error) {
	if err := s.wait(ctx); err != nil {
		return nil, oops.Code(CodeRegisterFailed).With("operation", "wait").Wrap(err)
	}
	if !termsAccepted {
		return nil, oops.Code(CodeInvalidAccount).Errorf("terms must be accepted")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code(CodeRegisterFailed).With("operation", "hash password").Wrap(err)
	}

	now := s.now()
	account, err := NewAccount(email, hash, now)
	if err != nil {
		return nil, err
	}
	account.TermsAcceptedAt = &now

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, oops.Code(CodeEmailTaken).With("email", account.Email).Wrap(err)
		}
		return nil, oops.Code(CodeRegisterFailed).With("operation", "create account").Wrap(err)
	}

	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID.String())
	return account, nil
}

// RequestReset issues a reset token for email and returns the plaintext
// token for delivery. Unknown emails succeed with an empty token so callers
// cannot probe for registered addresses.
func (s *Service) RequestReset(ctx context.Context, email string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", oops.Code(CodeResetRequestFailed).With("operation", "wait").Wrap(err)
	}

	account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", oops.Code(CodeResetRequestFailed).With("operation", "get account by email").Wrap(err)
	}

	token, hash, err := GenerateResetToken()
	if err != nil {
		return "", oops.Code(CodeResetRequestFailed).With("operation", "generate token").Wrap(err)
	}

	now := s.now()
	reset, err := NewPasswordReset(account.ID, hash, now.Add(ResetTokenExpiry), now)
	if err != nil {
		return "", oops.Code(CodeResetRequestFailed).With("operation", "new password reset").Wrap(err)
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return "", oops.Code(CodeResetRequestFailed).With("operation", "create reset").Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset requested", "account_id", account.ID.String())
	return token, nil
}

// ValidateToken returns the account ID a reset token belongs to.
// Unknown and expired tokens return an error wrapping ErrResetTokenInvalid.
func (s *Service) ValidateToken(ctx context.Context, token string) (ulid.ULID, error) {
	if token == "" {
		return ulid.ULID{}, oops.Code(CodeResetTokenEmpty).Wrap(ErrResetTokenInvalid)
	}

	reset, err := s.resets.GetByTokenHash(ctx, HashResetToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ulid.ULID{}, oops.Code(CodeResetTokenInvalid).Wrap(ErrResetTokenInvalid)
		}
		return ulid.ULID{}, oops.Code(CodeResetValidate).With("operation", "get reset by token hash").Wrap(err)
	}

	if reset.IsExpired(s.now()) {
		return ulid.ULID{}, oops.Code(CodeResetTokenExpired).
			With("expires_at", reset.ExpiresAt).
			Wrap(ErrResetTokenInvalid)
	}
	return reset.AccountID, nil
}

// ResetPassword sets a new password using a reset token. All of the
// account's reset tokens are deleted afterwards, so a token works once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.wait(ctx); err != nil {
		return oops.Code(CodeResetFailed).With("operation", "wait").Wrap(err)
	}
	if newPassword == "" {
		return oops.Code(CodeResetPasswordEmpty).Errorf("new password cannot be empty")
	}

	accountID, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code(CodeResetFailed).With("operation", "hash password").Wrap(err)
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return oops.Code(CodeResetFailed).With("operation", "update password").Wrap(err)
	}

	if err := s.resets.DeleteByAccount(ctx, accountID); err != nil {
		errutil.LogErrorContext(ctx, s.logger, "failed to delete reset tokens", err)
	}

	s.logger.InfoContext(ctx, "password reset", "account_id", accountID.String())
	return nil
}
