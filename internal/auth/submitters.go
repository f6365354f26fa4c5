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
	"github.com/sethvargo/go-retry"

	"github.com/authforms/authforms/internal/forms"
	"github.com/authforms/authforms/internal/resetgate"
	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/validation"
)

// Retry defaults for transient backend failures.
const (
	DefaultMaxRetries     = 2
	DefaultRetryBaseDelay = 100 * time.Millisecond
)

// Backend is the subset of Service the form submitters call.
type Backend interface {
	Login(ctx context.Context, email, password string) (*Account, error)
	Register(ctx context.Context, email, password string, termsAccepted bool) (*Account, error)
	RequestReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// ResetNotifier delivers a reset token to the account holder.
type ResetNotifier func(ctx context.Context, email, token string)

// AccountResult is the success payload of login and registration.
type AccountResult struct {
	AccountID ulid.ULID `json:"account_id"`
	Email     string    `json:"email"`
}

// ResetRequestResult is the success payload of a reset request. It never
// reveals whether the email is registered.
type ResetRequestResult struct {
	Email string `json:"email"`
}

// ResetResult is the success payload of a password reset.
type ResetResult struct {
	Reset bool `json:"reset"`
}

// Submitters adapts a Backend to the form submission interfaces, turning
// domain errors into rejections and retrying ErrUnavailable.
type Submitters struct {
	backend    Backend
	maxRetries uint64
	baseDelay  time.Duration
	notify     ResetNotifier
	logger     *slog.Logger
}

// SubmittersOption configures Submitters.
type SubmittersOption func(*Submitters)

// WithRetry sets the retry budget for ErrUnavailable. maxRetries of zero
// disables retries.
func WithRetry(maxRetries uint64, baseDelay time.Duration) SubmittersOption {
	return func(s *Submitters) {
		s.maxRetries = maxRetries
		if baseDelay > 0 {
			s.baseDelay = baseDelay
		}
	}
}

// WithResetNotifier sets how issued reset tokens are delivered.
func WithResetNotifier(n ResetNotifier) SubmittersOption {
	return func(s *Submitters) {
		if n != nil {
			s.notify = n
		}
	}
}

// WithSubmittersLogger sets the logger.
func WithSubmittersLogger(logger *slog.Logger) SubmittersOption {
	return func(s *Submitters) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSubmitters creates Submitters for backend.
func NewSubmitters(backend Backend, opts ...SubmittersOption) (*Submitters, error) {
	if backend == nil {
		return nil, oops.Code(CodeServiceInvalid).Errorf("backend is required")
	}
	s := &Submitters{
		backend:    backend,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultRetryBaseDelay,
		notify:     func(context.Context, string, string) {},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// do runs f, retrying while it returns ErrUnavailable.
func (s *Submitters) do(ctx context.Context, op string, f func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.baseDelay))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := f(ctx)
		if err != nil && errors.Is(err, ErrUnavailable) {
			s.logger.WarnContext(ctx, "backend unavailable, retrying",
				"operation", op,
				"attempt", attempt)
			return retry.RetryableError(err)
		}
		return err
	})
}

// Login returns the login form submitter.
func (s *Submitters) Login() submission.Submitter {
	return submission.SubmitterFunc(func(ctx context.Context, values validation.Values) (any, error) {
		var account *Account
		err := s.do(ctx, "login", func(ctx context.Context) error {
			var err error
			account, err = s.backend.Login(ctx, values.String(forms.FieldEmail), values.String(forms.FieldPassword))
			return err
		})
		switch {
		case err == nil:
			return AccountResult{AccountID: account.ID, Email: account.Email}, nil
		case errors.Is(err, ErrInvalidCredentials):
			return nil, submission.Reject(forms.MsgInvalidCredentials)
		case errors.Is(err, ErrAccountLocked):
			return nil, submission.Reject(forms.MsgAccountLocked)
		default:
			return nil, err
		}
	})
}

// Register returns the registration form submitter.
func (s *Submitters) Register() submission.Submitter {
	return submission.SubmitterFunc(func(ctx context.Context, values validation.Values) (any, error) {
		var account *Account
		err := s.do(ctx, "register", func(ctx context.Context) error {
			var err error
			account, err = s.backend.Register(ctx,
				values.String(forms.FieldEmail),
				values.String(forms.FieldPassword),
				values.Bool(forms.FieldTerms))
			return err
		})
		switch {
		case err == nil:
			return AccountResult{AccountID: account.ID, Email: account.Email}, nil
		case errors.Is(err, ErrEmailTaken):
			return nil, submission.RejectField(forms.FieldEmail, forms.MsgEmailTakenField, forms.MsgEmailTaken)
		default:
			return nil, err
		}
	})
}

// RequestReset returns the password-reset request form submitter. Issued
// tokens go to the ResetNotifier; unknown emails resolve the same way as
// known ones.
func (s *Submitters) RequestReset() submission.Submitter {
	return submission.SubmitterFunc(func(ctx context.Context, values validation.Values) (any, error) {
		email := values.String(forms.FieldEmail)
		var token string
		err := s.do(ctx, "request_reset", func(ctx context.Context) error {
			var err error
			token, err = s.backend.RequestReset(ctx, email)
			return err
		})
		if err != nil {
			return nil, err
		}
		if token != "" {
			s.notify(ctx, email, token)
		}
		return ResetRequestResult{Email: email}, nil
	})
}

// ResetPassword returns the token-gated password reset handler.
func (s *Submitters) ResetPassword() resetgate.Resetter {
	return resetgate.ResetterFunc(func(ctx context.Context, token string, values validation.Values) (any, error) {
		err := s.do(ctx, "reset_password", func(ctx context.Context) error {
			return s.backend.ResetPassword(ctx, token, values.String(forms.FieldNewPassword))
		})
		switch {
		case err == nil:
			return ResetResult{Reset: true}, nil
		case errors.Is(err, ErrResetTokenInvalid):
			return nil, submission.Reject(forms.MsgResetLinkInvalid)
		default:
			return nil, err
		}
	})
}
