// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/authforms/authforms/internal/auth"
	"github.com/authforms/authforms/internal/forms"
	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/validation"
)

type mockBackend struct {
	mock.Mock
}

func newMockBackend(t *testing.T) *mockBackend {
	m := &mockBackend{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockBackend) Login(ctx context.Context, email, password string) (*auth.Account, error) {
	args := m.Called(ctx, email, password)
	account, _ := args.Get(0).(*auth.Account)
	return account, args.Error(1)
}

func (m *mockBackend) Register(ctx context.Context, email, password string, termsAccepted bool) (*auth.Account, error) {
	args := m.Called(ctx, email, password, termsAccepted)
	account, _ := args.Get(0).(*auth.Account)
	return account, args.Error(1)
}

func (m *mockBackend) RequestReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func newSubmitters(t *testing.T, backend auth.Backend, opts ...auth.SubmittersOption) *auth.Submitters {
	t.Helper()
	opts = append([]auth.SubmittersOption{auth.WithRetry(2, time.Millisecond)}, opts...)
	s, err := auth.NewSubmitters(backend, opts...)
	require.NoError(t, err)
	return s
}

func requireRejection(t *testing.T, err error) *submission.Rejection {
	t.Helper()
	rej, ok := submission.AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
	return rej
}

func TestNewSubmitters_NilBackend(t *testing.T) {
	s, err := auth.NewSubmitters(nil)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "backend is required")
}

func TestSubmitters_Login(t *testing.T) {
	ctx := context.Background()
	values := validation.Values{forms.FieldEmail: "user@example.com", forms.FieldPassword: "secret"}

	t.Run("success returns account", func(t *testing.T) {
		backend := newMockBackend(t)
		account := &auth.Account{ID: ulid.Make(), Email: "user@example.com"}
		backend.On("Login", mock.Anything, "user@example.com", "secret").Return(account, nil).Once()

		payload, err := newSubmitters(t, backend).Login().Submit(ctx, values)
		require.NoError(t, err)
		assert.Equal(t, auth.AccountResult{AccountID: account.ID, Email: account.Email}, payload)
	})

	t.Run("invalid credentials become a rejection", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, oops.Code(auth.CodeInvalidCredentials).Wrap(auth.ErrInvalidCredentials)).Once()

		_, err := newSubmitters(t, backend).Login().Submit(ctx, values)
		assert.Equal(t, forms.MsgInvalidCredentials, requireRejection(t, err).Message)
	})

	t.Run("locked account becomes a rejection", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, oops.Code(auth.CodeAccountLocked).Wrap(auth.ErrAccountLocked)).Once()

		_, err := newSubmitters(t, backend).Login().Submit(ctx, values)
		assert.Equal(t, forms.MsgAccountLocked, requireRejection(t, err).Message)
	})

	t.Run("unavailable is retried", func(t *testing.T) {
		backend := newMockBackend(t)
		account := &auth.Account{ID: ulid.Make(), Email: "user@example.com"}
		backend.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, auth.ErrUnavailable).Twice()
		backend.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(account, nil).Once()

		payload, err := newSubmitters(t, backend).Login().Submit(ctx, values)
		require.NoError(t, err)
		assert.Equal(t, account.ID, payload.(auth.AccountResult).AccountID)
	})

	t.Run("exhausted retries are a fault", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, auth.ErrUnavailable).Times(3)

		_, err := newSubmitters(t, backend).Login().Submit(ctx, values)
		require.ErrorIs(t, err, auth.ErrUnavailable)
		_, isRejection := submission.AsRejection(err)
		assert.False(t, isRejection)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		backend := newMockBackend(t)
		boom := errors.New("boom")
		backend.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom).Once()

		_, err := newSubmitters(t, backend).Login().Submit(ctx, values)
		require.ErrorIs(t, err, boom)
	})
}

func TestSubmitters_Register(t *testing.T) {
	ctx := context.Background()
	values := validation.Values{
		forms.FieldEmail:           "new@example.com",
		forms.FieldPassword:        "password123",
		forms.FieldConfirmPassword: "password123",
		forms.FieldTerms:           true,
	}

	t.Run("passes terms through", func(t *testing.T) {
		backend := newMockBackend(t)
		account := &auth.Account{ID: ulid.Make(), Email: "new@example.com"}
		backend.On("Register", mock.Anything, "new@example.com", "password123", true).Return(account, nil).Once()

		payload, err := newSubmitters(t, backend).Register().Submit(ctx, values)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", payload.(auth.AccountResult).Email)
	})

	t.Run("email taken is a field rejection", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, oops.Code(auth.CodeEmailTaken).Wrap(auth.ErrEmailTaken)).Once()

		_, err := newSubmitters(t, backend).Register().Submit(ctx, values)
		rej := requireRejection(t, err)
		assert.Equal(t, forms.MsgEmailTaken, rej.Message)
		assert.Equal(t, forms.FieldEmail, rej.Field)
		assert.Equal(t, forms.MsgEmailTakenField, rej.InlineMessage())
	})
}

func TestSubmitters_RequestReset(t *testing.T) {
	ctx := context.Background()
	values := validation.Values{forms.FieldEmail: "user@example.com"}

	type delivery struct{ email, token string }

	t.Run("known email notifies", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("RequestReset", mock.Anything, "user@example.com").Return("tok", nil).Once()

		var got []delivery
		s := newSubmitters(t, backend, auth.WithResetNotifier(func(_ context.Context, email, token string) {
			got = append(got, delivery{email, token})
		}))

		payload, err := s.RequestReset().Submit(ctx, values)
		require.NoError(t, err)
		assert.Equal(t, auth.ResetRequestResult{Email: "user@example.com"}, payload)
		assert.Equal(t, []delivery{{"user@example.com", "tok"}}, got)
	})

	t.Run("unknown email resolves identically without notifying", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("RequestReset", mock.Anything, "user@example.com").Return("", nil).Once()

		var got []delivery
		s := newSubmitters(t, backend, auth.WithResetNotifier(func(_ context.Context, email, token string) {
			got = append(got, delivery{email, token})
		}))

		payload, err := s.RequestReset().Submit(ctx, values)
		require.NoError(t, err)
		assert.Equal(t, auth.ResetRequestResult{Email: "user@example.com"}, payload)
		assert.Empty(t, got)
	})
}

func TestSubmitters_ResetPassword(t *testing.T) {
	ctx := context.Background()
	values := validation.Values{forms.FieldNewPassword: "brand-new-pass", forms.FieldConfirmPassword: "brand-new-pass"}

	t.Run("success", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("ResetPassword", mock.Anything, "tok", "brand-new-pass").Return(nil).Once()

		payload, err := newSubmitters(t, backend).ResetPassword().ResetPassword(ctx, "tok", values)
		require.NoError(t, err)
		assert.Equal(t, auth.ResetResult{Reset: true}, payload)
	})

	t.Run("invalid token is a rejection", func(t *testing.T) {
		backend := newMockBackend(t)
		backend.On("ResetPassword", mock.Anything, "tok", mock.Anything).
			Return(oops.Code(auth.CodeResetTokenExpired).Wrap(auth.ErrResetTokenInvalid)).Once()

		_, err := newSubmitters(t, backend).ResetPassword().ResetPassword(ctx, "tok", values)
		assert.Equal(t, forms.MsgResetLinkInvalid, requireRejection(t, err).Message)
	})
}

func TestSubmitters_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	s := newSubmitters(t, f.svc)

	m, err := forms.Registration().NewMachine(s.Register())
	require.NoError(t, err)
	defer m.Close()

	values := validation.Values{
		forms.FieldEmail:           "e2e@example.com",
		forms.FieldPassword:        "password123",
		forms.FieldConfirmPassword: "password123",
		forms.FieldTerms:           true,
	}
	st := m.Submit(ctx, values)
	require.Equal(t, submission.StatusSucceeded, st.Status)

	again, err := forms.Registration().NewMachine(s.Register())
	require.NoError(t, err)
	defer again.Close()

	st = again.Submit(ctx, values)
	assert.Equal(t, submission.Failed(forms.MsgEmailTaken), st)
	assert.Equal(t, validation.FieldErrors{forms.FieldEmail: {forms.MsgEmailTakenField}}, again.FieldErrors())
}
