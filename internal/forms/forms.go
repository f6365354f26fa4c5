// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package forms declares the authentication forms: login, registration,
// password-reset request and password reset.
package forms

import (
	"fmt"

	"github.com/authforms/authforms/internal/resetgate"
	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/validation"
)

// Form names.
const (
	NameLogin         = "login"
	NameRegistration  = "registration"
	NameResetRequest  = "password-reset-request"
	NamePasswordReset = "password-reset"
)

// Field identifiers.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldTerms           = "terms"
	FieldNewPassword     = "newPassword"
)

// MinPasswordLength is the minimum length of a new password in code points.
const MinPasswordLength = 8

// Messages.
const (
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgEmailRequired      = "Please enter your email address."
	MsgPasswordRequired   = "Password is required."
	MsgPasswordTooShort   = "Password must be at least 8 characters long."
	MsgConfirmTooShort    = "Password confirmation must be at least 8 characters long."
	MsgTermsRequired      = "You must accept the terms and conditions to register."
	MsgPasswordsMismatch  = "Passwords do not match."
	MsgLoginSucceeded     = "Login successful! Redirecting..."
	MsgRegisterSucceeded  = "Registration successful! Redirecting to login..."
	MsgResetRequestSent   = "If an account exists for %s, a password reset link has been sent. Please check your inbox."
	MsgInvalidCredentials = "Invalid email or password. Please try again."
	MsgAccountLocked      = "Your account is temporarily locked. Please try again later."
	MsgEmailTaken         = "This email is already registered. Please try logging in."
	MsgEmailTakenField    = "This email is already registered."
	MsgResetLinkInvalid   = "This password reset link is invalid or has expired. Please request a new one."
	MsgCorrectHighlighted = "Please correct the highlighted fields and try again."
)

// Definition is one form type: its schema and how to word its success.
type Definition struct {
	Name   string
	Schema *validation.Schema

	// Success renders the page-level success message for submitted values.
	Success func(values validation.Values) string
}

// NewMachine builds a submission machine for one mount of the form.
func (d Definition) NewMachine(submitter submission.Submitter, opts ...submission.Option) (*submission.Machine, error) {
	opts = append([]submission.Option{submission.WithInvalidMessage(MsgCorrectHighlighted)}, opts...)
	return submission.NewMachine(d.Name, d.Schema, submitter, opts...)
}

// SuccessMessage returns the success message for values.
func (d Definition) SuccessMessage(values validation.Values) string {
	if d.Success == nil {
		return ""
	}
	return d.Success(values)
}

func static(msg string) func(validation.Values) string {
	return func(validation.Values) string { return msg }
}

var (
	login = Definition{
		Name: NameLogin,
		Schema: validation.NewSchema([]validation.Field{
			{Name: FieldEmail, Type: validation.TypeEmail, Constraints: []validation.Constraint{
				validation.Email(MsgInvalidEmail),
			}},
			{Name: FieldPassword, Type: validation.TypePassword, Constraints: []validation.Constraint{
				validation.Required(MsgPasswordRequired),
			}},
		}),
		Success: static(MsgLoginSucceeded),
	}

	registration = Definition{
		Name: NameRegistration,
		Schema: validation.NewSchema(
			[]validation.Field{
				{Name: FieldEmail, Type: validation.TypeEmail, Constraints: []validation.Constraint{
					validation.Email(MsgInvalidEmail),
				}},
				{Name: FieldPassword, Type: validation.TypePassword, Constraints: []validation.Constraint{
					validation.MinLength(MinPasswordLength, MsgPasswordTooShort),
				}},
				{Name: FieldConfirmPassword, Type: validation.TypePassword, Constraints: []validation.Constraint{
					validation.MinLength(MinPasswordLength, MsgConfirmTooShort),
				}},
				{Name: FieldTerms, Type: validation.TypeBoolean, Constraints: []validation.Constraint{
					validation.IsTrue(MsgTermsRequired),
				}},
			},
			validation.FieldsEqual(FieldPassword, FieldConfirmPassword, FieldConfirmPassword, MsgPasswordsMismatch),
		),
		Success: static(MsgRegisterSucceeded),
	}

	resetRequest = Definition{
		Name: NameResetRequest,
		Schema: validation.NewSchema([]validation.Field{
			{Name: FieldEmail, Type: validation.TypeEmail, Constraints: []validation.Constraint{
				validation.Required(MsgEmailRequired),
				validation.Email(MsgInvalidEmail),
			}},
		}),
		Success: func(values validation.Values) string {
			return fmt.Sprintf(MsgResetRequestSent, values.String(FieldEmail))
		},
	}

	passwordReset = Definition{
		Name: NamePasswordReset,
		Schema: validation.NewSchema(
			[]validation.Field{
				{Name: FieldNewPassword, Type: validation.TypePassword, Constraints: []validation.Constraint{
					validation.MinLength(MinPasswordLength, MsgPasswordTooShort),
				}},
				{Name: FieldConfirmPassword, Type: validation.TypePassword},
			},
			validation.FieldsEqual(FieldNewPassword, FieldConfirmPassword, FieldConfirmPassword, MsgPasswordsMismatch),
		),
		Success: static(resetgate.SuccessMessage),
	}
)

// Login returns the login form.
func Login() Definition { return login }

// Registration returns the registration form.
func Registration() Definition { return registration }

// ResetRequest returns the password-reset request form.
func ResetRequest() Definition { return resetRequest }

// PasswordReset returns the password-reset form.
func PasswordReset() Definition { return passwordReset }

// All returns every form keyed by name.
func All() map[string]Definition {
	return map[string]Definition{
		NameLogin:         login,
		NameRegistration:  registration,
		NameResetRequest:  resetRequest,
		NamePasswordReset: passwordReset,
	}
}

// NewResetGate builds the token-gated password-reset form for one page visit.
func NewResetGate(tokens resetgate.TokenSource, resetter resetgate.Resetter, opts ...submission.Option) (*resetgate.Gate, error) {
	opts = append([]submission.Option{submission.WithInvalidMessage(MsgCorrectHighlighted)}, opts...)
	return resetgate.New(tokens, passwordReset.Schema, resetter, opts...)
}
