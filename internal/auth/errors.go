// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable marks a transient backend failure that may succeed on retry.
var ErrUnavailable = errors.New("authentication backend unavailable")

// Error codes returned by the auth package.
const (
	CodeEmptyPassword      = "AUTH_EMPTY_PASSWORD"
	CodeSaltFailed         = "AUTH_SALT_FAILED"
	CodeInvalidHash        = "AUTH_INVALID_HASH"
	CodeInvalidEmail       = "AUTH_INVALID_EMAIL"
	CodeInvalidAccount     = "AUTH_INVALID_ACCOUNT"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAccountLocked      = "AUTH_ACCOUNT_LOCKED"
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeLoginFailed        = "AUTH_LOGIN_FAILED"
	CodeRegisterFailed     = "AUTH_REGISTER_FAILED"
	CodeServiceInvalid     = "AUTH_SERVICE_INVALID"

	CodeResetTokenGenerate = "RESET_TOKEN_GENERATE_FAILED"
	CodeResetTokenEmpty    = "RESET_TOKEN_EMPTY"
	CodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	CodeResetTokenExpired  = "RESET_TOKEN_EXPIRED"
	CodeResetInvalid       = "RESET_INVALID"
	CodeResetRequestFailed = "RESET_REQUEST_FAILED"
	CodeResetValidate      = "RESET_VALIDATE_FAILED"
	CodeResetPasswordEmpty = "RESET_PASSWORD_EMPTY"
	CodeResetFailed        = "RESET_PASSWORD_FAILED"
)

// Sentinels for conditions the submitters translate into user-facing
// rejections. Service errors wrap them so errors.Is works through oops.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrEmailTaken         = errors.New("email already registered")
	ErrResetTokenInvalid  = errors.New("reset token invalid or expired")
)
