// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package auth is the in-process authentication backend behind the forms.
//
// # Domain Types
//
// Domain types (Account, PasswordReset) should be created using their
// constructors:
//   - NewAccount - creates an Account with a normalized, validated email
//   - NewPasswordReset - creates a PasswordReset with validated account and expiry
//
// Repository implementations receive pre-validated types from these constructors.
//
// # Services
//
// Service coordinates login, registration and the password reset flow.
// Submitters adapts a Service to the form submission interfaces: domain
// failures become user-facing rejections and transient ErrUnavailable
// failures are retried with exponential backoff.
package auth
