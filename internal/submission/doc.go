// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package submission sequences form validation and an injected submit
// operation into a success or failure outcome.
//
// A Machine moves through idle, validating, submitting, then succeeded or
// failed. Invalid values never reach the Submitter. A Submitter signals a
// business rejection by returning a *Rejection; any other error or a panic
// is an unexpected fault, reported to the Observer and replaced by a generic
// message for the user.
//
// The transition rules live in Transition, a pure function of the current
// state and an event. Machine applies them under a mutex and runs the
// Submitter outside of it.
package submission
