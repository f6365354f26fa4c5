// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package submission

import (
	"context"
	"time"

	"github.com/authforms/authforms/internal/validation"
)

// Submitter performs the operation behind a form once its values are valid.
//
// Returning a *Rejection (directly or wrapped) signals a business rejection.
// Any other error, or a panic, is an unexpected fault.
type Submitter interface {
	Submit(ctx context.Context, values validation.Values) (any, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, values validation.Values) (any, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, values validation.Values) (any, error) {
	return f(ctx, values)
}

// Observer receives lifecycle notifications from a Machine.
// Transition, Resolved and Discarded are called while the machine holds its
// lock, so
// implementations must be quick and must not call back into the machine.
type Observer interface {
	// Transition is called for every state change.
	Transition(ctx context.Context, form string, from, to State)

	// Resolved is called once the submit operation returns, with the state it
	// produced and how long the operation took.
	Resolved(ctx context.Context, form string, to State, elapsed time.Duration)

	// Discarded is called instead of Resolved when the submit operation
	// returns after the machine was closed. The machine stays in Submitting.
	Discarded(ctx context.Context, form string, elapsed time.Duration)

	// Fault receives the underlying error of an unexpected fault. The user
	// only ever sees the generic fault message.
	Fault(ctx context.Context, form string, err error)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

// Transition does nothing.
func (NopObserver) Transition(context.Context, string, State, State) {}

// Resolved does nothing.
func (NopObserver) Resolved(context.Context, string, State, time.Duration) {}

// Discarded does nothing.
func (NopObserver) Discarded(context.Context, string, time.Duration) {}

// Fault does nothing.
func (NopObserver) Fault(context.Context, string, error) {}
