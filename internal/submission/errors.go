// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package submission

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes used by the submission package.
const (
	CodeInvalidMachine  = "SUBMISSION_INVALID_MACHINE"
	CodeSubmissionPanic = "SUBMISSION_PANIC"
)

// User-facing messages used when a form does not override them.
const (
	DefaultInvalidMessage = "Please correct the highlighted fields and try again."
	DefaultFaultMessage   = "An unexpected error occurred. Please try again."
)

// Rejection is a business rejection returned by a Submitter, such as a
// duplicate account. Message is shown at page level. When Field names a
// declared field, FieldMessage (or Message if empty) is shown inline on it.
type Rejection struct {
	Message      string
	Field        string
	FieldMessage string
}

func (r *Rejection) Error() string {
	return r.Message
}

// InlineMessage returns the message to render on the implicated field.
func (r *Rejection) InlineMessage() string {
	if r.FieldMessage != "" {
		return r.FieldMessage
	}
	return r.Message
}

// Reject returns a page-level rejection.
func Reject(message string) *Rejection {
	return &Rejection{Message: message}
}

// RejectField returns a rejection attached to field.
func RejectField(field, fieldMessage, message string) *Rejection {
	return &Rejection{Message: message, Field: field, FieldMessage: fieldMessage}
}

// AsRejection unwraps err into a Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) && r != nil {
		return r, true
	}
	return nil, false
}

func panicError(form string, recovered any) error {
	if err, ok := recovered.(error); ok {
		return oops.Code(CodeSubmissionPanic).
			With("form", form).
			Wrapf(err, "submit operation panicked")
	}
	return oops.Code(CodeSubmissionPanic).
		With("form", form).
		With("panic", recovered).
		Errorf("submit operation panicked: %v", recovered)
}
