// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package submissiontest provides test doubles for the submission package.
package submissiontest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/validation"
)

// MockSubmitter is a testify mock implementing submission.Submitter.
type MockSubmitter struct {
	mock.Mock
}

// NewMockSubmitter creates a MockSubmitter whose expectations are asserted
// when the test finishes.
func NewMockSubmitter(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockSubmitter {
	m := &MockSubmitter{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Submit records the call and returns the configured payload and error.
func (m *MockSubmitter) Submit(ctx context.Context, values validation.Values) (any, error) {
	args := m.Called(ctx, values)
	return args.Get(0), args.Error(1)
}

// Transition is one recorded state change.
type Transition struct {
	Form string
	From submission.State
	To   submission.State
}

// RecordingObserver records every notification it receives.
type RecordingObserver struct {
	mu          sync.Mutex
	transitions []Transition
	resolved    []submission.State
	faults      []error
	discarded   int
}

// Transition records a state change.
func (o *RecordingObserver) Transition(_ context.Context, form string, from, to submission.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, Transition{Form: form, From: from, To: to})
}

// Resolved records a resolution.
func (o *RecordingObserver) Resolved(_ context.Context, _ string, to submission.State, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolved = append(o.resolved, to)
}

// Discarded counts a resolution that arrived after Close.
func (o *RecordingObserver) Discarded(context.Context, string, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discarded++
}

// Fault records a fault.
func (o *RecordingObserver) Fault(_ context.Context, _ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.faults = append(o.faults, err)
}

// Statuses returns the sequence of entered statuses.
func (o *RecordingObserver) Statuses() []submission.Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]submission.Status, 0, len(o.transitions))
	for _, tr := range o.transitions {
		out = append(out, tr.To.Status)
	}
	return out
}

// Resolutions returns the states passed to Resolved.
func (o *RecordingObserver) Resolutions() []submission.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]submission.State(nil), o.resolved...)
}

// Faults returns the recorded faults.
func (o *RecordingObserver) Faults() []error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]error(nil), o.faults...)
}

// Discards returns how many resolutions were discarded.
func (o *RecordingObserver) Discards() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.discarded
}
