// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package submission

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/authforms/authforms/internal/validation"
	"github.com/authforms/authforms/pkg/errutil"
)

var tracer = otel.Tracer("authforms/submission")

// Option configures a Machine during construction.
type Option func(*Machine)

// WithObserver sets the observer notified of transitions and faults.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithInvalidMessage overrides the page-level message used when validation
// fails.
func WithInvalidMessage(msg string) Option {
	return func(m *Machine) {
		m.invalidMessage = msg
	}
}

// WithFaultMessage overrides the generic message shown for unexpected faults.
func WithFaultMessage(msg string) Option {
	return func(m *Machine) {
		m.faultMessage = msg
	}
}

// Machine drives one form instance through validation and submission.
// It is safe for concurrent use; at most one submission is in flight.
type Machine struct {
	form           string
	schema         *validation.Schema
	submitter      Submitter
	observer       Observer
	logger         *slog.Logger
	invalidMessage string
	faultMessage   string

	mu          sync.Mutex
	lifecycle   *fsm.FSM
	state       State
	fieldErrors validation.FieldErrors
	closed      bool
}

// NewMachine creates a Machine in the Idle state for the named form.
func NewMachine(form string, schema *validation.Schema, submitter Submitter, opts ...Option) (*Machine, error) {
	if schema == nil {
		return nil, oops.Code(CodeInvalidMachine).With("form", form).Errorf("schema is required")
	}
	if submitter == nil {
		return nil, oops.Code(CodeInvalidMachine).With("form", form).Errorf("submitter is required")
	}
	m := &Machine{
		form:           form,
		schema:         schema,
		submitter:      submitter,
		observer:       NopObserver{},
		logger:         slog.Default(),
		invalidMessage: DefaultInvalidMessage,
		faultMessage:   DefaultFaultMessage,
		state:          Idle(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lifecycle = newLifecycle(StatusIdle, fsm.Callbacks{
		"enter_state": func(ctx context.Context, e *fsm.Event) {
			m.logger.DebugContext(ctx, "submission transition",
				"form", m.form, "event", e.Event, "from", e.Src, "to", e.Dst)
		},
	})
	return m, nil
}

// Form returns the form name.
func (m *Machine) Form() string {
	return m.form
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FieldErrors returns a copy of the per-field messages from the last attempt.
func (m *Machine) FieldErrors() validation.FieldErrors {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fieldErrors.Clone()
}

// Submit validates values and, when they are valid, runs the submitter.
//
// Submit blocks until the attempt resolves and returns the resulting state.
// A call made while another attempt is in flight, after success, or after
// Close returns the current state without doing anything.
func (m *Machine) Submit(ctx context.Context, values validation.Values) State {
	m.mu.Lock()
	if m.closed {
		st := m.state
		m.mu.Unlock()
		return st
	}
	if !m.lifecycle.Can(EventSubmit.String()) {
		st := m.state
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "submission ignored", "form", m.form, "state", st.Status.String())
		return st
	}
	m.fieldErrors = nil
	m.applyLocked(ctx, Event{Kind: EventSubmit})

	result := m.schema.Validate(values)
	if !result.Valid() {
		m.fieldErrors = result.Errors.Clone()
		m.applyLocked(ctx, Event{Kind: EventInvalid, Message: m.invalidMessage})
		st := m.state
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "submission invalid", "form", m.form, "fields", result.Errors.Fields())
		return st
	}
	m.applyLocked(ctx, Event{Kind: EventValidated})
	m.mu.Unlock()

	ctx, span := tracer.Start(ctx, "submission.submit",
		trace.WithAttributes(attribute.String("form.name", m.form)),
	)
	defer span.End()

	start := time.Now()
	payload, err := m.invoke(ctx, values.Clone())
	elapsed := time.Since(start)

	event, rejection := m.outcome(ctx, span, payload, err)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.logger.DebugContext(ctx, "discarding resolution for closed form",
			"form", m.form, "event", event.Kind.String())
		m.observer.Discarded(ctx, m.form, elapsed)
		return m.state
	}
	if rejection != nil && rejection.Field != "" && m.schema.HasField(rejection.Field) {
		m.fieldErrors = validation.FieldErrors{rejection.Field: {rejection.InlineMessage()}}
	}
	m.applyLocked(ctx, event)
	m.observer.Resolved(ctx, m.form, m.state, elapsed)
	return m.state
}

// Reset returns a resolved machine to Idle and clears field errors.
// It has no effect while a submission is in flight or after Close.
func (m *Machine) Reset(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return m.state
	}
	if m.lifecycle.Can(EventReset.String()) {
		m.fieldErrors = nil
		m.applyLocked(ctx, Event{Kind: EventReset})
	}
	return m.state
}

// Close marks the form instance as destroyed. A submission that resolves
// afterwards is discarded and reported to the observer through Discarded.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Closed reports whether Close was called.
func (m *Machine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// invoke calls the submitter, converting a panic into a fault.
func (m *Machine) invoke(ctx context.Context, values validation.Values) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload, err = nil, panicError(m.form, r)
		}
	}()
	return m.submitter.Submit(ctx, values)
}

// outcome classifies the submitter result into the event to apply.
func (m *Machine) outcome(ctx context.Context, span trace.Span, payload any, err error) (Event, *Rejection) {
	if err == nil {
		span.SetAttributes(attribute.String("submission.outcome", "succeeded"))
		return Event{Kind: EventResolved, Payload: payload}, nil
	}
	if rejection, ok := AsRejection(err); ok {
		span.SetAttributes(attribute.String("submission.outcome", "rejected"))
		m.logger.InfoContext(ctx, "submission rejected",
			"form", m.form, "reason", rejection.Message, "field", rejection.Field)
		return Event{Kind: EventRejected, Message: rejection.Message}, rejection
	}

	span.SetAttributes(attribute.String("submission.outcome", "faulted"))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	errutil.LogErrorContext(ctx, m.logger, "submission fault", err)
	m.observer.Fault(ctx, m.form, err)
	return Event{Kind: EventFaulted, Message: m.faultMessage}, nil
}

// applyLocked fires e on the lifecycle and records the state it enters.
// Events that do not apply to the current state are ignored.
func (m *Machine) applyLocked(ctx context.Context, e Event) {
	// The transition must not be lost to a cancelled request context.
	if err := m.lifecycle.Event(context.WithoutCancel(ctx), e.Kind.String()); err != nil {
		m.logger.DebugContext(ctx, "submission event ignored",
			"form", m.form, "event", e.Kind.String(), "error", err)
		return
	}
	prev := m.state
	m.state = stateFor(m.lifecycle.Current(), e)
	m.observer.Transition(ctx, m.form, prev, m.state)
}
