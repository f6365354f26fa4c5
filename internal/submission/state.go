// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package submission

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// Status identifies which variant a State holds.
type Status int

// Submission statuses.
const (
	StatusIdle Status = iota
	StatusValidating
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

var statusStrings = [...]string{
	"idle",
	"validating",
	"submitting",
	"succeeded",
	"failed",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusStrings) {
		return statusStrings[s]
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// State is the submission lifecycle as a tagged variant. Payload is only set
// for StatusSucceeded and Message only for StatusFailed.
type State struct {
	Status  Status
	Payload any
	Message string
}

// Idle returns the initial state.
func Idle() State { return State{Status: StatusIdle} }

// Succeeded returns a success state carrying payload.
func Succeeded(payload any) State { return State{Status: StatusSucceeded, Payload: payload} }

// Failed returns a failure state carrying a user-facing message.
func Failed(message string) State { return State{Status: StatusFailed, Message: message} }

// Busy reports whether a submission is in progress.
func (s State) Busy() bool {
	return s.Status == StatusValidating || s.Status == StatusSubmitting
}

func (s State) String() string {
	switch s.Status {
	case StatusFailed:
		return fmt.Sprintf("failed(%q)", s.Message)
	case StatusSucceeded:
		return fmt.Sprintf("succeeded(%v)", s.Payload)
	default:
		return s.Status.String()
	}
}

// EventKind identifies a lifecycle event.
type EventKind int

// Lifecycle events.
const (
	EventSubmit EventKind = iota
	EventValidated
	EventInvalid
	EventResolved
	EventRejected
	EventFaulted
	EventReset
)

var eventStrings = [...]string{
	"submit",
	"validated",
	"invalid",
	"resolved",
	"rejected",
	"faulted",
	"reset",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventStrings) {
		return eventStrings[k]
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Event drives a transition. Payload is used by EventResolved; Message by
// EventInvalid, EventRejected and EventFaulted.
type Event struct {
	Kind    EventKind
	Payload any
	Message string
}

// lifecycleEvents is the submission lifecycle table.
//
//	idle, failed      --submit-->    validating
//	validating        --validated--> submitting
//	validating        --invalid-->   failed
//	submitting        --resolved-->  succeeded
//	submitting        --rejected-->  failed
//	submitting        --faulted-->   failed
//	succeeded, failed --reset-->     idle
var lifecycleEvents = fsm.Events{
	{Name: EventSubmit.String(), Src: []string{StatusIdle.String(), StatusFailed.String()}, Dst: StatusValidating.String()},
	{Name: EventValidated.String(), Src: []string{StatusValidating.String()}, Dst: StatusSubmitting.String()},
	{Name: EventInvalid.String(), Src: []string{StatusValidating.String()}, Dst: StatusFailed.String()},
	{Name: EventResolved.String(), Src: []string{StatusSubmitting.String()}, Dst: StatusSucceeded.String()},
	{Name: EventRejected.String(), Src: []string{StatusSubmitting.String()}, Dst: StatusFailed.String()},
	{Name: EventFaulted.String(), Src: []string{StatusSubmitting.String()}, Dst: StatusFailed.String()},
	{Name: EventReset.String(), Src: []string{StatusSucceeded.String(), StatusFailed.String()}, Dst: StatusIdle.String()},
}

func newLifecycle(initial Status, callbacks fsm.Callbacks) *fsm.FSM {
	return fsm.NewFSM(initial.String(), lifecycleEvents, callbacks)
}

func parseStatus(name string) (Status, bool) {
	for i, s := range statusStrings {
		if s == name {
			return Status(i), true
		}
	}
	return 0, false
}

// stateFor builds the variant for the lifecycle state named current, taking
// the payload or message from the event that entered it.
func stateFor(current string, e Event) State {
	status, _ := parseStatus(current)
	switch status {
	case StatusSucceeded:
		return Succeeded(e.Payload)
	case StatusFailed:
		return Failed(e.Message)
	default:
		return State{Status: status}
	}
}

// Transition returns the state that follows s on e. It is total: an event
// that does not apply to s leaves s unchanged.
func Transition(s State, e Event) State {
	lifecycle := newLifecycle(s.Status, nil)
	if err := lifecycle.Event(context.Background(), e.Kind.String()); err != nil {
		return s
	}
	return stateFor(lifecycle.Current(), e)
}
