// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package resetgate guards the password-reset form behind the presence of a
// reset token taken from the page URL.
package resetgate

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/validation"
)

// TokenParam is the query parameter carrying the reset token.
const TokenParam = "token"

// Messages shown by the gate.
const (
	MissingTokenMessage = "Invalid or missing password reset link. Please request a new one."
	SuccessMessage      = "Your password has been successfully reset! You can now log in with your new password."
)

// CodeInvalidGate is returned when a gate is built with missing dependencies.
const CodeInvalidGate = "RESET_GATE_INVALID"

// Status is the three-way status of the reset page.
type Status int

// Gate statuses.
const (
	StatusIdle Status = iota
	StatusError
	StatusSuccess
)

var statusStrings = [...]string{"idle", "error", "success"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusStrings) {
		return statusStrings[s]
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Context is the reset page's view of the token and its status. Token and
// HasToken never change after construction.
type Context struct {
	Token    string
	HasToken bool
	Status   Status
	Message  string
}

// TokenSource looks up a named parameter from the page's entry URL.
type TokenSource interface {
	Lookup(name string) (string, bool)
}

// Query adapts url.Values to TokenSource.
type Query url.Values

// Lookup returns the first value of name.
func (q Query) Lookup(name string) (string, bool) {
	vals, ok := q[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// QueryFromURL parses rawURL and returns its query as a TokenSource.
func QueryFromURL(rawURL string) (Query, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, oops.Code(CodeInvalidGate).With("url", rawURL).Wrap(err)
	}
	return Query(u.Query()), nil
}

// Resetter performs the password reset for a token and validated values.
type Resetter interface {
	ResetPassword(ctx context.Context, token string, values validation.Values) (any, error)
}

// ResetterFunc adapts a function to Resetter.
type ResetterFunc func(ctx context.Context, token string, values validation.Values) (any, error)

// ResetPassword calls f.
func (f ResetterFunc) ResetPassword(ctx context.Context, token string, values validation.Values) (any, error) {
	return f(ctx, token, values)
}

// Gate composes a token precondition in front of a submission.Machine.
type Gate struct {
	machine *submission.Machine

	mu  sync.Mutex
	ctx Context
}

// New reads the token from tokens and builds the gated machine for schema.
// An absent or blank token puts the gate in StatusError permanently.
func New(tokens TokenSource, schema *validation.Schema, resetter Resetter, opts ...submission.Option) (*Gate, error) {
	if tokens == nil {
		return nil, oops.Code(CodeInvalidGate).Errorf("token source is required")
	}
	if resetter == nil {
		return nil, oops.Code(CodeInvalidGate).Errorf("resetter is required")
	}

	raw, _ := tokens.Lookup(TokenParam)
	token := strings.TrimSpace(raw)

	g := &Gate{ctx: Context{Token: token, HasToken: token != ""}}
	if !g.ctx.HasToken {
		g.ctx.Status = StatusError
		g.ctx.Message = MissingTokenMessage
	}

	sub := submission.SubmitterFunc(func(ctx context.Context, values validation.Values) (any, error) {
		return resetter.ResetPassword(ctx, token, values)
	})
	m, err := submission.NewMachine("password-reset", schema, sub, opts...)
	if err != nil {
		return nil, err
	}
	g.machine = m
	return g, nil
}

// Context returns the current reset context.
func (g *Gate) Context() Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ctx
}

// State returns the inner machine's state.
func (g *Gate) State() submission.State {
	return g.machine.State()
}

// FieldErrors returns the inner machine's field errors.
func (g *Gate) FieldErrors() validation.FieldErrors {
	return g.machine.FieldErrors()
}

// Submit attempts the reset.
//
// Without a token it returns Failed(MissingTokenMessage) and neither
// validates nor calls the resetter. After a successful reset it returns the
// succeeded state without resubmitting.
func (g *Gate) Submit(ctx context.Context, values validation.Values) submission.State {
	g.mu.Lock()
	if !g.ctx.HasToken {
		g.mu.Unlock()
		return submission.Failed(MissingTokenMessage)
	}
	if g.ctx.Status == StatusSuccess {
		g.mu.Unlock()
		return g.machine.State()
	}
	g.ctx.Status = StatusIdle
	g.ctx.Message = ""
	g.mu.Unlock()

	st := g.machine.Submit(ctx, values)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctx.Status == StatusSuccess {
		return st
	}
	switch st.Status {
	case submission.StatusSucceeded:
		g.ctx.Status = StatusSuccess
		g.ctx.Message = SuccessMessage
	case submission.StatusFailed:
		g.ctx.Status = StatusError
		g.ctx.Message = st.Message
	}
	return st
}

// Close tears down the inner machine.
func (g *Gate) Close() {
	g.machine.Close()
}
