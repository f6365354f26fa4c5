// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package errutil

import (
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestingT is the subset of *testing.T the assertion helpers need.
type TestingT interface {
	require.TestingT
	Helper()
}

// AssertErrorCode asserts that err is an oops error whose deepest code is
// code. Wrapping an error without a code keeps the inner code visible.
func AssertErrorCode(t TestingT, err error, code string) {
	t.Helper()
	oopsErr, ok := asOops(t, err)
	if !ok {
		return
	}
	assert.Equal(t, code, oopsErr.Code(), "error: %v", err)
}

// AssertErrorContext asserts that err carries key=value anywhere in its
// oops context.
func AssertErrorContext(t TestingT, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := asOops(t, err)
	if !ok {
		return
	}
	ctx := oopsErr.Context()
	if assert.Contains(t, ctx, key, "error: %v", err) {
		assert.Equal(t, value, ctx[key], "context %q", key)
	}
}

func asOops(t TestingT, err error) (oops.OopsError, bool) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		t.Errorf("expected oops error, got %T: %v", err, err)
		t.FailNow()
	}
	return oopsErr, ok
}
