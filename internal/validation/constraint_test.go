// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	c := Required("required")

	tests := []struct {
		name   string
		values Values
		want   bool
	}{
		{"missing field", Values{}, false},
		{"nil value", Values{"f": nil}, false},
		{"empty string", Values{"f": ""}, false},
		{"whitespace only", Values{"f": " \t\n "}, false},
		{"non-empty string", Values{"f": "x"}, true},
		{"padded string", Values{"f": "  x  "}, true},
		{"false bool is present", Values{"f": false}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Check("f", tt.values))
		})
	}
}

func TestMinLength_CountsCodePoints(t *testing.T) {
	c := MinLength(8, "too short")

	assert.False(t, c.Check("f", Values{"f": "1234567"}))
	assert.True(t, c.Check("f", Values{"f": "12345678"}))
	// "пароль12" is 8 code points but 14 bytes.
	assert.True(t, c.Check("f", Values{"f": "пароль12"}))
	// 4 code points, 16 bytes.
	assert.False(t, c.Check("f", Values{"f": "🔑🔑🔑🔑"}))
	assert.False(t, c.Check("f", Values{}))
}

func TestMaxLength_CountsCodePoints(t *testing.T) {
	c := MaxLength(3, "too long")

	assert.True(t, c.Check("f", Values{"f": "ééé"}))
	assert.False(t, c.Check("f", Values{"f": "éééé"}))
	assert.True(t, c.Check("f", Values{}))
}

func TestIsEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.uk",
		"user+tag@sub.example.org",
		"a_b-c@example.io",
		"x@y.z",
	}
	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@localhost",
		"user@@example.com",
		"user@exa@mple.com",
		"user@.example.com",
		"user@example.com.",
		"user@example..com",
		"user name@example.com",
		"Bob <bob@example.com>",
		"us(er@example.com",
		"user@-example.com",
	}

	for _, s := range valid {
		assert.True(t, IsEmail(s), "expected %q to be accepted", s)
	}
	for _, s := range invalid {
		assert.False(t, IsEmail(s), "expected %q to be rejected", s)
	}
}

func TestPattern(t *testing.T) {
	c := Pattern(regexp.MustCompile(`^[a-z]+$`), "letters only")

	assert.True(t, c.Check("f", Values{"f": "abc"}))
	assert.False(t, c.Check("f", Values{"f": "abc1"}))
	assert.Equal(t, KindPattern, c.Kind)
}

func TestEqualsField(t *testing.T) {
	c := EqualsField("password", "must match")

	assert.True(t, c.Check("confirm", Values{"password": "secret", "confirm": "secret"}))
	assert.False(t, c.Check("confirm", Values{"password": "secret", "confirm": "Secret"}))
}

func TestIsTrue(t *testing.T) {
	c := IsTrue("accept")

	assert.True(t, c.Check("terms", Values{"terms": true}))
	assert.True(t, c.Check("terms", Values{"terms": "on"}))
	assert.True(t, c.Check("terms", Values{"terms": "true"}))
	assert.False(t, c.Check("terms", Values{"terms": false}))
	assert.False(t, c.Check("terms", Values{"terms": "nope"}))
	assert.False(t, c.Check("terms", Values{}))
}

func TestConstraint_ZeroValuePasses(t *testing.T) {
	assert.True(t, Constraint{}.Check("f", Values{}))
}
