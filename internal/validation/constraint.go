// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ConstraintKind names the rule a Constraint enforces.
type ConstraintKind string

// Built-in constraint kinds.
const (
	KindRequired    ConstraintKind = "required"
	KindMinLength   ConstraintKind = "min_length"
	KindMaxLength   ConstraintKind = "max_length"
	KindEmail       ConstraintKind = "email"
	KindPattern     ConstraintKind = "pattern"
	KindEqualsField ConstraintKind = "equals_field"
	KindIsTrue      ConstraintKind = "is_true"
)

// String returns the kind name.
func (k ConstraintKind) String() string {
	return string(k)
}

// CheckFunc reports whether field passes a rule given the full value set.
type CheckFunc func(field string, values Values) bool

// Constraint is a single pass/fail rule over one field's value.
// Use the constructors (Required, MinLength, Email, ...) or Custom.
type Constraint struct {
	Kind    ConstraintKind
	Message string
	check   CheckFunc
}

// Check reports whether field passes the constraint.
// A constraint without a check function always passes.
func (c Constraint) Check(field string, values Values) bool {
	if c.check == nil {
		return true
	}
	return c.check(field, values)
}

// Custom creates a constraint backed by an arbitrary pure predicate.
func Custom(kind ConstraintKind, message string, check CheckFunc) Constraint {
	return Constraint{Kind: kind, Message: message, check: check}
}

// Required fails when the field is missing, nil, or a string that is empty
// or whitespace-only.
func Required(message string) Constraint {
	return Custom(KindRequired, message, func(field string, values Values) bool {
		switch v := values[field].(type) {
		case nil:
			return false
		case string:
			return strings.TrimSpace(v) != ""
		default:
			return true
		}
	})
}

// MinLength fails when the field holds fewer than n code points.
// A missing field has length zero.
func MinLength(n int, message string) Constraint {
	return Custom(KindMinLength, message, func(field string, values Values) bool {
		return utf8.RuneCountInString(values.String(field)) >= n
	})
}

// MaxLength fails when the field holds more than n code points.
func MaxLength(n int, message string) Constraint {
	return Custom(KindMaxLength, message, func(field string, values Values) bool {
		return utf8.RuneCountInString(values.String(field)) <= n
	})
}

// Email fails unless the field is a plain address with a single "@" and a
// dotted domain. Display-name forms such as "Bob <bob@example.com>" fail.
func Email(message string) Constraint {
	return Custom(KindEmail, message, func(field string, values Values) bool {
		return IsEmail(values.String(field))
	})
}

// Pattern fails unless the field matches re.
func Pattern(re *regexp.Regexp, message string) Constraint {
	return Custom(KindPattern, message, func(field string, values Values) bool {
		return re.MatchString(values.String(field))
	})
}

// EqualsField fails unless the field's string value equals other's.
func EqualsField(other, message string) Constraint {
	return Custom(KindEqualsField, message, func(field string, values Values) bool {
		return values.String(field) == values.String(other)
	})
}

// IsTrue fails unless the field holds a true boolean, e.g. an accepted
// terms checkbox.
func IsTrue(message string) Constraint {
	return Custom(KindIsTrue, message, func(field string, values Values) bool {
		return values.Bool(field)
	})
}

// IsEmail reports whether s looks like a deliverable address: a bare RFC 5322
// address with exactly one "@" and a dotted domain with no empty labels.
func IsEmail(s string) bool {
	if strings.Count(s, "@") != 1 || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" || !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return validate.Var(s, "email") == nil
}
