// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package validation

import (
	"maps"
	"strconv"
	"strings"
)

// Values maps a field identifier to its raw value. Values are strings for
// text-like fields and bools for boolean fields.
type Values map[string]any

// String returns the string value of field, or "" when the field is missing
// or not a string.
func (v Values) String(field string) string {
	s, _ := v[field].(string)
	return s
}

// Bool returns the boolean value of field. A string value is parsed with
// strconv.ParseBool and also accepts "on", which is what HTML checkboxes send.
func (v Values) Bool(field string) bool {
	switch val := v[field].(type) {
	case bool:
		return val
	case string:
		if strings.EqualFold(val, "on") {
			return true
		}
		b, err := strconv.ParseBool(val)
		return err == nil && b
	default:
		return false
	}
}

// Has reports whether field is present.
func (v Values) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}
