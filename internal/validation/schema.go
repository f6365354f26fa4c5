// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package validation

import (
	"net/url"
	"slices"
	"sort"

	"github.com/samber/oops"
)

// CodeValidationFailed is the oops code carried by Result.Err.
const CodeValidationFailed = "VALIDATION_FAILED"

// FieldType is the semantic type of a form field.
type FieldType string

// Field types.
const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypePassword FieldType = "password"
	TypeBoolean  FieldType = "boolean"
)

// String returns the type name.
func (t FieldType) String() string {
	return string(t)
}

// Field declares one form field and its constraints in evaluation order.
type Field struct {
	Name        string
	Type        FieldType
	Constraints []Constraint
}

// Refinement is a rule over the whole value set. When Check returns false,
// Message is attached to Target.
type Refinement struct {
	Target  string
	Message string
	Check   func(values Values) bool
}

// FieldsEqual returns a refinement that fails when the string values of a
// and b differ, attaching message to target.
func FieldsEqual(a, b, target, message string) Refinement {
	return Refinement{
		Target:  target,
		Message: message,
		Check: func(values Values) bool {
			return values.String(a) == values.String(b)
		},
	}
}

// Schema is an immutable set of fields and refinements for one form type.
type Schema struct {
	fields      []Field
	refinements []Refinement
}

// NewSchema creates a Schema. The slices are copied so later changes by the
// caller do not affect the schema.
func NewSchema(fields []Field, refinements ...Refinement) *Schema {
	return &Schema{
		fields:      slices.Clone(fields),
		refinements: slices.Clone(refinements),
	}
}

// Fields returns a copy of the declared fields.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether name is a declared field.
func (s *Schema) HasField(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Validate evaluates the schema against values.
func (s *Schema) Validate(values Values) Result {
	return Validate(s.fields, s.refinements, values)
}

// ValuesFromForm converts posted form data into Values using the declared
// field types. Boolean fields become bools; every other declared field takes
// its first posted value. Undeclared keys are dropped.
func (s *Schema) ValuesFromForm(form url.Values) Values {
	values := make(Values, len(s.fields))
	for _, f := range s.fields {
		if _, ok := form[f.Name]; !ok {
			if f.Type == TypeBoolean {
				values[f.Name] = false
			}
			continue
		}
		raw := form.Get(f.Name)
		if f.Type == TypeBoolean {
			values[f.Name] = Values{f.Name: raw}.Bool(f.Name)
			continue
		}
		values[f.Name] = raw
	}
	return values
}

// Validate runs fields then refinements against values.
//
// Constraints for each field run in order and stop at the first failure.
// Refinements run only if no field failed; all of them are evaluated and
// each failure is appended to its target field.
func Validate(fields []Field, refinements []Refinement, values Values) Result {
	errs := FieldErrors{}
	for _, f := range fields {
		for _, c := range f.Constraints {
			if !c.Check(f.Name, values) {
				errs[f.Name] = append(errs[f.Name], c.Message)
				break
			}
		}
	}
	if len(errs) > 0 {
		return Result{Errors: errs}
	}

	for _, r := range refinements {
		if r.Check == nil || r.Check(values) {
			continue
		}
		errs[r.Target] = append(errs[r.Target], r.Message)
	}
	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{}
}

// FieldErrors maps a field identifier to its messages in the order they were
// recorded.
type FieldErrors map[string][]string

// First returns the first message for field, or "".
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the names of fields with errors, sorted.
func (e FieldErrors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of e.
func (e FieldErrors) Clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for name, msgs := range e {
		out[name] = slices.Clone(msgs)
	}
	return out
}

// Summary returns the first message of every failing field, keyed by field.
// This is what a form renders inline.
func (e FieldErrors) Summary() map[string]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]string, len(e))
	for name := range e {
		out[name] = e.First(name)
	}
	return out
}

// Result is the outcome of Validate. The zero value is Valid.
type Result struct {
	Errors FieldErrors
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a valid result, otherwise an oops error coded
// VALIDATION_FAILED carrying the failing fields.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return oops.Code(CodeValidationFailed).
		With("fields", r.Errors.Summary()).
		Errorf("validation failed for %d field(s)", len(r.Errors))
}
