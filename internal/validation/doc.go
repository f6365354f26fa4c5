// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package validation evaluates declarative form schemas against submitted
// values.
//
// # Schemas
//
// A Schema is an ordered list of Field entries plus an ordered list of
// Refinement rules. Each Field carries its constraints in declaration order:
//
//	schema := validation.NewSchema(
//		[]validation.Field{
//			{Name: "email", Type: validation.TypeEmail, Constraints: []validation.Constraint{
//				validation.Email("Please enter a valid email address."),
//			}},
//		},
//	)
//
// # Evaluation
//
// For every field the first failing constraint records its message and the
// remaining constraints for that field are skipped. Refinements run only when
// every field passed, in declaration order, and attach their message to their
// target field.
//
// Validate is a pure function: it never mutates the schema or the values and
// returns identical results for identical inputs.
package validation
