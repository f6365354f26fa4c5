// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package forms_test

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/authforms/authforms/internal/forms"
	"github.com/authforms/authforms/internal/resetgate"
	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/submission/submissiontest"
	"github.com/authforms/authforms/internal/validation"
)

// countingSubmitter counts calls and answers with respond.
type countingSubmitter struct {
	calls   atomic.Int32
	respond func(values validation.Values) (any, error)
}

func (s *countingSubmitter) Submit(_ context.Context, values validation.Values) (any, error) {
	s.calls.Add(1)
	return s.respond(values)
}

var _ = Describe("Login form", func() {
	var (
		ctx context.Context
		sub *countingSubmitter
		m   *submission.Machine
	)

	BeforeEach(func() {
		ctx = context.Background()
		sub = &countingSubmitter{respond: func(v validation.Values) (any, error) {
			if v.String(forms.FieldEmail) == "user@example.com" && v.String(forms.FieldPassword) == "password" {
				return "token", nil
			}
			return nil, submission.Reject(forms.MsgInvalidCredentials)
		}}
		var err error
		m, err = forms.Login().NewMachine(sub)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(m.Close)
	})

	It("succeeds for the accepted credentials", func() {
		st := m.Submit(ctx, validation.Values{"email": "user@example.com", "password": "password"})
		Expect(st).To(Equal(submission.Succeeded("token")))
		Expect(m.FieldErrors()).To(BeEmpty())
	})

	It("shows the rejection as a page-level message", func() {
		st := m.Submit(ctx, validation.Values{"email": "user@example.com", "password": "wrong"})
		Expect(st).To(Equal(submission.Failed(forms.MsgInvalidCredentials)))
		Expect(m.FieldErrors()).To(BeEmpty())
	})

	It("never submits when a required field is missing", func() {
		st := m.Submit(ctx, validation.Values{"email": "user@example.com"})
		Expect(st.Status).To(Equal(submission.StatusFailed))
		Expect(st.Message).To(Equal(forms.MsgCorrectHighlighted))
		Expect(m.FieldErrors()).To(HaveKeyWithValue(forms.FieldPassword, []string{forms.MsgPasswordRequired}))
		Expect(sub.calls.Load()).To(BeZero())
	})

	It("clears the previous failure when retried", func() {
		m.Submit(ctx, validation.Values{"email": "bad"})
		Expect(m.FieldErrors()).NotTo(BeEmpty())

		st := m.Submit(ctx, validation.Values{"email": "user@example.com", "password": "password"})
		Expect(st.Status).To(Equal(submission.StatusSucceeded))
		Expect(m.FieldErrors()).To(BeEmpty())
	})
})

var _ = Describe("Registration form", func() {
	var (
		ctx    context.Context
		sub    *countingSubmitter
		m      *submission.Machine
		values validation.Values
	)

	BeforeEach(func() {
		ctx = context.Background()
		sub = &countingSubmitter{respond: func(v validation.Values) (any, error) {
			if v.String(forms.FieldEmail) == "test@example.com" {
				return nil, submission.RejectField(forms.FieldEmail, "already registered", forms.MsgEmailTaken)
			}
			return "created", nil
		}}
		var err error
		m, err = forms.Registration().NewMachine(sub)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(m.Close)

		values = validation.Values{
			"email":           "test@example.com",
			"password":        "longenough1",
			"confirmPassword": "longenough1",
			"terms":           true,
		}
	})

	It("attaches a duplicate-account rejection to the email field", func() {
		st := m.Submit(ctx, values)
		Expect(st.Status).To(Equal(submission.StatusFailed))
		Expect(st.Message).To(Equal(forms.MsgEmailTaken))
		Expect(m.FieldErrors()).To(Equal(validation.FieldErrors{forms.FieldEmail: {"already registered"}}))
		Expect(sub.calls.Load()).To(BeNumerically("==", 1))
	})

	It("registers a fresh email", func() {
		values["email"] = "fresh@example.com"
		Expect(m.Submit(ctx, values)).To(Equal(submission.Succeeded("created")))
	})

	DescribeTable("mismatched passwords fail on confirmPassword even when both are long enough",
		func(password, confirm string) {
			values["password"] = password
			values["confirmPassword"] = confirm

			st := m.Submit(ctx, values)
			Expect(st.Status).To(Equal(submission.StatusFailed))
			Expect(m.FieldErrors()).To(Equal(validation.FieldErrors{
				forms.FieldConfirmPassword: {forms.MsgPasswordsMismatch},
			}))
			Expect(sub.calls.Load()).To(BeZero())
		},
		Entry("different suffix", "longenough1", "longenough2"),
		Entry("case differs", "LongEnough1", "longenough1"),
		Entry("trailing space", "longenough1", "longenough1 "),
	)

	It("requires the terms to be accepted", func() {
		values["terms"] = false
		m.Submit(ctx, values)
		Expect(m.FieldErrors()).To(HaveKeyWithValue(forms.FieldTerms, []string{forms.MsgTermsRequired}))
	})
})

var _ = Describe("Password reset request form", func() {
	It("words the success message with the submitted email", func() {
		sub := &countingSubmitter{respond: func(validation.Values) (any, error) { return nil, nil }}
		def := forms.ResetRequest()
		m, err := def.NewMachine(sub)
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()

		values := validation.Values{"email": "user@example.com"}
		Expect(m.Submit(context.Background(), values).Status).To(Equal(submission.StatusSucceeded))
		Expect(def.SuccessMessage(values)).To(ContainSubstring("user@example.com"))
	})

	It("reports faults through the observer and shows a generic message", func() {
		obs := &submissiontest.RecordingObserver{}
		sub := &countingSubmitter{respond: func(validation.Values) (any, error) {
			return nil, errors.New("smtp: connection refused")
		}}
		m, err := forms.ResetRequest().NewMachine(sub, submission.WithObserver(obs))
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()

		st := m.Submit(context.Background(), validation.Values{"email": "user@example.com"})
		Expect(st).To(Equal(submission.Failed(submission.DefaultFaultMessage)))
		Expect(obs.Faults()).To(HaveLen(1))
		Expect(obs.Faults()[0]).To(MatchError(ContainSubstring("connection refused")))
	})
})

var _ = Describe("Password reset form", func() {
	var (
		ctx    context.Context
		tokens []string
		reset  resetgate.Resetter
	)

	BeforeEach(func() {
		ctx = context.Background()
		tokens = nil
		reset = resetgate.ResetterFunc(func(_ context.Context, token string, _ validation.Values) (any, error) {
			tokens = append(tokens, token)
			return "reset", nil
		})
	})

	Context("with token abc123", func() {
		var gate *resetgate.Gate

		BeforeEach(func() {
			var err error
			gate, err = forms.NewResetGate(resetgate.Query{"token": {"abc123"}}, reset)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(gate.Close)
		})

		It("fails on confirmPassword before any reset runs", func() {
			st := gate.Submit(ctx, validation.Values{"newPassword": "longenough1", "confirmPassword": "different"})
			Expect(st.Status).To(Equal(submission.StatusFailed))
			Expect(gate.FieldErrors()).To(HaveKey(forms.FieldConfirmPassword))
			Expect(tokens).To(BeEmpty())
			Expect(gate.Context().Status).To(Equal(resetgate.StatusError))
		})

		It("resets with the token and reports success", func() {
			st := gate.Submit(ctx, validation.Values{"newPassword": "longenough1", "confirmPassword": "longenough1"})
			Expect(st.Status).To(Equal(submission.StatusSucceeded))
			Expect(tokens).To(Equal([]string{"abc123"}))
			Expect(gate.Context().Message).To(Equal(resetgate.SuccessMessage))
		})
	})

	Context("without a token", func() {
		DescribeTable("always fails with the missing-link message",
			func(values validation.Values) {
				gate, err := forms.NewResetGate(resetgate.Query{}, reset)
				Expect(err).NotTo(HaveOccurred())
				defer gate.Close()

				st := gate.Submit(ctx, values)
				Expect(st).To(Equal(submission.Failed(resetgate.MissingTokenMessage)))
				Expect(gate.FieldErrors()).To(BeEmpty(), "validation must not run")
				Expect(tokens).To(BeEmpty())
			},
			Entry("valid passwords", validation.Values{"newPassword": "longenough1", "confirmPassword": "longenough1"}),
			Entry("invalid passwords", validation.Values{"newPassword": "x", "confirmPassword": "y"}),
			Entry("no values", validation.Values{}),
		)
	})
})
