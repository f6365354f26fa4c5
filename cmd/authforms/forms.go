// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/authforms/authforms/internal/auth"
	"github.com/authforms/authforms/internal/forms"
	"github.com/authforms/authforms/internal/resetgate"
	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/validation"
)

// CodeFormFailed is returned when a one-shot submission does not succeed.
const CodeFormFailed = "FORM_FAILED"

// resetPath is the path reset links point at.
const resetPath = "/reset-password"

// formResult is what the form commands print.
type formResult struct {
	Form        string              `yaml:"form"`
	Status      string              `yaml:"status"`
	Message     string              `yaml:"message,omitempty"`
	FieldErrors map[string][]string `yaml:"field_errors,omitempty"`
}

// resetLink renders the link a reset token is delivered in.
func resetLink(token string) string {
	return resetPath + "?" + url.Values{resetgate.TokenParam: {token}}.Encode()
}

// printNotifier writes issued reset links to w in place of email delivery.
func printNotifier(w io.Writer) auth.ResetNotifier {
	return func(_ context.Context, email, token string) {
		_, _ = fmt.Fprintf(w, "# reset link for %s: %s\n", email, resetLink(token))
	}
}

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Submit the login form",
		Long:  `Validate and submit the login form against the in-memory backend seeded from config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForm(cmd, forms.Login(), (*auth.Submitters).Login, validation.Values{
				forms.FieldEmail:    email,
				forms.FieldPassword: password,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")

	return cmd
}

// NewRegisterCmd creates the register subcommand.
func NewRegisterCmd() *cobra.Command {
	var email, password, confirm string
	var terms bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Submit the registration form",
		Long:  `Validate and submit the registration form against the in-memory backend seeded from config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForm(cmd, forms.Registration(), (*auth.Submitters).Register, validation.Values{
				forms.FieldEmail:           email,
				forms.FieldPassword:        password,
				forms.FieldConfirmPassword: confirm,
				forms.FieldTerms:           terms,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "new password again")
	cmd.Flags().BoolVar(&terms, "terms", false, "accept the terms and conditions")

	return cmd
}

// NewForgotPasswordCmd creates the forgot-password subcommand.
func NewForgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Submit the password-reset request form",
		Long: `Validate and submit the password-reset request form. When the email
belongs to an account, the reset link is printed instead of emailed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForm(cmd, forms.ResetRequest(), (*auth.Submitters).RequestReset, validation.Values{
				forms.FieldEmail: email,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

// NewResetPasswordCmd creates the reset-password subcommand.
func NewResetPasswordCmd() *cobra.Command {
	var token, link, password, confirm string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Submit the password-reset form",
		Long: `Validate and submit the password-reset form. The reset token comes from
--token or from the query of --link; without one the form refuses to submit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokens := resetgate.Query{}
			switch {
			case cmd.Flags().Changed("token"):
				tokens = resetgate.Query{resetgate.TokenParam: {token}}
			case link != "":
				q, err := resetgate.QueryFromURL(link)
				if err != nil {
					return err
				}
				tokens = q
			}
			return runReset(cmd, tokens, validation.Values{
				forms.FieldNewPassword:     password,
				forms.FieldConfirmPassword: confirm,
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "reset token")
	cmd.Flags().StringVar(&link, "link", "", "reset link containing the token")
	cmd.Flags().StringVar(&password, "new-password", "", "new password")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "new password again")

	return cmd
}

// runForm submits values to one fresh mount of def.
func runForm(cmd *cobra.Command, def forms.Definition, pick func(*auth.Submitters) submission.Submitter, values validation.Values) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogging(cmd, cfg)
	if err != nil {
		return err
	}
	subs, err := newBackend(ctx, cfg, logger, printNotifier(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	m, err := def.NewMachine(pick(subs), submission.WithLogger(logger))
	if err != nil {
		return err
	}
	defer m.Close()

	st := m.Submit(ctx, values)
	res := formResult{Form: def.Name, Status: st.Status.String(), Message: st.Message, FieldErrors: m.FieldErrors()}
	if st.Status == submission.StatusSucceeded {
		res.Message = def.SuccessMessage(values)
	}
	return printResult(cmd, res)
}

// runReset submits values through the token gate.
func runReset(cmd *cobra.Command, tokens resetgate.TokenSource, values validation.Values) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := setupLogging(cmd, cfg)
	if err != nil {
		return err
	}
	subs, err := newBackend(ctx, cfg, logger, printNotifier(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	gate, err := forms.NewResetGate(tokens, subs.ResetPassword(), submission.WithLogger(logger))
	if err != nil {
		return err
	}
	defer gate.Close()

	st := gate.Submit(ctx, values)
	res := formResult{Form: forms.NamePasswordReset, Status: st.Status.String(), Message: st.Message, FieldErrors: gate.FieldErrors()}
	if st.Status == submission.StatusSucceeded {
		res.Message = gate.Context().Message
	}
	return printResult(cmd, res)
}

// printResult writes res as YAML and turns a failed submission into an error.
func printResult(cmd *cobra.Command, res formResult) error {
	out, err := yaml.Marshal(res)
	if err != nil {
		return oops.Code(CodeFormFailed).With("operation", "marshal result").Wrap(err)
	}
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return oops.Code(CodeFormFailed).With("operation", "write result").Wrap(err)
	}
	if res.Status != submission.StatusSucceeded.String() {
		return oops.Code(CodeFormFailed).With("form", res.Form).Errorf("%s", res.Message)
	}
	return nil
}
