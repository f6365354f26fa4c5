// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package web exposes the authentication forms over HTTP.
//
// Endpoints:
//   - POST /login
//   - POST /register
//   - POST /forgot-password
//   - GET  /reset-password?token=...
//   - POST /reset-password?token=...
//
// Each request is one mount of a form: a fresh machine is built, submitted
// once and closed.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/authforms/authforms/internal/forms"
	"github.com/authforms/authforms/internal/resetgate"
	"github.com/authforms/authforms/internal/submission"
	"github.com/authforms/authforms/internal/validation"
)

// CodeInvalidHandler is returned when a handler is built without submitters.
const CodeInvalidHandler = "WEB_HANDLER_INVALID"

// MaxFormBytes bounds request bodies.
const MaxFormBytes = 64 << 10

// Response statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Submitters supplies the operation behind each form.
type Submitters interface {
	Login() submission.Submitter
	Register() submission.Submitter
	RequestReset() submission.Submitter
	ResetPassword() resetgate.Resetter
}

// Response is the JSON body of every form endpoint.
type Response struct {
	Status      string                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	FieldErrors validation.FieldErrors `json:"field_errors,omitempty"`
	Data        any                    `json:"data,omitempty"`
}

// Handler serves the form endpoints.
type Handler struct {
	submitters Submitters
	observer   submission.Observer
	logger     *slog.Logger
	mux        *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithObserver sets the observer handed to every machine.
func WithObserver(o submission.Observer) Option {
	return func(h *Handler) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(submitters Submitters, opts ...Option) (*Handler, error) {
	if submitters == nil {
		return nil, oops.Code(CodeInvalidHandler).Errorf("submitters are required")
	}
	h := &Handler{
		submitters: submitters,
		observer:   submission.NopObserver{},
		logger:     slog.Default(),
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("POST /login", h.form(forms.Login(), submitters.Login()))
	h.mux.HandleFunc("POST /register", h.form(forms.Registration(), submitters.Register()))
	h.mux.HandleFunc("POST /forgot-password", h.form(forms.ResetRequest(), submitters.RequestReset()))
	h.mux.HandleFunc("GET /reset-password", h.resetStatus)
	h.mux.HandleFunc("POST /reset-password", h.reset)
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) machineOptions() []submission.Option {
	return []submission.Option{
		submission.WithObserver(h.observer),
		submission.WithLogger(h.logger),
	}
}

// form returns the handler for one of the ungated forms.
func (h *Handler) form(def forms.Definition, sub submission.Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, ok := h.parse(w, r, def.Schema)
		if !ok {
			return
		}

		m, err := def.NewMachine(sub, h.machineOptions()...)
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		defer m.Close()

		st := m.Submit(r.Context(), values)
		resp := Response{FieldErrors: m.FieldErrors()}
		if st.Status == submission.StatusSucceeded {
			resp.Status = StatusSucceeded
			resp.Message = def.SuccessMessage(values)
			resp.Data = st.Payload
		} else {
			resp.Status = StatusFailed
			resp.Message = st.Message
		}
		h.write(w, r, statusCode(st), resp)
	}
}

// resetStatus reports whether the reset link carries a token.
func (h *Handler) resetStatus(w http.ResponseWriter, r *http.Request) {
	gate, err := forms.NewResetGate(resetgate.Query(r.URL.Query()), h.submitters.ResetPassword(), h.machineOptions()...)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	defer gate.Close()

	rc := gate.Context()
	h.write(w, r, http.StatusOK, Response{Status: rc.Status.String(), Message: rc.Message})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	values, ok := h.parse(w, r, forms.PasswordReset().Schema)
	if !ok {
		return
	}

	gate, err := forms.NewResetGate(resetgate.Query(r.URL.Query()), h.submitters.ResetPassword(), h.machineOptions()...)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	defer gate.Close()

	st := gate.Submit(r.Context(), values)
	rc := gate.Context()
	resp := Response{Message: st.Message, FieldErrors: gate.FieldErrors()}
	if st.Status == submission.StatusSucceeded {
		resp.Status = StatusSucceeded
		resp.Message = rc.Message
		resp.Data = st.Payload
	} else {
		resp.Status = StatusFailed
	}
	h.write(w, r, statusCode(st), resp)
}

// parse reads the form-encoded body into values for schema.
func (h *Handler) parse(w http.ResponseWriter, r *http.Request, schema *validation.Schema) (validation.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.DebugContext(r.Context(), "malformed form body", "path", r.URL.Path, "error", err)
		h.write(w, r, http.StatusBadRequest, Response{Status: StatusFailed, Message: "Malformed form submission."})
		return nil, false
	}
	return schema.ValuesFromForm(r.PostForm), true
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "form handler failed", "path", r.URL.Path, "error", err)
	h.write(w, r, http.StatusInternalServerError, Response{Status: StatusFailed, Message: submission.DefaultFaultMessage})
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.DebugContext(r.Context(), "failed to write response", "path", r.URL.Path, "error", err)
	}
}

func statusCode(st submission.State) int {
	if st.Status == submission.StatusSucceeded {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}
