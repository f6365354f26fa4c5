// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/authforms/authforms/internal/submission"
)

// Submission outcomes as recorded in authforms_submissions_total.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeInvalid   = "invalid"
	OutcomeDiscarded = "discarded"
)

// Metrics records form submission activity. It implements
// submission.Observer.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	FaultsTotal        *prometheus.CounterVec
	SubmissionDuration *prometheus.HistogramVec
	InFlight           *prometheus.GaugeVec
}

// NewMetrics creates and registers the submission metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authforms_submissions_total",
				Help: "Total number of form submissions by form and outcome",
			},
			[]string{"form", "outcome"},
		),
		FaultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authforms_submission_faults_total",
				Help: "Total number of unexpected submission failures by form",
			},
			[]string{"form"},
		),
		SubmissionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authforms_submission_duration_seconds",
				Help:    "Duration of submit operations by form",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"form"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "authforms_submissions_in_flight",
				Help: "Number of submit operations currently running by form",
			},
			[]string{"form"},
		),
	}

	reg.MustRegister(m.SubmissionsTotal)
	reg.MustRegister(m.FaultsTotal)
	reg.MustRegister(m.SubmissionDuration)
	reg.MustRegister(m.InFlight)

	return m
}

// Transition counts submissions rejected by validation and tracks in-flight
// operations.
func (m *Metrics) Transition(_ context.Context, form string, from, to submission.State) {
	switch {
	case to.Status == submission.StatusSubmitting:
		m.InFlight.WithLabelValues(form).Inc()
	case from.Status == submission.StatusSubmitting:
		m.InFlight.WithLabelValues(form).Dec()
	case from.Status == submission.StatusValidating && to.Status == submission.StatusFailed:
		m.SubmissionsTotal.WithLabelValues(form, OutcomeInvalid).Inc()
	}
}

// Resolved counts the outcome of a submit operation and its duration.
func (m *Metrics) Resolved(_ context.Context, form string, to submission.State, elapsed time.Duration) {
	outcome := OutcomeFailed
	if to.Status == submission.StatusSucceeded {
		outcome = OutcomeSucceeded
	}
	m.SubmissionsTotal.WithLabelValues(form, outcome).Inc()
	m.SubmissionDuration.WithLabelValues(form).Observe(elapsed.Seconds())
}

// Discarded releases the in-flight slot of an operation that returned after
// its form was closed.
func (m *Metrics) Discarded(_ context.Context, form string, elapsed time.Duration) {
	m.InFlight.WithLabelValues(form).Dec()
	m.SubmissionsTotal.WithLabelValues(form, OutcomeDiscarded).Inc()
	m.SubmissionDuration.WithLabelValues(form).Observe(elapsed.Seconds())
}

// Fault counts an unexpected failure and marks it on the active span.
func (m *Metrics) Fault(ctx context.Context, form string, err error) {
	m.FaultsTotal.WithLabelValues(form).Inc()
	trace.SpanFromContext(ctx).AddEvent("submission.fault", trace.WithAttributes(
		attribute.String("form.name", form),
		attribute.String("error", err.Error()),
	))
}

var _ submission.Observer = (*Metrics)(nil)
