// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package auth

import (
	"time"
)

// Default lockout configuration.
const (
	// DefaultLockoutThreshold is the number of consecutive failed logins
	// that locks an account.
	DefaultLockoutThreshold = 7

	// DefaultLockoutDuration is how long a locked account stays locked.
	DefaultLockoutDuration = 15 * time.Minute
)

// LockoutPolicy decides when repeated login failures lock an account.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// DefaultLockoutPolicy returns the default policy.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: DefaultLockoutThreshold, Duration: DefaultLockoutDuration}
}

// withDefaults replaces non-positive fields with the defaults.
func (p LockoutPolicy) withDefaults() LockoutPolicy {
	if p.Threshold <= 0 {
		p.Threshold = DefaultLockoutThreshold
	}
	if p.Duration <= 0 {
		p.Duration = DefaultLockoutDuration
	}
	return p
}

// LockoutStatus is the result of evaluating a policy at a point in time.
type LockoutStatus struct {
	Locked    bool
	Remaining time.Duration
	// AttemptsLeft is the number of failures still allowed before lockout.
	AttemptsLeft int
}

// Check evaluates failures and the current lockout timestamp at now.
func (p LockoutPolicy) Check(failures int, lockedUntil *time.Time, now time.Time) LockoutStatus {
	p = p.withDefaults()
	if IsLockedOut(lockedUntil, now) {
		return LockoutStatus{Locked: true, Remaining: lockedUntil.Sub(now)}
	}
	left := p.Threshold - failures
	if left < 0 {
		left = 0
	}
	return LockoutStatus{AttemptsLeft: left}
}

// LockUntil returns the lockout expiry for the given failure count at now,
// or nil when failures is below the threshold.
func (p LockoutPolicy) LockUntil(failures int, now time.Time) *time.Time {
	p = p.withDefaults()
	if failures < p.Threshold {
		return nil
	}
	until := now.Add(p.Duration)
	return &until
}

// IsLockedOut returns true if lockedUntil is after now.
func IsLockedOut(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(now)
}
