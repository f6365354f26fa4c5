// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/authforms/authforms/internal/auth"
	"github.com/authforms/authforms/internal/auth/memory"
	"github.com/authforms/authforms/internal/config"
)

// newBackend builds the in-memory backend for cfg, registers its seed
// accounts and returns the form submitters over it. Issued reset tokens are
// handed to notify.
func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger, notify auth.ResetNotifier) (*auth.Submitters, error) {
	hasher := auth.NewArgon2idHasherWithParams(auth.HasherParams{
		Time:      cfg.Hasher.Time,
		MemoryKiB: cfg.Hasher.MemoryKiB,
		Threads:   cfg.Hasher.Threads,
	})

	accounts := memory.NewAccountRepository()
	resets := memory.NewPasswordResetRepository()

	// Seeding bypasses the simulated latency.
	seeder, err := auth.NewService(accounts, resets, hasher, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	for _, seed := range cfg.Accounts {
		if _, err := seeder.Register(ctx, seed.Email, seed.Password, true); err != nil {
			return nil, oops.Code("SEED_ACCOUNT_FAILED").With("email", seed.Email).Wrap(err)
		}
	}
	logger.DebugContext(ctx, "seed accounts registered", "count", len(cfg.Accounts))

	svc, err := auth.NewService(accounts, resets, hasher,
		auth.WithLogger(logger),
		auth.WithLatency(cfg.Backend.Latency.Std()),
	)
	if err != nil {
		return nil, err
	}

	return auth.NewSubmitters(svc,
		auth.WithRetry(cfg.Backend.MaxRetries, cfg.Backend.RetryBaseDelay.Std()),
		auth.WithResetNotifier(notify),
		auth.WithSubmittersLogger(logger),
	)
}
