// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/ecovibe-go/internal/store"
)

// RetryPolicy controls how writes hitting a busy database are retried.
// Attempt n (0-based) waits Base*(n+1) before the next try.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
}

// DefaultRetryPolicy is three attempts with a one second linear backoff.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Base: time.Second}

// retryBusy runs fn until it succeeds, fails with a non-busy error, runs out
// of attempts or ctx is cancelled.
func retryBusy(ctx context.Context, p RetryPolicy, op string, fn func() error) error {
	attempts := max(p.Attempts, 1)

	var err error
	for i := range attempts {
		err = fn()
		if err == nil || !store.IsBusy(err) || i == attempts-1 {
			return err
		}

		slog.Debug("database busy, retrying", "op", op, "attempt", i+1, "of", attempts)

		t := time.NewTimer(p.Base * time.Duration(i+1))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}
