// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ecovibe-go/internal/testutil"
)

func TestValidateSchedule(t *testing.T) {
	for _, spec := range []string{"@hourly", "@every 30m", "0 3 * * *", "*/5 * * * *"} {
		assert.NoError(t, ValidateSchedule(spec), spec)
	}
	for _, spec := range []string{"", "hourly", "61 * * * *", "* * *"} {
		assert.Error(t, ValidateSchedule(spec), spec)
	}
}

func TestScheduler_AddRunNowJobs(t *testing.T) {
	s := New(testutil.TestLogger())

	calls := 0
	require.NoError(t, s.Add("sweep", "@hourly", func(ctx context.Context) error {
		calls++
		return nil
	}))
	require.NoError(t, s.Add("fails", "@daily", func(ctx context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, s.Add("disabled", "", func(ctx context.Context) error { return nil }))
	assert.Error(t, s.Add("bad", "not a schedule", func(ctx context.Context) error { return nil }))

	s.Start()
	defer s.Stop()

	require.NoError(t, s.RunNow("sweep"))
	assert.Equal(t, 1, calls)
	assert.EqualError(t, s.RunNow("fails"), "boom")
	assert.Error(t, s.RunNow("missing"))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "sweep", jobs[0].Name)
	assert.False(t, jobs[0].LastRun.IsZero())
	assert.False(t, jobs[0].Next.IsZero())
	assert.Equal(t, "boom", jobs[1].LastError)
}
