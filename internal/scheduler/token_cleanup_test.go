package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damlink/damlink/internal/config"
)

type stubJanitor struct {
	cutoffs []time.Time
	deleted int64
}

func (j *stubJanitor) DeleteTokensOlderThan(cutoff time.Time) (int64, error) {
	j.cutoffs = append(j.cutoffs, cutoff)
	return j.deleted, nil
}

func TestRunCleanupUsesConfiguredTTL(t *testing.T) {
	janitor := &stubJanitor{deleted: 3}
	s := NewTokenCleanupScheduler(janitor, nil, config.Cleanup{
		Enabled:  true,
		Schedule: "30 3 * * *",
		TokenTTL: 24 * time.Hour,
	})

	before := time.Now().Add(-24 * time.Hour)
	s.runCleanup()
	after := time.Now().Add(-24 * time.Hour)

	require.Len(t, janitor.cutoffs, 1)
	cutoff := janitor.cutoffs[0]
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestStartStop(t *testing.T) {
	janitor := &stubJanitor{}
	s := NewTokenCleanupScheduler(janitor, nil, config.Cleanup{
		Enabled:  true,
		Schedule: "30 3 * * *",
		TokenTTL: 24 * time.Hour,
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.GetNextRunTime())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestContextCancelStopsScheduler(t *testing.T) {
	janitor := &stubJanitor{}
	s := NewTokenCleanupScheduler(janitor, nil, config.Cleanup{
		Enabled:  true,
		Schedule: "30 3 * * *",
		TokenTTL: 24 * time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.False(t, s.IsRunning())
}

func TestStartDisabled(t *testing.T) {
	s := NewTokenCleanupScheduler(&stubJanitor{}, nil, config.Cleanup{Enabled: false})
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewTokenCleanupScheduler(&stubJanitor{}, nil, config.Cleanup{
		Enabled:  true,
		Schedule: "not a schedule",
		TokenTTL: time.Hour,
	})
	assert.Error(t, s.Start(context.Background()))
}
