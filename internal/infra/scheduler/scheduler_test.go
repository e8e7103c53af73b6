package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScheduler_InvalidSpec(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewRunScheduler(func(context.Context, time.Time) error { return nil }, log, "every now and then", time.UTC)

	assert.Error(t, s.Start())
}

func TestRunScheduler_ExecuteLogsFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	calls := 0
	s := NewRunScheduler(func(ctx context.Context, now time.Time) error {
		calls++
		return errors.New("sheet unreachable")
	}, log, "*/5 * * * *", time.UTC)

	s.execute()

	assert.Equal(t, 1, calls)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Contains(t, entry.Message, "sheet unreachable")
}

func TestRunScheduler_StartStop(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewRunScheduler(func(context.Context, time.Time) error { return nil }, log, "0 3 * * *", time.UTC)

	require.NoError(t, s.Start())
	s.Stop()

	assert.Error(t, s.ctx.Err(), "job context is canceled after Stop")
}

func TestFields(t *testing.T) {
	assert.Equal(t, logrus.Fields{"now": 1, "entry": "x"}, fields([]interface{}{"now", 1, "entry", "x", "dangling"}))
}
