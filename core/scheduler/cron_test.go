package scheduler

import (
	"context"
	"errors"
	"testing"

	"realtor/core/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTaskValidates(t *testing.T) {
	s := NewCronScheduler(logger.NewNop())
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.RegisterTask(&CronTask{Name: "", CronExpr: "@hourly", Handler: noop}))
	assert.Error(t, s.RegisterTask(&CronTask{Name: "bad", CronExpr: "every hour", Handler: noop}))
	assert.Error(t, s.RegisterTask(&CronTask{Name: "nohandler", CronExpr: "@hourly"}))

	require.NoError(t, s.RegisterTask(&CronTask{Name: "ok", CronExpr: "0 * * * *", Handler: noop, Enabled: true}))
	assert.Error(t, s.RegisterTask(&CronTask{Name: "ok", CronExpr: "0 * * * *", Handler: noop}))
}

func TestRunTaskRecordsOutcome(t *testing.T) {
	s := NewCronScheduler(logger.NewNop())
	runs := 0
	require.NoError(t, s.RegisterTask(&CronTask{
		Name:     "expire",
		CronExpr: "@hourly",
		Handler: func(context.Context) error {
			runs++
			if runs > 1 {
				return errors.New("second run fails")
			}
			return nil
		},
	}))

	require.NoError(t, s.RunTask("expire"))
	assert.Error(t, s.RunTask("expire"))
	assert.Error(t, s.RunTask("missing"))

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "second run fails", tasks[0].LastError)
	assert.False(t, tasks[0].LastRun.IsZero())
	assert.True(t, tasks[0].NextRun.IsZero(), "disabled task is never scheduled")
}
