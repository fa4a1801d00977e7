package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"realtor/app/models"
	"realtor/core/config"
	"realtor/core/database"
	"realtor/core/emitter"
	"realtor/core/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

type stubExpirer struct {
	calledAt time.Time
	n        int64
	err      error
}

func (s *stubExpirer) ExpireTokens(_ context.Context, now time.Time) (int64, error) {
	s.calledAt = now
	return s.n, s.err
}

func TestExpiryJobPassesCurrentTime(t *testing.T) {
	stub := &stubExpirer{n: 2}
	job := NewIntakeTokenExpiryJob(stub, logger.NewNop())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, fixed, stub.calledAt)

	stub.err = errors.New("db down")
	assert.Error(t, job.Execute(context.Background()))
}

func TestSchedulerClearsStaleTokens(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Client{}))

	token := "stale"
	issued := time.Now().UTC().Add(-48 * time.Hour)
	c := models.Client{FirstName: "Ana", LastName: "Ruiz", RentalStatus: models.RentalNone, IntakeToken: &token, IntakeTokenIssuedAt: &issued}
	require.NoError(t, db.Create(&c).Error)

	cfg := &config.Config{IntakeTokenTTL: 24 * time.Hour}
	s := SetupScheduler(db, emitter.New(), cfg, logger.NewNop())

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "intake_token_expiry", tasks[0].Name)
	assert.True(t, tasks[0].Enabled)

	require.NoError(t, s.RunTask("intake_token_expiry"))

	var got models.Client
	require.NoError(t, db.First(&got, c.Id).Error)
	assert.Nil(t, got.IntakeToken)
	assert.Nil(t, got.IntakeTokenIssuedAt)
}

func TestSchedulerDisabledWithoutTTL(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:", gormlogger.Silent)
	require.NoError(t, err)

	s := SetupScheduler(db, emitter.New(), &config.Config{}, logger.NewNop())
	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Enabled)
}
