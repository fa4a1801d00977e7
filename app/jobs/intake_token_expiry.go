package jobs

import (
	"context"
	"time"

	"realtor/core/logger"
)

// TokenExpirer clears intake tokens older than its TTL
type TokenExpirer interface {
	ExpireTokens(ctx context.Context, now time.Time) (int64, error)
}

type IntakeTokenExpiryJob struct {
	expirer TokenExpirer
	logger  logger.Logger
	now     func() time.Time
}

func NewIntakeTokenExpiryJob(expirer TokenExpirer, log logger.Logger) *IntakeTokenExpiryJob {
	return &IntakeTokenExpiryJob{
		expirer: expirer,
		logger:  log,
		now:     time.Now,
	}
}

func (j *IntakeTokenExpiryJob) Execute(ctx context.Context) error {
	n, err := j.expirer.ExpireTokens(ctx, j.now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("Expired intake tokens", logger.Int("count", int(n)))
	}
	return nil
}
