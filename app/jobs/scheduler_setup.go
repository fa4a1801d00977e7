package jobs

import (
	"context"

	"realtor/app/intake"
	"realtor/core/config"
	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/scheduler"

	"gorm.io/gorm"
)

// SetupScheduler registers all scheduled jobs with the cron scheduler
func SetupScheduler(db *gorm.DB, emitter *emitter.Emitter, cfg *config.Config, log logger.Logger) *scheduler.CronScheduler {
	cronScheduler := scheduler.NewCronScheduler(log)

	expiryJob := NewIntakeTokenExpiryJob(intake.NewIntakeService(db, emitter, log, cfg.IntakeTokenTTL), log)

	// Runs every 15 minutes; single-use links also die after INTAKE_TOKEN_TTL
	cronTask := &scheduler.CronTask{
		Name:        "intake_token_expiry",
		Description: "Clear intake tokens issued longer ago than the configured TTL",
		CronExpr:    "*/15 * * * *",
		Handler: func(ctx context.Context) error {
			return expiryJob.Execute(ctx)
		},
		Enabled: cfg.IntakeTokenTTL > 0,
	}

	if err := cronScheduler.RegisterTask(cronTask); err != nil {
		log.Error("failed to register intake token expiry job", logger.Err(err))
	} else {
		log.Info("registered intake token expiry job", logger.Bool("enabled", cronTask.Enabled))
	}

	return cronScheduler
}
