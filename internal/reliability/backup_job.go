package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupJob runs the backup service on the cron schedule.
type BackupJob struct {
	service *BackupService
	log     zerolog.Logger
}

// NewBackupJob creates a new backup job.
func NewBackupJob(service *BackupService, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service: service,
		log:     log.With().Str("job", "database_backup").Logger(),
	}
}

// Run executes one backup pass.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := j.service.CreateAndUpload(ctx); err != nil {
		j.log.Error().Err(err).Msg("Backup failed")
		return err
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *BackupJob) Name() string {
	return "database_backup"
}
