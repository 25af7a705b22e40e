package clientdata

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CleanupJob prunes expired rows from the cache tables. Reads already skip
// expired entries, so the job only keeps cache.db from accumulating rows
// nobody will ask for again.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates the cache cleanup job.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run deletes expired entries across all cache tables.
func (j *CleanupJob) Run() error {
	results, err := j.repo.DeleteAllExpired()
	if err != nil {
		return fmt.Errorf("cache cleanup: %w", err)
	}

	var total int64
	for table, count := range results {
		if count > 0 {
			j.log.Debug().Str("table", table).Int64("deleted", count).Msg("Pruned expired cache rows")
		}
		total += count
	}

	j.log.Info().Int64("deleted", total).Msg("Cache cleanup finished")
	return nil
}

// Name identifies the job in scheduler logs.
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}
