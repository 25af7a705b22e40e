package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Run() error   { j.runs++; return j.err }
func (j *countingJob) Name() string { return "counting" }

func TestAddJobValidatesSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	assert.NoError(t, s.AddJob("0 0 4 * * *", &countingJob{}))
	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))
}

func TestRunNowExecutesImmediately(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)
}

func TestRunNowReturnsJobError(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	err := s.RunNow(job)
	assert.Error(t, err)
	assert.Equal(t, 1, job.runs)
}
