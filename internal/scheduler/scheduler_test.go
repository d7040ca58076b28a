package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/limitup/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	runs     int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.NewWithWriter(io.Discard))
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "dup", schedule: "@hourly"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.AddJob(&countingJob{name: "bad", schedule: "not a cron expr"}))
}

func TestRunJobExecutesAndRecordsHistory(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "manual", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("manual"))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		h, err := s.History("manual")
		return err == nil && len(h.Results) == 1
	}, 2*time.Second, 10*time.Millisecond)

	h, err := s.History("manual")
	require.NoError(t, err)
	assert.True(t, h.Results[0].Success)
	assert.Equal(t, 1.0, h.SuccessRate())
}

func TestHistoryReturnsSnapshot(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "snap", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("snap"))
	require.Eventually(t, func() bool {
		h, err := s.History("snap")
		return err == nil && len(h.Results) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// the returned history is a copy: later completions and caller
	// mutations must not reach across
	before, err := s.History("snap")
	require.NoError(t, err)
	before.Results[0].Success = false
	before.Results = nil

	after, err := s.History("snap")
	require.NoError(t, err)
	require.Len(t, after.Results, 1)
	assert.True(t, after.Results[0].Success)
}

func TestRunJobUnknown(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunJob("nope"))
}

func TestJobHistoryBounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(5), 5)
}
