// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/limitup/internal/api/ws"
	"github.com/wonny/limitup/internal/pipeline"
	"github.com/wonny/limitup/pkg/logger"
)

// ClassifyJob rebuilds the snapshot for every configured market after
// the close and pushes the result to WebSocket subscribers.
// ⭐ SSOT: the classify schedule lives only in this job
type ClassifyJob struct {
	runner   *pipeline.Runner
	hub      *ws.Hub
	markets  []string
	schedule string
	logger   *logger.Logger
}

// NewClassifyJob creates the job. An empty schedule defaults to a
// nightly run after all covered markets have closed.
func NewClassifyJob(runner *pipeline.Runner, hub *ws.Hub, markets []string, schedule string, log *logger.Logger) *ClassifyJob {
	if schedule == "" {
		schedule = "0 30 18 * * 1-5"
	}
	return &ClassifyJob{
		runner:   runner,
		hub:      hub,
		markets:  markets,
		schedule: schedule,
		logger:   log,
	}
}

func (j *ClassifyJob) Name() string { return "classify_snapshots" }

func (j *ClassifyJob) Schedule() string { return j.schedule }

// Run builds snapshots for every market. One failing market does not
// stop the others; the job fails if any market failed.
func (j *ClassifyJob) Run(ctx context.Context) error {
	now := time.Now()

	var failed []string
	for _, market := range j.markets {
		snap, err := j.runner.Run(ctx, market, now)
		if err != nil {
			j.logger.WithError(err).WithField("market", market).Error("Classify run failed")
			failed = append(failed, fmt.Sprintf("%s: %v", market, err))
			continue
		}
		if j.hub != nil {
			j.hub.BroadcastSnapshot(snap)
		}
	}

	if len(failed) > 0 {
		return errors.New("classify failed for " + strings.Join(failed, "; "))
	}
	return nil
}
