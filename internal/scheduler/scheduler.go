package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shiftops/internal/services"
)

// OccurrenceScheduler spawns the day's assignments for recurring workflows.
// Generation is idempotent (occurrence rows are keyed by workflow, assignee
// and date), so an extra run or a restart never duplicates work.
type OccurrenceScheduler struct {
	cronScheduler *cron.Cron
	workflows     services.WorkflowService
	spec          string
	jobID         cron.EntryID
}

func NewOccurrenceScheduler(workflows services.WorkflowService, spec string) *OccurrenceScheduler {
	return &OccurrenceScheduler{
		cronScheduler: cron.New(cron.WithSeconds()),
		workflows:     workflows,
		spec:          spec,
	}
}

// Start registers the cron job and runs one generation pass immediately so a
// restart mid-day still produces today's assignments.
func (s *OccurrenceScheduler) Start() error {
	id, err := s.cronScheduler.AddFunc(s.spec, s.runOnce)
	if err != nil {
		return err
	}
	s.jobID = id
	s.cronScheduler.Start()
	log.Printf("[scheduler] occurrence generation scheduled: %q", s.spec)

	go s.runOnce()
	return nil
}

func (s *OccurrenceScheduler) Stop() {
	ctx := s.cronScheduler.Stop()
	<-ctx.Done()
}

func (s *OccurrenceScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := s.workflows.SpawnDueAssignments(ctx, time.Now())
	if err != nil {
		log.Printf("[scheduler][err] spawn assignments: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[scheduler] spawned %d assignment(s)", n)
	}
}
