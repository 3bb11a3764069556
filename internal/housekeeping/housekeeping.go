// Package housekeeping runs the small periodic maintenance jobs the
// rest of the system leaves for a background scheduler: alert-dedup
// map cleanup and stale-product index compaction. Grounded on the
// teacher's cron scheduler
// (trader-go/internal/scheduler/scheduler.go): a Job interface with
// Name/Run, a robfig/cron/v3 wrapper with logging around every run.
package housekeeping

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one maintenance task the Scheduler can run on a cron
// schedule.
type Job interface {
	Name() string
	Run() error
}

// Scheduler drives a set of Jobs on independent cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a Scheduler. cron.WithSeconds gives sub-minute
// precision, matching the teacher's scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "housekeeping").Logger(),
	}
}

// AddJob registers job on the given cron schedule (e.g. "0 */5 * * * *"
// for every 5 minutes, "@every 30s").
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("running housekeeping job")
		if err := job.Run(); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("housekeeping job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("housekeeping job completed")
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("housekeeping job registered")
	return nil
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("housekeeping scheduler started")
}

// Stop waits for any in-flight job to finish, then halts the cron.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("housekeeping scheduler stopped")
}
