package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Snapshotter writes the current reports into a directory.
type Snapshotter interface {
	WriteSnapshot(dir string, now time.Time) ([]string, error)
}

// Scheduler writes report snapshots on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	reports Snapshotter
	spec    string
	dir     string
	loc     *time.Location
	logger  *zap.Logger
}

// New validates the schedule up front so a bad REPORT_CRON fails at boot.
func New(spec, dir string, loc *time.Location, reports Snapshotter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("report schedule %q: %w", spec, err)
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		reports: reports,
		spec:    spec,
		dir:     dir,
		loc:     loc,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec), zap.String("dir", s.dir))
	s.cron.Start()
}

// Stop waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunOnce writes one snapshot now.
func (s *Scheduler) RunOnce() {
	paths, err := s.reports.WriteSnapshot(s.dir, time.Now().In(s.loc))
	if err != nil {
		s.logger.Error("failed to write report snapshot", zap.Error(err))
		return
	}
	s.logger.Info("report snapshot written", zap.Strings("files", paths))
}
