package services

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/logging"

	"github.com/robfig/cron/v3"
)

// ComputeScheduler runs the bulk season driver on a cron schedule. The
// periodic run is the de facto retry mechanism: weeks that were not final or
// failed last time are attempted again because only persisted weeks are
// skipped.
type ComputeScheduler struct {
	service *WeeklyWinnersService
	cron    *cron.Cron
	spec    string
	year    int
	season  string
	logger  *logging.Logger
}

// NewComputeScheduler creates a scheduler for the default season
func NewComputeScheduler(service *WeeklyWinnersService, spec, timezone string, year int, season string) (*ComputeScheduler, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading scheduler timezone %q: %w", timezone, err)
	}

	return &ComputeScheduler{
		service: service,
		cron:    cron.New(cron.WithLocation(location)),
		spec:    spec,
		year:    year,
		season:  season,
		logger:  logging.WithPrefix("Scheduler"),
	}, nil
}

// Start registers the job and begins the cron loop
func (s *ComputeScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("registering cron job %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Infof("Scheduled weekly winners run: %q for %d-%s", s.spec, s.year, s.season)
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *ComputeScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *ComputeScheduler) run() {
	s.logger.Infof("Scheduled run starting for %d-%s", s.year, s.season)

	outcomes, err := s.service.ComputeSeason(context.Background(), s.year, s.season)
	if err != nil {
		s.logger.Errorf("Scheduled run failed: %v", err)
		return
	}

	for _, outcome := range outcomes {
		s.logger.Infof("Week %d computed: %d winner(s)", outcome.Week, len(outcome.Winners))
	}
	s.logger.Infof("Scheduled run finished: %d week(s) computed", len(outcomes))
}
