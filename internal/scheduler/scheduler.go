// Package scheduler drives periodic polling on a bounded worker pool.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/fb-repost-bot/pkg/config"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"go.uber.org/fx"
)

// Task is one unit of scheduled work. Its context is cancelled on shutdown
// once in-flight runs have been given the stop timeout to finish.
type Task func(ctx context.Context) error

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Logger logger.Logger
}

type Scheduler struct {
	cron       gocron.Scheduler
	startDelay time.Duration
	logger     logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a scheduler sized to the CPU count and stops it with the app.
// Start is left to the caller, after every job is registered.
func New(opts Opts) (*Scheduler, error) {
	s, err := NewWithSettings(Settings{
		Workers:     runtime.NumCPU(),
		StartDelay:  opts.Config.Parser.StartupDelay,
		StopTimeout: opts.Config.Parser.ShutdownTimeout,
	}, opts.Logger)
	if err != nil {
		return nil, err
	}

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return s.Stop()
		},
	})
	return s, nil
}

type Settings struct {
	Workers     int
	StartDelay  time.Duration
	StopTimeout time.Duration
}

func NewWithSettings(settings Settings, log logger.Logger) (*Scheduler, error) {
	log = log.WithComponent("Scheduler")

	workers := settings.Workers
	if workers <= 0 {
		workers = 1
	}

	schedulerOpts := []gocron.SchedulerOption{
		gocron.WithLimitConcurrentJobs(uint(workers), gocron.LimitModeWait),
		gocron.WithLogger(log),
	}
	if settings.StopTimeout > 0 {
		schedulerOpts = append(schedulerOpts, gocron.WithStopTimeout(settings.StopTimeout))
	}

	cron, err := gocron.NewScheduler(schedulerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron,
		startDelay: settings.StartDelay,
		logger:     log,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Every runs task every interval, first after the startup delay. Runs of the
// same job never overlap: a tick that comes while the previous run is still
// going is dropped.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}

	_, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		s.startAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	s.logger.Info("Job scheduled", "job", name, "interval", interval, "start_delay", s.startDelay)
	return nil
}

// Delay runs task once, after the given duration.
func (s *Scheduler) Delay(name string, after time.Duration, task Task) error {
	start := gocron.OneTimeJobStartImmediately()
	if after > 0 {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(after))
	}

	_, err := s.cron.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(s.run, name, task),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler", "jobs", len(s.cron.Jobs()))
	s.cron.Start()
}

// Stop waits for running jobs up to the stop timeout, then cancels the
// context of whatever is still running.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	defer s.cancel()

	err := s.cron.Shutdown()
	if errors.Is(err, gocron.ErrStopJobsTimedOut) {
		s.logger.Warn("Jobs still running after stop timeout, cancelling them")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) run(name string, task Task) {
	if s.ctx.Err() != nil {
		return
	}

	if err := task(s.ctx); err != nil {
		s.logger.Error("Job failed", "job", name, "error", err)
	}
}

func (s *Scheduler) startAt() gocron.JobOption {
	if s.startDelay <= 0 {
		return gocron.WithStartAt(gocron.WithStartImmediately())
	}
	return gocron.WithStartAt(gocron.WithStartDateTime(time.Now().Add(s.startDelay)))
}
