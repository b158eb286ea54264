package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/services/metrics"
)

// Task is a unit of scheduled work. The context is canceled when the Scheduler stops.
type Task func(ctx context.Context) error

type onceJob struct {
	name  string
	delay time.Duration
	task  Task
}

// Scheduler runs tasks on cron triggers and one-shot delays, in a fixed time zone.
// A failing or panicking task is logged and never stops the Scheduler.
type Scheduler struct {
	cron   *cron.Cron
	logger core.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	once    []onceJob
	timers  []*time.Timer
	started bool
	stopped bool
}

func New(loc *time.Location, logger core.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Schedule registers task on a standard 5-field cron spec ("0 0 1 * *").
func (s *Scheduler) Schedule(name, spec string, task Task) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, task) }); err != nil {
		return errors.Wrapf(err, "scheduling %s (%q)", name, spec)
	}
	return nil
}

// ScheduleOnce registers task to run a single time, delay after Start.
func (s *Scheduler) ScheduleOnce(name string, delay time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := onceJob{name: name, delay: delay, task: task}
	s.once = append(s.once, job)
	if s.started && !s.stopped {
		s.startOnce(job)
	}
}

func (s *Scheduler) startOnce(job onceJob) {
	s.timers = append(s.timers, time.AfterFunc(job.delay, func() { s.run(job.name, job.task) }))
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true
	for _, job := range s.once {
		s.startOnce(job)
	}
	s.cron.Start()
}

// Stop prevents new runs and waits for running tasks until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.mu.Unlock()

	cronCtx := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		s.wg.Wait()
		close(done)
	}()

	defer s.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for running tasks")
	}
}

func (s *Scheduler) run(name string, task Task) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	start := time.Now()
	err := s.call(task)
	elapsed := time.Since(start)
	metrics.ObserveJob(name, err, elapsed)

	if err != nil {
		s.logger.Error(fmt.Sprintf("job %s failed after %s: %v", name, elapsed, err), err, map[string]interface{}{"job": name})
		return
	}
	s.logger.Info(fmt.Sprintf("job %s done in %s", name, elapsed))
}

func (s *Scheduler) call(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return task(s.ctx)
}

// cronLogger forwards cron's errors and skipped runs to core.Logger.
type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		l.logger.Warn("cron: previous run still in progress, run skipped")
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(fmt.Sprintf("cron: %s: %v %v", msg, err, keysAndValues), err)
}
