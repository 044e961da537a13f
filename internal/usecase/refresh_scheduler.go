package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/contest-radar/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

var _ cron.Logger = logging.CronLogger{}

type JobFunc func(ctx context.Context) error

// ScheduledJob is one periodic refresh. Spec is a 5-field cron expression or a
// descriptor such as "@every 6h".
type ScheduledJob struct {
	Name       string
	Spec       string
	RunOnStart bool
	Run        JobFunc
}

// ScheduleSpec prefers an explicit cron expression and falls back to a fixed interval.
func ScheduleSpec(cronExpr string, interval time.Duration) string {
	if expr := strings.TrimSpace(cronExpr); expr != "" {
		return expr
	}
	return "@every " + interval.String()
}

func ContestRefreshJob(svc *ContestRefreshService, spec string) ScheduledJob {
	return ScheduledJob{
		Name:       "contests",
		Spec:       spec,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			_, err := svc.Refresh(ctx)
			return err
		},
	}
}

func UserStatsRefreshJob(svc *UserStatsService, spec string) ScheduledJob {
	return ScheduledJob{
		Name:       "user-stats",
		Spec:       spec,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			_, err := svc.RefreshAll(ctx)
			return err
		},
	}
}

type scheduledEntry struct {
	job     ScheduledJob
	running atomic.Bool
}

// RefreshScheduler triggers jobs on their cadence. A trigger that fires while
// the same job is still running is skipped; a failed or panicking run never
// affects later triggers.
type RefreshScheduler struct {
	cron    *cron.Cron
	entries []*scheduledEntry
	metrics RefreshMetrics
	logger  *logging.Logger
	now     func() time.Time

	mu       sync.Mutex
	started  bool
	runCtx   context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

func NewRefreshScheduler(jobs []ScheduledJob, metrics RefreshMetrics, logger *logging.Logger) (*RefreshScheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = NewNoopRefreshMetrics()
	}
	logger = logger.Named("scheduler")

	s := &RefreshScheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithLogger(logging.NewCronLogger(logger))),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		runCtx:  context.Background(),
		cancel:  func() {},
	}

	for _, job := range jobs {
		if strings.TrimSpace(job.Name) == "" || job.Run == nil {
			return nil, fmt.Errorf("%w: scheduled job needs a name and a run func", ErrInvalidInput)
		}
		entry := &scheduledEntry{job: job}
		if _, err := s.cron.AddFunc(job.Spec, func() { s.trigger(entry, "schedule") }); err != nil {
			return nil, fmt.Errorf("%w: schedule %q for job %s: %v", ErrInvalidInput, job.Spec, job.Name, err)
		}
		s.entries = append(s.entries, entry)
	}

	return s, nil
}

// Start kicks off the startup runs in the background and begins the cron loop.
// Runs inherit ctx's values and stop when ctx is cancelled or Stop is called.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("refresh scheduler already started")
	}
	s.started = true
	s.runCtx, s.cancel = context.WithCancel(ctx)

	for _, entry := range s.entries {
		if !entry.job.RunOnStart {
			continue
		}
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			s.trigger(entry, "startup")
		}()
	}
	s.cron.Start()

	for _, e := range s.cron.Entries() {
		s.logger.Info("refresh job scheduled", "entry_id", e.ID, "next_run", e.Next)
	}
	return nil
}

// Stop halts future triggers, cancels in-flight runs and waits for them to
// return or for ctx to end.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for in-flight refresh runs: %w", ctx.Err())
	}
}

// RunNow triggers a job by name outside its schedule, honoring the
// skip-if-running guard. It reports whether the run happened.
func (s *RefreshScheduler) RunNow(name string) bool {
	for _, entry := range s.entries {
		if entry.job.Name == name {
			return s.trigger(entry, "manual")
		}
	}
	return false
}

func (s *RefreshScheduler) trigger(entry *scheduledEntry, reason string) bool {
	name := entry.job.Name
	if !entry.running.CompareAndSwap(false, true) {
		s.logger.Warn("skip refresh run: previous run still in progress", "job", name, "trigger", reason)
		s.metrics.ObserveJobSkipped(name)
		return false
	}
	defer entry.running.Store(false)

	s.mu.Lock()
	parent := s.runCtx
	s.mu.Unlock()

	ctx, span := startRootSpan(parent, "scheduler.run."+name)
	defer span.End()

	start := s.now()
	err := runJobSafely(ctx, entry.job)
	elapsed := s.now().Sub(start)
	s.metrics.ObserveJobRun(name, err, elapsed)

	if err != nil {
		s.logger.ErrorContext(ctx, "refresh run failed", "job", name, "trigger", reason, "elapsed_ms", elapsed.Milliseconds(), "error", err)
		return true
	}
	s.logger.InfoContext(ctx, "refresh run finished", "job", name, "trigger", reason, "elapsed_ms", elapsed.Milliseconds())
	return true
}

func runJobSafely(ctx context.Context, job ScheduledJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
	}()
	return job.Run(ctx)
}
