package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"realtor/core/logger"

	"github.com/robfig/cron/v3"
)

// CronTask is a named job run on a cron schedule
type CronTask struct {
	Name        string
	Description string
	CronExpr    string
	Handler     func(ctx context.Context) error
	Enabled     bool
	Timeout     time.Duration

	entryID cron.EntryID
	lastRun time.Time
	lastErr error
}

// TaskStatus is a snapshot of a registered task
type TaskStatus struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CronExpr    string    `json:"cron_expr"`
	Enabled     bool      `json:"enabled"`
	LastRun     time.Time `json:"last_run"`
	LastError   string    `json:"last_error,omitempty"`
	NextRun     time.Time `json:"next_run"`
}

// CronScheduler wraps robfig/cron with named tasks and logging
type CronScheduler struct {
	cron   *cron.Cron
	logger logger.Logger
	mu     sync.Mutex
	tasks  map[string]*CronTask
}

func NewCronScheduler(log logger.Logger) *CronScheduler {
	return &CronScheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: log,
		tasks:  make(map[string]*CronTask),
	}
}

// RegisterTask validates and schedules task. Disabled tasks are kept but not scheduled.
func (s *CronScheduler) RegisterTask(task *CronTask) error {
	if task == nil || task.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if task.Handler == nil {
		return fmt.Errorf("task %s has no handler", task.Name)
	}
	if _, err := cron.ParseStandard(task.CronExpr); err != nil {
		return fmt.Errorf("invalid cron expression for %s: %w", task.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.Name]; exists {
		return fmt.Errorf("task %s already registered", task.Name)
	}
	s.tasks[task.Name] = task

	if !task.Enabled {
		return nil
	}

	id, err := s.cron.AddFunc(task.CronExpr, func() {
		_ = s.execute(task)
	})
	if err != nil {
		delete(s.tasks, task.Name)
		return err
	}
	task.entryID = id
	return nil
}

// RunTask executes a registered task immediately
func (s *CronScheduler) RunTask(name string) error {
	s.mu.Lock()
	task, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("task %s not found", name)
	}
	return s.execute(task)
}

func (s *CronScheduler) execute(task *CronTask) error {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	err := task.Handler(ctx)

	s.mu.Lock()
	task.lastRun = start
	task.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled task failed",
			logger.String("task", task.Name),
			logger.String("error", err.Error()))
		return err
	}
	s.logger.Debug("scheduled task finished",
		logger.String("task", task.Name),
		logger.Duration("duration", time.Since(start)))
	return nil
}

// Tasks returns the status of every registered task ordered by name
func (s *CronScheduler) Tasks() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TaskStatus, 0, len(s.tasks))
	for _, t := range s.tasks {
		status := TaskStatus{
			Name:        t.Name,
			Description: t.Description,
			CronExpr:    t.CronExpr,
			Enabled:     t.Enabled,
			LastRun:     t.lastRun,
		}
		if t.lastErr != nil {
			status.LastError = t.lastErr.Error()
		}
		if t.entryID != 0 {
			status.NextRun = s.cron.Entry(t.entryID).Next
		}
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}
