package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
	"github.com/custodia-labs/leadsync/internal/core/ports/driving"
	"github.com/custodia-labs/leadsync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyRetention is the number of results kept per task.
const historyRetention = 100

// Scheduler runs the sweep and cache maintenance in-process, for
// deployments without an external trigger.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	sweeper driving.Sweeper
	cache   driven.ProcessedLeadCache

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// inflight prevents a slow task from being started twice.
	inflight map[string]bool
}

// NewScheduler creates a scheduler. cache may be nil, which disables the
// claim cleanup task.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	sweeper driving.Sweeper,
	cache driven.ProcessedLeadCache,
) *Scheduler {
	if config.TickInterval <= 0 {
		config.TickInterval = domain.DefaultSchedulerConfig().TickInterval
	}
	return &Scheduler{
		config:   config,
		store:    store,
		sweeper:  sweeper,
		cache:    cache,
		inflight: make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("scheduler: disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks syncs the persisted tasks with the configuration. Tasks
// that are switched off are removed so a previous run cannot keep them due.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	builtin := []struct {
		id, name string
		usable   bool
	}{
		{domain.TaskIDAutoSyncSweep, "Auto-Sync Sweep", true},
		{domain.TaskIDClaimCleanup, "Reply Claim Cleanup", s.cache != nil},
	}

	for _, b := range builtin {
		cfg := s.config.GetTaskConfig(b.id)
		if !cfg.Enabled || !b.usable {
			if err := s.store.DeleteTask(ctx, b.id); err != nil {
				return err
			}
			continue
		}
		if err := s.ensureTask(ctx, b.id, b.name, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store. A new sweep task is
// due immediately; other new tasks wait one interval.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
		}
		if id != domain.TaskIDAutoSyncSweep {
			task.NextRun = now.Add(cfg.Interval)
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = now.Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := tasks[i]
		if task.IsDue(now) {
			s.runTask(ctx, &task)
		}
	}
}

func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inflight[task.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: task %s still running, skipping", task.ID)
		return
	}
	s.inflight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, task.ID)
			s.mu.Unlock()
		}()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDAutoSyncSweep:
			result.ItemsProcessed, err = s.runSweep(ctx)
		case domain.TaskIDClaimCleanup:
			result.ItemsProcessed, err = s.runClaimCleanup(ctx)
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Error = err.Error()
			task.LastError = err.Error()
			logger.Warn("scheduler: task %s failed: %v", task.ID, err)
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.StartedAt.Add(task.Interval)

		// Bookkeeping must survive shutdown of the run context.
		bg := context.WithoutCancel(ctx)
		if saveErr := s.store.SaveTask(bg, task); saveErr != nil {
			logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(bg, result); recordErr != nil {
			logger.Error("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(bg, historyRetention); pruneErr != nil {
			logger.Error("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runSweep returns the number of eligible tenants.
func (s *Scheduler) runSweep(ctx context.Context) (int, error) {
	if s.sweeper == nil {
		return 0, nil
	}
	summary, err := s.sweeper.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	if summary.Failed > 0 {
		return summary.Eligible, fmt.Errorf("%d of %d tenants failed", summary.Failed, summary.Eligible)
	}
	return summary.Eligible, nil
}

// runClaimCleanup returns the number of expired claims dropped.
func (s *Scheduler) runClaimCleanup(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Prune(ctx, time.Now())
}
