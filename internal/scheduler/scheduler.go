package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"MarketInsights/internal/collector"
	"MarketInsights/internal/model"
	"MarketInsights/internal/notifier"
	"MarketInsights/internal/recorder"
)

// Messenger delivers formatted reports.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler refreshes the prepared tables on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Messenger // nil disables notifications
	Recorder  recorder.Recorder
	Ctx       context.Context

	mu   sync.Mutex
	last *model.Dataset
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Messenger, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register adds the refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// Last returns the most recent successful dataset, or nil.
func (s *Scheduler) Last() *model.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Refresh runs the pipeline once, records the result and sends the report.
func (s *Scheduler) Refresh(ctx context.Context) (*model.Dataset, error) {
	ds, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = ds
	s.mu.Unlock()

	if err := s.Recorder.RecordRun(recorder.NewRunSnapshot(ds)); err != nil {
		log.Errorf("record run: %v", err)
	}
	s.trySend(notifier.FormatRunReport(ds))
	return ds, nil
}

func (s *Scheduler) refreshTask() {
	log.Info("running refresh task")
	if _, err := s.Refresh(s.Ctx); err != nil {
		log.Errorf("refresh: %v", err)
		s.trySend(fmt.Sprintf("❌ 数据刷新失败: %v", err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/refresh":
		if _, err := s.Refresh(s.Ctx); err != nil {
			return fmt.Sprintf("❌ 数据刷新失败: %v", err)
		}
		return ""
	case "/report":
		if ds := s.Last(); ds != nil {
			return notifier.FormatRunReport(ds)
		}
		return "暂无数据, 发送 /refresh 获取"
	case "/means":
		if ds := s.Last(); ds != nil {
			return notifier.FormatMeans(ds.Means)
		}
		return "暂无数据, 发送 /refresh 获取"
	default:
		return "可用命令:\n• /refresh\n• /report\n• /means"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Errorf("send notification: %v", err)
	}
}
