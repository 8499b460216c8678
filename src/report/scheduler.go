package report

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"

	"AirlineSentiment/src/storage"
)

// Scheduler 按固定间隔生成报表
type Scheduler struct {
	cron     *cron.Cron
	gen      *Generator
	logger   *storage.Logger
	interval time.Duration
	ctx      context.Context
}

func NewScheduler(ctx context.Context, gen *Generator, interval time.Duration, logger *storage.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("报表间隔必须大于0: %v", interval)
	}

	s := &Scheduler{
		cron:     cron.New(),
		gen:      gen,
		logger:   logger,
		interval: interval,
		ctx:      ctx,
	}

	cronSpec := fmt.Sprintf("@every %s", interval)
	if err := s.cron.AddFunc(cronSpec, s.runOnce); err != nil {
		return nil, fmt.Errorf("创建定时任务失败: %w", err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Info("开始生成定时报表", "interval", s.interval)
	if _, err := s.gen.Run(s.ctx); err != nil {
		s.logger.Error("定时报表失败", "error", err)
	}
}

// Start 启动定时任务，不阻塞
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("报表定时任务已启动", "interval", s.interval)
}

// Stop 停止定时任务
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
