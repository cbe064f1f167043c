package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a periodic task. Run must be safe to call while another process
// runs the same job.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Service struct {
	jobs     []Job
	log      *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewService(log *zap.Logger, jobs ...Job) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		jobs:     jobs,
		log:      log.Named("cron"),
		stopChan: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches one ticker loop per job.
func (s *Service) Start() {
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.log.Warn("job has no interval, not scheduled", zap.String("job", job.Name))
			continue
		}
		s.wg.Add(1)
		go s.loop(job)
	}
	s.log.Info("cron service started", zap.Int("jobs", len(s.jobs)))
}

// Stop ends every loop and waits for in-flight runs to return.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.cancel()
	})
	s.wg.Wait()
	s.log.Info("cron service stopped")
}

func (s *Service) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.run(job)
		}
	}
}

func (s *Service) run(job Job) {
	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		s.log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}

// RunNow runs the named job once on the caller's goroutine.
func (s *Service) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("unknown job %q", name)
}
