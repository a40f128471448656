package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/repositories"
)

// JobProcessor runs the parse pipeline for one queued resume.
type JobProcessor interface {
	ProcessResume(ctx context.Context, resumeID string) error
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(resumeID string)
	// Cancel aborts an in-flight job. It reports whether one was running.
	Cancel(resumeID string) bool
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type worker struct {
	repo         repositories.ResumeRepository
	processor    JobProcessor
	jobQueue     chan string
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
	log          *zap.Logger

	mu      sync.Mutex
	running map[string]*runningJob
}

type runningJob struct {
	cancel context.CancelFunc
}

func NewWorker(
	repo repositories.ResumeRepository,
	processor JobProcessor,
	cfg WorkerConfig,
	log *zap.Logger,
) Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &worker{
		repo:         repo,
		processor:    processor,
		jobQueue:     make(chan string, cfg.QueueSize),
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		stopChan:     make(chan struct{}),
		log:          log,
		running:      make(map[string]*runningJob),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)

		w.mu.Lock()
		for _, job := range w.running {
			job.cancel()
		}
		w.mu.Unlock()

		w.wg.Wait()
		w.log.Info("worker stopped")
	})
}

// EnqueueJob never blocks the caller. A job dropped on a full queue stays
// queued in the store and is picked up by the poller.
func (w *worker) EnqueueJob(resumeID string) {
	select {
	case <-w.stopChan:
		w.log.Warn("worker stopped, cannot enqueue job", zap.String("resume_id", resumeID))
		return
	default:
	}

	select {
	case w.jobQueue <- resumeID:
		w.log.Debug("job enqueued", zap.String("resume_id", resumeID))
	default:
		w.log.Warn("job queue full, deferring to poller", zap.String("resume_id", resumeID))
	}
}

func (w *worker) Cancel(resumeID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	job, ok := w.running[resumeID]
	if ok {
		job.cancel()
		delete(w.running, resumeID)
	}
	return ok
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case resumeID := <-w.jobQueue:
			w.runJob(ctx, workerID, resumeID)
		}
	}
}

func (w *worker) runJob(ctx context.Context, workerID int, resumeID string) {
	log := w.log.With(zap.Int("worker", workerID), zap.String("resume_id", resumeID))

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A resume can be delivered twice (enqueue plus poller). The duplicate
	// must not replace the running job's cancel func.
	w.mu.Lock()
	if _, busy := w.running[resumeID]; busy {
		w.mu.Unlock()
		log.Debug("job already running, skipping duplicate")
		return
	}
	job := &runningJob{cancel: cancel}
	w.running[resumeID] = job
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.running[resumeID] == job {
			delete(w.running, resumeID)
		}
		w.mu.Unlock()
	}()

	start := time.Now()

	if err := w.processor.ProcessResume(jobCtx, resumeID); err != nil {
		log.Error("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	log.Info("job finished", zap.Duration("elapsed", time.Since(start)))
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.repo.FindPendingJobs(w.concurrency * 2)
			if err != nil {
				w.log.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pendingJobs) > 0 {
				w.log.Debug("found pending jobs", zap.Int("count", len(pendingJobs)))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
