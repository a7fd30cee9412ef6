package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cloo-solutions/onetool/internal/telemetry"
	"github.com/getsentry/sentry-go"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker runs a JobProcessor on a fixed interval until stopped. Each run gets
// its own Sentry hub and a deadline of one interval.
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

func (w *Worker) Name() string {
	return w.name
}

// LastRun returns when the processor last finished and what it returned.
// The time is zero before the first run.
func (w *Worker) LastRun() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRun, w.lastErr
}

// Start runs the processor once immediately, then on every tick. It blocks
// until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("%s worker started with interval: %v", w.name, w.pollInterval)

	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s worker stopped: context cancelled", w.name)
			return
		case <-w.stopChan:
			log.Printf("%s worker stopped: stop signal received", w.name)
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *Worker) run(ctx context.Context) {
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetTag("job", w.name)
	ctx = sentry.SetHubOnContext(ctx, hub)

	ctx, cancel := context.WithTimeout(ctx, w.pollInterval)
	defer cancel()

	err := w.processor.ProcessJobs(ctx)
	if err != nil {
		log.Printf("%s worker: %v", w.name, err)
		telemetry.CaptureError(ctx, err)
	}

	w.mu.Lock()
	w.lastRun, w.lastErr = time.Now().UTC(), err
	w.mu.Unlock()
}

// Stop signals the loop to exit and waits for it. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}
