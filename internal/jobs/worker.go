package jobs

import (
	"context"
	"log"
	"time"
)

// CycleRunner is a unit of periodic work driven by the Worker.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Worker drives a CycleRunner on a fixed interval until stopped.
type Worker struct {
	runner   CycleRunner
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWorker creates a new Worker instance.
func NewWorker(runner CycleRunner, interval time.Duration) *Worker {
	return &Worker{
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the worker's polling loop. The first cycle runs after one
// full interval, not immediately.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Worker started with interval: %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.runner.RunCycle(ctx); err != nil {
				log.Printf("Error running cycle: %v", err)
			}
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Worker shutdown complete")
}
