package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/legal-eagles/govwatch/internal/domain"
	"github.com/legal-eagles/govwatch/internal/telemetry"
)

// SourceMonitor detects content changes across the monitored URL set.
type SourceMonitor interface {
	MonitorSources(ctx context.Context) []domain.ContentChange
}

// ChangeProcessor ingests detected changes into the knowledge index.
type ChangeProcessor interface {
	Process(ctx context.Context, changes []domain.ContentChange) (int, error)
}

// CycleStats summarizes the most recent completed monitoring cycle.
type CycleStats struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Detected   int
	Processed  int
}

// MonitorCycle runs one full detect-and-ingest pass: check every source,
// then push the detected changes through the processor. It remembers the
// last cycle's stats for status reporting.
type MonitorCycle struct {
	monitor   SourceMonitor
	processor ChangeProcessor

	mu   sync.Mutex
	last *CycleStats
}

// NewMonitorCycle creates a new MonitorCycle instance.
func NewMonitorCycle(monitor SourceMonitor, processor ChangeProcessor) *MonitorCycle {
	return &MonitorCycle{
		monitor:   monitor,
		processor: processor,
	}
}

// RunCycle implements the CycleRunner interface.
func (c *MonitorCycle) RunCycle(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "MonitorCycle.RunCycle", telemetry.SpanAttributes{
		Operation: "cycle",
	})
	defer span.End()

	started := time.Now().UTC()

	changes := c.monitor.MonitorSources(ctx)

	processed := 0
	if len(changes) > 0 {
		var err error
		processed, err = c.processor.Process(ctx, changes)
		if err != nil {
			span.SetError(err)
			return fmt.Errorf("process changes: %w", err)
		}
		log.Printf("cycle: processed %d/%d changes", processed, len(changes))
	}

	c.mu.Lock()
	c.last = &CycleStats{
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Detected:   len(changes),
		Processed:  processed,
	}
	c.mu.Unlock()

	return nil
}

// LastCycle reports the most recent completed cycle, or nil when no cycle
// has finished yet.
func (c *MonitorCycle) LastCycle() *CycleStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	stats := *c.last
	return &stats
}
