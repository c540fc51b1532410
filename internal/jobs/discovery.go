package jobs

import (
	"context"
	"log"
	"sync"
)

// PageDiscoverer harvests candidate pages linked from the monitored set.
type PageDiscoverer interface {
	DiscoverPages(ctx context.Context) []string
}

// DiscoveryCycle periodically harvests candidate pages and remembers the
// latest batch. Candidates are reported, not auto-added: growing the
// monitored set stays an operator decision.
type DiscoveryCycle struct {
	discoverer PageDiscoverer

	mu   sync.Mutex
	last []string
}

// NewDiscoveryCycle creates a new DiscoveryCycle instance.
func NewDiscoveryCycle(discoverer PageDiscoverer) *DiscoveryCycle {
	return &DiscoveryCycle{discoverer: discoverer}
}

// RunCycle implements the CycleRunner interface.
func (c *DiscoveryCycle) RunCycle(ctx context.Context) error {
	discovered := c.discoverer.DiscoverPages(ctx)

	c.mu.Lock()
	c.last = discovered
	c.mu.Unlock()

	for _, url := range discovered {
		log.Printf("discovery: candidate page: %s", url)
	}
	return nil
}

// LastDiscovered reports the candidates from the most recent run.
func (c *DiscoveryCycle) LastDiscovered() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.last))
	copy(out, c.last)
	return out
}
