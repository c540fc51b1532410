package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/legal-eagles/govwatch/internal/domain"
	"github.com/legal-eagles/govwatch/internal/telemetry"
)

const (
	defaultMaxConcurrent = 5

	// maxConsecutiveFailures is how many fetch failures in a row a URL
	// may accumulate before its record is deactivated.
	maxConsecutiveFailures = 5
)

// Fetcher retrieves a URL's normalized content text.
type Fetcher interface {
	FetchAndExtract(ctx context.Context, url string) (string, error)
	DiscoverPages(ctx context.Context, baseURL string) ([]string, error)
}

// PageRepository persists per-URL monitoring state.
type PageRepository interface {
	GetByURL(ctx context.Context, url string) (*domain.PageRecord, error)
	Insert(ctx context.Context, url, fingerprint, content string) (*domain.PageRecord, error)
	Update(ctx context.Context, url, fingerprint, content string) (*domain.PageRecord, error)
	TouchChecked(ctx context.Context, url string) error
	RecordFetchFailure(ctx context.Context, url string) (int, error)
	Deactivate(ctx context.Context, url string) error
}

// Monitor runs the per-URL change-detection state machine and fans it out
// over the configured source set under a bounded concurrency limit.
type Monitor struct {
	fetcher       Fetcher
	pages         PageRepository
	urls          []string
	maxConcurrent int
}

// New creates a monitor over the given URL set.
func New(fetcher Fetcher, pages PageRepository, urls []string, maxConcurrent int) *Monitor {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Monitor{
		fetcher:       fetcher,
		pages:         pages,
		urls:          urls,
		maxConcurrent: maxConcurrent,
	}
}

// URLCount returns the size of the monitored URL set.
func (m *Monitor) URLCount() int {
	return len(m.urls)
}

// CheckURL runs the detection state machine for one URL: fetch,
// fingerprint, compare against the stored record, persist. Returns the
// detected change, or nil when the content is unchanged. Errors are
// returned to the caller; the cycle path decides whether to skip them.
func (m *Monitor) CheckURL(ctx context.Context, url string) (*domain.ContentChange, error) {
	return m.checkURL(ctx, url, false)
}

// ForceCheck is CheckURL with the unchanged short-circuit disabled: even
// when the fingerprint matches the stored record, an updated change is
// emitted so the URL's documents are re-ingested.
func (m *Monitor) ForceCheck(ctx context.Context, url string) (*domain.ContentChange, error) {
	return m.checkURL(ctx, url, true)
}

func (m *Monitor) checkURL(ctx context.Context, url string, force bool) (*domain.ContentChange, error) {
	ctx, span := telemetry.StartSpan(ctx, "Monitor.CheckURL", telemetry.SpanAttributes{
		URL:       url,
		Operation: "check",
	})
	defer span.End()

	content, err := m.fetcher.FetchAndExtract(ctx, url)
	if err != nil {
		m.recordFailure(ctx, url)
		return nil, err
	}

	fingerprint := Fingerprint(content)

	record, err := m.pages.GetByURL(ctx, url)
	if err != nil && !errors.Is(err, domain.ErrPageNotFound) {
		return nil, err
	}

	now := time.Now().UTC()

	if record == nil {
		if _, err := m.pages.Insert(ctx, url, fingerprint, content); err != nil {
			return nil, err
		}
		log.Printf("monitor: new url detected: %s", url)
		return &domain.ContentChange{
			URL:            url,
			OldFingerprint: "",
			NewFingerprint: fingerprint,
			Content:        content,
			Timestamp:      now,
			ChangeType:     domain.ChangeTypeNew,
		}, nil
	}

	if record.ContentFingerprint == fingerprint && !force {
		if err := m.pages.TouchChecked(ctx, url); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if _, err := m.pages.Update(ctx, url, fingerprint, content); err != nil {
		return nil, err
	}
	log.Printf("monitor: content changed: %s", url)
	return &domain.ContentChange{
		URL:            url,
		OldFingerprint: record.ContentFingerprint,
		NewFingerprint: fingerprint,
		Content:        content,
		Timestamp:      now,
		ChangeType:     domain.ChangeTypeUpdated,
	}, nil
}

// MonitorSources checks every configured URL concurrently, bounded by the
// configured limit, and gathers the detected changes. One URL's failure
// never aborts the batch: failures are logged and that URL is skipped
// until the next cycle.
func (m *Monitor) MonitorSources(ctx context.Context) []domain.ContentChange {
	ctx, span := telemetry.StartSpan(ctx, "Monitor.MonitorSources", telemetry.SpanAttributes{
		Operation: "cycle",
	})
	defer span.End()

	log.Printf("monitor: starting cycle over %d urls", len(m.urls))

	sem := make(chan struct{}, m.maxConcurrent)
	results := make(chan *domain.ContentChange, len(m.urls))

	var wg sync.WaitGroup
	for _, url := range m.urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			change, err := m.CheckURL(ctx, url)
			if err != nil {
				log.Printf("monitor: check failed for %s: %v", url, err)
				return
			}
			results <- change
		}(url)
	}

	wg.Wait()
	close(results)

	var changes []domain.ContentChange
	for change := range results {
		if change != nil {
			changes = append(changes, *change)
		}
	}

	log.Printf("monitor: cycle completed, %d changes detected", len(changes))
	return changes
}

// DiscoverPages harvests same-domain links from every monitored URL,
// returning candidates for growing the source set.
func (m *Monitor) DiscoverPages(ctx context.Context) []string {
	seen := make(map[string]struct{}, len(m.urls))
	for _, url := range m.urls {
		seen[url] = struct{}{}
	}

	var discovered []string
	for _, url := range m.urls {
		links, err := m.fetcher.DiscoverPages(ctx, url)
		if err != nil {
			log.Printf("monitor: discovery failed for %s: %v", url, err)
			continue
		}
		for _, link := range links {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			discovered = append(discovered, link)
		}
	}

	log.Printf("monitor: discovered %d candidate pages", len(discovered))
	return discovered
}

// recordFailure bumps a URL's consecutive failure count and deactivates
// the record once the threshold is reached. Failures here are logged
// only; the fetch error itself is what the caller sees.
func (m *Monitor) recordFailure(ctx context.Context, url string) {
	count, err := m.pages.RecordFetchFailure(ctx, url)
	if err != nil {
		if !errors.Is(err, domain.ErrPageNotFound) {
			log.Printf("monitor: failed to record fetch failure for %s: %v", url, err)
		}
		return
	}

	if count >= maxConsecutiveFailures {
		if err := m.pages.Deactivate(ctx, url); err != nil {
			log.Printf("monitor: failed to deactivate %s: %v", url, err)
			return
		}
		log.Printf("monitor: deactivated %s after %d consecutive failures", url, count)
	}
}
