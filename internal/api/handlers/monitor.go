package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/legal-eagles/govwatch/internal/api"
	"github.com/legal-eagles/govwatch/internal/domain"
	"github.com/legal-eagles/govwatch/internal/jobs"
)

type MonitorService interface {
	CheckURL(ctx context.Context, url string) (*domain.ContentChange, error)
	ForceCheck(ctx context.Context, url string) (*domain.ContentChange, error)
	DiscoverPages(ctx context.Context) []string
	URLCount() int
}

type CycleService interface {
	RunCycle(ctx context.Context) error
	LastCycle() *jobs.CycleStats
}

type ChangeIngester interface {
	ProcessOne(ctx context.Context, change domain.ContentChange) error
}

type ChangeLogReader interface {
	RecentChanges(ctx context.Context, since time.Duration) ([]*domain.ChangeLogEntry, error)
}

type PageStats interface {
	CountActive(ctx context.Context) (int, error)
}

type IndexStats interface {
	Count(ctx context.Context) (int, error)
}

type MonitorHandler struct {
	monitor   MonitorService
	cycle     CycleService
	ingester  ChangeIngester
	changeLog ChangeLogReader
	pages     PageStats
	index     IndexStats
}

func NewMonitorHandler(monitor MonitorService, cycle CycleService, ingester ChangeIngester, changeLog ChangeLogReader, pages PageStats, index IndexStats) *MonitorHandler {
	return &MonitorHandler{
		monitor:   monitor,
		cycle:     cycle,
		ingester:  ingester,
		changeLog: changeLog,
		pages:     pages,
		index:     index,
	}
}

type CycleResponse struct {
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Detected   int    `json:"changes_detected"`
	Processed  int    `json:"changes_processed"`
}

func cycleToResponse(stats *jobs.CycleStats) *CycleResponse {
	if stats == nil {
		return nil
	}
	return &CycleResponse{
		StartedAt:  stats.StartedAt.Format(time.RFC3339),
		FinishedAt: stats.FinishedAt.Format(time.RFC3339),
		Detected:   stats.Detected,
		Processed:  stats.Processed,
	}
}

// Run triggers one full monitoring cycle synchronously.
func (h *MonitorHandler) Run(w http.ResponseWriter, r *http.Request) {
	if err := h.cycle.RunCycle(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, cycleToResponse(h.cycle.LastCycle()))
}

type CheckURLRequest struct {
	URL         string `json:"url"`
	ForceUpdate bool   `json:"force_update"`
}

type CheckURLResponse struct {
	URL            string `json:"url"`
	Changed        bool   `json:"changed"`
	ChangeType     string `json:"change_type,omitempty"`
	OldFingerprint string `json:"old_fingerprint,omitempty"`
	NewFingerprint string `json:"new_fingerprint,omitempty"`
	DetectedAt     string `json:"detected_at,omitempty"`
}

// CheckURL runs change detection for a single URL and ingests any change.
func (h *MonitorHandler) CheckURL(w http.ResponseWriter, r *http.Request) {
	var req CheckURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := domain.ValidateURL(req.URL); err != nil {
		api.HandleError(w, err)
		return
	}

	check := h.monitor.CheckURL
	if req.ForceUpdate {
		check = h.monitor.ForceCheck
	}

	change, err := check(r.Context(), req.URL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if change == nil {
		api.Success(w, http.StatusOK, CheckURLResponse{URL: req.URL, Changed: false})
		return
	}

	if err := h.ingester.ProcessOne(r.Context(), *change); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CheckURLResponse{
		URL:            change.URL,
		Changed:        true,
		ChangeType:     string(change.ChangeType),
		OldFingerprint: change.OldFingerprint,
		NewFingerprint: change.NewFingerprint,
		DetectedAt:     change.Timestamp.Format(time.RFC3339),
	})
}

type StatusResponse struct {
	MonitoredURLs  int            `json:"monitored_urls"`
	ActivePages    int            `json:"active_pages"`
	IndexDocuments int            `json:"index_documents"`
	ChangesLast24h int            `json:"changes_last_24h"`
	LastCycle      *CycleResponse `json:"last_cycle,omitempty"`
}

// Status reports the monitor's current state.
func (h *MonitorHandler) Status(w http.ResponseWriter, r *http.Request) {
	activePages, err := h.pages.CountActive(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	docCount, err := h.index.Count(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	recent, err := h.changeLog.RecentChanges(r.Context(), 24*time.Hour)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StatusResponse{
		MonitoredURLs:  h.monitor.URLCount(),
		ActivePages:    activePages,
		IndexDocuments: docCount,
		ChangesLast24h: len(recent),
		LastCycle:      cycleToResponse(h.cycle.LastCycle()),
	})
}

type ChangeLogEntryResponse struct {
	ID             string `json:"id"`
	URL            string `json:"url"`
	ChangeType     string `json:"change_type"`
	OldFingerprint string `json:"old_fingerprint,omitempty"`
	NewFingerprint string `json:"new_fingerprint"`
	DetectedAt     string `json:"detected_at"`
}

type ChangesResponse struct {
	Days    int                      `json:"days"`
	Changes []ChangeLogEntryResponse `json:"changes"`
}

// Changes lists change log entries from the last N days (default 7).
func (h *MonitorHandler) Changes(w http.ResponseWriter, r *http.Request) {
	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	entries, err := h.changeLog.RecentChanges(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	changes := make([]ChangeLogEntryResponse, len(entries))
	for i, entry := range entries {
		changes[i] = ChangeLogEntryResponse{
			ID:             entry.ID,
			URL:            entry.URL,
			ChangeType:     string(entry.ChangeType),
			OldFingerprint: entry.OldFingerprint,
			NewFingerprint: entry.NewFingerprint,
			DetectedAt:     entry.DetectedAt.Format(time.RFC3339),
		}
	}

	api.Success(w, http.StatusOK, ChangesResponse{Days: days, Changes: changes})
}

type DiscoverResponse struct {
	Discovered []string `json:"discovered"`
	Count      int      `json:"count"`
}

// Discover harvests candidate pages linked from the monitored sources.
func (h *MonitorHandler) Discover(w http.ResponseWriter, r *http.Request) {
	discovered := h.monitor.DiscoverPages(r.Context())
	if discovered == nil {
		discovered = []string{}
	}
	api.Success(w, http.StatusOK, DiscoverResponse{Discovered: discovered, Count: len(discovered)})
}
