package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/legal-eagles/govwatch/internal/api/handlers"
	"github.com/legal-eagles/govwatch/internal/domain"
	"github.com/legal-eagles/govwatch/internal/jobs"
)

type MockMonitorService struct {
	mock.Mock
}

func (m *MockMonitorService) CheckURL(ctx context.Context, url string) (*domain.ContentChange, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentChange), args.Error(1)
}

func (m *MockMonitorService) ForceCheck(ctx context.Context, url string) (*domain.ContentChange, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentChange), args.Error(1)
}

func (m *MockMonitorService) DiscoverPages(ctx context.Context) []string {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockMonitorService) URLCount() int {
	return m.Called().Int(0)
}

type MockCycleService struct {
	mock.Mock
}

func (m *MockCycleService) RunCycle(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCycleService) LastCycle() *jobs.CycleStats {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*jobs.CycleStats)
}

type MockChangeIngester struct {
	mock.Mock
}

func (m *MockChangeIngester) ProcessOne(ctx context.Context, change domain.ContentChange) error {
	return m.Called(ctx, change).Error(0)
}

type MockChangeLogReader struct {
	mock.Mock
}

func (m *MockChangeLogReader) RecentChanges(ctx context.Context, since time.Duration) ([]*domain.ChangeLogEntry, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChangeLogEntry), args.Error(1)
}

type MockPageStats struct {
	mock.Mock
}

func (m *MockPageStats) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockIndexStats struct {
	mock.Mock
}

func (m *MockIndexStats) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Query(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

type routerMocks struct {
	monitor   *MockMonitorService
	cycle     *MockCycleService
	ingester  *MockChangeIngester
	changeLog *MockChangeLogReader
	pages     *MockPageStats
	index     *MockIndexStats
	search    *MockSearchService
}

func setupRouter() (http.Handler, *routerMocks) {
	m := &routerMocks{
		monitor:   new(MockMonitorService),
		cycle:     new(MockCycleService),
		ingester:  new(MockChangeIngester),
		changeLog: new(MockChangeLogReader),
		pages:     new(MockPageStats),
		index:     new(MockIndexStats),
		search:    new(MockSearchService),
	}

	cfg := RouterConfig{
		MonitorHandler: handlers.NewMonitorHandler(m.monitor, m.cycle, m.ingester, m.changeLog, m.pages, m.index),
		SearchHandler:  handlers.NewSearchHandler(m.search),
	}

	return NewRouter(cfg), m
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_MonitorRun(t *testing.T) {
	router, m := setupRouter()

	m.cycle.On("RunCycle", mock.Anything).Return(nil)
	m.cycle.On("LastCycle").Return(&jobs.CycleStats{
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
		Detected:   1,
		Processed:  1,
	})

	req := httptest.NewRequest(http.MethodPost, "/monitor/run", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	m.cycle.AssertExpectations(t)
}

func TestRouter_MonitorStatus(t *testing.T) {
	router, m := setupRouter()

	m.monitor.On("URLCount").Return(4)
	m.pages.On("CountActive", mock.Anything).Return(4, nil)
	m.index.On("Count", mock.Anything).Return(52, nil)
	m.changeLog.On("RecentChanges", mock.Anything, 24*time.Hour).Return([]*domain.ChangeLogEntry{}, nil)
	m.cycle.On("LastCycle").Return((*jobs.CycleStats)(nil))

	req := httptest.NewRequest(http.MethodGet, "/monitor/status", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Search(t *testing.T) {
	router, m := setupRouter()

	m.search.On("Query", mock.Anything, "passport fees", 3).Return([]domain.SearchResult{}, nil)

	body, _ := json.Marshal(handlers.SearchRequest{Query: "passport fees", Limit: 3})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	m.search.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_BodyTooLarge(t *testing.T) {
	router, _ := setupRouter()

	huge := bytes.Repeat([]byte("a"), 2*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(huge))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
