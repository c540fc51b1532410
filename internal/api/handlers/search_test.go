package handlers

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

	"github.com/legal-eagles/govwatch/internal/domain"
)

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

func TestSearchHandler_Search(t *testing.T) {
	svc := new(MockSearchService)
	h := NewSearchHandler(svc)

	results := []domain.SearchResult{
		{
			ID:          "webpage_abc_0",
			URL:         "https://example.gov/passports",
			Content:     "passport renewal takes three weeks",
			Score:       0.91,
			LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	svc.On("Query", mock.Anything, "passport renewal", 5).Return(results, nil)

	body, _ := json.Marshal(SearchRequest{Query: "passport renewal", Limit: 5})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "passport renewal", resp.Data.Query)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "https://example.gov/passports", resp.Data.Results[0].URL)
	assert.InDelta(t, 0.91, resp.Data.Results[0].Score, 0.001)
}

func TestSearchHandler_Search_EmptyQuery(t *testing.T) {
	svc := new(MockSearchService)
	h := NewSearchHandler(svc)

	body, _ := json.Marshal(SearchRequest{Query: "   "})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchHandler_Search_InvalidBody(t *testing.T) {
	svc := new(MockSearchService)
	h := NewSearchHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_Search_ServiceError(t *testing.T) {
	svc := new(MockSearchService)
	h := NewSearchHandler(svc)

	svc.On("Query", mock.Anything, "benefits", 0).Return(nil, domain.ErrIndexUnavailable)

	body, _ := json.Marshal(SearchRequest{Query: "benefits"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearchHandler_Search_NoResults(t *testing.T) {
	svc := new(MockSearchService)
	h := NewSearchHandler(svc)

	svc.On("Query", mock.Anything, "nothing indexed yet", 0).Return([]domain.SearchResult{}, nil)

	body, _ := json.Marshal(SearchRequest{Query: "nothing indexed yet"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Results)
}
