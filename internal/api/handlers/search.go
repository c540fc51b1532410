package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/legal-eagles/govwatch/internal/api"
	"github.com/legal-eagles/govwatch/internal/domain"
)

type SearchService interface {
	Query(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchResultResponse struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Content     string  `json:"content"`
	Score       float64 `json:"score"`
	LastUpdated string  `json:"last_updated"`
}

type SearchResponse struct {
	Query   string                 `json:"query"`
	Results []SearchResultResponse `json:"results"`
}

// Search runs a semantic query against the knowledge index.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.svc.Query(r.Context(), req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]SearchResultResponse, len(results))
	for i, result := range results {
		responses[i] = SearchResultResponse{
			ID:          result.ID,
			URL:         result.URL,
			Content:     result.Content,
			Score:       result.Score,
			LastUpdated: result.LastUpdated.Format(time.RFC3339),
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{Query: req.Query, Results: responses})
}
