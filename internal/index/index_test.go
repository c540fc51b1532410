package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/legal-eagles/govwatch/internal/domain"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upsert(ctx context.Context, doc domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockStore) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	return m.Called(ctx, docs).Error(0)
}

func (m *MockStore) DeleteByURL(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockStore) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestUpsertBatch_EmbedsEveryDocument(t *testing.T) {
	embedder := new(MockEmbedder)
	store := new(MockStore)
	idx := New(embedder, store)

	docs := []domain.Document{
		{ID: "a", Content: "first chunk"},
		{ID: "b", Content: "second chunk"},
	}

	embedder.On("GenerateEmbedding", mock.Anything, "first chunk").Return([]float32{0.1}, nil)
	embedder.On("GenerateEmbedding", mock.Anything, "second chunk").Return([]float32{0.2}, nil)
	store.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(got []domain.Document) bool {
		return len(got) == 2 && got[0].Embedding != nil && got[1].Embedding != nil
	})).Return(nil)

	err := idx.UpsertBatch(context.Background(), docs)
	require.NoError(t, err)
	store.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestUpsertBatch_EmptyIsNoop(t *testing.T) {
	embedder := new(MockEmbedder)
	store := new(MockStore)
	idx := New(embedder, store)

	err := idx.UpsertBatch(context.Background(), nil)
	require.NoError(t, err)
	store.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestUpsertBatch_EmbeddingFailureAborts(t *testing.T) {
	embedder := new(MockEmbedder)
	store := new(MockStore)
	idx := New(embedder, store)

	docs := []domain.Document{{ID: "a", Content: "first"}, {ID: "b", Content: "second"}}
	embedder.On("GenerateEmbedding", mock.Anything, "first").Return(nil, errors.New("api down"))

	err := idx.UpsertBatch(context.Background(), docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed a")
	store.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestUpsert_SingleDocument(t *testing.T) {
	embedder := new(MockEmbedder)
	store := new(MockStore)
	idx := New(embedder, store)

	doc := domain.Document{ID: "webpage_x_0", Content: "hello"}
	embedder.On("GenerateEmbedding", mock.Anything, "hello").Return([]float32{0.5}, nil)
	store.On("Upsert", mock.Anything, mock.MatchedBy(func(got domain.Document) bool {
		return got.ID == doc.ID && len(got.Embedding) == 1
	})).Return(nil)

	err := idx.Upsert(context.Background(), doc)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestQuery_EmptyQueryReturnsNoResults(t *testing.T) {
	embedder := new(MockEmbedder)
	store := new(MockStore)
	idx := New(embedder, store)

	results, err := idx.Query(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	embedder.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, mock.Anything)
}

func TestQuery_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "zero uses default", limit: 0, wantLimit: defaultQueryLimit},
		{name: "negative uses default", limit: -3, wantLimit: defaultQueryLimit},
		{name: "oversized clamped", limit: 10000, wantLimit: maxQueryLimit},
		{name: "in range kept", limit: 7, wantLimit: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := new(MockEmbedder)
			store := new(MockStore)
			idx := New(embedder, store)

			embedder.On("GenerateEmbedding", mock.Anything, "passport renewal").Return([]float32{0.1}, nil)
			store.On("SearchByEmbedding", mock.Anything, []float32{0.1}, tt.wantLimit).
				Return([]domain.SearchResult{}, nil)

			_, err := idx.Query(context.Background(), "passport renewal", tt.limit)
			require.NoError(t, err)
			store.AssertExpectations(t)
		})
	}
}

func TestQuery_NilResultsBecomeEmptySlice(t *testing.T) {
	embedder := new(MockEmbedder)
	store := new(MockStore)
	idx := New(embedder, store)

	embedder.On("GenerateEmbedding", mock.Anything, "anything").Return([]float32{0.1}, nil)
	store.On("SearchByEmbedding", mock.Anything, mock.Anything, defaultQueryLimit).
		Return([]domain.SearchResult(nil), nil)

	results, err := idx.Query(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDeleteByURL_Passthrough(t *testing.T) {
	embedder := new(MockEmbedder)
	store := new(MockStore)
	idx := New(embedder, store)

	store.On("DeleteByURL", mock.Anything, "https://example.gov/page").Return(nil)

	err := idx.DeleteByURL(context.Background(), "https://example.gov/page")
	require.NoError(t, err)
	store.AssertExpectations(t)
}
