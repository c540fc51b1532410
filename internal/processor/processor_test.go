package processor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/legal-eagles/govwatch/internal/domain"
)

type MockKnowledgeWriter struct {
	mock.Mock
}

func (m *MockKnowledgeWriter) Upsert(ctx context.Context, doc domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockKnowledgeWriter) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	return m.Called(ctx, docs).Error(0)
}

func (m *MockKnowledgeWriter) DeleteByURL(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type MockChangeLog struct {
	mock.Mock
}

func (m *MockChangeLog) Append(ctx context.Context, url, oldFingerprint, newFingerprint string, changeType domain.ChangeType) (*domain.ChangeLogEntry, error) {
	args := m.Called(ctx, url, oldFingerprint, newFingerprint, changeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChangeLogEntry), args.Error(1)
}

func newChange(url, content string, changeType domain.ChangeType) domain.ContentChange {
	return domain.ContentChange{
		URL:            url,
		OldFingerprint: "old",
		NewFingerprint: "new",
		Content:        content,
		Timestamp:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ChangeType:     changeType,
	}
}

func TestChunkText(t *testing.T) {
	t.Run("empty content yields no chunks", func(t *testing.T) {
		assert.Nil(t, chunkText("   \n\t ", DefaultChunkConfig()))
	})

	t.Run("short content is one chunk", func(t *testing.T) {
		chunks := chunkText("passport  renewal\nfees", DefaultChunkConfig())
		require.Len(t, chunks, 1)
		assert.Equal(t, "passport renewal fees", chunks[0])
	})

	t.Run("long content splits on word boundaries", func(t *testing.T) {
		words := make([]string, 2500)
		for i := range words {
			words[i] = "word"
		}
		chunks := chunkText(strings.Join(words, " "), ChunkConfig{MaxWords: 1000})
		require.Len(t, chunks, 3)
		assert.Len(t, strings.Fields(chunks[0]), 1000)
		assert.Len(t, strings.Fields(chunks[1]), 1000)
		assert.Len(t, strings.Fields(chunks[2]), 500)
	})

	t.Run("chunk cap applies", func(t *testing.T) {
		words := make([]string, 50)
		for i := range words {
			words[i] = "w"
		}
		chunks := chunkText(strings.Join(words, " "), ChunkConfig{MaxWords: 10, MaxChunks: 3})
		assert.Len(t, chunks, 3)
	})
}

func TestProcess_BatchUpsertAndLog(t *testing.T) {
	index := new(MockKnowledgeWriter)
	changeLog := new(MockChangeLog)
	p := New(index, changeLog)

	changes := []domain.ContentChange{
		newChange("https://example.gov/a", "alpha content", domain.ChangeTypeNew),
		newChange("https://example.gov/b", "beta content", domain.ChangeTypeUpdated),
	}

	index.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(docs []domain.Document) bool {
		return len(docs) == 2 &&
			docs[0].ID == domain.ChunkDocumentID("https://example.gov/a", 0) &&
			docs[1].ID == domain.ChunkDocumentID("https://example.gov/b", 0)
	})).Return(nil)
	changeLog.On("Append", mock.Anything, mock.Anything, "old", "new", mock.Anything).
		Return(&domain.ChangeLogEntry{}, nil).Times(2)

	processed, err := p.Process(context.Background(), changes)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	index.AssertExpectations(t)
	changeLog.AssertExpectations(t)
}

func TestProcess_FallsBackPerChangeOnBatchFailure(t *testing.T) {
	index := new(MockKnowledgeWriter)
	changeLog := new(MockChangeLog)
	p := New(index, changeLog)

	good := newChange("https://example.gov/good", "fine content", domain.ChangeTypeUpdated)
	bad := newChange("https://example.gov/bad", "poison content", domain.ChangeTypeUpdated)

	// The combined batch fails, then each change retries on its own.
	index.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(docs []domain.Document) bool {
		return len(docs) == 2
	})).Return(errors.New("batch rejected")).Once()
	index.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(docs []domain.Document) bool {
		return len(docs) == 1 && docs[0].URL == good.URL
	})).Return(nil).Once()
	index.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(docs []domain.Document) bool {
		return len(docs) == 1 && docs[0].URL == bad.URL
	})).Return(errors.New("still broken")).Once()
	changeLog.On("Append", mock.Anything, good.URL, "old", "new", domain.ChangeTypeUpdated).
		Return(&domain.ChangeLogEntry{}, nil).Once()

	processed, err := p.Process(context.Background(), []domain.ContentChange{good, bad})
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	index.AssertExpectations(t)
	changeLog.AssertExpectations(t)
}

func TestProcess_DeletedChangeRemovesDocuments(t *testing.T) {
	index := new(MockKnowledgeWriter)
	changeLog := new(MockChangeLog)
	p := New(index, changeLog)

	change := newChange("https://example.gov/gone", "", domain.ChangeTypeDeleted)

	index.On("DeleteByURL", mock.Anything, change.URL).Return(nil)
	changeLog.On("Append", mock.Anything, change.URL, "old", "new", domain.ChangeTypeDeleted).
		Return(&domain.ChangeLogEntry{}, nil)

	processed, err := p.Process(context.Background(), []domain.ContentChange{change})
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	index.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestProcess_EmptyInput(t *testing.T) {
	p := New(new(MockKnowledgeWriter), new(MockChangeLog))
	processed, err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, processed)
}

func TestProcessOne_EmptyContentRejected(t *testing.T) {
	p := New(new(MockKnowledgeWriter), new(MockChangeLog))
	err := p.ProcessOne(context.Background(), newChange("https://example.gov/x", "  ", domain.ChangeTypeNew))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestBuildDocuments_DeterministicIDs(t *testing.T) {
	p := New(new(MockKnowledgeWriter), new(MockChangeLog))
	change := newChange("https://example.gov/stable", "some stable content", domain.ChangeTypeUpdated)

	first := p.buildDocuments(change)
	second := p.buildDocuments(change)
	require.Len(t, first, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 1, first[0].ChunkCount)
	assert.Equal(t, domain.SourceTypeGovernmentWebsite, first[0].SourceType)
}
