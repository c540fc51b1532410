package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	embedding []float32
	err       error
}

func (s *stubAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	return s.embedding, s.err
}

func TestGenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClientWithAPI(&stubAPI{}, 4)

	_, err := client.GenerateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestGenerateEmbedding_Success(t *testing.T) {
	client := NewClientWithAPI(&stubAPI{embedding: []float32{1, 2, 3, 4}}, 4)

	emb, err := client.GenerateEmbedding(context.Background(), "visa fees")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, emb)
}

func TestGenerateEmbedding_WrongDimensions(t *testing.T) {
	client := NewClientWithAPI(&stubAPI{embedding: []float32{1, 2}}, 4)

	_, err := client.GenerateEmbedding(context.Background(), "visa fees")
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestGenerateEmbedding_APIError(t *testing.T) {
	apiErr := errors.New("rate limited")
	client := NewClientWithAPI(&stubAPI{err: apiErr}, 4)

	_, err := client.GenerateEmbedding(context.Background(), "visa fees")
	assert.ErrorIs(t, err, apiErr)
}
