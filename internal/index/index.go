// Package index exposes the knowledge index: upsert of content chunks
// and nearest-match semantic queries over them.
package index

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/legal-eagles/govwatch/internal/domain"
	"github.com/legal-eagles/govwatch/internal/telemetry"
)

const (
	defaultQueryLimit = 5
	maxQueryLimit     = 100
)

// EmbeddingClient generates the vector representation of a text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// DocumentStore persists documents and runs similarity search.
type DocumentStore interface {
	Upsert(ctx context.Context, doc domain.Document) error
	UpsertBatch(ctx context.Context, docs []domain.Document) error
	DeleteByURL(ctx context.Context, url string) error
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error)
	Count(ctx context.Context) (int, error)
}

// KnowledgeIndex combines embedding generation with the document store.
// Upserting the same document id overwrites; queries return a normalized
// similarity score and never fail on an empty index.
type KnowledgeIndex struct {
	embedder EmbeddingClient
	store    DocumentStore
}

func New(embedder EmbeddingClient, store DocumentStore) *KnowledgeIndex {
	return &KnowledgeIndex{embedder: embedder, store: store}
}

// UpsertBatch embeds and writes all documents as one batch.
func (idx *KnowledgeIndex) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "KnowledgeIndex.UpsertBatch", telemetry.SpanAttributes{
		Operation: "upsert_batch",
	})
	defer span.End()

	embedded, err := idx.embedAll(ctx, docs)
	if err != nil {
		return err
	}

	if err := idx.store.UpsertBatch(ctx, embedded); err != nil {
		return fmt.Errorf("batch upsert failed: %w", err)
	}
	return nil
}

// Upsert embeds and writes one document.
func (idx *KnowledgeIndex) Upsert(ctx context.Context, doc domain.Document) error {
	embedding, err := idx.embedder.GenerateEmbedding(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embed %s: %w", doc.ID, err)
	}
	doc.Embedding = embedding

	if err := idx.store.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("upsert %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteByURL removes all chunks indexed under a URL.
func (idx *KnowledgeIndex) DeleteByURL(ctx context.Context, url string) error {
	return idx.store.DeleteByURL(ctx, url)
}

// Query runs a semantic search. Empty queries return an empty result set
// rather than an error; limits are clamped to a sane range.
func (idx *KnowledgeIndex) Query(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		log.Printf("index: empty query ignored")
		return []domain.SearchResult{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "KnowledgeIndex.Query", telemetry.SpanAttributes{
		Operation: "query",
	})
	defer span.End()

	if limit <= 0 {
		limit = defaultQueryLimit
	} else if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	embedding, err := idx.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := idx.store.SearchByEmbedding(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// Count reports the number of indexed documents.
func (idx *KnowledgeIndex) Count(ctx context.Context) (int, error) {
	return idx.store.Count(ctx)
}

func (idx *KnowledgeIndex) embedAll(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	embedded := make([]domain.Document, len(docs))
	for i, doc := range docs {
		embedding, err := idx.embedder.GenerateEmbedding(ctx, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", doc.ID, err)
		}
		doc.Embedding = embedding
		embedded[i] = doc
	}
	return embedded, nil
}
