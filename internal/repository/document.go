package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/legal-eagles/govwatch/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// DocumentRepository stores indexed content chunks with their embeddings
// in Postgres/pgvector.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const upsertDocumentSQL = `
	INSERT INTO documents
		(id, url, content, chunk_index, chunk_count, source_type, content_type, change_type, last_updated, embedding)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		content = EXCLUDED.content,
		chunk_count = EXCLUDED.chunk_count,
		change_type = EXCLUDED.change_type,
		last_updated = EXCLUDED.last_updated,
		embedding = EXCLUDED.embedding`

// Upsert writes one document; the same id overwrites, never duplicates.
func (r *DocumentRepository) Upsert(ctx context.Context, doc domain.Document) error {
	_, err := r.pool.Exec(ctx, upsertDocumentSQL, upsertArgs(doc)...)
	return err
}

// UpsertBatch writes all documents in one transaction so a partial batch
// never becomes visible.
func (r *DocumentRepository) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if _, err := tx.Exec(ctx, upsertDocumentSQL, upsertArgs(doc)...); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	return tx.Commit(ctx)
}

func upsertArgs(doc domain.Document) []any {
	lastUpdated := doc.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = time.Now().UTC()
	}
	return []any{
		doc.ID, doc.URL, doc.Content, doc.ChunkIndex, doc.ChunkCount,
		doc.SourceType, doc.ContentType, string(doc.ChangeType), lastUpdated,
		pgvector.NewVector(doc.Embedding),
	}
}

// DeleteByURL removes every chunk derived from a URL. Used when a page's
// content is reported deleted.
func (r *DocumentRepository) DeleteByURL(ctx context.Context, url string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE url = $1`, url)
	return err
}

// SearchByEmbedding returns the closest documents to the query embedding,
// scored with 1/(1+distance) so callers see a similarity in (0,1].
func (r *DocumentRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, url, content, last_updated,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM documents
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.SearchResult, 0, limit)
	for rows.Next() {
		var result domain.SearchResult
		if err := rows.Scan(&result.ID, &result.URL, &result.Content, &result.LastUpdated, &result.Score); err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// Count returns the number of indexed documents.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
