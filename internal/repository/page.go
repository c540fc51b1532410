package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/legal-eagles/govwatch/internal/domain"
)

// PageRepository persists per-URL monitoring state, keyed by the unique
// url column.
type PageRepository struct {
	db dbtx
}

func NewPageRepository(pool *pgxpool.Pool) *PageRepository {
	return &PageRepository{db: pool}
}

func NewPageRepositoryWithTx(tx pgx.Tx) *PageRepository {
	return &PageRepository{db: tx}
}

const pageColumns = `id, url, content_fingerprint, content_preview, last_checked, last_modified, error_count, is_active, created_at`

func (r *PageRepository) GetByURL(ctx context.Context, url string) (*domain.PageRecord, error) {
	var rec domain.PageRecord
	err := r.db.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM page_records WHERE url = $1`,
		url,
	).Scan(&rec.ID, &rec.URL, &rec.ContentFingerprint, &rec.ContentPreview,
		&rec.LastChecked, &rec.LastModified, &rec.ErrorCount, &rec.IsActive, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPageNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Insert stores a first-seen URL. The unique key on url is the
// correctness boundary: a concurrent duplicate insert degrades to
// returning the existing record instead of creating a second row.
func (r *PageRepository) Insert(ctx context.Context, url, fingerprint, content string) (*domain.PageRecord, error) {
	now := time.Now().UTC()
	rec := &domain.PageRecord{
		ID:                 uuid.NewString(),
		URL:                url,
		ContentFingerprint: fingerprint,
		ContentPreview:     domain.Preview(content),
		LastChecked:        now,
		LastModified:       now,
		ErrorCount:         0,
		IsActive:           true,
		CreatedAt:          now,
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO page_records
			(id, url, content_fingerprint, content_preview, last_checked, last_modified, error_count, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (url) DO NOTHING`,
		rec.ID, rec.URL, rec.ContentFingerprint, rec.ContentPreview,
		rec.LastChecked, rec.LastModified, rec.ErrorCount, rec.IsActive, rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return r.GetByURL(ctx, url)
	}
	return rec, nil
}

// Update records newly observed content for an existing URL: fingerprint,
// preview, both timestamps, and a reset of the consecutive failure count.
func (r *PageRepository) Update(ctx context.Context, url, fingerprint, content string) (*domain.PageRecord, error) {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx,
		`UPDATE page_records
		 SET content_fingerprint = $2, content_preview = $3,
		     last_checked = $4, last_modified = $4, error_count = 0
		 WHERE url = $1`,
		url, fingerprint, domain.Preview(content), now,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrPageNotFound
	}
	return r.GetByURL(ctx, url)
}

// TouchChecked marks a successful fetch with unchanged content:
// last_checked advances and the failure count resets, nothing else moves.
func (r *PageRepository) TouchChecked(ctx context.Context, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE page_records SET last_checked = $2, error_count = 0 WHERE url = $1`,
		url, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

// RecordFetchFailure increments the consecutive failure counter and
// returns the new count.
func (r *PageRepository) RecordFetchFailure(ctx context.Context, url string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`UPDATE page_records SET error_count = error_count + 1, last_checked = $2
		 WHERE url = $1
		 RETURNING error_count`,
		url, time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrPageNotFound
		}
		return 0, err
	}
	return count, nil
}

// Deactivate takes a URL out of active monitoring.
func (r *PageRepository) Deactivate(ctx context.Context, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE page_records SET is_active = false WHERE url = $1`,
		url,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

// CountActive returns how many records are currently monitored.
func (r *PageRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM page_records WHERE is_active`,
	).Scan(&count)
	return count, err
}
