package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/legal-eagles/govwatch/internal/domain"
)

// ChangeLogRepository appends to and reads the append-only change audit
// log. Entries are never updated or deleted.
type ChangeLogRepository struct {
	db dbtx
}

func NewChangeLogRepository(pool *pgxpool.Pool) *ChangeLogRepository {
	return &ChangeLogRepository{db: pool}
}

func NewChangeLogRepositoryWithTx(tx pgx.Tx) *ChangeLogRepository {
	return &ChangeLogRepository{db: tx}
}

func (r *ChangeLogRepository) Append(ctx context.Context, url, oldFingerprint, newFingerprint string, changeType domain.ChangeType) (*domain.ChangeLogEntry, error) {
	if !changeType.IsValid() {
		return nil, domain.ErrInvalidChangeType
	}

	entry := &domain.ChangeLogEntry{
		ID:             uuid.NewString(),
		URL:            url,
		OldFingerprint: oldFingerprint,
		NewFingerprint: newFingerprint,
		ChangeType:     changeType,
		DetectedAt:     time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO content_change_log (id, url, old_fingerprint, new_fingerprint, change_type, detected_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.URL, entry.OldFingerprint, entry.NewFingerprint, string(entry.ChangeType), entry.DetectedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecentChanges returns entries detected within the given window, most
// recent first.
func (r *ChangeLogRepository) RecentChanges(ctx context.Context, since time.Duration) ([]*domain.ChangeLogEntry, error) {
	cutoff := time.Now().UTC().Add(-since)

	rows, err := r.db.Query(ctx,
		`SELECT id, url, old_fingerprint, new_fingerprint, change_type, detected_at
		 FROM content_change_log
		 WHERE detected_at >= $1
		 ORDER BY detected_at DESC`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.ChangeLogEntry
	for rows.Next() {
		var entry domain.ChangeLogEntry
		var changeType string
		if err := rows.Scan(&entry.ID, &entry.URL, &entry.OldFingerprint, &entry.NewFingerprint, &changeType, &entry.DetectedAt); err != nil {
			return nil, err
		}
		entry.ChangeType = domain.ChangeType(changeType)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// CountSince returns how many changes were detected within the window.
func (r *ChangeLogRepository) CountSince(ctx context.Context, since time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-since)

	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM content_change_log WHERE detected_at >= $1`,
		cutoff,
	).Scan(&count)
	return count, err
}
