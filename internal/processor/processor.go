// Package processor turns detected content changes into knowledge index
// documents and change log entries.
package processor

import (
	"context"
	"fmt"
	"log"

	"github.com/legal-eagles/govwatch/internal/domain"
)

// KnowledgeWriter is the slice of the knowledge index the processor needs.
type KnowledgeWriter interface {
	Upsert(ctx context.Context, doc domain.Document) error
	UpsertBatch(ctx context.Context, docs []domain.Document) error
	DeleteByURL(ctx context.Context, url string) error
}

// ChangeLog records processed changes for the audit trail.
type ChangeLog interface {
	Append(ctx context.Context, url, oldFingerprint, newFingerprint string, changeType domain.ChangeType) (*domain.ChangeLogEntry, error)
}

// DocumentProcessor ingests content changes into the knowledge index.
// It batches the whole cycle's documents into one write and falls back to
// per-change processing when the batch fails, so a single bad change never
// blocks the rest.
type DocumentProcessor struct {
	index     KnowledgeWriter
	changeLog ChangeLog
	chunks    ChunkConfig
}

func New(index KnowledgeWriter, changeLog ChangeLog) *DocumentProcessor {
	return &DocumentProcessor{
		index:     index,
		changeLog: changeLog,
		chunks:    DefaultChunkConfig(),
	}
}

// Process ingests a cycle's worth of changes and returns how many were
// processed successfully. Individual failures are logged and skipped.
func (p *DocumentProcessor) Process(ctx context.Context, changes []domain.ContentChange) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	upserts := make([]domain.ContentChange, 0, len(changes))
	docs := make([]domain.Document, 0, len(changes))
	processed := 0

	for _, change := range changes {
		if change.ChangeType == domain.ChangeTypeDeleted {
			if err := p.processDeletion(ctx, change); err != nil {
				log.Printf("processor: delete %s: %v", change.URL, err)
				continue
			}
			processed++
			continue
		}
		upserts = append(upserts, change)
		docs = append(docs, p.buildDocuments(change)...)
	}

	if len(upserts) == 0 {
		return processed, nil
	}

	if err := p.index.UpsertBatch(ctx, docs); err != nil {
		log.Printf("processor: batch of %d documents failed, retrying per change: %v", len(docs), err)
		return processed + p.processIndividually(ctx, upserts), nil
	}

	for _, change := range upserts {
		if err := p.appendLog(ctx, change); err != nil {
			log.Printf("processor: change log for %s: %v", change.URL, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// ProcessOne ingests a single change: chunk, upsert, then log.
func (p *DocumentProcessor) ProcessOne(ctx context.Context, change domain.ContentChange) error {
	if change.ChangeType == domain.ChangeTypeDeleted {
		return p.processDeletion(ctx, change)
	}

	docs := p.buildDocuments(change)
	if len(docs) == 0 {
		return fmt.Errorf("no content to index for %s: %w", change.URL, domain.ErrEmptyContent)
	}

	if err := p.index.UpsertBatch(ctx, docs); err != nil {
		return fmt.Errorf("index %s: %w", change.URL, err)
	}
	return p.appendLog(ctx, change)
}

func (p *DocumentProcessor) processIndividually(ctx context.Context, changes []domain.ContentChange) int {
	processed := 0
	for _, change := range changes {
		if err := p.ProcessOne(ctx, change); err != nil {
			log.Printf("processor: %v", err)
			continue
		}
		processed++
	}
	return processed
}

func (p *DocumentProcessor) processDeletion(ctx context.Context, change domain.ContentChange) error {
	if err := p.index.DeleteByURL(ctx, change.URL); err != nil {
		return fmt.Errorf("remove documents for %s: %w", change.URL, err)
	}
	return p.appendLog(ctx, change)
}

// buildDocuments chunks a change's content into indexable documents with
// deterministic ids derived from the URL and chunk position.
func (p *DocumentProcessor) buildDocuments(change domain.ContentChange) []domain.Document {
	chunks := chunkText(change.Content, p.chunks)
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]domain.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = domain.Document{
			ID:          domain.ChunkDocumentID(change.URL, i),
			URL:         change.URL,
			Content:     chunk,
			ChunkIndex:  i,
			ChunkCount:  len(chunks),
			SourceType:  domain.SourceTypeGovernmentWebsite,
			ContentType: domain.ContentTypeWebpage,
			ChangeType:  change.ChangeType,
			LastUpdated: change.Timestamp,
		}
	}
	return docs
}

func (p *DocumentProcessor) appendLog(ctx context.Context, change domain.ContentChange) error {
	_, err := p.changeLog.Append(ctx, change.URL, change.OldFingerprint, change.NewFingerprint, change.ChangeType)
	return err
}
