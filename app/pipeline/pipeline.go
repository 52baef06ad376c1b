package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/LukasRub/crisiscorpus/app/database"
	"github.com/LukasRub/crisiscorpus/app/label"
	"github.com/LukasRub/crisiscorpus/app/topics"
	"github.com/LukasRub/crisiscorpus/app/twitter"
)

// FetcherInterface is the batch document fetcher the pipeline drives.
type FetcherInterface interface {
	Run(ctx context.Context, ids []string) ([]twitter.Status, error)
}

// Pipeline runs one end-to-end dataset preparation: raw annotations in,
// aligned label and document datasets out.
type Pipeline struct {
	labelsPath string
	topics     *topics.Parser
	fetcher    FetcherInterface
	writer     *Writer
	docRepo    database.DocumentRepositoryInterface
	labelRepo  database.LabelRepositoryInterface

	normalizer      *label.Normalizer
	joiner          *label.Joiner
	priorityEncoder *label.PriorityEncoder
	categoryEncoder *label.CategoryEncoder
}

func New(labelsPath string, topicsParser *topics.Parser, fetcher FetcherInterface,
	writer *Writer, docRepo database.DocumentRepositoryInterface,
	labelRepo database.LabelRepositoryInterface) *Pipeline {
	return &Pipeline{
		labelsPath:      labelsPath,
		topics:          topicsParser,
		fetcher:         fetcher,
		writer:          writer,
		docRepo:         docRepo,
		labelRepo:       labelRepo,
		normalizer:      label.NewNormalizer(),
		joiner:          label.NewJoiner(),
		priorityEncoder: label.NewPriorityEncoder(),
		categoryEncoder: label.NewCategoryEncoder(),
	}
}

// Run executes the full preparation pipeline. Nothing is persisted unless
// reconciliation succeeds.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()
	stats := &Stats{}

	slog.Info("Importing raw annotation labels", "path", p.labelsPath)
	records, duplicates, err := label.LoadFile(p.labelsPath)
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}
	stats.Loaded = len(records) + duplicates
	stats.Duplicates = duplicates
	slog.Info("Labels loaded", "records", len(records), "duplicates_removed", duplicates)

	records, stats.MalformedIDs = p.normalizer.Run(records)
	slog.Info("Event IDs normalized", "records", len(records), "malformed_dropped", stats.MalformedIDs)

	slog.Info("Joining with event metadata")
	rows, err := p.topics.ParseAttributes([]string{"dataset", "type"})
	if err != nil {
		return fmt.Errorf("failed to parse topics: %w", err)
	}
	records, stats.JoinMisses = p.joiner.Run(records, rows)
	slog.Info("Event types attached", "records", len(records), "join_misses_dropped", stats.JoinMisses)

	records, stats.UnknownPriorities = p.priorityEncoder.Run(records)
	slog.Info("Priorities encoded", "records", len(records), "unknown_dropped", stats.UnknownPriorities)

	if err := p.writer.WriteCategoryAudit(records); err != nil {
		return fmt.Errorf("failed to write category audit: %w", err)
	}

	records, vocab, emptyDropped := p.categoryEncoder.Run(records)
	stats.EmptyCategories = emptyDropped
	slog.Info("Categories encoded", "records", len(records), "vocabulary", len(vocab), "empty_dropped", emptyDropped)

	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].PostID
	}

	documents, err := p.fetcher.Run(ctx, ids)
	if err != nil {
		return fmt.Errorf("document fetch failed after %d documents: %w", len(documents), err)
	}

	labels, documents, unavailable, err := Reconcile(records, documents)
	if err != nil {
		return err
	}
	stats.Unavailable = len(unavailable)
	stats.Reconciled = len(labels)
	slog.Info("Datasets reconciled", "labels", len(labels), "documents", len(documents), "unavailable", len(unavailable))

	if err := p.persist(labels, documents, vocab, unavailable); err != nil {
		return err
	}

	stats.LogSummary()
	slog.Info("Preparation run completed", "duration", time.Since(started).Round(time.Second).String())

	return nil
}

func (p *Pipeline) persist(labels []label.Record, documents []twitter.Status, vocab, unavailable []string) error {
	if err := p.writer.WriteLabels(labels, vocab); err != nil {
		return fmt.Errorf("failed to write label table: %w", err)
	}
	if err := p.writer.WriteDocuments(documents); err != nil {
		return fmt.Errorf("failed to write document table: %w", err)
	}
	if err := p.writer.WriteVocabulary(vocab); err != nil {
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	if err := p.writer.WriteUnavailable(unavailable); err != nil {
		return fmt.Errorf("failed to write unavailable IDs: %w", err)
	}
	if err := p.writer.WriteCorpusTree(labels, documents, vocab); err != nil {
		return fmt.Errorf("failed to write corpus tree: %w", err)
	}

	return p.store(labels, documents)
}

// store mirrors the reconciled datasets into the corpus database so the
// serve mode can answer queries without re-reading the JSONL tables.
func (p *Pipeline) store(labels []label.Record, documents []twitter.Status) error {
	byID := make(map[string]*label.Record, len(labels))
	for i := range labels {
		byID[labels[i].PostID] = &labels[i]
	}

	for i := range documents {
		doc := &documents[i]
		record := byID[doc.IDStr]

		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %s: %w", doc.IDStr, err)
		}

		row := database.Document{
			ID:        doc.IDStr,
			EventID:   record.EventID,
			EventType: record.EventType,
			Lang:      doc.Lang,
			CreatedAt: doc.CreatedAt,
			Payload:   payload,
		}
		if doc.FullText != nil {
			row.FullText = sql.NullString{String: *doc.FullText, Valid: true}
		}

		if err := p.docRepo.Upsert(row); err != nil {
			return fmt.Errorf("failed to store document %s: %w", doc.IDStr, err)
		}
	}

	for i := range labels {
		record := &labels[i]
		row := database.Label{
			PostID:     record.PostID,
			EventID:    record.EventID,
			EventType:  record.EventType,
			DatasetID:  record.DatasetID,
			Priority:   record.Score,
			Categories: record.Categories,
		}
		if err := p.labelRepo.Upsert(row); err != nil {
			return fmt.Errorf("failed to store label %s: %w", record.PostID, err)
		}
	}

	slog.Info("Corpus database updated", "documents", len(documents), "labels", len(labels))
	return nil
}
