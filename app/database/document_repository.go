package database

import (
	"fmt"
)

var _ DocumentRepositoryInterface = (*DocumentRepository)(nil)

// DocumentRepository handles database operations for reconciled documents.
type DocumentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Upsert inserts or replaces a document by ID.
func (r *DocumentRepository) Upsert(doc Document) error {
	_, err := r.db.Exec(`
		INSERT INTO documents (id, event_id, event_type, full_text, lang, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			event_id = excluded.event_id,
			event_type = excluded.event_type,
			full_text = excluded.full_text,
			lang = excluded.lang,
			created_at = excluded.created_at,
			payload = excluded.payload
	`, doc.ID, doc.EventID, doc.EventType, doc.FullText, doc.Lang, doc.CreatedAt, string(doc.Payload))

	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// GetCount returns the total number of stored documents.
func (r *DocumentRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get document count: %w", err)
	}
	return count, nil
}

// GetCountByEventType returns document counts grouped by event type.
func (r *DocumentRepository) GetCountByEventType() (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT event_type, COUNT(*)
		FROM documents
		GROUP BY event_type
		ORDER BY event_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get document counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[eventType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}

	return counts, nil
}

// GetByCategory returns documents whose label carries the given category.
func (r *DocumentRepository) GetByCategory(category string, limit int) ([]Document, error) {
	rows, err := r.db.Query(`
		SELECT d.id, d.event_id, d.event_type, d.full_text,
		       COALESCE(d.lang, ''), COALESCE(d.created_at, ''), d.payload, d.inserted_at
		FROM documents d
		JOIN labels l ON l.post_id = d.id
		WHERE EXISTS (
			SELECT 1 FROM json_each(l.categories) WHERE json_each.value = ?
		)
		ORDER BY d.id
		LIMIT ?
	`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents by category: %w", err)
	}
	defer rows.Close()

	var documents []Document
	for rows.Next() {
		var doc Document
		var payload string
		err := rows.Scan(&doc.ID, &doc.EventID, &doc.EventType, &doc.FullText,
			&doc.Lang, &doc.CreatedAt, &payload, &doc.InsertedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		doc.Payload = []byte(payload)
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return documents, nil
}
