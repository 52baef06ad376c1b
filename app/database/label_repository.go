package database

import (
	"encoding/json"
	"fmt"
)

var _ LabelRepositoryInterface = (*LabelRepository)(nil)

// LabelRepository handles database operations for reconciled labels.
type LabelRepository struct {
	db *DB
}

func NewLabelRepository(db *DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Upsert inserts or replaces a label by post ID. Categories are stored as a
// JSON array so they stay queryable via json_each.
func (r *LabelRepository) Upsert(label Label) error {
	categories, err := json.Marshal(label.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO labels (post_id, event_id, event_type, dataset_id, priority, categories)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (post_id) DO UPDATE SET
			event_id = excluded.event_id,
			event_type = excluded.event_type,
			dataset_id = excluded.dataset_id,
			priority = excluded.priority,
			categories = excluded.categories
	`, label.PostID, label.EventID, label.EventType, label.DatasetID, label.Priority, string(categories))

	if err != nil {
		return fmt.Errorf("failed to upsert label: %w", err)
	}

	return nil
}

// GetCount returns the total number of stored labels.
func (r *LabelRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM labels").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get label count: %w", err)
	}
	return count, nil
}

// GetCategories returns the distinct category tags across all labels.
func (r *LabelRepository) GetCategories() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT json_each.value
		FROM labels, json_each(labels.categories)
		ORDER BY json_each.value
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

// GetPriorityHistogram returns label counts grouped by priority score.
func (r *LabelRepository) GetPriorityHistogram() (map[float64]int, error) {
	rows, err := r.db.Query(`
		SELECT priority, COUNT(*)
		FROM labels
		GROUP BY priority
		ORDER BY priority
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get priority histogram: %w", err)
	}
	defer rows.Close()

	histogram := make(map[float64]int)
	for rows.Next() {
		var priority float64
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("failed to scan histogram row: %w", err)
		}
		histogram[priority] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating histogram rows: %w", err)
	}

	return histogram, nil
}
