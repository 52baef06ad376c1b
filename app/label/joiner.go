package label

import (
	"log/slog"

	"github.com/LukasRub/crisiscorpus/app/topics"
)

// Joiner attaches event types to annotation records by joining them with the
// event metadata table on the normalized event ID.
type Joiner struct{}

func NewJoiner() *Joiner {
	return &Joiner{}
}

// Run performs an inner join of records against the topics rows on
// EventID == dataset. Records without a matching metadata row are dropped
// and counted; the join helper columns are not exposed on the output.
func (j *Joiner) Run(records []Record, rows []topics.Row) ([]Record, int) {
	types := make(map[string]string, len(rows))
	for _, row := range rows {
		if row["dataset"] != "" {
			types[row["dataset"]] = row["type"]
		}
	}

	kept := make([]Record, 0, len(records))
	dropped := 0

	for _, record := range records {
		eventType, ok := types[record.EventID]
		if !ok {
			slog.Debug("Dropping record with no matching event metadata", "post_id", record.PostID, "event_id", record.EventID)
			dropped++
			continue
		}

		record.EventType = eventType
		kept = append(kept, record)
	}

	return kept, dropped
}
