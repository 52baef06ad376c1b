package label

import (
	"log/slog"
	"regexp"
)

// eventIDPattern captures the stable event identifier prefix, e.g.
// "nepal5340" out of "nepal5340seg1".
var eventIDPattern = regexp.MustCompile(`^\w+\d{4}`)

// Normalizer strips dataset-segment suffixes from composite event IDs,
// preserving the original value in DatasetID.
type Normalizer struct {
	pattern *regexp.Regexp
}

func NewNormalizer() *Normalizer {
	return &Normalizer{pattern: eventIDPattern}
}

// Run normalizes every record's EventID. Records whose EventID does not
// match the pattern at all are dropped and counted rather than failing the
// batch, so one malformed annotation cannot sink a whole preparation run.
func (n *Normalizer) Run(records []Record) ([]Record, int) {
	kept := make([]Record, 0, len(records))
	dropped := 0

	for _, record := range records {
		match := n.pattern.FindString(record.EventID)
		if match == "" {
			slog.Debug("Dropping record with malformed event ID", "post_id", record.PostID, "event_id", record.EventID)
			dropped++
			continue
		}

		record.DatasetID = record.EventID
		record.EventID = match
		kept = append(kept, record)
	}

	return kept, dropped
}
