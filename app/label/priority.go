package label

import (
	"log/slog"
	"maps"
)

// DefaultPriorityMapping maps the closed priority vocabulary to the ordinal
// scores downstream model training expects.
var DefaultPriorityMapping = map[string]float64{
	"Critical": 1.0,
	"High":     0.75,
	"Medium":   0.5,
	"Low":      0.25,
}

// PriorityEncoder converts the free-form priority label into a numeric
// score. Records whose label is not a mapping key are dropped entirely;
// coercing unknown labels to a default would corrupt model targets.
type PriorityEncoder struct {
	mapping map[string]float64
}

func NewPriorityEncoder() *PriorityEncoder {
	return NewPriorityEncoderWithMapping(DefaultPriorityMapping)
}

func NewPriorityEncoderWithMapping(mapping map[string]float64) *PriorityEncoder {
	return &PriorityEncoder{mapping: maps.Clone(mapping)}
}

// Run encodes every record's priority, dropping records with labels outside
// the mapping. The raw string label is cleared on surviving records.
func (e *PriorityEncoder) Run(records []Record) ([]Record, int) {
	kept := make([]Record, 0, len(records))
	dropped := 0

	for _, record := range records {
		score, ok := e.mapping[record.Priority]
		if !ok {
			slog.Debug("Dropping record with unknown priority", "post_id", record.PostID, "priority", record.Priority)
			dropped++
			continue
		}

		record.Score = score
		record.Priority = ""
		kept = append(kept, record)
	}

	return kept, dropped
}
