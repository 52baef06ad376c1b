package label

import (
	"log/slog"
	"sort"
)

// CategoryEncoder expands each record's category list into a multi-hot
// indicator map over a deterministic vocabulary.
//
// Unless a fixed vocabulary is supplied, the vocabulary is the
// lexicographically sorted set of distinct tags observed across the
// surviving records of this call. Re-running on a different record subset
// therefore changes the column set; runs that must share a schema (train vs
// validation) should encode against the persisted vocabulary artifact.
type CategoryEncoder struct {
	vocab []string
}

func NewCategoryEncoder() *CategoryEncoder {
	return &CategoryEncoder{}
}

// NewCategoryEncoderWithVocabulary fixes the indicator columns to the given
// vocabulary. Tags outside the vocabulary contribute no column.
func NewCategoryEncoderWithVocabulary(vocab []string) *CategoryEncoder {
	fixed := make([]string, len(vocab))
	copy(fixed, vocab)
	sort.Strings(fixed)
	return &CategoryEncoder{vocab: fixed}
}

// Run drops records with an empty category list, then attaches a 0/1
// indicator for every vocabulary tag to each surviving record. Returns the
// surviving records, the vocabulary in column order, and the drop count.
func (e *CategoryEncoder) Run(records []Record) ([]Record, []string, int) {
	kept := make([]Record, 0, len(records))
	dropped := 0

	for _, record := range records {
		if len(record.Categories) == 0 {
			slog.Debug("Dropping record with empty category list", "post_id", record.PostID)
			dropped++
			continue
		}
		kept = append(kept, record)
	}

	vocab := e.vocab
	if vocab == nil {
		distinct := make(map[string]bool)
		for _, record := range kept {
			for _, tag := range record.Categories {
				distinct[tag] = true
			}
		}
		vocab = make([]string, 0, len(distinct))
		for tag := range distinct {
			vocab = append(vocab, tag)
		}
		sort.Strings(vocab)
	}

	for i := range kept {
		indicators := make(map[string]int, len(vocab))
		for _, tag := range vocab {
			if kept[i].HasCategory(tag) {
				indicators[tag] = 1
			} else {
				indicators[tag] = 0
			}
		}
		kept[i].Indicators = indicators
	}

	return kept, vocab, dropped
}
