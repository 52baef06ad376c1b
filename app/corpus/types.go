package corpus

import "errors"

// ErrConflictingSelector is returned when a selection names both file IDs
// and categories; the two selector kinds are mutually exclusive.
var ErrConflictingSelector = errors.New("specify file IDs or categories, not both")

// Selection picks a subset of the corpus, either by explicit file IDs
// (paths relative to the corpus root) or by category partitions. An empty
// Selection means the whole corpus.
type Selection struct {
	FileIDs    []string
	Categories []string
}

// document is the decoded shape a reader cares about; the rest of each
// stored record is ignored.
type document struct {
	FullText   *string  `json:"full_text"`
	Target     *int     `json:"target"`
	Categories []string `json:"categories"`
}
