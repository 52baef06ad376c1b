package pipeline

import "log/slog"

// Stats counts records in, records out, and every drop reason so data loss
// is auditable rather than silent.
type Stats struct {
	Loaded            int
	Duplicates        int
	MalformedIDs      int
	JoinMisses        int
	UnknownPriorities int
	EmptyCategories   int
	Unavailable       int
	Reconciled        int
}

func (s *Stats) LogSummary() {
	slog.Info("Preparation run summary",
		"loaded", s.Loaded,
		"duplicates", s.Duplicates,
		"malformed_event_ids", s.MalformedIDs,
		"join_misses", s.JoinMisses,
		"unknown_priorities", s.UnknownPriorities,
		"empty_category_lists", s.EmptyCategories,
		"unavailable_documents", s.Unavailable,
		"reconciled", s.Reconciled)
}
