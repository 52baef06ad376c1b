package pipeline

import (
	"fmt"

	"github.com/LukasRub/crisiscorpus/app/label"
	"github.com/LukasRub/crisiscorpus/app/twitter"
)

// ReconciliationError reports a violated label/document alignment
// postcondition. It indicates a logic defect and must abort the run;
// persisting misaligned datasets would corrupt downstream training.
type ReconciliationError struct {
	OrphanedLabels    int
	OrphanedDocuments int
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("label/document sets diverged after reconciliation: %d orphaned labels, %d orphaned documents",
		e.OrphanedLabels, e.OrphanedDocuments)
}

// Reconcile prunes the label and document sets to the identifiers present
// and retrievable in both. Absence markers are removed from the document
// set and their labels with them; documents the fetcher returned without a
// corresponding label are discarded too. Postcondition: the surviving label
// postID set equals the surviving document ID set.
//
// Returns the pruned labels, pruned documents, the IDs of unavailable
// documents, and a *ReconciliationError if the postcondition fails to hold.
func Reconcile(labels []label.Record, documents []twitter.Status) ([]label.Record, []twitter.Status, []string, error) {
	available := make(map[string]bool, len(documents))
	var unavailable []string
	for i := range documents {
		if documents[i].Absent() {
			unavailable = append(unavailable, documents[i].IDStr)
		} else {
			available[documents[i].IDStr] = true
		}
	}

	keptLabels := make([]label.Record, 0, len(labels))
	labelIDs := make(map[string]bool, len(labels))
	for _, record := range labels {
		if !available[record.PostID] {
			continue
		}
		keptLabels = append(keptLabels, record)
		labelIDs[record.PostID] = true
	}

	keptDocuments := make([]twitter.Status, 0, len(documents))
	for _, doc := range documents {
		if doc.Absent() || !labelIDs[doc.IDStr] {
			continue
		}
		keptDocuments = append(keptDocuments, doc)
	}

	if err := verifyAlignment(keptLabels, keptDocuments); err != nil {
		return nil, nil, nil, err
	}

	return keptLabels, keptDocuments, unavailable, nil
}

func verifyAlignment(labels []label.Record, documents []twitter.Status) error {
	docIDs := make(map[string]bool, len(documents))
	for i := range documents {
		docIDs[documents[i].IDStr] = true
	}
	labelIDs := make(map[string]bool, len(labels))
	for i := range labels {
		labelIDs[labels[i].PostID] = true
	}

	orphanedLabels := 0
	for id := range labelIDs {
		if !docIDs[id] {
			orphanedLabels++
		}
	}
	orphanedDocuments := 0
	for id := range docIDs {
		if !labelIDs[id] {
			orphanedDocuments++
		}
	}

	// Duplicate IDs on either side also break the 1:1 alignment.
	if orphanedLabels > 0 || orphanedDocuments > 0 ||
		len(labelIDs) != len(labels) || len(docIDs) != len(documents) {
		return &ReconciliationError{
			OrphanedLabels:    orphanedLabels,
			OrphanedDocuments: orphanedDocuments,
		}
	}

	return nil
}
