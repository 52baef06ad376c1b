package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/LukasRub/crisiscorpus/app/label"
	"github.com/LukasRub/crisiscorpus/app/twitter"
)

const (
	labelsFile      = "labels.jsonl"
	documentsFile   = "documents.jsonl"
	auditFile       = "categories-audit.jsonl"
	vocabularyFile  = "vocabulary.json"
	unavailableFile = "unavailable.csv"
	corpusDir       = "corpus"
)

// Writer persists the prepared datasets under a data directory. Every write
// goes through a temp file and a rename so a crash mid-write can never leave
// a misaligned label/document pair on disk.
type Writer struct {
	dataDir string
}

func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// WriteLabels writes the reconciled label table as JSONL with a fixed column
// order: eventType, eventID, postID, the vocabulary columns, postPriority.
func (w *Writer) WriteLabels(records []label.Record, vocab []string) error {
	return w.writeAtomic(labelsFile, func(out io.Writer) error {
		buf := bufio.NewWriter(out)
		for i := range records {
			line, err := marshalLabelRow(&records[i], vocab)
			if err != nil {
				return err
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
		return buf.Flush()
	})
}

// marshalLabelRow builds the row by hand so key order is deterministic;
// encoding/json map marshalling would sort category columns after the fixed
// columns inconsistently with the documented schema.
func marshalLabelRow(record *label.Record, vocab []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(key string, value interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := writeField("eventType", record.EventType); err != nil {
		return nil, err
	}
	if err := writeField("eventID", record.EventID); err != nil {
		return nil, err
	}
	if err := writeField("postID", record.PostID); err != nil {
		return nil, err
	}
	for _, tag := range vocab {
		if err := writeField(tag, record.Indicators[tag]); err != nil {
			return nil, err
		}
	}
	if err := writeField("postPriority", record.Score); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteDocuments writes the reconciled document table as JSONL, keeping all
// originally-retrieved provider fields.
func (w *Writer) WriteDocuments(documents []twitter.Status) error {
	return w.writeAtomic(documentsFile, func(out io.Writer) error {
		buf := bufio.NewWriter(out)
		enc := json.NewEncoder(buf)
		for i := range documents {
			if err := enc.Encode(documents[i]); err != nil {
				return fmt.Errorf("failed to encode document %s: %w", documents[i].IDStr, err)
			}
		}
		return buf.Flush()
	})
}

// WriteCategoryAudit writes the raw-category audit table: each record's
// category list before one-hot expansion, for traceability.
func (w *Writer) WriteCategoryAudit(records []label.Record) error {
	type auditRow struct {
		EventType      string   `json:"eventType"`
		EventID        string   `json:"eventID"`
		PostID         string   `json:"postID"`
		PostCategories []string `json:"postCategories"`
	}

	return w.writeAtomic(auditFile, func(out io.Writer) error {
		buf := bufio.NewWriter(out)
		enc := json.NewEncoder(buf)
		for i := range records {
			row := auditRow{
				EventType:      records[i].EventType,
				EventID:        records[i].EventID,
				PostID:         records[i].PostID,
				PostCategories: records[i].Categories,
			}
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("failed to encode audit row %s: %w", records[i].PostID, err)
			}
		}
		return buf.Flush()
	})
}

// WriteVocabulary persists the category vocabulary in column order so later
// runs (validation sets, re-encodings) can share the exact schema.
func (w *Writer) WriteVocabulary(vocab []string) error {
	return w.writeAtomic(vocabularyFile, func(out io.Writer) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(vocab)
	})
}

// WriteUnavailable records the IDs the provider could not resolve.
func (w *Writer) WriteUnavailable(ids []string) error {
	return w.writeAtomic(unavailableFile, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write([]string{"id"}); err != nil {
			return err
		}
		for _, id := range ids {
			if err := cw.Write([]string{id}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// WriteCorpusTree writes the category-partitioned corpus: for every category
// a document carries, the document lands in <category>/<eventID>.jsonl
// merged with its label fields. The target field is the category's
// vocabulary index, so each partition is self-describing for single-label
// training.
func (w *Writer) WriteCorpusTree(records []label.Record, documents []twitter.Status, vocab []string) error {
	docsByID := make(map[string]*twitter.Status, len(documents))
	for i := range documents {
		docsByID[documents[i].IDStr] = &documents[i]
	}

	targets := make(map[string]int, len(vocab))
	for i, tag := range vocab {
		targets[tag] = i
	}

	// category -> eventID -> lines
	partitions := make(map[string]map[string][][]byte)
	for i := range records {
		record := &records[i]
		doc, ok := docsByID[record.PostID]
		if !ok {
			return fmt.Errorf("no document for reconciled label %s", record.PostID)
		}

		for _, tag := range record.Categories {
			target, ok := targets[tag]
			if !ok {
				continue
			}
			line, err := marshalCorpusDocument(doc, record, target)
			if err != nil {
				return err
			}
			if partitions[tag] == nil {
				partitions[tag] = make(map[string][][]byte)
			}
			partitions[tag][record.EventID] = append(partitions[tag][record.EventID], line)
		}
	}

	for category, events := range partitions {
		for eventID, lines := range events {
			rel := filepath.Join(corpusDir, category, eventID+".jsonl")
			err := w.writeAtomic(rel, func(out io.Writer) error {
				buf := bufio.NewWriter(out)
				for _, line := range lines {
					buf.Write(line)
					buf.WriteByte('\n')
				}
				return buf.Flush()
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func marshalCorpusDocument(doc *twitter.Status, record *label.Record, target int) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", doc.IDStr, err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	put := func(key string, value interface{}) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fields[key] = encoded
		return nil
	}

	if err := put("eventID", record.EventID); err != nil {
		return nil, err
	}
	if err := put("eventType", record.EventType); err != nil {
		return nil, err
	}
	if err := put("categories", record.Categories); err != nil {
		return nil, err
	}
	if err := put("target", target); err != nil {
		return nil, err
	}

	return json.Marshal(fields)
}

// writeAtomic writes the file at dataDir/rel via a temp file and a rename.
func (w *Writer) writeAtomic(rel string, write func(io.Writer) error) error {
	path := filepath.Join(w.dataDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", rel, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", rel, err)
	}

	return nil
}

// path locates an output file under the data directory.
func (w *Writer) path(rel string) string {
	return filepath.Join(w.dataDir, rel)
}
