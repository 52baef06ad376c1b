package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LukasRub/crisiscorpus/app/label"
	"github.com/LukasRub/crisiscorpus/app/twitter"
)

func TestWriter_WriteLabelsColumnOrder(t *testing.T) {
	writer := NewWriter(t.TempDir())

	records := []label.Record{
		{
			PostID:     "42",
			EventID:    "nepal5340",
			EventType:  "earthquake",
			Score:      0.75,
			Indicators: map[string]int{"Advice": 1, "Factoid": 0},
		},
	}
	vocab := []string{"Advice", "Factoid"}

	if err := writer.WriteLabels(records, vocab); err != nil {
		t.Fatalf("WriteLabels failed: %v", err)
	}

	data, err := os.ReadFile(writer.path(labelsFile))
	if err != nil {
		t.Fatalf("Failed to read labels file: %v", err)
	}

	line := strings.TrimSpace(string(data))
	expected := `{"eventType":"earthquake","eventID":"nepal5340","postID":"42","Advice":1,"Factoid":0,"postPriority":0.75}`
	if line != expected {
		t.Errorf("Unexpected label row:\ngot  %s\nwant %s", line, expected)
	}
}

func TestWriter_WriteDocumentsKeepsProviderFields(t *testing.T) {
	writer := NewWriter(t.TempDir())

	text := "shelter needed"
	documents := []twitter.Status{
		{
			IDStr:    "7",
			FullText: &text,
			Extra:    map[string]json.RawMessage{"retweet_count": json.RawMessage("5")},
		},
	}

	if err := writer.WriteDocuments(documents); err != nil {
		t.Fatalf("WriteDocuments failed: %v", err)
	}

	data, err := os.ReadFile(writer.path(documentsFile))
	if err != nil {
		t.Fatalf("Failed to read documents file: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &decoded); err != nil {
		t.Fatalf("Documents file line is not valid JSON: %v", err)
	}
	if string(decoded["id_str"]) != `"7"` {
		t.Errorf("Unexpected id_str: %s", decoded["id_str"])
	}
	if string(decoded["retweet_count"]) != "5" {
		t.Errorf("Provider fields should survive persistence, got %v", decoded)
	}
}

func TestWriter_WriteUnavailable(t *testing.T) {
	writer := NewWriter(t.TempDir())

	if err := writer.WriteUnavailable([]string{"10", "11"}); err != nil {
		t.Fatalf("WriteUnavailable failed: %v", err)
	}

	f, err := os.Open(writer.path(unavailableFile))
	if err != nil {
		t.Fatalf("Failed to open unavailable file: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	if len(rows) != 3 || rows[0][0] != "id" || rows[1][0] != "10" || rows[2][0] != "11" {
		t.Errorf("Unexpected CSV contents: %v", rows)
	}
}

func TestWriter_WriteCorpusTree(t *testing.T) {
	writer := NewWriter(t.TempDir())

	text := "bridge collapsed"
	records := []label.Record{
		{
			PostID:     "1",
			EventID:    "nepal5340",
			EventType:  "earthquake",
			Categories: []string{"Advice", "Factoid"},
		},
	}
	documents := []twitter.Status{{IDStr: "1", FullText: &text}}
	vocab := []string{"Advice", "Factoid"}

	if err := writer.WriteCorpusTree(records, documents, vocab); err != nil {
		t.Fatalf("WriteCorpusTree failed: %v", err)
	}

	// The document lands in every category partition it carries
	for tag, target := range map[string]int{"Advice": 0, "Factoid": 1} {
		path := writer.path(filepath.Join(corpusDir, tag, "nepal5340.jsonl"))
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Missing corpus partition %s: %v", tag, err)
		}

		var doc struct {
			FullText   string   `json:"full_text"`
			EventID    string   `json:"eventID"`
			EventType  string   `json:"eventType"`
			Categories []string `json:"categories"`
			Target     int      `json:"target"`
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &doc); err != nil {
			t.Fatalf("Partition %s line is not valid JSON: %v", tag, err)
		}

		if doc.FullText != "bridge collapsed" || doc.EventID != "nepal5340" || doc.EventType != "earthquake" {
			t.Errorf("Partition %s: unexpected merged document %+v", tag, doc)
		}
		if doc.Target != target {
			t.Errorf("Partition %s: expected target %d, got %d", tag, target, doc.Target)
		}
		if len(doc.Categories) != 2 {
			t.Errorf("Partition %s: expected full category list, got %v", tag, doc.Categories)
		}
	}
}

func TestWriter_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(dir)

	if err := writer.WriteVocabulary([]string{"Advice"}); err != nil {
		t.Fatalf("WriteVocabulary failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to list data dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", entry.Name())
		}
	}
	if _, err := os.Stat(writer.path(vocabularyFile)); err != nil {
		t.Errorf("Expected vocabulary file in place: %v", err)
	}
}
