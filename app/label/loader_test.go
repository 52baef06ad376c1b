package label

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_PostIDStaysOpaque(t *testing.T) {
	// The second record's postID is a JSON number large enough to lose
	// precision under float64; it must survive verbatim.
	raw := `[
		{"postID": "123", "eventID": "nepal5340seg1", "postPriority": "Low", "postCategories": ["Advice"]},
		{"postID": 1183398801212518401, "eventID": "nepal5340seg2", "postPriority": "High", "postCategories": []}
	]`

	path := filepath.Join(t.TempDir(), "labels.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	records, duplicates, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if duplicates != 0 {
		t.Errorf("Expected 0 duplicates, got %d", duplicates)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].PostID != "123" {
		t.Errorf("Expected postID '123', got '%s'", records[0].PostID)
	}
	if records[1].PostID != "1183398801212518401" {
		t.Errorf("Expected postID '1183398801212518401', got '%s'", records[1].PostID)
	}
	if records[0].Priority != "Low" {
		t.Errorf("Expected priority 'Low', got '%s'", records[0].Priority)
	}
	if len(records[0].Categories) != 1 || records[0].Categories[0] != "Advice" {
		t.Errorf("Expected categories ['Advice'], got %v", records[0].Categories)
	}
}

func TestLoadFile_MissingPostID(t *testing.T) {
	raw := `[{"eventID": "nepal5340seg1"}]`

	path := filepath.Join(t.TempDir(), "labels.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, _, err := LoadFile(path); err == nil {
		t.Error("Expected error for record without postID")
	}
}

func TestDedupe_KeepsLastOccurrence(t *testing.T) {
	records := []Record{
		{PostID: "1", Priority: "Low"},
		{PostID: "2", Priority: "High"},
		{PostID: "1", Priority: "Critical"},
		{PostID: "3", Priority: "Medium"},
	}

	kept, duplicates := Dedupe(records)

	if duplicates != 1 {
		t.Errorf("Expected 1 duplicate, got %d", duplicates)
	}
	if len(kept) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(kept))
	}

	// The surviving "1" must be the later occurrence
	if kept[0].PostID != "2" || kept[1].PostID != "1" || kept[2].PostID != "3" {
		t.Errorf("Unexpected record order: %v, %v, %v", kept[0].PostID, kept[1].PostID, kept[2].PostID)
	}
	if kept[1].Priority != "Critical" {
		t.Errorf("Expected last-write-wins priority 'Critical', got '%s'", kept[1].Priority)
	}
}
