package topics

import (
	"os"
	"path/filepath"
	"testing"
)

const topicsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<topics>
	<top>
		<num>TRECIS-CTIT-H-001</num>
		<dataset>nepal5340</dataset>
		<type>earthquake</type>
	</top>
	<top>
		<num>TRECIS-CTIT-H-002</num>
		<dataset>typhoon2018</dataset>
	</top>
</topics>
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestParser_ParseAttributes(t *testing.T) {
	parser := NewParser(writeFixture(t, topicsFixture))

	rows, err := parser.ParseAttributes([]string{"dataset", "type"})
	if err != nil {
		t.Fatalf("ParseAttributes failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if rows[0]["dataset"] != "nepal5340" || rows[0]["type"] != "earthquake" {
		t.Errorf("Unexpected first row: %v", rows[0])
	}

	// Missing attribute defaults to empty value
	if rows[1]["dataset"] != "typhoon2018" || rows[1]["type"] != "" {
		t.Errorf("Unexpected second row: %v", rows[1])
	}
}

func TestParser_MissingFile(t *testing.T) {
	parser := NewParser(filepath.Join(t.TempDir(), "does-not-exist.xml"))

	if _, err := parser.ParseAttributes([]string{"dataset"}); err == nil {
		t.Error("Expected error for missing topics file")
	}
}

func TestParser_MalformedXML(t *testing.T) {
	parser := NewParser(writeFixture(t, "<topics><top></topics>"))

	if _, err := parser.ParseAttributes([]string{"dataset"}); err == nil {
		t.Error("Expected error for malformed XML")
	}
}
