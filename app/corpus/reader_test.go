package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func buildFixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"Advice/nepal5340.jsonl": `{"full_text":"stay away from bridges","target":0,"categories":["Advice"]}
{"full_text":"boil water before drinking","target":0,"categories":["Advice","Factoid"]}
`,
		"Factoid/nepal5340.jsonl": `{"full_text":"magnitude was 7.8","target":1,"categories":["Factoid"]}
`,
		"Factoid/typhoon2018.jsonl": `{"target":1,"categories":["Factoid"]}
`,
	}

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write fixture file: %v", err)
		}
	}

	return root
}

func TestReader_Categories(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	categories, err := reader.Categories()
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}

	if !reflect.DeepEqual(categories, []string{"Advice", "Factoid"}) {
		t.Errorf("Unexpected categories: %v", categories)
	}
}

func TestReader_FileIDs(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	fileIDs, err := reader.FileIDs()
	if err != nil {
		t.Fatalf("FileIDs failed: %v", err)
	}

	expected := []string{
		"Advice/nepal5340.jsonl",
		"Factoid/nepal5340.jsonl",
		"Factoid/typhoon2018.jsonl",
	}
	if !reflect.DeepEqual(fileIDs, expected) {
		t.Errorf("Unexpected file IDs: %v", fileIDs)
	}
}

func TestReader_ResolveConflict(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	sel := Selection{FileIDs: []string{"Advice/nepal5340.jsonl"}, Categories: []string{"Factoid"}}
	if _, err := reader.Resolve(sel); !errors.Is(err, ErrConflictingSelector) {
		t.Errorf("Expected ErrConflictingSelector, got %v", err)
	}
}

func TestReader_ResolveByCategory(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	fileIDs, err := reader.Resolve(Selection{Categories: []string{"Factoid"}})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	expected := []string{"Factoid/nepal5340.jsonl", "Factoid/typhoon2018.jsonl"}
	if !reflect.DeepEqual(fileIDs, expected) {
		t.Errorf("Unexpected resolution: %v", fileIDs)
	}
}

func TestReader_Texts(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	texts, err := reader.Texts(Selection{Categories: []string{"Factoid"}})
	if err != nil {
		t.Fatalf("Texts failed: %v", err)
	}

	// A document without full_text contributes an empty string, keeping
	// positions aligned with the underlying document sequence
	expected := []string{"magnitude was 7.8", ""}
	if !reflect.DeepEqual(texts, expected) {
		t.Errorf("Unexpected texts: %v", texts)
	}
}

func TestReader_Targets(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	targets, err := reader.Targets(Selection{})
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}

	if !reflect.DeepEqual(targets, []int{0, 0, 1, 1}) {
		t.Errorf("Unexpected targets: %v", targets)
	}
}

func TestReader_CategoryLabels(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	labels, err := reader.CategoryLabels(Selection{FileIDs: []string{"Advice/nepal5340.jsonl"}})
	if err != nil {
		t.Fatalf("CategoryLabels failed: %v", err)
	}

	expected := [][]string{{"Advice"}, {"Advice", "Factoid"}}
	if !reflect.DeepEqual(labels, expected) {
		t.Errorf("Unexpected category labels: %v", labels)
	}
}

func TestReader_Sizes(t *testing.T) {
	root := buildFixtureTree(t)
	reader := NewReader(root)

	sizes, err := reader.Sizes(Selection{Categories: []string{"Advice"}})
	if err != nil {
		t.Fatalf("Sizes failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(root, "Advice", "nepal5340.jsonl"))
	if err != nil {
		t.Fatalf("Failed to stat fixture: %v", err)
	}

	if len(sizes) != 1 || sizes[0] != info.Size() {
		t.Errorf("Unexpected sizes: %v (want [%d])", sizes, info.Size())
	}
}

func TestReader_RepeatedReadsAreStable(t *testing.T) {
	reader := NewReader(buildFixtureTree(t))

	first, err := reader.Texts(Selection{})
	if err != nil {
		t.Fatalf("Texts failed: %v", err)
	}
	second, err := reader.Texts(Selection{})
	if err != nil {
		t.Fatalf("Texts failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Repeated reads diverged:\n%v\n%v", first, second)
	}
}
