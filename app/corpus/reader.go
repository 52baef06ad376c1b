package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reader is a read-only view over the category-partitioned corpus tree
// written by the preparation pipeline: <root>/<category>/<eventID>.jsonl.
// All listings are sorted, so repeated reads over an unchanged store return
// identical sequences.
type Reader struct {
	root string
}

func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// Categories lists the category partitions present in the corpus.
func (r *Reader) Categories() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus root: %w", err)
	}

	var categories []string
	for _, entry := range entries {
		if entry.IsDir() {
			categories = append(categories, entry.Name())
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// FileIDs lists every corpus file, as paths relative to the corpus root.
func (r *Reader) FileIDs() ([]string, error) {
	var fileIDs []string
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		fileIDs = append(fileIDs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus tree: %w", err)
	}
	sort.Strings(fileIDs)
	return fileIDs, nil
}

// Resolve turns a selection into the list of file IDs it covers. Explicit
// file IDs pass through unchanged; categories resolve to every file in
// those partitions; an empty selection resolves to the whole corpus.
func (r *Reader) Resolve(sel Selection) ([]string, error) {
	if len(sel.FileIDs) > 0 && len(sel.Categories) > 0 {
		return nil, ErrConflictingSelector
	}

	if len(sel.FileIDs) > 0 {
		return sel.FileIDs, nil
	}

	all, err := r.FileIDs()
	if err != nil {
		return nil, err
	}

	if len(sel.Categories) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(sel.Categories))
	for _, category := range sel.Categories {
		wanted[category] = true
	}

	var fileIDs []string
	for _, fileID := range all {
		category, _, found := strings.Cut(fileID, "/")
		if found && wanted[category] {
			fileIDs = append(fileIDs, fileID)
		}
	}
	return fileIDs, nil
}

// Texts returns each selected document's primary text, substituting an
// empty string when the field is absent. Text is normalized to NFC.
func (r *Reader) Texts(sel Selection) ([]string, error) {
	var texts []string
	err := r.scan(sel, func(doc document) {
		if doc.FullText == nil {
			texts = append(texts, "")
			return
		}
		texts = append(texts, norm.NFC.String(*doc.FullText))
	})
	if err != nil {
		return nil, err
	}
	return texts, nil
}

// Targets returns each selected document's target label, skipping documents
// without one.
func (r *Reader) Targets(sel Selection) ([]int, error) {
	var targets []int
	err := r.scan(sel, func(doc document) {
		if doc.Target != nil {
			targets = append(targets, *doc.Target)
		}
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

// CategoryLabels returns each selected document's category list, skipping
// documents without one.
func (r *Reader) CategoryLabels(sel Selection) ([][]string, error) {
	var labels [][]string
	err := r.scan(sel, func(doc document) {
		if len(doc.Categories) > 0 {
			labels = append(labels, doc.Categories)
		}
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// Sizes returns the on-disk byte size of every selected file, for auditing
// corpus health (anomalously large files).
func (r *Reader) Sizes(sel Selection) ([]int64, error) {
	fileIDs, err := r.Resolve(sel)
	if err != nil {
		return nil, err
	}

	sizes := make([]int64, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		info, err := os.Stat(filepath.Join(r.root, filepath.FromSlash(fileID)))
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", fileID, err)
		}
		sizes = append(sizes, info.Size())
	}
	return sizes, nil
}

// scan streams every document of the selection, in file ID order, through
// fn.
func (r *Reader) scan(sel Selection, fn func(document)) error {
	fileIDs, err := r.Resolve(sel)
	if err != nil {
		return err
	}

	for _, fileID := range fileIDs {
		if err := r.scanFile(fileID, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) scanFile(fileID string, fn func(document)) error {
	file, err := os.Open(filepath.Join(r.root, filepath.FromSlash(fileID)))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileID, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var doc document
		if err := json.Unmarshal(scanner.Bytes(), &doc); err != nil {
			return fmt.Errorf("failed to decode %s line %d: %w", fileID, line, err)
		}
		fn(doc)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", fileID, err)
	}
	return nil
}
