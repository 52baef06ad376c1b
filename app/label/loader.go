package label

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// rawRecord mirrors one entry of the raw annotation JSON. PostID is decoded
// from its raw token so that both string and numeric IDs survive losslessly.
type rawRecord struct {
	PostID         json.RawMessage `json:"postID"`
	EventID        string          `json:"eventID"`
	EventType      string          `json:"eventType"`
	PostPriority   string          `json:"postPriority"`
	PostCategories []string        `json:"postCategories"`
}

// LoadFile reads the raw annotation labels JSON (an array of records) and
// deduplicates them by postID, keeping the last occurrence of each ID.
func LoadFile(path string) ([]Record, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read labels file: %w", err)
	}

	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, fmt.Errorf("failed to parse labels file: %w", err)
	}

	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		postID, err := decodePostID(raw.PostID)
		if err != nil {
			return nil, 0, fmt.Errorf("record %d: %w", i, err)
		}

		records = append(records, Record{
			PostID:     postID,
			EventID:    raw.EventID,
			EventType:  raw.EventType,
			Priority:   raw.PostPriority,
			Categories: raw.PostCategories,
		})
	}

	deduped, duplicates := Dedupe(records)
	return deduped, duplicates, nil
}

// Dedupe removes records sharing a postID, keeping the last occurrence in
// its original position. Returns the surviving records and the number of
// duplicates removed.
func Dedupe(records []Record) ([]Record, int) {
	seen := make(map[string]bool, len(records))
	kept := make([]Record, 0, len(records))

	for i := len(records) - 1; i >= 0; i-- {
		if seen[records[i].PostID] {
			continue
		}
		seen[records[i].PostID] = true
		kept = append(kept, records[i])
	}

	// Restore original order
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}

	return kept, len(records) - len(kept)
}

func decodePostID(raw json.RawMessage) (string, error) {
	token := strings.TrimSpace(string(raw))
	if token == "" || token == "null" {
		return "", fmt.Errorf("missing postID")
	}

	if token[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid postID: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid postID: %w", err)
	}
	return n.String(), nil
}
