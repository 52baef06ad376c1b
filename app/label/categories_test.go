package label

import (
	"testing"
)

func TestCategoryEncoder_EncodesIndicators(t *testing.T) {
	encoder := NewCategoryEncoder()

	records := []Record{
		{PostID: "1", Categories: []string{"Advice", "Factoid"}},
		{PostID: "2", Categories: []string{"Factoid"}},
		{PostID: "3", Categories: []string{}},
	}

	kept, vocab, dropped := encoder.Run(records)

	if dropped != 1 {
		t.Errorf("Expected 1 dropped record, got %d", dropped)
	}
	if len(kept) != 2 {
		t.Fatalf("Expected 2 surviving records, got %d", len(kept))
	}

	// Vocabulary is the sorted distinct tag set of the survivors
	if len(vocab) != 2 || vocab[0] != "Advice" || vocab[1] != "Factoid" {
		t.Errorf("Unexpected vocabulary: %v", vocab)
	}

	if kept[0].Indicators["Advice"] != 1 || kept[0].Indicators["Factoid"] != 1 {
		t.Errorf("Record 1: unexpected indicators %v", kept[0].Indicators)
	}
	if kept[1].Indicators["Advice"] != 0 || kept[1].Indicators["Factoid"] != 1 {
		t.Errorf("Record 2: unexpected indicators %v", kept[1].Indicators)
	}
}

func TestCategoryEncoder_RowSumInvariant(t *testing.T) {
	encoder := NewCategoryEncoder()

	records := []Record{
		{PostID: "1", Categories: []string{"Advice"}},
		{PostID: "2", Categories: nil},
		{PostID: "3", Categories: []string{"Hashtags", "MultimediaShare"}},
	}

	kept, vocab, _ := encoder.Run(records)

	for _, record := range kept {
		sum := 0
		for _, tag := range vocab {
			sum += record.Indicators[tag]
		}
		if sum < 1 {
			t.Errorf("Record %s: indicator row sum %d violates invariant", record.PostID, sum)
		}
	}
}

func TestCategoryEncoder_VocabularyRecomputedPerCall(t *testing.T) {
	encoder := NewCategoryEncoder()

	_, first, _ := encoder.Run([]Record{{PostID: "1", Categories: []string{"Advice"}}})
	_, second, _ := encoder.Run([]Record{{PostID: "2", Categories: []string{"Factoid"}}})

	if len(first) != 1 || first[0] != "Advice" {
		t.Errorf("Unexpected first vocabulary: %v", first)
	}
	if len(second) != 1 || second[0] != "Factoid" {
		t.Errorf("Unexpected second vocabulary: %v", second)
	}
}

func TestCategoryEncoder_FixedVocabulary(t *testing.T) {
	encoder := NewCategoryEncoderWithVocabulary([]string{"Factoid", "Advice"})

	records := []Record{
		{PostID: "1", Categories: []string{"Advice", "SomethingNew"}},
	}

	kept, vocab, _ := encoder.Run(records)

	// Vocabulary stays fixed (and sorted); out-of-vocabulary tags get no column
	if len(vocab) != 2 || vocab[0] != "Advice" || vocab[1] != "Factoid" {
		t.Errorf("Unexpected vocabulary: %v", vocab)
	}
	if _, ok := kept[0].Indicators["SomethingNew"]; ok {
		t.Error("Out-of-vocabulary tag should not produce an indicator column")
	}
	if kept[0].Indicators["Advice"] != 1 || kept[0].Indicators["Factoid"] != 0 {
		t.Errorf("Unexpected indicators: %v", kept[0].Indicators)
	}
}
