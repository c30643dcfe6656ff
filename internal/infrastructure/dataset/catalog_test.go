package dataset

import (
	"path/filepath"
	"testing"
)

func TestIsCategory(t *testing.T) {
	t.Parallel()

	if !IsCategory("Electronics") {
		t.Fatal("Electronics must be a known category")
	}
	if IsCategory("Nonexistent_Category") {
		t.Fatal("unknown names must be rejected")
	}
	if IsCategory("") {
		t.Fatal("empty name must be rejected")
	}
}

func TestReviewFileLayout(t *testing.T) {
	t.Parallel()

	got := ReviewFile("dataset/amazon_reviews", "Gift_Cards")
	want := filepath.Join("dataset", "amazon_reviews", "raw", "review_categories", "Gift_Cards.jsonl")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMetaFileLayout(t *testing.T) {
	t.Parallel()

	got := MetaFile("data", "Software")
	want := filepath.Join("data", "raw", "meta_categories", "meta_Software.jsonl")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
