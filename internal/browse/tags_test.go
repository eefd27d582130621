package browse

import "testing"

func TestTagShelfBatches(t *testing.T) {
	shelf := NewTagShelf(0)
	if shelf.HasMore() || len(shelf.Visible()) != 0 {
		t.Fatalf("new shelf should be empty")
	}

	tags := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		tags = append(tags, string(rune('a'+i)))
	}
	shelf.Load(tags)
	if got := len(shelf.Visible()); got != DefaultTagBatch {
		t.Fatalf("visible = %d, want %d", got, DefaultTagBatch)
	}

	if !shelf.ShowMore() || len(shelf.Visible()) != 12 {
		t.Fatalf("second batch: visible = %d", len(shelf.Visible()))
	}
	if !shelf.ShowMore() || len(shelf.Visible()) != 14 || shelf.HasMore() {
		t.Fatalf("final batch: visible = %d more=%v", len(shelf.Visible()), shelf.HasMore())
	}
	if shelf.ShowMore() {
		t.Fatalf("ShowMore past the end should report false")
	}

	tags[0] = "mutated"
	if shelf.Visible()[0] != "a" {
		t.Fatalf("shelf must copy its input")
	}

	shelf.Load([]string{"x"})
	if len(shelf.Visible()) != 1 || shelf.HasMore() {
		t.Fatalf("reload should reset the shelf")
	}
}
