package registry

import (
	"reflect"
	"testing"
)

func TestIndexes_FilterKeepsRequestOrder(t *testing.T) {
	r := NewIndexes("projects", "samples", "illumina_runs")

	got := r.Filter([]string{"illumina_runs", "bogus", "projects", "illumina_runs"})
	want := []string{"illumina_runs", "projects"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

func TestIndexes_FilterNothingValid(t *testing.T) {
	r := NewIndexes("projects")
	if got := r.Filter([]string{"bogus_index"}); len(got) != 0 {
		t.Errorf("Filter() = %v, want empty", got)
	}
	if got := r.Filter(nil); got == nil || len(got) != 0 {
		t.Errorf("Filter(nil) = %#v", got)
	}
}

func TestIndexes_DropsEmptyAndDuplicates(t *testing.T) {
	r := NewIndexes("a", "", "b", "a")
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if !reflect.DeepEqual(r.Names(), []string{"a", "b"}) {
		t.Errorf("Names() = %v", r.Names())
	}
	if r.Contains("") {
		t.Error("empty name registered")
	}
}

func TestTextFields_SortField(t *testing.T) {
	tf := NewTextFields(".keyword", "name", "barcode")

	got, ok := tf.SortField("name")
	if !ok || got != "name.keyword" {
		t.Errorf("SortField(name) = %q, %v", got, ok)
	}
	if _, ok := tf.SortField("created_at"); ok {
		t.Error("non-text field got an exact twin")
	}

	redis := tf.WithSuffix("_exact")
	if got, _ := redis.SortField("barcode"); got != "barcode_exact" {
		t.Errorf("WithSuffix SortField = %q", got)
	}
	if tf.Suffix() != ".keyword" {
		t.Error("WithSuffix mutated the original")
	}
}

func TestTextFields_NoSuffix(t *testing.T) {
	tf := NewTextFields("", "name")
	if !tf.Contains("name") {
		t.Fatal("Contains(name) = false")
	}
	if _, ok := tf.SortField("name"); ok {
		t.Error("SortField without suffix should report false")
	}
}
