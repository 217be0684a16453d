package engine

import (
	"testing"
)

func TestOpen_OpenSearch(t *testing.T) {
	e, err := Open(Config{Driver: OpenSearch, Addrs: []string{"localhost:9200"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer e.Close()
	if e.ExactSuffix() != ".keyword" {
		t.Errorf("suffix = %q", e.ExactSuffix())
	}
}

func TestOpen_DefaultsToOpenSearch(t *testing.T) {
	e, err := Open(Config{Addrs: []string{"http://localhost:9200"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer e.Close()
	if e.ExactSuffix() != ".keyword" {
		t.Errorf("suffix = %q", e.ExactSuffix())
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "valkey", Addrs: []string{"x"}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpen_OpenSearchRequiresAddr(t *testing.T) {
	if _, err := Open(Config{Driver: OpenSearch}); err == nil {
		t.Fatal("expected error")
	}
}
