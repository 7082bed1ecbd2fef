package idgen

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGenerator(t *testing.T) {
	g := NewULIDGenerator()

	first, second := g.Generate(), g.Generate()
	if first == second {
		t.Fatalf("expected unique ids, got %q twice", first)
	}
	if _, err := ulid.ParseStrict(first); err != nil {
		t.Fatalf("expected valid ULID, got %q: %v", first, err)
	}
	if first >= second {
		t.Fatalf("expected monotonic ids, got %q then %q", first, second)
	}
}
