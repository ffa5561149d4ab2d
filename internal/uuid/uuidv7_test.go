package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew_IsVersion7(t *testing.T) {
	id := New()
	parsed, err := googleuuid.Parse(id)
	if err != nil {
		t.Fatalf("New() returned unparsable id %q: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("version = %d, want 7", parsed.Version())
	}
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(New()) {
		t.Error("generated id should be valid")
	}
	if IsValid("not-a-uuid") {
		t.Error("garbage should be invalid")
	}
	if IsValid("") {
		t.Error("empty string should be invalid")
	}
}
