package typeid

import "testing"

func TestNewValidates(t *testing.T) {
	for _, prefix := range []string{PrefixCircle, PrefixAxes, PrefixTrack, PrefixSession, PrefixPreset} {
		id := New(prefix)
		if err := Validate(id, prefix); err != nil {
			t.Fatalf("Validate(%q, %q): %v", id, prefix, err)
		}
	}
}

func TestValidateWrongPrefix(t *testing.T) {
	id := New(PrefixGrid)
	if err := Validate(id, PrefixCircle); err == nil {
		t.Fatalf("Validate(%q, %q): want error", id, PrefixCircle)
	}
	if err := Validate("not-an-id", PrefixCircle); err == nil {
		t.Fatal("Validate(garbage): want error")
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTrackID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
