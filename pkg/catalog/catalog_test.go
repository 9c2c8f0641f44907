package catalog

import "testing"

func TestLookupDecodeRoundTrip(t *testing.T) {
	cat := New()
	for _, e := range cat.Entries() {
		got, ok := cat.Decode(e.Opcode)
		if !ok {
			t.Fatalf("Decode(%02X) not found for mnemonic %q", e.Opcode, e.Mnemonic)
		}
		if got.Mnemonic != e.Mnemonic {
			t.Errorf("Decode(%02X) = %q, want %q", e.Opcode, got.Mnemonic, e.Mnemonic)
		}
		byName, ok := cat.Lookup(e.Mnemonic)
		if !ok || byName.Opcode != e.Opcode {
			t.Errorf("Lookup(%q) did not round-trip to opcode %02X", e.Mnemonic, e.Opcode)
		}
	}
}

func TestEndSentinel(t *testing.T) {
	cat := New()
	e, ok := cat.Lookup(EndMnemonic)
	if !ok {
		t.Fatal("END sentinel missing from catalogue")
	}
	if e.Opcode != EndOpcode || e.Shape != ShapeNone {
		t.Errorf("END sentinel = opcode %02X shape %d, want %02X/ShapeNone", e.Opcode, e.Shape, EndOpcode)
	}
}

func TestNoDuplicateOpcodes(t *testing.T) {
	cat := New()
	seen := make(map[byte]string)
	for _, e := range cat.Entries() {
		if prev, exists := seen[e.Opcode]; exists {
			t.Errorf("opcode %02X used by both %q and %q", e.Opcode, prev, e.Mnemonic)
		}
		seen[e.Opcode] = e.Mnemonic
	}
}

func TestLayoutSize(t *testing.T) {
	cat := New()
	layout := cat.Layout()
	if len(layout) != len(cat.Entries())*EntrySize {
		t.Fatalf("Layout() length = %d, want %d", len(layout), len(cat.Entries())*EntrySize)
	}
}

func TestShapeLength(t *testing.T) {
	cases := []struct {
		shape Shape
		want  int
	}{
		{ShapeNone, 1},
		{ShapeByte, 2},
		{ShapeBranch, 2},
		{ShapeWord, 3},
	}
	for _, tc := range cases {
		if got := tc.shape.Length(); got != tc.want {
			t.Errorf("Shape(%d).Length() = %d, want %d", tc.shape, got, tc.want)
		}
	}
}
