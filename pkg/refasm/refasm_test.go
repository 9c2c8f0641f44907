package refasm

import (
	"testing"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
	"github.com/retrobuild/sixtyasm/pkg/resolver"
)

func assembleFriendly(t *testing.T, src string) *Image {
	t.Helper()
	cat := catalog.New()
	toks, err := lexer.New([]byte(src)).Tokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	resolved, err := resolver.Resolve(toks, cat)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	img, err := Assemble(resolved, cat)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return img
}

func TestImmediateAndWordEncoding(t *testing.T) {
	img := assembleFriendly(t, "@0300\nLDA# 2A\nJMP 0400\nEND ")
	if img.At(0x0300) != 0xA9 || img.At(0x0301) != 0x2A {
		t.Fatalf("LDA# encoding wrong: %02X %02X", img.At(0x0300), img.At(0x0301))
	}
	if img.At(0x0302) != 0x4C || img.At(0x0303) != 0x00 || img.At(0x0304) != 0x04 {
		t.Fatalf("JMP encoding wrong (want little-endian 00 04): %02X %02X %02X",
			img.At(0x0302), img.At(0x0303), img.At(0x0304))
	}
}

func TestRelocationShiftsOutputNotEffective(t *testing.T) {
	img := assembleFriendly(t, "!0100\n@0300\nJMP 0300\nEND ")
	lo, hi, wrote := img.Range()
	if !wrote || lo != 0x0400 || hi != 0x0402 {
		t.Fatalf("Range = %04X-%04X wrote=%v, want 0400-0402", lo, hi, wrote)
	}
	// the operand bytes still encode the unrelocated effective address 0300
	if img.At(0x0400) != 0x4C || img.At(0x0401) != 0x00 || img.At(0x0402) != 0x03 {
		t.Fatalf("relocated JMP bytes wrong: %02X %02X %02X", img.At(0x0400), img.At(0x0401), img.At(0x0402))
	}
}

func TestStringLiteralEmitsRawBytes(t *testing.T) {
	img := assembleFriendly(t, `@0300
"HI"
END `)
	if img.At(0x0300) != 'H' || img.At(0x0301) != 'I' {
		t.Fatalf("string literal bytes = %02X %02X, want 48 49", img.At(0x0300), img.At(0x0301))
	}
}

func TestEmptyStringEmitsNoBytes(t *testing.T) {
	img := assembleFriendly(t, `@0300
""
LDA# 00
END `)
	// the empty string contributes zero bytes, so LDA# starts right at 0300
	if img.At(0x0300) != 0xA9 {
		t.Fatalf("LDA# opcode displaced by empty string: got %02X at 0300", img.At(0x0300))
	}
}

func TestUnrecognizedMnemonicErrors(t *testing.T) {
	cat := catalog.New()
	_, err := Assemble([]byte("@0300 ZZZZ END "), cat)
	if err == nil {
		t.Fatal("expected ErrUnrecognizedMnemonic")
	}
}

func TestBytesZeroFillsHoles(t *testing.T) {
	img := assembleFriendly(t, `!0100
@0300
LDA# 01
@0310
LDA# 02
END `)
	b := img.Bytes()
	if len(b) != 0x12 {
		t.Fatalf("Bytes() length = %d, want %d", len(b), 0x12)
	}
	// the gap between the two LDA#s should be zero
	if b[2] != 0 {
		t.Fatalf("expected zero fill immediately after first LDA#, got %02X", b[2])
	}
}
