package selfhost

import (
	"bytes"
	"testing"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/cpu"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
	"github.com/retrobuild/sixtyasm/pkg/refasm"
	"github.com/retrobuild/sixtyasm/pkg/resolver"
)

func mustResolve(t *testing.T, cat *catalog.Catalogue, friendly string) []byte {
	t.Helper()
	toks, err := lexer.New([]byte(friendly)).Tokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	resolved, err := resolver.Resolve(toks, cat)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return resolved
}

// runSelfhosted drives the self-hosting assembler over an already-resolved
// target program, returning the bytes it wrote into the target's output
// region.
func runSelfhosted(t *testing.T, cat *catalog.Catalogue, boot *Bootstrap, resolvedTarget []byte, lo, hi uint16) []byte {
	t.Helper()
	c, res := Run(boot, cat, resolvedTarget, cpu.RunConfig{MaxCycles: 200000})
	if res.Reason != cpu.HaltTrap {
		t.Fatalf("self-hosting assembler halted unexpectedly: %s (pc=%04X)", res.Reason, res.FinalPC)
	}
	out := make([]byte, int(hi)-int(lo)+1)
	for i := range out {
		out[i] = c.ReadByte(lo + uint16(i))
	}
	return out
}

func TestSelfhostMatchesReferenceAssembler(t *testing.T) {
	cat := catalog.New()
	boot, err := Build(cat)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cases := []struct {
		name     string
		friendly string
		lo, hi   uint16
	}{
		// targets are placed outside the assembler's own image, which is
		// loaded at LoadBase (0200) and runs past 0300
		{"end-alone", `@8000
END `, 0x8000, 0x8000},
		{"single-byte-literal", `@8000
#2A
END `, 0x8000, 0x8000},
		{"lda-immediate", `@8000
LDA# 2A
END `, 0x8000, 0x8001},
		{"string-literal", `@8000
"HI"
END `, 0x8000, 0x8001},
		// output address = effective 0300 + relocation 0400 = 0700
		{"relocated-jmp", `!0400
@0300
here:
JMP :here
END `, 0x0700, 0x0702},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolved := mustResolve(t, cat, tc.friendly)

			refImg, err := refasm.Assemble(resolved, cat)
			if err != nil {
				t.Fatalf("refasm.Assemble: %v", err)
			}
			want := make([]byte, int(tc.hi)-int(tc.lo)+1)
			for i := range want {
				want[i] = refImg.At(tc.lo + uint16(i))
			}

			got := runSelfhosted(t, cat, boot, resolved, tc.lo, tc.hi)

			if !bytes.Equal(want, got) {
				t.Errorf("reference vs self-hosted mismatch\n  reference: % X\n  selfhost:  % X", want, got)
			}
		})
	}
}

func TestSelfhostUndefinedMnemonicHalts(t *testing.T) {
	cat := catalog.New()
	boot, err := Build(cat)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	resolved := []byte("@0300\nZZZZ \nEND ")
	_, res := Run(boot, cat, resolved, cpu.RunConfig{MaxCycles: 50000})
	if res.Reason != cpu.HaltBreak {
		t.Fatalf("expected halt on unrecognized mnemonic, got %s", res.Reason)
	}
}
