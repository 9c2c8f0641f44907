package resolver

import (
	"strings"
	"testing"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
)

// resolveAndRelex resolves src, then re-lexes the resolved text, mirroring
// what refasm and the self-hosting assembler do with resolver output. This
// avoids asserting on incidental whitespace in the resolved-form text.
func resolveAndRelex(t *testing.T, src string) []lexer.Token {
	t.Helper()
	cat := catalog.New()
	toks, err := lexer.New([]byte(src)).Tokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	out, err := Resolve(toks, cat)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	relexed, err := lexer.New(out).Tokens()
	if err != nil {
		t.Fatalf("re-lex resolved %q: %v", out, err)
	}
	return relexed
}

func mnemonicOperand(t *testing.T, toks []lexer.Token, mnemonic string) string {
	t.Helper()
	for _, tok := range toks {
		if tok.Kind == lexer.KindMnemonic && tok.Text == mnemonic {
			if len(tok.Operands) != 1 {
				t.Fatalf("mnemonic %q has no single operand: %+v", mnemonic, tok.Operands)
			}
			return tok.Operands[0]
		}
	}
	t.Fatalf("mnemonic %q not found in %+v", mnemonic, toks)
	return ""
}

func TestForwardLabelResolvesToWordAddress(t *testing.T) {
	toks := resolveAndRelex(t, "@0300\nJMP :there\nthere:\nEND ")
	if got := mnemonicOperand(t, toks, "JMP "); got != "0303" {
		t.Fatalf("JMP operand = %q, want 0303 (label after the 3-byte JMP)", got)
	}
}

func TestBackwardBranchDisplacement(t *testing.T) {
	toks := resolveAndRelex(t, "@0300\nhere:\nNOP \nBEQ :here\nEND ")
	// here=0300, BEQ at 0301, disp = 0300 - (0301+2) = -3 = 0xFD
	if got := mnemonicOperand(t, toks, "BEQ "); got != "FD" {
		t.Fatalf("BEQ operand = %q, want FD", got)
	}
}

func TestBranchOutOfRangeErrors(t *testing.T) {
	cat := catalog.New()
	var b strings.Builder
	b.WriteString("@0300\nhere:\n")
	for i := 0; i < 130; i++ {
		b.WriteString("NOP \n")
	}
	b.WriteString("BEQ :here\nEND ")
	toks, err := lexer.New([]byte(b.String())).Tokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	_, err = Resolve(toks, cat)
	if err == nil {
		t.Fatal("expected ErrBranchOutOfRange")
	}
}

func TestDuplicateLabelErrors(t *testing.T) {
	cat := catalog.New()
	toks, err := lexer.New([]byte("@0300\nhere:\nhere:\nEND ")).Tokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	_, err = Resolve(toks, cat)
	if err == nil {
		t.Fatal("expected ErrDuplicateLabel")
	}
}

func TestUnknownLabelErrors(t *testing.T) {
	cat := catalog.New()
	toks, err := lexer.New([]byte("@0300\nJMP :nowhere\nEND ")).Tokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	_, err = Resolve(toks, cat)
	if err == nil {
		t.Fatal("expected ErrUnknownLabel")
	}
}

func TestStringAndByteLiteralsPassThrough(t *testing.T) {
	toks := resolveAndRelex(t, `@0300
#2A
"HI"
END `)
	var sawByte, sawString bool
	for _, tok := range toks {
		switch tok.Kind {
		case lexer.KindByte:
			if tok.Text == "2A" {
				sawByte = true
			}
		case lexer.KindString:
			if tok.Text == "HI" {
				sawString = true
			}
		}
	}
	if !sawByte || !sawString {
		t.Fatalf("literal passthrough missing: byte=%v string=%v, tokens=%+v", sawByte, sawString, toks)
	}
}
