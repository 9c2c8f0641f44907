// Package resolver implements the reference assembler's two-pass label
// resolution (spec.md section 4.5): pass one fixes label addresses, pass
// two rewrites label references into the numeric resolved form that both
// the reference assembler and the self-hosting assembler consume.
package resolver

import (
	"errors"
	"fmt"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
)

var (
	ErrDuplicateLabel   = errors.New("resolver: duplicate label")
	ErrUnknownLabel     = errors.New("resolver: unknown label")
	ErrBranchOutOfRange = errors.New("resolver: branch out of range")
	ErrUnknownMnemonic  = errors.New("resolver: unrecognized mnemonic")
)

// PositionError wraps a resolver error with the source line it occurred on.
type PositionError struct {
	Line int
	Err  error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *PositionError) Unwrap() error { return e.Err }

// Pass1 walks tokens computing the effective address each unit will
// occupy, honoring !HHHH (relocation, does not move the effective address)
// and @HHHH (sets the effective address). It records each label
// definition's effective address and fails on a duplicate name.
func Pass1(tokens []lexer.Token, cat *catalog.Catalogue) (map[string]uint16, error) {
	labels := make(map[string]uint16)
	var effective uint16

	for _, t := range tokens {
		switch t.Kind {
		case lexer.KindRelocBase:
			// does not move the effective address

		case lexer.KindOrg:
			v, err := lexer.ParseHex(t.Text)
			if err != nil {
				return nil, &PositionError{t.Line, err}
			}
			effective = uint16(v)

		case lexer.KindByte:
			effective++

		case lexer.KindString:
			effective += uint16(len(t.Text))

		case lexer.KindLabelDef:
			if _, exists := labels[t.Text]; exists {
				return nil, &PositionError{t.Line, fmt.Errorf("%w: %q", ErrDuplicateLabel, t.Text)}
			}
			labels[t.Text] = effective

		case lexer.KindMnemonic:
			entry, ok := cat.Lookup(t.Text)
			if !ok {
				return nil, &PositionError{t.Line, fmt.Errorf("%w: %q", ErrUnknownMnemonic, t.Text)}
			}
			effective += uint16(entry.Shape.Length())
		}
	}
	return labels, nil
}

// Pass2 rewrites tokens into the resolved-form source text consumed by
// the reference assembler and the self-hosting assembler: directives and
// literals pass through unchanged, label-reference operands become
// numeric (spec.md section 4.5).
func Pass2(tokens []lexer.Token, labels map[string]uint16, cat *catalog.Catalogue) ([]byte, error) {
	var out []byte
	var effective uint16

	writeHex := func(v uint64, digits int) {
		const hex = "0123456789ABCDEF"
		buf := make([]byte, digits)
		for i := digits - 1; i >= 0; i-- {
			buf[i] = hex[v&0xF]
			v >>= 4
		}
		out = append(out, buf...)
	}

	for _, t := range tokens {
		switch t.Kind {
		case lexer.KindRelocBase:
			out = append(out, '!')
			out = append(out, []byte(normalizeHex(t.Text, 4))...)

		case lexer.KindOrg:
			v, err := lexer.ParseHex(t.Text)
			if err != nil {
				return nil, &PositionError{t.Line, err}
			}
			effective = uint16(v)
			out = append(out, '@')
			out = append(out, []byte(normalizeHex(t.Text, 4))...)

		case lexer.KindByte:
			effective++
			out = append(out, '#')
			out = append(out, []byte(normalizeHex(t.Text, 2))...)

		case lexer.KindString:
			effective += uint16(len(t.Text))
			out = append(out, '"')
			out = append(out, []byte(t.Text)...)
			out = append(out, '"')

		case lexer.KindLabelDef:
			// labels carry no presence in resolved form

		case lexer.KindMnemonic:
			entry, ok := cat.Lookup(t.Text)
			if !ok {
				return nil, &PositionError{t.Line, fmt.Errorf("%w: %q", ErrUnknownMnemonic, t.Text)}
			}
			unitAddr := effective
			out = append(out, []byte(t.Text)...)

			switch entry.Shape {
			case catalog.ShapeNone:
				// no operand

			case catalog.ShapeByte:
				out = append(out, ' ')
				if len(t.Operands) == 1 && isLabelRef(t.Operands[0]) {
					return nil, &PositionError{t.Line, fmt.Errorf("%w: byte-shaped mnemonic cannot take a label operand", ErrUnknownMnemonic)}
				}
				v, err := operandHex(t.Operands)
				if err != nil {
					return nil, &PositionError{t.Line, err}
				}
				writeHex(v, 2)

			case catalog.ShapeWord:
				out = append(out, ' ')
				if len(t.Operands) == 1 && isLabelRef(t.Operands[0]) {
					name := t.Operands[0][1:]
					addr, ok := labels[name]
					if !ok {
						return nil, &PositionError{t.Line, fmt.Errorf("%w: %q", ErrUnknownLabel, name)}
					}
					writeHex(uint64(addr), 4)
				} else {
					v, err := operandHex(t.Operands)
					if err != nil {
						return nil, &PositionError{t.Line, err}
					}
					writeHex(v, 4)
				}

			case catalog.ShapeBranch:
				out = append(out, ' ')
				var disp int
				if len(t.Operands) == 1 && isLabelRef(t.Operands[0]) {
					name := t.Operands[0][1:]
					addr, ok := labels[name]
					if !ok {
						return nil, &PositionError{t.Line, fmt.Errorf("%w: %q", ErrUnknownLabel, name)}
					}
					disp = int(addr) - int(unitAddr+2)
				} else {
					v, err := operandHex(t.Operands)
					if err != nil {
						return nil, &PositionError{t.Line, err}
					}
					disp = int(int8(uint8(v)))
				}
				if disp < -128 || disp > 127 {
					return nil, &PositionError{t.Line, fmt.Errorf("%w: displacement %d", ErrBranchOutOfRange, disp)}
				}
				writeHex(uint64(uint8(int8(disp))), 2)
			}
			effective += uint16(entry.Shape.Length())
		}
		// one unit per line: the lexer reads a mnemonic's operand from the
		// rest of its line, so a no-operand mnemonic must not share a line
		// with the next unit
		out = append(out, '\n')
	}
	return out, nil
}

func isLabelRef(op string) bool {
	return len(op) > 0 && op[0] == ':'
}

func operandHex(ops []string) (uint64, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf("resolver: expected exactly one operand")
	}
	return lexer.ParseHex(ops[0])
}

// normalizeHex left-pads/truncates a hex literal's canonical digits to the
// requested width, preserving the lexer's accepted $/0x-prefixed spellings
// by re-parsing and re-rendering.
func normalizeHex(s string, digits int) string {
	v, err := lexer.ParseHex(s)
	if err != nil {
		return s
	}
	const hex = "0123456789ABCDEF"
	buf := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		buf[i] = hex[v&0xF]
		v >>= 4
	}
	return string(buf)
}

// Resolve runs pass one then pass two in sequence, the usual entry point
// for callers that don't need the intermediate label map.
func Resolve(tokens []lexer.Token, cat *catalog.Catalogue) ([]byte, error) {
	labels, err := Pass1(tokens, cat)
	if err != nil {
		return nil, err
	}
	return Pass2(tokens, labels, cat)
}
