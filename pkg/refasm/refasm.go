// Package refasm implements the reference assembler's second pass: turning
// resolved-form source text into a machine-code image (spec.md section
// 4.6). It shares its token grammar with pkg/lexer and its mnemonic
// encoding with pkg/catalog, so its output is defined to be identical to
// whatever the self-hosting assembler (pkg/selfhost) produces for the same
// resolved input.
package refasm

import (
	"errors"
	"fmt"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
	"github.com/retrobuild/sixtyasm/pkg/lexer"
)

var (
	ErrUnrecognizedMnemonic = errors.New("refasm: unrecognized mnemonic")
	ErrMalformedLiteral     = errors.New("refasm: malformed hex literal")
)

// Image is the sparse output of assembling a resolved-form program:
// output-address -> byte, plus the low/high watermarks written.
type Image struct {
	bytes      map[uint16]byte
	lo, hi     uint16
	everWrote  bool
}

func newImage() *Image {
	return &Image{bytes: make(map[uint16]byte)}
}

func (img *Image) write(addr uint16, v byte) {
	img.bytes[addr] = v
	if !img.everWrote {
		img.lo, img.hi = addr, addr
		img.everWrote = true
		return
	}
	if addr < img.lo {
		img.lo = addr
	}
	if addr > img.hi {
		img.hi = addr
	}
}

// Bytes renders the image as a contiguous slice from the lowest to the
// highest written address, zero-filling holes (spec.md section 4.6 and
// the hole-fill note in section 9).
func (img *Image) Bytes() []byte {
	if !img.everWrote {
		return nil
	}
	out := make([]byte, int(img.hi)-int(img.lo)+1)
	for addr, v := range img.bytes {
		out[int(addr)-int(img.lo)] = v
	}
	return out
}

// Range returns the lowest and highest output addresses written.
func (img *Image) Range() (lo, hi uint16, wrote bool) {
	return img.lo, img.hi, img.everWrote
}

// At returns the byte at an output address, or 0 if never written.
func (img *Image) At(addr uint16) byte {
	return img.bytes[addr]
}

// Assemble consumes resolved-form source text and the opcode catalogue,
// emitting a byte image per the per-unit rules in spec.md section 4.6.
// END  is a no-emit end-of-input marker, not an instruction: it stops
// assembly without writing a byte, matching the self-hosting assembler's
// control transfer to ProducedEntryPoint without ever calling EMIT.
func Assemble(resolved []byte, cat *catalog.Catalogue) (*Image, error) {
	toks, err := lexer.New(resolved).Tokens()
	if err != nil {
		return nil, err
	}

	img := newImage()
	var effective, delta uint16

	outAddr := func() uint16 { return effective + delta }

	for _, t := range toks {
		switch t.Kind {
		case lexer.KindRelocBase:
			v, err := lexer.ParseHex(t.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
			}
			delta = uint16(v)

		case lexer.KindOrg:
			v, err := lexer.ParseHex(t.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
			}
			effective = uint16(v)

		case lexer.KindByte:
			v, err := lexer.ParseHex(t.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
			}
			img.write(outAddr(), byte(v))
			effective++

		case lexer.KindString:
			for i := 0; i < len(t.Text); i++ {
				img.write(effective+delta, t.Text[i])
				effective++
			}

		case lexer.KindMnemonic:
			entry, ok := cat.Lookup(t.Text)
			if !ok {
				return nil, fmt.Errorf("%w: %q (line %d)", ErrUnrecognizedMnemonic, t.Text, t.Line)
			}
			if entry.Opcode == catalog.EndOpcode {
				return img, nil
			}

			img.write(outAddr(), entry.Opcode)
			effective++

			switch entry.Shape {
			case catalog.ShapeByte, catalog.ShapeBranch:
				v, err := operandValue(t.Operands)
				if err != nil {
					return nil, err
				}
				img.write(outAddr(), byte(v))
				effective++

			case catalog.ShapeWord:
				v, err := operandValue(t.Operands)
				if err != nil {
					return nil, err
				}
				img.write(outAddr(), byte(v))
				effective++
				img.write(outAddr(), byte(v>>8))
				effective++
			}
		}
	}

	return img, nil
}

func operandValue(ops []string) (uint16, error) {
	if len(ops) != 1 {
		return 0, fmt.Errorf("%w: missing operand", ErrMalformedLiteral)
	}
	v, err := lexer.ParseHex(ops[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
	}
	return uint16(v), nil
}
