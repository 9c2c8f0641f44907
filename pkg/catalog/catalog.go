// Package catalog defines the opcode catalogue shared by the reference
// assembler, the emulator's instruction interpreter, and the self-hosting
// assembler's in-memory lookup table. There is exactly one definition of
// "what LDAZ means" in this repository; every consumer derives its
// behavior from it so the reference and self-hosted emitters cannot
// structurally diverge.
package catalog

import "fmt"

// Shape is the operand-encoding category of a mnemonic.
type Shape uint8

const (
	ShapeNone   Shape = 0 // no operand: opcode only
	ShapeByte   Shape = 1 // one operand byte
	ShapeWord   Shape = 2 // two operand bytes, little-endian
	ShapeBranch Shape = 3 // one operand byte: signed PC-relative displacement
)

// OperandBytes returns the number of operand bytes this shape encodes,
// excluding the opcode byte itself.
func (s Shape) OperandBytes() int {
	switch s {
	case ShapeNone:
		return 0
	case ShapeByte, ShapeBranch:
		return 1
	case ShapeWord:
		return 2
	default:
		return 0
	}
}

// Length returns the total encoded length of an instruction with this shape.
func (s Shape) Length() int {
	return 1 + s.OperandBytes()
}

// ExecFunc executes the decoded instruction against a CPU-shaped target.
// It is declared here, rather than in pkg/cpu, so the catalogue stays the
// single owner of "what each mnemonic does"; pkg/cpu supplies the Machine
// implementation and drives the fetch/decode loop.
type ExecFunc func(m Machine, operand uint16)

// Machine is the minimal surface pkg/cpu.CPU exposes to catalogue
// instruction bodies. Defined here (not imported from pkg/cpu) to avoid an
// import cycle between the catalogue and its consumers.
type Machine interface {
	ReadByte(addr uint16) uint8
	WriteByte(addr uint16, v uint8)
	A() uint8
	SetA(v uint8)
	X() uint8
	SetX(v uint8)
	Y() uint8
	SetY(v uint8)
	PC() uint16
	SetPC(v uint16)
	S() uint8
	SetS(v uint8)
	Carry() bool
	SetCarry(b bool)
	Zero() bool
	SetZero(b bool)
	Negative() bool
	SetNegative(b bool)
	Overflow() bool
	SetOverflow(b bool)
	SetZN(v uint8)
}

// Entry is a single 6-byte opcode-catalogue record: 4 mnemonic bytes, 1
// opcode byte, 1 shape byte, per spec.md section 3.
type Entry struct {
	Mnemonic string // exactly 4 ASCII bytes, including trailing padding spaces
	Opcode   byte
	Shape    Shape
	Exec     ExecFunc // nil for the END sentinel
}

// Bytes returns the 6-byte wire representation of the entry, as laid out
// in the self-hosting assembler's in-memory table (spec.md section 4.3).
func (e Entry) Bytes() [6]byte {
	var b [6]byte
	copy(b[:4], e.Mnemonic)
	b[4] = e.Opcode
	b[5] = byte(e.Shape)
	return b
}

// EndMnemonic is the sentinel that halts the self-hosting assembler's scan.
const EndMnemonic = "END "

// EndOpcode is the sentinel opcode byte (not a real 6502 instruction).
const EndOpcode = 0xFF

// Catalogue is an ordered, immutable set of entries plus lookup indexes.
// The order matches table declaration order: this is exactly the byte
// sequence written into emulator memory for the self-hosting path
// (Layout), so "in-process dictionary" and "byte-laid-out table" (spec.md
// section 4.3) are two views over the same slice.
type Catalogue struct {
	entries []Entry
	byName  map[string]*Entry
	byOp    map[byte]*Entry
}

// New builds a Catalogue from the default entry set.
func New() *Catalogue {
	return build(defaultEntries())
}

func build(entries []Entry) *Catalogue {
	c := &Catalogue{
		entries: entries,
		byName:  make(map[string]*Entry, len(entries)),
		byOp:    make(map[byte]*Entry, len(entries)),
	}
	for i := range c.entries {
		e := &c.entries[i]
		if len(e.Mnemonic) != 4 {
			panic(fmt.Sprintf("catalog: mnemonic %q is not 4 bytes", e.Mnemonic))
		}
		c.byName[e.Mnemonic] = e
		c.byOp[e.Opcode] = e
	}
	return c
}

// Lookup finds an entry by its exact 4-character mnemonic (case-sensitive,
// including trailing-space padding).
func (c *Catalogue) Lookup(mnemonic string) (*Entry, bool) {
	e, ok := c.byName[mnemonic]
	return e, ok
}

// Decode finds an entry by opcode byte, used by the interpreter and by
// the catalogue round-trip test.
func (c *Catalogue) Decode(opcode byte) (*Entry, bool) {
	e, ok := c.byOp[opcode]
	return e, ok
}

// Entries returns the catalogue in declaration order.
func (c *Catalogue) Entries() []Entry {
	return c.entries
}

// Layout renders the catalogue as the flat byte table the self-hosting
// assembler scans linearly: len(Entries())*6 bytes, each entry's Bytes()
// concatenated in declaration order.
func (c *Catalogue) Layout() []byte {
	out := make([]byte, 0, len(c.entries)*6)
	for _, e := range c.entries {
		b := e.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// EntrySize is the byte width of one catalogue record in Layout's output.
const EntrySize = 6
