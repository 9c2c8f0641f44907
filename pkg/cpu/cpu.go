// Package cpu implements the 64 KiB memory image, 6502 register file, and
// fetch/decode/execute loop used to run the self-hosting assembler and to
// verify its output against the reference assembler (spec.md sections 4.1,
// 4.2, 5).
package cpu

import (
	"errors"
	"fmt"

	"github.com/retrobuild/sixtyasm/pkg/catalog"
)

// ErrUndefinedOpcode is returned by Step when the fetched byte matches no
// catalogue entry.
var ErrUndefinedOpcode = errors.New("cpu: undefined opcode")

// HaltReason explains why Run stopped.
type HaltReason int

const (
	HaltNone HaltReason = iota
	HaltTrap
	HaltCycleCap
	HaltBreak
	HaltUndefinedOpcode
)

func (r HaltReason) String() string {
	switch r {
	case HaltTrap:
		return "trap"
	case HaltCycleCap:
		return "cycle-cap"
	case HaltBreak:
		return "break"
	case HaltUndefinedOpcode:
		return "undefined-opcode"
	default:
		return "none"
	}
}

// CPU couples a Memory image, a register State, and the shared opcode
// catalogue used to decode fetched bytes.
type CPU struct {
	Memory
	State

	Catalogue *catalog.Catalogue

	// TrapLow/TrapHigh define an address range that halts Run when PC
	// enters it (spec.md section 5). TrapHigh == 0 disables trapping.
	TrapLow, TrapHigh uint16

	// HaltOnBreak, when true, halts Run on BRK instead of treating it as
	// a plain instruction (spec.md section 4.2, "optional halt mode").
	HaltOnBreak bool

	// Trace, when non-nil, receives one formatted line per executed
	// instruction (spec.md section 6, --trace).
	Trace func(line string)

	lastOpcode byte
	lastEntry  *catalog.Entry
}

// New constructs a CPU using cat as its opcode catalogue.
func New(cat *catalog.Catalogue) *CPU {
	return &CPU{Catalogue: cat, HaltOnBreak: true}
}

// --- catalog.Machine implementation ---

func (c *CPU) A() uint8          { return c.State.A }
func (c *CPU) SetA(v uint8)      { c.State.A = v }
func (c *CPU) X() uint8          { return c.State.X }
func (c *CPU) SetX(v uint8)      { c.State.X = v }
func (c *CPU) Y() uint8          { return c.State.Y }
func (c *CPU) SetY(v uint8)      { c.State.Y = v }
func (c *CPU) PC() uint16        { return c.State.PC }
func (c *CPU) SetPC(v uint16)    { c.State.PC = v }
func (c *CPU) S() uint8          { return c.State.S }
func (c *CPU) SetS(v uint8)      { c.State.S = v }
func (c *CPU) Carry() bool       { return c.flag(FlagCarry) }
func (c *CPU) SetCarry(b bool)   { c.setFlag(FlagCarry, b) }
func (c *CPU) Zero() bool        { return c.flag(FlagZero) }
func (c *CPU) SetZero(b bool)    { c.setFlag(FlagZero, b) }
func (c *CPU) Negative() bool    { return c.flag(FlagNegative) }
func (c *CPU) SetNegative(b bool) { c.setFlag(FlagNegative, b) }
func (c *CPU) Overflow() bool    { return c.flag(FlagOverflow) }
func (c *CPU) SetOverflow(b bool) { c.setFlag(FlagOverflow, b) }

// SetZN sets the Zero and Negative flags from v, the standard 6502
// load/transfer/arithmetic flag update.
func (c *CPU) SetZN(v uint8) {
	c.SetZero(v == 0)
	c.SetNegative(v&0x80 != 0)
}

// fetchOperand reads the operand bytes for shape starting at addr and
// returns them packed as Exec expects (spec.md section 3: shape-2 operands
// are little-endian in the instruction stream; a branch operand is a raw
// signed byte).
func fetchOperand(m *Memory, addr uint16, shape catalog.Shape) uint16 {
	switch shape {
	case catalog.ShapeByte, catalog.ShapeBranch:
		return uint16(m.ReadByte(addr))
	case catalog.ShapeWord:
		return m.ReadWord(addr)
	default:
		return 0
	}
}

// Step executes exactly one instruction, advancing PC past it before
// dispatching Exec (branches and JSR/RTS rely on this ordering, spec.md
// section 4.2).
func (c *CPU) Step() error {
	opcode := c.ReadByte(c.PC())
	entry, ok := c.Catalogue.Decode(opcode)
	if !ok {
		return ErrUndefinedOpcode
	}
	c.lastOpcode = opcode
	c.lastEntry = entry

	operandAddr := c.PC() + 1
	operand := fetchOperand(&c.Memory, operandAddr, entry.Shape)
	c.SetPC(c.PC() + uint16(entry.Shape.Length()))

	if c.Trace != nil {
		c.Trace(c.traceLine(entry, operandAddr))
	}

	if entry.Opcode == catalog.EndOpcode || entry.Mnemonic == "BRK " {
		return nil
	}
	entry.Exec(c, operand)
	return nil
}

func (c *CPU) traceLine(entry *catalog.Entry, operandAddr uint16) string {
	n := entry.Shape.OperandBytes()
	opBytes := make([]byte, 1+n)
	opBytes[0] = entry.Opcode
	for i := 0; i < n; i++ {
		opBytes[1+i] = c.ReadByte(operandAddr + uint16(i))
	}
	return fmt.Sprintf("%04X: % X %s A=%02X X=%02X Y=%02X S=%02X P=%02X",
		c.PC()-uint16(entry.Shape.Length()), opBytes, entry.Mnemonic,
		c.A(), c.X(), c.Y(), c.S(), c.State.P)
}

// RunConfig configures Run.
type RunConfig struct {
	MaxCycles int // 0 means unlimited
}

// RunResult reports how Run halted.
type RunResult struct {
	Reason       HaltReason
	CyclesRun    int
	FinalPC      uint16
	UndefinedErr error
}

// Run drives Step until PC enters the trap region, BRK halts execution
// (if HaltOnBreak), the cycle cap is reached, or an undefined opcode is
// fetched (spec.md section 4.2, 5, 7).
func (c *CPU) Run(cfg RunConfig) RunResult {
	cycles := 0
	for {
		if c.TrapHigh != 0 && c.PC() >= c.TrapLow && c.PC() < c.TrapHigh {
			return RunResult{Reason: HaltTrap, CyclesRun: cycles, FinalPC: c.PC()}
		}
		if cfg.MaxCycles > 0 && cycles >= cfg.MaxCycles {
			return RunResult{Reason: HaltCycleCap, CyclesRun: cycles, FinalPC: c.PC()}
		}

		opcodeAddr := c.PC()
		isBreak := c.ReadByte(opcodeAddr) == 0x00
		if err := c.Step(); err != nil {
			return RunResult{Reason: HaltUndefinedOpcode, CyclesRun: cycles, FinalPC: opcodeAddr, UndefinedErr: err}
		}
		cycles++
		if isBreak && c.HaltOnBreak {
			return RunResult{Reason: HaltBreak, CyclesRun: cycles, FinalPC: c.PC()}
		}
	}
}
