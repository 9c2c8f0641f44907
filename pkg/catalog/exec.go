package catalog

// Exec bodies for the catalogue's minimum instruction subset (spec.md
// section 4.2). Flag semantics follow the documented NMOS 6502 behavior;
// decimal mode is not implemented (the core test programs never set D).
//
// Operand convention, by Shape:
//   ShapeNone    - operand unused.
//   ShapeByte    - immediate value, or a zero-page address, or (for the
//                  Y-indirect-indexed forms) the zero-page pointer address.
//   ShapeWord    - a 16-bit absolute address.
//   ShapeBranch  - a raw byte holding the signed 8-bit displacement; PC has
//                  already been advanced past the instruction by the caller.

func setZN(m Machine, v uint8) {
	m.SetZN(v)
}

func indirectIndexedAddr(m Machine, zp uint8) uint16 {
	lo := m.ReadByte(uint16(zp))
	hi := m.ReadByte(uint16(uint8(zp + 1)))
	base := uint16(lo) | uint16(hi)<<8
	return base + uint16(m.Y())
}

func adcCompute(m Machine, operand uint8) {
	a := m.A()
	carryIn := uint16(0)
	if m.Carry() {
		carryIn = 1
	}
	sum := uint16(a) + uint16(operand) + carryIn
	result := uint8(sum)
	m.SetCarry(sum > 0xFF)
	m.SetOverflow((a^result)&(operand^result)&0x80 != 0)
	m.SetA(result)
	setZN(m, result)
}

func cmpCompute(m Machine, reg, operand uint8) {
	result := reg - operand
	m.SetCarry(reg >= operand)
	setZN(m, result)
}

func branch(m Machine, operand uint16, take bool) {
	if !take {
		return
	}
	disp := int8(uint8(operand))
	m.SetPC(uint16(int32(m.PC()) + int32(disp)))
}

func defaultEntries() []Entry {
	return []Entry{
		{"LDA#", 0xA9, ShapeByte, func(m Machine, op uint16) {
			m.SetA(uint8(op))
			setZN(m, uint8(op))
		}},
		{"LDA ", 0xAD, ShapeWord, func(m Machine, op uint16) {
			v := m.ReadByte(op)
			m.SetA(v)
			setZN(m, v)
		}},
		{"LDAZ", 0xA5, ShapeByte, func(m Machine, op uint16) {
			v := m.ReadByte(uint16(uint8(op)))
			m.SetA(v)
			setZN(m, v)
		}},
		{"LDAY", 0xB1, ShapeByte, func(m Machine, op uint16) {
			v := m.ReadByte(indirectIndexedAddr(m, uint8(op)))
			m.SetA(v)
			setZN(m, v)
		}},
		{"LDX#", 0xA2, ShapeByte, func(m Machine, op uint16) {
			m.SetX(uint8(op))
			setZN(m, uint8(op))
		}},
		{"LDXZ", 0xA6, ShapeByte, func(m Machine, op uint16) {
			v := m.ReadByte(uint16(uint8(op)))
			m.SetX(v)
			setZN(m, v)
		}},
		{"LDY#", 0xA0, ShapeByte, func(m Machine, op uint16) {
			m.SetY(uint8(op))
			setZN(m, uint8(op))
		}},
		{"LDYZ", 0xA4, ShapeByte, func(m Machine, op uint16) {
			v := m.ReadByte(uint16(uint8(op)))
			m.SetY(v)
			setZN(m, v)
		}},
		{"STAZ", 0x85, ShapeByte, func(m Machine, op uint16) {
			m.WriteByte(uint16(uint8(op)), m.A())
		}},
		{"STAY", 0x91, ShapeByte, func(m Machine, op uint16) {
			m.WriteByte(indirectIndexedAddr(m, uint8(op)), m.A())
		}},
		{"STA ", 0x8D, ShapeWord, func(m Machine, op uint16) {
			m.WriteByte(op, m.A())
		}},
		{"TAX ", 0xAA, ShapeNone, func(m Machine, _ uint16) {
			m.SetX(m.A())
			setZN(m, m.A())
		}},
		{"TAY ", 0xA8, ShapeNone, func(m Machine, _ uint16) {
			m.SetY(m.A())
			setZN(m, m.A())
		}},
		{"TXA ", 0x8A, ShapeNone, func(m Machine, _ uint16) {
			m.SetA(m.X())
			setZN(m, m.X())
		}},
		{"TYA ", 0x98, ShapeNone, func(m Machine, _ uint16) {
			m.SetA(m.Y())
			setZN(m, m.Y())
		}},
		{"ADC#", 0x69, ShapeByte, func(m Machine, op uint16) {
			adcCompute(m, uint8(op))
		}},
		{"ADCZ", 0x65, ShapeByte, func(m Machine, op uint16) {
			adcCompute(m, m.ReadByte(uint16(uint8(op))))
		}},
		{"SBC#", 0xE9, ShapeByte, func(m Machine, op uint16) {
			adcCompute(m, ^uint8(op))
		}},
		{"SBCZ", 0xE5, ShapeByte, func(m Machine, op uint16) {
			adcCompute(m, ^m.ReadByte(uint16(uint8(op))))
		}},
		{"ORA#", 0x09, ShapeByte, func(m Machine, op uint16) {
			v := m.A() | uint8(op)
			m.SetA(v)
			setZN(m, v)
		}},
		{"ORAZ", 0x05, ShapeByte, func(m Machine, op uint16) {
			v := m.A() | m.ReadByte(uint16(uint8(op)))
			m.SetA(v)
			setZN(m, v)
		}},
		{"AND#", 0x29, ShapeByte, func(m Machine, op uint16) {
			v := m.A() & uint8(op)
			m.SetA(v)
			setZN(m, v)
		}},
		{"ANDZ", 0x25, ShapeByte, func(m Machine, op uint16) {
			v := m.A() & m.ReadByte(uint16(uint8(op)))
			m.SetA(v)
			setZN(m, v)
		}},
		{"ASL ", 0x0A, ShapeNone, func(m Machine, _ uint16) {
			v := m.A()
			m.SetCarry(v&0x80 != 0)
			v <<= 1
			m.SetA(v)
			setZN(m, v)
		}},
		{"ASLZ", 0x06, ShapeByte, func(m Machine, op uint16) {
			addr := uint16(uint8(op))
			v := m.ReadByte(addr)
			m.SetCarry(v&0x80 != 0)
			v <<= 1
			m.WriteByte(addr, v)
			setZN(m, v)
		}},
		{"CMP#", 0xC9, ShapeByte, func(m Machine, op uint16) {
			cmpCompute(m, m.A(), uint8(op))
		}},
		{"CMPZ", 0xC5, ShapeByte, func(m Machine, op uint16) {
			cmpCompute(m, m.A(), m.ReadByte(uint16(uint8(op))))
		}},
		{"CPX#", 0xE0, ShapeByte, func(m Machine, op uint16) {
			cmpCompute(m, m.X(), uint8(op))
		}},
		{"CPXZ", 0xE4, ShapeByte, func(m Machine, op uint16) {
			cmpCompute(m, m.X(), m.ReadByte(uint16(uint8(op))))
		}},
		{"CPY#", 0xC0, ShapeByte, func(m Machine, op uint16) {
			cmpCompute(m, m.Y(), uint8(op))
		}},
		{"CPYZ", 0xC4, ShapeByte, func(m Machine, op uint16) {
			cmpCompute(m, m.Y(), m.ReadByte(uint16(uint8(op))))
		}},
		{"INCZ", 0xE6, ShapeByte, func(m Machine, op uint16) {
			addr := uint16(uint8(op))
			v := m.ReadByte(addr) + 1
			m.WriteByte(addr, v)
			setZN(m, v)
		}},
		{"INX ", 0xE8, ShapeNone, func(m Machine, _ uint16) {
			v := m.X() + 1
			m.SetX(v)
			setZN(m, v)
		}},
		{"INY ", 0xC8, ShapeNone, func(m Machine, _ uint16) {
			v := m.Y() + 1
			m.SetY(v)
			setZN(m, v)
		}},
		{"DECZ", 0xC6, ShapeByte, func(m Machine, op uint16) {
			addr := uint16(uint8(op))
			v := m.ReadByte(addr) - 1
			m.WriteByte(addr, v)
			setZN(m, v)
		}},
		{"DEX ", 0xCA, ShapeNone, func(m Machine, _ uint16) {
			v := m.X() - 1
			m.SetX(v)
			setZN(m, v)
		}},
		{"DEY ", 0x88, ShapeNone, func(m Machine, _ uint16) {
			v := m.Y() - 1
			m.SetY(v)
			setZN(m, v)
		}},
		{"JMP ", 0x4C, ShapeWord, func(m Machine, op uint16) {
			m.SetPC(op)
		}},
		{"JSR ", 0x20, ShapeWord, func(m Machine, op uint16) {
			ret := m.PC() - 1
			pushByte(m, uint8(ret>>8))
			pushByte(m, uint8(ret))
			m.SetPC(op)
		}},
		{"RTS ", 0x60, ShapeNone, func(m Machine, _ uint16) {
			lo := popByte(m)
			hi := popByte(m)
			ret := uint16(lo) | uint16(hi)<<8
			m.SetPC(ret + 1)
		}},
		{"BEQ ", 0xF0, ShapeBranch, func(m Machine, op uint16) {
			branch(m, op, m.Zero())
		}},
		{"BNE ", 0xD0, ShapeBranch, func(m Machine, op uint16) {
			branch(m, op, !m.Zero())
		}},
		{"BCC ", 0x90, ShapeBranch, func(m Machine, op uint16) {
			branch(m, op, !m.Carry())
		}},
		{"BCS ", 0xB0, ShapeBranch, func(m Machine, op uint16) {
			branch(m, op, m.Carry())
		}},
		{"CLC ", 0x18, ShapeNone, func(m Machine, _ uint16) {
			m.SetCarry(false)
		}},
		{"SEC ", 0x38, ShapeNone, func(m Machine, _ uint16) {
			m.SetCarry(true)
		}},
		{"BRK ", 0x00, ShapeNone, nil},
		{"NOP ", 0xEA, ShapeNone, func(m Machine, _ uint16) {}},
		{EndMnemonic, EndOpcode, ShapeNone, nil},
	}
}

func pushByte(m Machine, v uint8) {
	addr := uint16(0x0100) | uint16(m.S())
	m.WriteByte(addr, v)
	m.SetS(m.S() - 1)
}

func popByte(m Machine) uint8 {
	m.SetS(m.S() + 1)
	addr := uint16(0x0100) | uint16(m.S())
	return m.ReadByte(addr)
}
