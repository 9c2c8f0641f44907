package cpu

// 6502 status register flag bit positions (spec.md section 3).
const (
	FlagCarry    uint8 = 0x01
	FlagZero     uint8 = 0x02
	FlagIRQ      uint8 = 0x04 // interrupt-disable
	FlagDecimal  uint8 = 0x08
	FlagBreak    uint8 = 0x10
	FlagUnused   uint8 = 0x20 // always 1 on real hardware, honored structurally
	FlagOverflow uint8 = 0x40
	FlagNegative uint8 = 0x80
)

func (s *State) flag(bit uint8) bool {
	return s.P&bit != 0
}

func (s *State) setFlag(bit uint8, v bool) {
	if v {
		s.P |= bit
	} else {
		s.P &^= bit
	}
}
