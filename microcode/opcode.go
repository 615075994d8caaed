package microcode

import (
	"fmt"
	"strings"
)

// Opcode is the instruction slot, the upper nibble of the instruction register.
type Opcode uint8

const (
	OP_NOP = Opcode(0x0) // NOP
	OP_LDA = Opcode(0x1) // LDA addr: A = RAM[addr]
	OP_ADD = Opcode(0x2) // ADD addr: A = A + RAM[addr]
	OP_SUB = Opcode(0x3) // SUB addr: A = A - RAM[addr]
	OP_STA = Opcode(0x4) // STA addr: RAM[addr] = A
	OP_LDI = Opcode(0x5) // LDI imm: A = imm
	OP_JMP = Opcode(0x6) // JMP addr
	OP_JC  = Opcode(0x7) // JC addr: jump if carry
	OP_JZ  = Opcode(0x8) // JZ addr: jump if zero
	OP_OUT = Opcode(0xe) // OUT: display A
	OP_HLT = Opcode(0xf) // HLT

	OPCODE_COUNT = 16
)

var opcodeNames = map[Opcode]string{
	OP_NOP: "NOP",
	OP_LDA: "LDA",
	OP_ADD: "ADD",
	OP_SUB: "SUB",
	OP_STA: "STA",
	OP_LDI: "LDI",
	OP_JMP: "JMP",
	OP_JC:  "JC",
	OP_JZ:  "JZ",
	OP_OUT: "OUT",
	OP_HLT: "HLT",
}

func (op Opcode) String() string {
	name, ok := opcodeNames[op]
	if !ok {
		name = fmt.Sprintf("OP%X", uint8(op))
	}
	return name
}

// ParseOpcode returns the opcode with the mnemonic name.
func ParseOpcode(name string) (op Opcode, ok bool) {
	for op, mnemonic := range opcodeNames {
		if strings.EqualFold(mnemonic, name) {
			return op, true
		}
	}
	return
}

// Step is the micro-step counter, the sequential phase within an instruction.
type Step uint8

const STEP_COUNT = 8

// Flags is the zero/carry state latched by the flags register.
type Flags uint8

const (
	FLAGS_Z0C0 = Flags(0b00)
	FLAGS_Z0C1 = Flags(0b01)
	FLAGS_Z1C0 = Flags(0b10)
	FLAGS_Z1C1 = Flags(0b11)

	FLAGS_COUNT = 4
)

const (
	FLAG_CARRY = Flags(1 << 0)
	FLAG_ZERO  = Flags(1 << 1)
)

// MakeFlags packs the zero and carry bits.
func MakeFlags(zero, carry bool) (flags Flags) {
	if zero {
		flags |= FLAG_ZERO
	}
	if carry {
		flags |= FLAG_CARRY
	}
	return
}

// Zero reports the zero flag.
func (flags Flags) Zero() bool {
	return flags&FLAG_ZERO != 0
}

// Carry reports the carry flag.
func (flags Flags) Carry() bool {
	return flags&FLAG_CARRY != 0
}

func (flags Flags) String() string {
	z, c := 0, 0
	if flags.Zero() {
		z = 1
	}
	if flags.Carry() {
		c = 1
	}
	return fmt.Sprintf("Z%dC%d", z, c)
}

// Cond is a branch condition tested against the flags.
type Cond int

const (
	COND_CARRY = Cond(0) // Taken when C=1
	COND_ZERO  = Cond(1) // Taken when Z=1
)

// Holds reports whether the condition is true for the flags.
func (cond Cond) Holds(flags Flags) bool {
	switch cond {
	case COND_CARRY:
		return flags.Carry()
	case COND_ZERO:
		return flags.Zero()
	}
	return false
}

func (cond Cond) String() string {
	switch cond {
	case COND_CARRY:
		return "C"
	case COND_ZERO:
		return "Z"
	}
	return fmt.Sprintf("COND(%d)", int(cond))
}
