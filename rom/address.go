// Package rom lays the control store out as the byte image of the control
// EEPROMs and emits it, one byte per address, to a ByteWriter.
package rom

import (
	"fmt"
	"iter"

	"github.com/ezrec/ucrom/microcode"
)

// Address is a control EEPROM address, packed MSB to LSB as
// [flags(2)][byte select(1)][opcode(4)][step(3)].
type Address uint16

const (
	ADDRESS_STEP_SHIFT   = 0
	ADDRESS_STEP_MASK    = 0b111
	ADDRESS_OPCODE_SHIFT = 3
	ADDRESS_OPCODE_MASK  = 0b1111
	ADDRESS_SELECT_SHIFT = 7
	ADDRESS_SELECT_MASK  = 0b1
	ADDRESS_FLAGS_SHIFT  = 8
	ADDRESS_FLAGS_MASK   = 0b11

	ADDRESS_COUNT = 1 << 10 // Bytes in the image.
)

// ByteSelect picks the half of a control word exposed at an address. The
// assignment follows the socket wiring of the two control EEPROMs.
type ByteSelect uint8

const (
	BYTE_HIGH = ByteSelect(0) // Upper eight control lines.
	BYTE_LOW  = ByteSelect(1) // Lower eight control lines.
)

func (sel ByteSelect) String() string {
	if sel == BYTE_LOW {
		return "lo"
	}
	return "hi"
}

// Of returns the selected half of the wire.
func (sel ByteSelect) Of(wire microcode.Wire) byte {
	if sel == BYTE_LOW {
		return wire.Low()
	}
	return wire.High()
}

// MakeAddress packs the address fields. Out of range fields are truncated
// to their width.
func MakeAddress(flags microcode.Flags, sel ByteSelect, op microcode.Opcode, step microcode.Step) Address {
	return Address((uint16(flags)&ADDRESS_FLAGS_MASK)<<ADDRESS_FLAGS_SHIFT |
		(uint16(sel)&ADDRESS_SELECT_MASK)<<ADDRESS_SELECT_SHIFT |
		(uint16(op)&ADDRESS_OPCODE_MASK)<<ADDRESS_OPCODE_SHIFT |
		(uint16(step)&ADDRESS_STEP_MASK)<<ADDRESS_STEP_SHIFT)
}

// Decode returns the address fields.
func (addr Address) Decode() (flags microcode.Flags, sel ByteSelect, op microcode.Opcode, step microcode.Step) {
	word := uint16(addr)
	flags = microcode.Flags((word >> ADDRESS_FLAGS_SHIFT) & ADDRESS_FLAGS_MASK)
	sel = ByteSelect((word >> ADDRESS_SELECT_SHIFT) & ADDRESS_SELECT_MASK)
	op = microcode.Opcode((word >> ADDRESS_OPCODE_SHIFT) & ADDRESS_OPCODE_MASK)
	step = microcode.Step((word >> ADDRESS_STEP_SHIFT) & ADDRESS_STEP_MASK)
	return
}

// String returns the address with its decoded fields.
func (addr Address) String() string {
	flags, sel, op, step := addr.Decode()
	return fmt.Sprintf("%03x %v %v %-3v %d", uint16(addr), flags, sel, op, int(step))
}

// Addresses yields every image address exactly once, in ascending order.
// This is the write order of the image: the programmer latches each address
// as it is written, so no address may be skipped, repeated or reordered.
func Addresses() iter.Seq[Address] {
	return func(yield func(Address) bool) {
		for addr := range Address(ADDRESS_COUNT) {
			if !yield(addr) {
				return
			}
		}
	}
}

// Byte returns the image byte at an address.
func Byte(table *microcode.Table, addr Address) byte {
	flags, sel, op, step := addr.Decode()
	return sel.Of(table.Wire(flags, op, step))
}
