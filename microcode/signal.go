package microcode

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

// Signal is a single control line. Its value is the line's bit position in
// the 16-bit control word, and must match the backplane wiring.
type Signal uint8

const (
	SIG_FI  = Signal(0)  // Flags register in
	SIG_J   = Signal(1)  // Jump (program counter in)
	SIG_CO  = Signal(2)  // Program counter out
	SIG_CE  = Signal(3)  // Program counter enable
	SIG_OI  = Signal(4)  // Output register in
	SIG_BI  = Signal(5)  // B register in
	SIG_SU  = Signal(6)  // ALU subtract
	SIG_EO  = Signal(7)  // ALU out
	SIG_AO  = Signal(8)  // A register out
	SIG_AI  = Signal(9)  // A register in
	SIG_II  = Signal(10) // Instruction register in
	SIG_IO  = Signal(11) // Instruction register out
	SIG_RO  = Signal(12) // RAM data out
	SIG_RI  = Signal(13) // RAM data in
	SIG_MI  = Signal(14) // Memory address register in
	SIG_HLT = Signal(15) // Halt clock

	SIGNAL_COUNT = 16
)

var signalNames = [SIGNAL_COUNT]string{
	"FI", "J", "CO", "CE", "OI", "BI", "SU", "EO",
	"AO", "AI", "II", "IO", "RO", "RI", "MI", "HLT",
}

func (sig Signal) String() string {
	if int(sig) < len(signalNames) {
		return signalNames[sig]
	}
	return fmt.Sprintf("SIG(%d)", int(sig))
}

// Word returns the control word with only this signal asserted.
func (sig Signal) Word() Word {
	return Word(1) << sig
}

// ParseSignal returns the signal with the mnemonic name.
func ParseSignal(name string) (sig Signal, err error) {
	for n, signal := range signalNames {
		if strings.EqualFold(signal, name) {
			sig = Signal(n)
			return
		}
	}

	err = &ErrScript{Name: name, Err: ErrSignalUnknown}
	return
}

// Signals yields every control line, lowest bit first.
func Signals() iter.Seq[Signal] {
	return func(yield func(Signal) bool) {
		for n := range SIGNAL_COUNT {
			if !yield(Signal(n)) {
				return
			}
		}
	}
}

// Word is a control word in positive logic: a set bit asserts its Signal.
type Word uint16

// Of returns the control word asserting all of the signals.
func Of(signals ...Signal) (word Word) {
	for _, sig := range signals {
		word |= sig.Word()
	}
	return
}

// Has reports whether sig is asserted.
func (word Word) Has(sig Signal) bool {
	return word&sig.Word() != 0
}

// With returns the word with sig asserted.
func (word Word) With(sig Signal) Word {
	return word | sig.Word()
}

// Without returns the word with sig deasserted.
func (word Word) Without(sig Signal) Word {
	return word &^ sig.Word()
}

// Len returns the number of asserted signals.
func (word Word) Len() int {
	return bits.OnesCount16(uint16(word))
}

// Signals yields the asserted signals, highest bit first.
func (word Word) Signals() iter.Seq[Signal] {
	return func(yield func(Signal) bool) {
		for n := SIGNAL_COUNT - 1; n >= 0; n-- {
			sig := Signal(n)
			if word.Has(sig) && !yield(sig) {
				return
			}
		}
	}
}

// String returns the asserted signals as "MI|CO", or "-" for the empty word.
func (word Word) String() string {
	if word == 0 {
		return "-"
	}

	var names []string
	for sig := range word.Signals() {
		names = append(names, sig.String())
	}
	return strings.Join(names, "|")
}

// Encode converts the word to the levels driven on the control lines.
func (word Word) Encode(mask Wire) Wire {
	return Wire(word) ^ mask
}

// Wire is a control word as seen on the control lines, with the lines in
// the polarity mask inverted.
type Wire uint16

// ACTIVE_LOW_MASK has a bit set for every line asserted at logic 0.
const ACTIVE_LOW_MASK = Wire(0b0101_1111_1010_0111)

// ActiveLow returns the polarity mask with the listed signals active-low.
func ActiveLow(signals ...Signal) Wire {
	return Wire(Of(signals...))
}

// Decode converts line levels back to the positive-logic word.
func (wire Wire) Decode(mask Wire) Word {
	return Word(wire ^ mask)
}

// High returns the upper eight lines.
func (wire Wire) High() uint8 {
	return uint8(wire >> 8)
}

// Low returns the lower eight lines.
func (wire Wire) Low() uint8 {
	return uint8(wire & 0xff)
}
