// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs programs on a model of the 8-bit breadboard CPU
// whose only control logic is a control EEPROM image.
//
// Each Tick is one clock cycle: the image is addressed with the flags
// register, the opcode nibble of the instruction register and the step
// counter, exactly as the control EEPROMs are wired, and the control word
// read back drives the bus and register latches. A program that runs
// correctly here exercises the same bytes that are burned into the device.
package emulator

import (
	"fmt"
	"log"

	"github.com/ezrec/ucrom/microcode"
	"github.com/ezrec/ucrom/rom"
)

const (
	RAM_SIZE   = 256     // Bytes of RAM, addressed by the MAR.
	TICK_LIMIT = 1 << 20 // Default Run limit.
)

// Emulator state. Registers, RAM, and the control store image.
type Emulator struct {
	Verbose bool           // If set, enables verbose logging.
	Rom     *rom.Image     // Control store image.
	Mask    microcode.Wire // Polarity of the control lines.

	Ram [RAM_SIZE]uint8 // Main memory.

	A   uint8 // A register.
	B   uint8 // B register.
	Pc  uint8 // Program counter.
	Mar uint8 // Memory address register.
	Ir  uint8 // Instruction register.
	Out uint8 // Output register.
	Bus uint8 // Bus value of the last tick.

	Flags  microcode.Flags // Flags register.
	Step   microcode.Step  // Micro-step counter.
	Halted bool            // Clock halted.

	Ticks  int     // Clock cycles since reset.
	Output []uint8 // Every value latched by the output register.
}

// NewEmulator creates an emulator running from a control store image.
func NewEmulator(img *rom.Image, mask microcode.Wire) (emu *Emulator) {
	emu = &Emulator{
		Rom:  img,
		Mask: mask,
	}

	return
}

// Reset clears the registers and the step counter. RAM is kept.
func (emu *Emulator) Reset() {
	emu.A, emu.B, emu.Pc, emu.Mar, emu.Ir, emu.Out, emu.Bus = 0, 0, 0, 0, 0, 0, 0
	emu.Flags = microcode.FLAGS_Z0C0
	emu.Step = 0
	emu.Halted = false
	emu.Ticks = 0
	emu.Output = nil

	if emu.Verbose {
		log.Printf("emulator: reset")
	}
}

// Load copies a program to the start of RAM, clearing the rest, and resets.
func (emu *Emulator) Load(program []byte) (err error) {
	if len(program) > len(emu.Ram) {
		err = ErrProgramSize
		return
	}

	clear(emu.Ram[:])
	copy(emu.Ram[:], program)
	emu.Reset()

	return
}

// Opcode returns the opcode nibble of the instruction register.
func (emu *Emulator) Opcode() microcode.Opcode {
	return microcode.Opcode(emu.Ir >> 4)
}

// Word returns the control word for the current clock cycle.
func (emu *Emulator) Word() microcode.Word {
	return emu.Rom.Wire(emu.Flags, emu.Opcode(), emu.Step).Decode(emu.Mask)
}

// alu returns the sum or difference of A and B, and the carry out.
// Subtraction adds the two's complement of B.
func (emu *Emulator) alu(subtract bool) (result uint8, carry bool) {
	b := uint16(emu.B)
	if subtract {
		b = uint16(^emu.B) + 1
	}
	sum := uint16(emu.A) + b
	return uint8(sum), sum > 0xff
}

// Tick performs a single clock cycle.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Halted {
		done = true
		return
	}

	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: emu.Pc, Ir: emu.Ir, Step: int(emu.Step), Err: err}
		}
	}()

	word := emu.Word()
	result, carry := emu.alu(word.Has(microcode.SIG_SU))

	// Bus drivers.
	drivers := [](struct {
		signal microcode.Signal
		value  uint8
	}){
		{microcode.SIG_CO, emu.Pc},
		{microcode.SIG_RO, emu.Ram[emu.Mar]},
		{microcode.SIG_IO, emu.Ir & 0x0f},
		{microcode.SIG_AO, emu.A},
		{microcode.SIG_EO, result},
	}

	var bus uint8
	driven := 0
	for _, driver := range drivers {
		if word.Has(driver.signal) {
			bus = driver.value
			driven++
		}
	}
	if driven > 1 {
		err = fmt.Errorf("%w: %v", ErrBusContention, word)
		return
	}
	emu.Bus = bus

	if emu.Verbose {
		log.Printf("emulator: %02x %v %v %d: %v bus=%02x", emu.Pc, emu.Flags, emu.Opcode(), int(emu.Step), word, bus)
	}

	// Register latches, all on the same clock edge.
	if word.Has(microcode.SIG_RI) {
		emu.Ram[emu.Mar] = bus
	}
	if word.Has(microcode.SIG_MI) {
		emu.Mar = bus
	}
	if word.Has(microcode.SIG_II) {
		emu.Ir = bus
	}
	if word.Has(microcode.SIG_AI) {
		emu.A = bus
	}
	if word.Has(microcode.SIG_BI) {
		emu.B = bus
	}
	if word.Has(microcode.SIG_OI) {
		emu.Out = bus
		emu.Output = append(emu.Output, bus)
	}
	if word.Has(microcode.SIG_FI) {
		emu.Flags = microcode.MakeFlags(result == 0, carry)
	}
	switch {
	case word.Has(microcode.SIG_J):
		emu.Pc = bus
	case word.Has(microcode.SIG_CE):
		emu.Pc++
	}

	emu.Step = (emu.Step + 1) % microcode.STEP_COUNT
	emu.Ticks++

	if word.Has(microcode.SIG_HLT) {
		emu.Halted = true
		done = true
	}

	return
}

// Run ticks until the clock halts, or limit ticks have elapsed.
func (emu *Emulator) Run(limit int) (err error) {
	for n := 0; n < limit; n++ {
		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	err = &ErrRuntime{Pc: emu.Pc, Ir: emu.Ir, Step: int(emu.Step), Err: ErrTickLimit}
	return
}

// String returns the register state.
func (emu *Emulator) String() string {
	return fmt.Sprintf("pc:%02x mar:%02x ir:%02x a:%02x b:%02x out:%02x flags:%v step:%d",
		emu.Pc, emu.Mar, emu.Ir, emu.A, emu.B, emu.Out, emu.Flags, int(emu.Step))
}
