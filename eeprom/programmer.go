// Package eeprom burns bytes into a parallel EEPROM whose address is
// latched through a 16-bit serial-in shift register.
//
// The programmer drives four control lines (shift data, shift clock, shift
// latch and write enable) and eight data lines. A write shifts the address
// in MSB first, latches it, pulses write enable with the byte on the data
// lines, then waits out the device's internal write cycle.
package eeprom

import (
	"log"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	ADDRESS_BITS = 16   // Width of the address shift register.
	DATA_BITS    = 8    // Width of the data bus.
	CAPACITY     = 8192 // 28C64 size in bytes.

	CLOCK_EDGE  = time.Microsecond // Shift clock and latch settle time.
	WRITE_CYCLE = time.Millisecond // Device write cycle.
)

// Line is a single digital output.
type Line interface {
	Out(level gpio.Level) error
}

// Pins are the lines wired to the shift register and the device.
type Pins struct {
	ShiftData   Line
	ShiftClock  Line
	ShiftLatch  Line
	WriteEnable Line
	Data        [DATA_BITS]Line // D0 first.
}

// Timing holds the fixed delays of a write.
type Timing struct {
	ClockEdge  time.Duration
	WriteCycle time.Duration
}

// Programmer writes single bytes to the device. It implements
// rom.ByteWriter. Each write is a critical section: the address latching
// sequence of one write is never interleaved with another.
type Programmer struct {
	Verbose  bool                // If set, logs every byte written.
	Pins     Pins                // Lines to drive.
	Timing   Timing              // Delays between edges.
	Capacity int                 // Device size in bytes.
	Sleep    func(time.Duration) // Delay function; nil uses time.Sleep.

	mu     sync.Mutex
	writes int
}

// NewProgrammer creates a programmer for a 28C64 on pins.
func NewProgrammer(pins Pins) (pg *Programmer) {
	pg = &Programmer{
		Pins: pins,
		Timing: Timing{
			ClockEdge:  CLOCK_EDGE,
			WriteCycle: WRITE_CYCLE,
		},
		Capacity: CAPACITY,
	}

	return
}

// Init drives the lines to their idle state, write enable deasserted.
func (pg *Programmer) Init() (err error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	idle := [](struct {
		name  string
		line  Line
		level gpio.Level
	}){
		{"write_enable", pg.Pins.WriteEnable, gpio.High},
		{"shift_latch", pg.Pins.ShiftLatch, gpio.High},
		{"shift_clock", pg.Pins.ShiftClock, gpio.Low},
		{"shift_data", pg.Pins.ShiftData, gpio.Low},
	}
	for _, entry := range idle {
		err = pg.out(entry.name, entry.line, entry.level)
		if err != nil {
			return
		}
	}

	return
}

// Writes returns the number of bytes written.
func (pg *Programmer) Writes() int {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	return pg.writes
}

// WriteByteAt writes value at address, returning once the device's write
// cycle has elapsed. The byte is not read back.
func (pg *Programmer) WriteByteAt(address uint16, value byte) (err error) {
	if int(address) >= pg.Capacity {
		err = ErrAddressRange
		return
	}

	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.Verbose {
		log.Printf("eeprom: %04x = %02x", address, value)
	}

	err = pg.setAddress(address)
	if err != nil {
		return
	}

	err = pg.out("write_enable", pg.Pins.WriteEnable, gpio.Low)
	if err != nil {
		return
	}
	for n, data := range pg.Pins.Data {
		err = pg.out(dataName(n), data, value&(1<<n) != 0)
		if err != nil {
			return
		}
	}
	err = pg.out("write_enable", pg.Pins.WriteEnable, gpio.High)
	if err != nil {
		return
	}
	pg.sleep(pg.Timing.WriteCycle)

	pg.writes++
	return
}

// setAddress shifts the address in MSB first and latches it.
func (pg *Programmer) setAddress(address uint16) (err error) {
	err = pg.out("shift_latch", pg.Pins.ShiftLatch, gpio.Low)
	if err != nil {
		return
	}

	for n := ADDRESS_BITS - 1; n >= 0; n-- {
		err = pg.out("shift_data", pg.Pins.ShiftData, (address>>n)&1 != 0)
		if err != nil {
			return
		}
		err = pg.out("shift_clock", pg.Pins.ShiftClock, gpio.High)
		if err != nil {
			return
		}
		pg.sleep(pg.Timing.ClockEdge)
		err = pg.out("shift_clock", pg.Pins.ShiftClock, gpio.Low)
		if err != nil {
			return
		}
		pg.sleep(pg.Timing.ClockEdge)
	}

	err = pg.out("shift_latch", pg.Pins.ShiftLatch, gpio.High)
	if err != nil {
		return
	}
	pg.sleep(pg.Timing.ClockEdge)

	return
}

func (pg *Programmer) out(name string, line Line, level gpio.Level) (err error) {
	if line == nil {
		err = &ErrLine{Line: name, Err: ErrPinMissing}
		return
	}

	err = line.Out(level)
	if err != nil {
		err = &ErrLine{Line: name, Err: err}
	}
	return
}

func (pg *Programmer) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if pg.Sleep != nil {
		pg.Sleep(d)
		return
	}
	time.Sleep(d)
}

func dataName(n int) string {
	return "d" + strconv.Itoa(n)
}
