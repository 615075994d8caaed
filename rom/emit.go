package rom

import (
	"log"

	"github.com/ezrec/ucrom/microcode"
)

// ByteWriter stores one byte at one address of the target device. A call
// is complete when the device has accepted the byte; there is no read-back.
type ByteWriter interface {
	WriteByteAt(address uint16, value byte) error
}

// WriterFunc adapts a function to a ByteWriter.
type WriterFunc func(address uint16, value byte) error

func (fn WriterFunc) WriteByteAt(address uint16, value byte) error {
	return fn(address, value)
}

// Emitter writes a control store table as the control EEPROM image.
type Emitter struct {
	Verbose bool // If set, logs every byte written.
}

// Emit writes every image address once, in ascending order, to w.
//
// Emission cannot be cancelled: a partial image leaves the device
// inconsistent. A write error ends emission and is returned as *ErrWrite;
// it is not retried, and written bytes are not verified.
func (em *Emitter) Emit(table *microcode.Table, w ByteWriter) (err error) {
	for addr := range Addresses() {
		value := Byte(table, addr)
		if em.Verbose {
			log.Printf("rom: %v = %02x", addr, value)
		}
		err = w.WriteByteAt(uint16(addr), value)
		if err != nil {
			err = &ErrWrite{Address: addr, Err: err}
			return
		}
	}

	return
}

// Emit writes the image of table to w, see Emitter.Emit.
func Emit(table *microcode.Table, w ByteWriter) error {
	em := &Emitter{}
	return em.Emit(table, w)
}
