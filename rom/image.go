package rom

import (
	"errors"
	"fmt"
	"io"

	"github.com/ezrec/ucrom/microcode"
)

// HEX_RECORD_SIZE is the data length of each Intel HEX record.
const HEX_RECORD_SIZE = 16

// Image is the control EEPROM content, indexed by Address.
type Image [ADDRESS_COUNT]byte

var _ ByteWriter = (*Image)(nil)

// BuildImage emits a table into memory.
func BuildImage(table *microcode.Table) (img *Image) {
	img = &Image{}

	// An in-memory image cannot fail a write.
	if err := Emit(table, img); err != nil {
		panic(err)
	}

	return
}

// ReadImage reads a raw binary image.
func ReadImage(r io.Reader) (img *Image, err error) {
	img = &Image{}

	_, err = io.ReadFull(r, img[:])
	if err != nil {
		img = nil
		err = errors.Join(ErrImageSize, err)
		return
	}

	var extra [1]byte
	n, _ := r.Read(extra[:])
	if n != 0 {
		img = nil
		err = ErrImageSize
	}

	return
}

// WriteByteAt stores a byte in the image.
func (img *Image) WriteByteAt(address uint16, value byte) (err error) {
	if int(address) >= len(img) {
		err = ErrAddressRange
		return
	}

	img[address] = value
	return
}

// Wire reassembles the control word of a cell from its two bytes.
func (img *Image) Wire(flags microcode.Flags, op microcode.Opcode, step microcode.Step) microcode.Wire {
	hi := img[MakeAddress(flags, BYTE_HIGH, op, step)]
	lo := img[MakeAddress(flags, BYTE_LOW, op, step)]
	return microcode.Wire(hi)<<8 | microcode.Wire(lo)
}

// WriteTo writes the raw binary image.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	count, err := w.Write(img[:])
	n = int64(count)
	return
}

// WriteHex writes the image as Intel HEX data records and an EOF record.
func (img *Image) WriteHex(w io.Writer) (err error) {
	for base := 0; base < len(img); base += HEX_RECORD_SIZE {
		data := img[base:min(base+HEX_RECORD_SIZE, len(img))]
		err = writeHexRecord(w, uint16(base), 0x00, data)
		if err != nil {
			return
		}
	}

	err = writeHexRecord(w, 0, 0x01, nil)
	return
}

func writeHexRecord(w io.Writer, offset uint16, kind byte, data []byte) (err error) {
	sum := byte(len(data)) + byte(offset>>8) + byte(offset) + kind
	line := fmt.Sprintf(":%02X%04X%02X", len(data), offset, kind)
	for _, b := range data {
		sum += b
		line += fmt.Sprintf("%02X", b)
	}
	line += fmt.Sprintf("%02X\n", -sum)

	_, err = io.WriteString(w, line)
	return
}

// Listing writes one line per address: the decoded address fields, the
// byte, and the signals asserted by that half of the control word.
func (img *Image) Listing(w io.Writer, mask microcode.Wire) (err error) {
	for addr := range Addresses() {
		_, sel, _, _ := addr.Decode()
		value := img[addr]

		var wire, half microcode.Wire
		if sel == BYTE_LOW {
			wire, half = microcode.Wire(value), 0x00ff
		} else {
			wire, half = microcode.Wire(value)<<8, 0xff00
		}
		word := wire.Decode(mask) & microcode.Word(half)

		_, err = fmt.Fprintf(w, "%v  %02x  %v\n", addr, value, word)
		if err != nil {
			return
		}
	}

	return
}
