package rom

import (
	"errors"

	"github.com/ezrec/ucrom/translate"
)

var f = translate.From

var (
	ErrAddressRange = errors.New(f("address out of range"))
	ErrImageSize    = errors.New(f("image size"))
)

// ErrWrite locates a failed byte write. The image on the device is
// incomplete; the only recovery is writing the whole image again.
type ErrWrite struct {
	Address Address
	Err     error
}

func (err *ErrWrite) Error() string {
	return f("write %03x: %v", uint16(err.Address), err.Err)
}

func (err *ErrWrite) Unwrap() error {
	return err.Err
}
