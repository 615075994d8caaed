package eeprom

import (
	"errors"

	"github.com/ezrec/ucrom/translate"
)

var f = translate.From

var (
	ErrAddressRange = errors.New(f("address out of range"))
	ErrPinMissing   = errors.New(f("pin missing"))
	ErrConfigKey    = errors.New(f("unknown configuration key"))
)

// ErrLine locates a failure driving or resolving a control line.
type ErrLine struct {
	Line string
	Err  error
}

func (err *ErrLine) Error() string {
	return f("line %v: %v", err.Line, err.Err)
}

func (err *ErrLine) Unwrap() error {
	return err.Err
}
