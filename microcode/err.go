package microcode

import (
	"errors"

	"github.com/ezrec/ucrom/translate"
)

var f = translate.From

var (
	// Table build errors
	ErrOpcodeUndefined = errors.New(f("opcode undefined"))
	ErrStepOverflow    = errors.New(f("too many steps"))
	ErrOverrideRange   = errors.New(f("override out of range"))

	// Script errors
	ErrSignalUnknown   = errors.New(f("signal unknown"))
	ErrTemplateMissing = errors.New(f("template missing"))
	ErrWordRange       = errors.New(f("word out of range"))
)

// ErrOpcode locates a build error at an opcode row.
type ErrOpcode struct {
	Opcode Opcode
	Err    error
}

func (err *ErrOpcode) Error() string {
	return f("opcode %v: %v", err.Opcode, err.Err)
}

func (err *ErrOpcode) Unwrap() error {
	return err.Err
}

// ErrCell locates a build error at a single table cell.
type ErrCell struct {
	Flags  Flags
	Opcode Opcode
	Step   Step
	Err    error
}

func (err *ErrCell) Error() string {
	return f("cell %v/%v/%d: %v", err.Flags, err.Opcode, int(err.Step), err.Err)
}

func (err *ErrCell) Unwrap() error {
	return err.Err
}

// ErrScript indicates a microcode script value that could not be used.
type ErrScript struct {
	Name string
	Err  error
}

func (err *ErrScript) Error() string {
	return f("script %v: %v", err.Name, err.Err)
}

func (err *ErrScript) Unwrap() error {
	return err.Err
}
