package emulator

import (
	"errors"

	"github.com/ezrec/ucrom/translate"
)

var f = translate.From

var (
	// Runtime errors
	ErrBusContention = errors.New(f("bus contention"))
	ErrTickLimit     = errors.New(f("tick limit"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrExtraArgs       = errors.New(f("excessive arguments"))
	ErrValueRange      = errors.New(f("value out of range"))
	ErrProgramSize     = errors.New(f("program exceeds memory"))
)

// ErrRuntime indicates the machine state at a runtime error.
type ErrRuntime struct {
	Pc   uint8
	Ir   uint8
	Step int
	Err  error
}

func (err *ErrRuntime) Error() string {
	return f("pc %02x ir %02x step %d: %v", err.Pc, err.Ir, err.Step, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or label", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
