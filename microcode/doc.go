// Package microcode synthesises the control store of the 8-bit breadboard CPU.
//
// A Microcode description holds a positive-logic Template, one row of up to
// eight micro-step control words per opcode, plus flag-conditional Overrides
// for the branch instructions. Build expands the description over the four
// flag states into an immutable Table of active-low Wire values, ready to be
// split into bytes and burned into the control EEPROMs.
//
// Descriptions may also be written as Starlark scripts, see LoadScript.
package microcode
