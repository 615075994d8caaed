package microcode

import (
	"github.com/ezrec/ucrom/internal"
)

// Table is the control store expanded over every flag state, in wire
// polarity. A Table is immutable once built.
type Table struct {
	mask Wire
	wire [FLAGS_COUNT][OPCODE_COUNT][STEP_COUNT]Wire
}

// Build expands a microcode description into a Table.
//
// Every template row must be defined. Each row fills all four flag states
// and all eight steps, so every cell is set before the overrides are
// applied in order, the last one applied to a cell winning.
func Build(mc *Microcode) (table *Table, err error) {
	tb := &Table{mask: mc.Mask}

	for op, ins := range mc.Template {
		if ins == nil {
			err = &ErrOpcode{Opcode: Opcode(op), Err: ErrOpcodeUndefined}
			return
		}
		if len(ins.Steps) > STEP_COUNT {
			err = &ErrOpcode{Opcode: Opcode(op), Err: ErrStepOverflow}
			return
		}
		for flags := range internal.Range(Flags(FLAGS_COUNT)) {
			for step := range internal.Range(Step(STEP_COUNT)) {
				tb.wire[flags][op][step] = ins.Step(step).Encode(mc.Mask)
			}
		}
	}

	for _, ov := range mc.Overrides {
		if ov.Flags >= FLAGS_COUNT || ov.Opcode >= OPCODE_COUNT || ov.Step >= STEP_COUNT {
			err = &ErrCell{Flags: ov.Flags, Opcode: ov.Opcode, Step: ov.Step, Err: ErrOverrideRange}
			return
		}
		tb.wire[ov.Flags][ov.Opcode][ov.Step] = ov.Word.Encode(mc.Mask)
	}

	table = tb
	return
}

// MustBuild is Build for descriptions known to be complete.
func MustBuild(mc *Microcode) *Table {
	table, err := Build(mc)
	if err != nil {
		panic(err)
	}
	return table
}

// DefaultTable builds the control store of the stock machine.
func DefaultTable() *Table {
	return MustBuild(DefaultMicrocode())
}

// Mask returns the polarity mask the table was encoded with.
func (tb *Table) Mask() Wire {
	return tb.mask
}

// Wire returns the line levels of a cell.
func (tb *Table) Wire(flags Flags, op Opcode, step Step) Wire {
	return tb.wire[flags&(FLAGS_COUNT-1)][op&(OPCODE_COUNT-1)][step&(STEP_COUNT-1)]
}

// Word returns the positive-logic control word of a cell.
func (tb *Table) Word(flags Flags, op Opcode, step Step) Word {
	return tb.Wire(flags, op, step).Decode(tb.mask)
}
