package microcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Deterministic(t *testing.T) {
	assert := assert.New(t)

	a, err := Build(DefaultMicrocode())
	assert.NoError(err)
	b, err := Build(DefaultMicrocode())
	assert.NoError(err)

	assert.Equal(a, b)
	assert.NotSame(a, b)
}

func TestBuild_DefaultLaw(t *testing.T) {
	assert := assert.New(t)

	mc := DefaultMicrocode()
	table := MustBuild(mc)

	assert.Equal(ACTIVE_LOW_MASK, table.Mask())

	for flags := range Flags(FLAGS_COUNT) {
		for op := range Opcode(OPCODE_COUNT) {
			if op == OP_JC || op == OP_JZ {
				continue
			}
			for step := range Step(STEP_COUNT) {
				expect := Wire(mc.Template[op].Step(step)) ^ ACTIVE_LOW_MASK
				assert.Equal(expect, table.Wire(flags, op, step), "%v/%v/%d", flags, op, step)
			}
		}
	}
}

func TestBuild_OverrideLaw(t *testing.T) {
	assert := assert.New(t)

	table := DefaultTable()

	miCo := Wire(Of(SIG_MI, SIG_CO)) ^ ACTIVE_LOW_MASK
	roJ := Wire(Of(SIG_RO, SIG_J)) ^ ACTIVE_LOW_MASK
	none := Wire(0) ^ ACTIVE_LOW_MASK
	skip := Wire(Of(SIG_CE)) ^ ACTIVE_LOW_MASK

	tests := [](struct {
		name  string
		flags Flags
		op    Opcode
		taken bool
	}){
		{"jc_z0c0", FLAGS_Z0C0, OP_JC, false},
		{"jc_z0c1", FLAGS_Z0C1, OP_JC, true},
		{"jc_z1c0", FLAGS_Z1C0, OP_JC, false},
		{"jc_z1c1", FLAGS_Z1C1, OP_JC, true},
		{"jz_z0c0", FLAGS_Z0C0, OP_JZ, false},
		{"jz_z0c1", FLAGS_Z0C1, OP_JZ, false},
		{"jz_z1c0", FLAGS_Z1C0, OP_JZ, true},
		{"jz_z1c1", FLAGS_Z1C1, OP_JZ, true},
	}

	for _, entry := range tests {
		if entry.taken {
			assert.Equal(miCo, table.Wire(entry.flags, entry.op, 2), entry.name)
			assert.Equal(roJ, table.Wire(entry.flags, entry.op, 3), entry.name)
			assert.Equal(none, table.Wire(entry.flags, entry.op, 4), entry.name)
		} else {
			assert.Equal(skip, table.Wire(entry.flags, entry.op, 2), entry.name)
			assert.Equal(none, table.Wire(entry.flags, entry.op, 3), entry.name)
			assert.Equal(none, table.Wire(entry.flags, entry.op, 4), entry.name)
		}

		// The fetch steps never depend on the flags.
		assert.Equal(miCo, table.Wire(entry.flags, entry.op, 0), entry.name)
		assert.Equal(Of(SIG_RO, SIG_II, SIG_CE), table.Word(entry.flags, entry.op, 1), entry.name)
	}

	assert.Equal(roJ, table.Wire(FLAGS_Z1C0, OP_JZ, 3))
	assert.Equal(Of(SIG_MI, SIG_CO), table.Word(FLAGS_Z0C1, OP_JC, 2))
}

func TestBuild_Coverage(t *testing.T) {
	assert := assert.New(t)

	table := DefaultTable()

	// Every cell carries at least the fetch, or is an explicit empty step.
	cells := 0
	for flags := range Flags(FLAGS_COUNT) {
		for op := range Opcode(OPCODE_COUNT) {
			for step := range Step(STEP_COUNT) {
				word := table.Word(flags, op, step)
				if step < 2 {
					assert.NotZero(word.Len())
				}
				cells++
			}
		}
	}
	assert.Equal(FLAGS_COUNT*OPCODE_COUNT*STEP_COUNT, cells)
}

func TestBuild_Undefined(t *testing.T) {
	assert := assert.New(t)

	mc := DefaultMicrocode()
	mc.Template[OP_OUT] = nil

	table, err := Build(mc)
	assert.Nil(table)
	assert.ErrorIs(err, ErrOpcodeUndefined)

	var eo *ErrOpcode
	assert.True(errors.As(err, &eo))
	assert.Equal(OP_OUT, eo.Opcode)

	assert.Panics(func() { MustBuild(mc) })
}

func TestBuild_StepOverflow(t *testing.T) {
	assert := assert.New(t)

	mc := DefaultMicrocode()
	mc.Define(OP_NOP, "NOP", make([]Word, STEP_COUNT+1)...)

	_, err := Build(mc)
	assert.ErrorIs(err, ErrStepOverflow)
}

func TestBuild_OverrideRange(t *testing.T) {
	assert := assert.New(t)

	tests := []Override{
		{Flags: FLAGS_COUNT, Opcode: OP_JC, Step: 2},
		{Flags: FLAGS_Z0C0, Opcode: OPCODE_COUNT, Step: 2},
		{Flags: FLAGS_Z0C0, Opcode: OP_JC, Step: STEP_COUNT},
	}

	for _, ov := range tests {
		mc := DefaultMicrocode()
		mc.Overrides = append(mc.Overrides, ov)

		_, err := Build(mc)
		assert.ErrorIs(err, ErrOverrideRange)

		var ec *ErrCell
		assert.True(errors.As(err, &ec))
		assert.Equal(ov.Step, ec.Step)
	}
}

func TestBuild_LastOverrideWins(t *testing.T) {
	assert := assert.New(t)

	mc := DefaultMicrocode()
	mc.Overrides = append(mc.Overrides,
		Override{Flags: FLAGS_Z1C1, Opcode: OP_JZ, Step: 4, Word: Of(SIG_OI)},
		Override{Flags: FLAGS_Z1C1, Opcode: OP_JZ, Step: 4, Word: Of(SIG_HLT)},
	)

	table := MustBuild(mc)
	assert.Equal(Of(SIG_HLT), table.Word(FLAGS_Z1C1, OP_JZ, 4))

	// Other flag states keep the templated word.
	assert.Equal(Word(0), table.Word(FLAGS_Z1C0, OP_JZ, 4))
}

func TestBuild_Mask(t *testing.T) {
	assert := assert.New(t)

	mc := DefaultMicrocode()
	mc.Mask = 0

	table := MustBuild(mc)
	assert.Equal(Wire(Of(SIG_MI, SIG_CO)), table.Wire(FLAGS_Z0C0, OP_NOP, 0))
	assert.Equal(Of(SIG_MI, SIG_CO), table.Word(FLAGS_Z0C0, OP_NOP, 0))
}

func TestBranch(t *testing.T) {
	assert := assert.New(t)

	overrides := Branch(OP_JC, COND_CARRY, 2, Of(SIG_MI, SIG_CO), Of(SIG_RO, SIG_J))

	assert.Equal([]Override{
		{Flags: FLAGS_Z0C1, Opcode: OP_JC, Step: 2, Word: Of(SIG_MI, SIG_CO)},
		{Flags: FLAGS_Z0C1, Opcode: OP_JC, Step: 3, Word: Of(SIG_RO, SIG_J)},
		{Flags: FLAGS_Z1C1, Opcode: OP_JC, Step: 2, Word: Of(SIG_MI, SIG_CO)},
		{Flags: FLAGS_Z1C1, Opcode: OP_JC, Step: 3, Word: Of(SIG_RO, SIG_J)},
	}, overrides)

	overrides = Branch(OP_JZ, COND_ZERO, 5, 0)
	assert.Len(overrides, 2)
	assert.Equal(FLAGS_Z1C0, overrides[0].Flags)
	assert.Equal(FLAGS_Z1C1, overrides[1].Flags)
}
