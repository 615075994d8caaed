package microcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScript_Stock(t *testing.T) {
	assert := assert.New(t)

	mc, err := LoadScript("testdata/stock.star")
	assert.NoError(err)
	if err != nil {
		t.FailNow()
	}

	assert.Equal(ACTIVE_LOW_MASK, mc.Mask)
	assert.Equal(DefaultMicrocode().Overrides, mc.Overrides)

	table, err := Build(mc)
	assert.NoError(err)
	assert.Equal(DefaultTable(), table)
}

func TestScript_Inline(t *testing.T) {
	assert := assert.New(t)

	src := `
template = {op: [MI | CO, RO | II | CE] for op in range(NUM_STEPS * 2)}
template[OP_HLT] = template[OP_HLT] + [HLT]
mask = 0
`
	sc := &Script{}
	mc, err := sc.Load("inline.star", src)
	assert.NoError(err)
	if err != nil {
		t.FailNow()
	}

	assert.Equal(Wire(0), mc.Mask)
	assert.Empty(mc.Overrides)
	assert.Equal([]Word{Of(SIG_MI, SIG_CO), Of(SIG_RO, SIG_II, SIG_CE), Of(SIG_HLT)}, mc.Template[OP_HLT].Steps)

	table := MustBuild(mc)
	assert.Equal(Wire(Of(SIG_HLT)), table.Wire(FLAGS_Z1C1, OP_HLT, 2))
}

func TestScript_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		src  string
		err  error
	}){
		{"no_template", "x = 1\n", ErrTemplateMissing},
		{"template_list", "template = [1, 2]\n", ErrTemplateMissing},
		{"opcode_range", "template = {16: [MI]}\n", ErrWordRange},
		{"word_range", "template = {0: [0x10000]}\n", ErrWordRange},
		{"negative", "template = {0: [-1]}\n", ErrWordRange},
		{"override_shape", "template = {}\noverrides = [(0, 1, 2)]\n", ErrWordRange},
		{"mask_range", "template = {}\nmask = 0x1ffff\n", ErrWordRange},
		{"branch_cond", "template = {}\noverrides = branch(OP_JC, 7, 2, MI | CO)\n", ErrWordRange},
		{"branch_args", "template = {}\noverrides = branch(OP_JC, COND_CARRY)\n", ErrWordRange},
	}

	for _, entry := range table {
		sc := &Script{}
		_, err := sc.Load(entry.name+".star", entry.src)
		assert.ErrorIs(err, entry.err, entry.name)
	}
}

func TestScript_SyntaxError(t *testing.T) {
	assert := assert.New(t)

	sc := &Script{}
	_, err := sc.Load("bad.star", "template = {\n")
	assert.Error(err)
}

func TestScript_PartialTemplate(t *testing.T) {
	assert := assert.New(t)

	sc := &Script{}
	mc, err := sc.Load("partial.star", "template = {OP_NOP: [MI | CO]}\n")
	assert.NoError(err)

	_, err = Build(mc)
	assert.ErrorIs(err, ErrOpcodeUndefined)
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	defines := map[string]int{}
	for name, value := range Defines() {
		_, dup := defines[name]
		assert.False(dup, name)
		defines[name] = value
	}

	assert.Equal(1<<14, defines["MI"])
	assert.Equal(int(OP_JZ), defines["OP_JZ"])
	assert.Equal(int(FLAGS_Z1C0), defines["FLAGS_Z1C0"])
	assert.Equal(int(ACTIVE_LOW_MASK), defines["ACTIVE_LOW_MASK"])
}
