package microcode

import (
	"iter"
	"log"
	"maps"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/ucrom/internal"
)

// Predefined script constants other than signals and opcodes.
var scriptDefines = map[string]int{
	"FLAGS_Z0C0":      int(FLAGS_Z0C0),
	"FLAGS_Z0C1":      int(FLAGS_Z0C1),
	"FLAGS_Z1C0":      int(FLAGS_Z1C0),
	"FLAGS_Z1C1":      int(FLAGS_Z1C1),
	"COND_CARRY":      int(COND_CARRY),
	"COND_ZERO":       int(COND_ZERO),
	"ACTIVE_LOW_MASK": int(ACTIVE_LOW_MASK),
	"NUM_STEPS":       STEP_COUNT,
}

// Defines returns an iterator over every name predeclared in a microcode
// script: each signal as its positive-logic word, each named opcode as
// OP_<mnemonic>, the flag states, branch conditions and the stock polarity
// mask.
func Defines() iter.Seq2[string, int] {
	signals := func(yield func(string, int) bool) {
		for sig := range Signals() {
			if !yield(sig.String(), int(sig.Word())) {
				return
			}
		}
	}
	opcodes := func(yield func(string, int) bool) {
		for op, name := range opcodeNames {
			if !yield("OP_"+name, int(op)) {
				return
			}
		}
	}

	return internal.Concat2(signals, opcodes, maps.All(scriptDefines))
}

// Script loads microcode descriptions written in Starlark.
//
// A script assigns the global 'template', a dict of opcode to a list of at
// most NUM_STEPS words. It may assign 'overrides', a list of
// (flags, opcode, step, word) tuples, which the predeclared
// branch(opcode, cond, first_step, *words) helper produces, and 'mask'.
type Script struct {
	Verbose bool // If set, logs script output and the loaded rows.
}

// Load executes a script. src is passed to Starlark as the file content;
// if nil, filename is read.
func (sc *Script) Load(filename string, src any) (mc *Microcode, err error) {
	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			if sc.Verbose {
				log.Printf("microcode: %v: %v", filename, msg)
			}
		},
	}

	pred := starlark.StringDict{
		"branch": starlark.NewBuiltin("branch", scriptBranch),
	}
	for name, value := range Defines() {
		pred[name] = starlark.MakeInt(value)
	}

	opts := syntax.FileOptions{
		TopLevelControl: true,
		GlobalReassign:  true,
	}
	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, pred)
	if err != nil {
		return
	}

	mc = &Microcode{Mask: ACTIVE_LOW_MASK}

	if value, ok := globals["mask"]; ok {
		var mask uint16
		mask, err = scriptUint16("mask", value)
		if err != nil {
			return
		}
		mc.Mask = Wire(mask)
	}

	err = sc.loadTemplate(mc, globals["template"])
	if err != nil {
		return
	}

	if value, ok := globals["overrides"]; ok {
		mc.Overrides, err = scriptOverrides(value)
		if err != nil {
			return
		}
	}

	return
}

// LoadScript executes a microcode script file.
func LoadScript(filename string) (mc *Microcode, err error) {
	sc := &Script{}
	return sc.Load(filename, nil)
}

func (sc *Script) loadTemplate(mc *Microcode, value starlark.Value) (err error) {
	dict, ok := value.(*starlark.Dict)
	if !ok {
		err = &ErrScript{Name: "template", Err: ErrTemplateMissing}
		return
	}

	for _, item := range dict.Items() {
		var op uint16
		op, err = scriptUint16("template key", item[0])
		if err != nil {
			return
		}
		if op >= OPCODE_COUNT {
			err = &ErrScript{Name: item[0].String(), Err: ErrWordRange}
			return
		}

		var steps []Word
		steps, err = scriptWords(Opcode(op).String(), item[1])
		if err != nil {
			return
		}

		mc.Define(Opcode(op), Opcode(op).String(), steps...)
		if sc.Verbose {
			log.Printf("microcode: %v %v", Opcode(op), steps)
		}
	}

	return
}

func scriptOverrides(value starlark.Value) (overrides []Override, err error) {
	list, ok := value.(starlark.Indexable)
	if !ok {
		err = &ErrScript{Name: "overrides", Err: ErrWordRange}
		return
	}

	for n := range list.Len() {
		entry, ok := list.Index(n).(starlark.Indexable)
		if !ok || entry.Len() != 4 {
			err = &ErrScript{Name: list.Index(n).String(), Err: ErrWordRange}
			return
		}
		var field [4]uint16
		for i := range field {
			field[i], err = scriptUint16(entry.String(), entry.Index(i))
			if err != nil {
				return
			}
		}
		overrides = append(overrides, Override{
			Flags:  Flags(field[0]),
			Opcode: Opcode(field[1]),
			Step:   Step(field[2]),
			Word:   Word(field[3]),
		})
	}

	return
}

// scriptBranch is the script side of Branch.
func scriptBranch(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	if len(kwargs) != 0 || len(args) < 3 {
		err = &ErrScript{Name: fn.Name(), Err: ErrWordRange}
		return
	}

	var op, cond, first uint16
	for n, ptr := range []*uint16{&op, &cond, &first} {
		*ptr, err = scriptUint16(fn.Name(), args[n])
		if err != nil {
			return
		}
	}

	if Cond(cond) != COND_CARRY && Cond(cond) != COND_ZERO {
		err = &ErrScript{Name: fn.Name(), Err: ErrWordRange}
		return
	}

	words, err := scriptWords(fn.Name(), args[3:])
	if err != nil {
		return
	}

	var items []starlark.Value
	for _, ov := range Branch(Opcode(op), Cond(cond), Step(first), words...) {
		items = append(items, starlark.Tuple{
			starlark.MakeInt(int(ov.Flags)),
			starlark.MakeInt(int(ov.Opcode)),
			starlark.MakeInt(int(ov.Step)),
			starlark.MakeInt(int(ov.Word)),
		})
	}

	value = starlark.NewList(items)
	return
}

func scriptWords(name string, value starlark.Value) (words []Word, err error) {
	list, ok := value.(starlark.Indexable)
	if !ok {
		err = &ErrScript{Name: name, Err: ErrWordRange}
		return
	}

	for n := range list.Len() {
		var word uint16
		word, err = scriptUint16(name, list.Index(n))
		if err != nil {
			return
		}
		words = append(words, Word(word))
	}

	return
}

func scriptUint16(name string, value starlark.Value) (v uint16, err error) {
	i, err := starlark.AsInt32(value)
	if err != nil || i < 0 || i > 0xffff {
		err = &ErrScript{Name: name, Err: ErrWordRange}
		return
	}

	v = uint16(i)
	return
}
