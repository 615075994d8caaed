package microcode

import (
	"github.com/ezrec/ucrom/internal"
)

// Instruction is one template row: the control words of its micro-steps.
// Steps past the end of the row assert nothing.
type Instruction struct {
	Name  string
	Steps []Word
}

// Step returns the control word of micro-step n.
func (ins *Instruction) Step(n Step) Word {
	if int(n) < len(ins.Steps) {
		return ins.Steps[n]
	}
	return 0
}

// Override replaces one templated cell for a single flag state.
type Override struct {
	Flags  Flags
	Opcode Opcode
	Step   Step
	Word   Word
}

// Microcode is a complete control store description.
type Microcode struct {
	Mask      Wire                       // Polarity mask of the control lines.
	Template  [OPCODE_COUNT]*Instruction // Flag independent rows; nil is unset.
	Overrides []Override                 // Applied in order after the template.
}

// Define sets the template row of an opcode.
func (mc *Microcode) Define(op Opcode, name string, steps ...Word) {
	mc.Template[op] = &Instruction{Name: name, Steps: steps}
}

// Branch returns the overrides making op take the branch sequence words,
// starting at micro-step first, in every flag state where cond holds.
// Flag states are visited in ascending order.
func Branch(op Opcode, cond Cond, first Step, words ...Word) (overrides []Override) {
	for flags := range internal.Range(Flags(FLAGS_COUNT)) {
		if !cond.Holds(flags) {
			continue
		}
		for n, word := range words {
			overrides = append(overrides, Override{
				Flags:  flags,
				Opcode: op,
				Step:   first + Step(n),
				Word:   word,
			})
		}
	}

	return
}

// DefaultMicrocode returns the control store of the stock machine.
//
// Every instruction starts with the two fetch steps. Instructions taking an
// operand read it from the byte following the opcode, so the program counter
// is advanced past it. JC and JZ skip their operand unless overridden by the
// branch sequence, which loads the operand into the program counter and ends
// with an empty step.
func DefaultMicrocode() (mc *Microcode) {
	mc = &Microcode{
		Mask: ACTIVE_LOW_MASK,
	}

	fetch := []Word{
		Of(SIG_MI, SIG_CO),
		Of(SIG_RO, SIG_II, SIG_CE),
	}
	operand := []Word{
		Of(SIG_MI, SIG_CO),
		Of(SIG_RO, SIG_MI, SIG_CE),
	}

	seq := func(parts ...[]Word) (steps []Word) {
		for _, part := range parts {
			steps = append(steps, part...)
		}
		return
	}

	for op := range internal.Range(Opcode(OPCODE_COUNT)) {
		mc.Define(op, op.String(), fetch...)
	}

	mc.Define(OP_LDA, "LDA", seq(fetch, operand, []Word{
		Of(SIG_RO, SIG_AI),
	})...)
	mc.Define(OP_ADD, "ADD", seq(fetch, operand, []Word{
		Of(SIG_RO, SIG_BI),
		Of(SIG_EO, SIG_AI, SIG_FI),
	})...)
	mc.Define(OP_SUB, "SUB", seq(fetch, operand, []Word{
		Of(SIG_RO, SIG_BI),
		Of(SIG_EO, SIG_AI, SIG_SU, SIG_FI),
	})...)
	mc.Define(OP_STA, "STA", seq(fetch, operand, []Word{
		Of(SIG_AO, SIG_RI),
	})...)
	mc.Define(OP_LDI, "LDI", seq(fetch, []Word{
		Of(SIG_MI, SIG_CO),
		Of(SIG_RO, SIG_AI, SIG_CE),
	})...)
	mc.Define(OP_JMP, "JMP", seq(fetch, []Word{
		Of(SIG_MI, SIG_CO),
		Of(SIG_RO, SIG_J),
	})...)
	mc.Define(OP_JC, "JC", seq(fetch, []Word{
		Of(SIG_CE),
	})...)
	mc.Define(OP_JZ, "JZ", seq(fetch, []Word{
		Of(SIG_CE),
	})...)
	mc.Define(OP_OUT, "OUT", seq(fetch, []Word{
		Of(SIG_AO, SIG_OI),
	})...)
	mc.Define(OP_HLT, "HLT", seq(fetch, []Word{
		Of(SIG_HLT),
	})...)

	mc.Overrides = append(mc.Overrides, Branch(OP_JC, COND_CARRY, 2, JumpSequence()...)...)
	mc.Overrides = append(mc.Overrides, Branch(OP_JZ, COND_ZERO, 2, JumpSequence()...)...)

	return
}

// JumpSequence is the taken-branch tail of JC and JZ, from micro-step 2.
func JumpSequence() []Word {
	return []Word{
		Of(SIG_MI, SIG_CO),
		Of(SIG_RO, SIG_J),
		0,
	}
}
