package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler_Parse(t *testing.T) {
	assert := assert.New(t)

	source := `
; Add two numbers
        .equ TEN 10
start:  LDA a       ; 0x00
        ADD b       ; 0x02
        OUT         ; 0x04
        HLT         ; 0x05
a:      .byte TEN
b:      .byte $(TEN * 2 + start), 0xff
        .org 0x10
end:    JMP start
`

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	assert.NoError(err)

	assert.Equal([]byte{
		0x10, 0x06,
		0x20, 0x07,
		0xe0,
		0xf0,
		10,
		20, 0xff,
		0, 0, 0, 0, 0, 0, 0,
		0x60, 0x00,
	}, prog.Data)

	assert.Equal(map[string]uint8{
		"start": 0x00,
		"a":     0x06,
		"b":     0x07,
		"end":   0x10,
	}, prog.Labels)
	assert.Equal(10, asm.Equate["TEN"])
}

func TestAssembler_ForwardReference(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader("JMP later\nlater: HLT\n"))
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x02, 0xf0}, prog.Data)
}

func TestAssembler_Errors(t *testing.T) {
	table := [](struct {
		name   string
		source string
		lineNo int
		err    error
	}){
		{"opcode", "NOP\nFOO 3\n", 2, ErrOpcodeInvalid},
		{"operand", "LDA\n", 1, ErrOperandMissing},
		{"extra", "OUT 3\n", 1, ErrExtraArgs},
		{"extra_operand", "LDI 1 2\n", 1, ErrExtraArgs},
		{"label", "x: NOP\nx: NOP\n", 2, ErrLabelDuplicate},
		{"equ", ".equ A\n", 1, ErrEquateSyntax},
		{"equ_dup", ".equ A 1\n.equ A 2\n", 2, ErrEquateDuplicate},
		{"range", "LDI 256\n", 1, ErrValueRange},
		{"byte", ".byte\n", 1, ErrOperandMissing},
		{"size", ".org 255\nLDI 1\n", 2, ErrProgramSize},
		{"org_negative", ".org -1\nNOP\n", 1, ErrValueRange},
		{"org_range", "NOP\n.org 0x101\n", 2, ErrValueRange},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			asm := &Assembler{}
			prog, err := asm.Parse(strings.NewReader(entry.source))
			assert.Nil(prog)
			assert.ErrorIs(err, entry.err)

			var es ErrSyntax
			if assert.True(errors.As(err, &es)) {
				assert.Equal(entry.lineNo, es.LineNo)
			}
		})
	}
}

func TestAssembler_Values(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("LDA nowhere\n"))
	var el ErrLabelMissing
	assert.True(errors.As(err, &el))
	assert.Equal(ErrLabelMissing("nowhere"), el)

	_, err = asm.Parse(strings.NewReader("LDA 3x\n"))
	var ev ErrParseValue
	assert.True(errors.As(err, &ev))

	_, err = asm.Parse(strings.NewReader("LDA $(1 +)\n"))
	var ee ErrParseExpression
	assert.True(errors.As(err, &ee))
	assert.Equal(ErrParseExpression("1 +"), ee)
}

func TestSplitWords(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line  string
		words []string
	}){
		{"", nil},
		{"   ; only a comment", nil},
		{"loop: SUB one ; decrement", []string{"loop:", "SUB", "one"}},
		{".byte 1,2, 3", []string{".byte", "1", "2", "3"}},
		{"LDI $(max(1, 2) + 3)", []string{"LDI", "$(max(1, 2) + 3)"}},
	}

	for _, entry := range table {
		assert.Equal(entry.words, splitWords(entry.line), entry.line)
	}
}
