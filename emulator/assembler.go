// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bufio"
	"io"
	"log"
	"maps"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/ucrom/microcode"
)

// operandOpcodes take an operand byte after the opcode byte.
var operandOpcodes = map[microcode.Opcode]bool{
	microcode.OP_LDA: true,
	microcode.OP_ADD: true,
	microcode.OP_SUB: true,
	microcode.OP_STA: true,
	microcode.OP_LDI: true,
	microcode.OP_JMP: true,
	microcode.OP_JC:  true,
	microcode.OP_JZ:  true,
}

// Program is an assembled memory image.
type Program struct {
	Data   []byte           // RAM content from address 0.
	Labels map[string]uint8 // Label addresses.
}

// statement is one assembled line, sized in the first pass and encoded in
// the second.
type statement struct {
	lineNo int
	line   string
	addr   int
	op     microcode.Opcode
	bytes  bool     // .byte directive
	args   []string // Operand words
}

// Assembler is a two pass assembler for the two-byte instruction set.
//
//	; comment
//	label:  LDI 3        ; opcode byte, operand byte
//	        OUT          ; opcode byte
//	        .org 0x20    ; continue at an address
//	        .equ TEN 10  ; named value
//	data:   .byte 1, 2, $(TEN * 3)
//
// Operands are numbers, labels, equates, or $(...) expressions evaluated
// with Starlark over the labels and equates.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Label  map[string]int // Map of labels to addresses.
	Equate map[string]int // Map of equates.
}

// Parse assembles a program.
func (asm *Assembler) Parse(r io.Reader) (prog *Program, err error) {
	asm.Label = map[string]int{}
	asm.Equate = map[string]int{}

	var stmts []statement
	addr := 0
	size := 0

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		var stmt *statement
		stmt, addr, err = asm.parseLine(lineNo, line, addr)
		if err != nil {
			err = ErrSyntax{LineNo: lineNo, Line: line, Err: err}
			return
		}
		if addr > RAM_SIZE {
			err = ErrSyntax{LineNo: lineNo, Line: line, Err: ErrProgramSize}
			return
		}
		size = max(size, addr)
		if stmt != nil {
			stmts = append(stmts, *stmt)
		}
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	prog = &Program{
		Data:   make([]byte, size),
		Labels: map[string]uint8{},
	}
	for name, value := range asm.Label {
		prog.Labels[name] = uint8(value)
	}

	for _, stmt := range stmts {
		err = asm.encode(prog, &stmt)
		if err != nil {
			prog = nil
			err = ErrSyntax{LineNo: stmt.lineNo, Line: stmt.line, Err: err}
			return
		}
	}

	return
}

// parseLine sizes a line, defining its labels and equates.
func (asm *Assembler) parseLine(lineNo int, line string, addr int) (stmt *statement, next int, err error) {
	next = addr

	words := splitWords(line)

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if _, ok := asm.Label[label]; ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = addr
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	switch strings.ToLower(words[0]) {
	case ".equ":
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		if _, ok := asm.Equate[words[1]]; ok {
			err = ErrEquateDuplicate
			return
		}
		var value int
		value, err = asm.valueOf(words[2])
		if err != nil {
			return
		}
		asm.Equate[words[1]] = value
	case ".org":
		if len(words) != 2 {
			err = ErrExtraArgs
			return
		}
		next, err = asm.valueOf(words[1])
		if err == nil && (next < 0 || next > RAM_SIZE) {
			err = ErrValueRange
		}
	case ".byte":
		if len(words) < 2 {
			err = ErrOperandMissing
			return
		}
		stmt = &statement{lineNo: lineNo, line: line, addr: addr, bytes: true, args: words[1:]}
		next = addr + len(stmt.args)
	default:
		op, ok := microcode.ParseOpcode(words[0])
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		stmt = &statement{lineNo: lineNo, line: line, addr: addr, op: op, args: words[1:]}
		next = addr + 1
		if operandOpcodes[op] {
			if len(stmt.args) == 0 {
				err = ErrOperandMissing
				return
			}
			next++
		}
		if len(stmt.args) > next-addr-1 {
			err = ErrExtraArgs
			return
		}
	}

	if asm.Verbose && stmt != nil {
		log.Printf("asm: %02x: %v", addr, words)
	}

	return
}

// encode writes a sized statement into the program.
func (asm *Assembler) encode(prog *Program, stmt *statement) (err error) {
	var data []byte

	if !stmt.bytes {
		data = append(data, byte(stmt.op)<<4)
	}
	for _, arg := range stmt.args {
		var value int
		value, err = asm.valueOf(arg)
		if err != nil {
			return
		}
		if value < -128 || value > 255 {
			err = ErrValueRange
			return
		}
		data = append(data, byte(value))
	}

	copy(prog.Data[stmt.addr:], data)
	return
}

// valueOf returns the value of a number, label, equate or $(...) expression.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		return asm.parenEval(word[2 : len(word)-1])
	}

	if v, ok := asm.Equate[word]; ok {
		return v, nil
	}
	if v, ok := asm.Label[word]; ok {
		return v, nil
	}

	v64, perr := strconv.ParseInt(word, 0, 32)
	if perr != nil {
		if isIdent(word) {
			err = ErrLabelMissing(word)
		} else {
			err = ErrParseValue(word)
		}
		return
	}

	value = int(v64)
	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := &starlark.Thread{}
	opts := syntax.FileOptions{}

	pred := starlark.StringDict{}
	for name, v := range maps.All(asm.Label) {
		pred[name] = starlark.MakeInt(v)
	}
	for name, v := range maps.All(asm.Equate) {
		pred[name] = starlark.MakeInt(v)
	}

	dict, err := starlark.ExecFileOptions(&opts, thread, "expr", "rc = "+expr+"\n", pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}

	rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	value, err = starlark.AsInt32(rc)
	if err != nil {
		err = ErrParseExpression(expr)
	}
	return
}

// splitWords splits a line into words, dropping the comment. Commas
// separate words like spaces, and $(...) expressions are kept whole.
func splitWords(line string) (words []string) {
	if n := strings.IndexByte(line, ';'); n >= 0 {
		line = line[:n]
	}

	var word strings.Builder
	depth := 0
	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	for _, ch := range line {
		switch {
		case ch == '(':
			depth++
			word.WriteRune(ch)
		case ch == ')':
			depth--
			word.WriteRune(ch)
		case depth > 0:
			word.WriteRune(ch)
		case ch == ' ' || ch == '\t' || ch == ',':
			flush()
		default:
			word.WriteRune(ch)
		}
	}
	flush()

	return
}

func isIdent(word string) bool {
	for n, ch := range word {
		switch {
		case ch == '_', ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case n > 0 && ch >= '0' && ch <= '9':
		default:
			return false
		}
	}
	return len(word) > 0
}
