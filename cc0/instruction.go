package cc0

import "fmt"

// Opcode is a stack machine operation. The values are the bytes written to
// binary modules.
type Opcode byte

const (
	NOP    Opcode = 0x00
	BIPUSH Opcode = 0x01
	IPUSH  Opcode = 0x02
	POP    Opcode = 0x04
	POP2   Opcode = 0x05
	POPN   Opcode = 0x06
	DUP    Opcode = 0x07
	DUP2   Opcode = 0x08
	LOADC  Opcode = 0x09
	LOADA  Opcode = 0x0a
	NEW    Opcode = 0x0b
	SNEW   Opcode = 0x0c

	ILOAD   Opcode = 0x10
	DLOAD   Opcode = 0x11
	ALOAD   Opcode = 0x12
	IALOAD  Opcode = 0x18
	DALOAD  Opcode = 0x19
	AALOAD  Opcode = 0x1a
	ISTORE  Opcode = 0x20
	DSTORE  Opcode = 0x21
	ASTORE  Opcode = 0x22
	IASTORE Opcode = 0x28
	DASTORE Opcode = 0x29
	AASTORE Opcode = 0x2a

	IADD Opcode = 0x30
	DADD Opcode = 0x31
	ISUB Opcode = 0x34
	DSUB Opcode = 0x35
	IMUL Opcode = 0x38
	DMUL Opcode = 0x39
	IDIV Opcode = 0x3c
	DDIV Opcode = 0x3d
	INEG Opcode = 0x40
	DNEG Opcode = 0x41
	ICMP Opcode = 0x44
	DCMP Opcode = 0x45

	I2D Opcode = 0x60
	D2I Opcode = 0x61
	I2C Opcode = 0x62

	JMP Opcode = 0x70
	JE  Opcode = 0x71
	JNE Opcode = 0x72
	JL  Opcode = 0x73
	JGE Opcode = 0x74
	JG  Opcode = 0x75
	JLE Opcode = 0x76

	CALL Opcode = 0x80
	RET  Opcode = 0x88
	IRET Opcode = 0x89
	DRET Opcode = 0x8a
	ARET Opcode = 0x8b

	IPRINT Opcode = 0xa0
	DPRINT Opcode = 0xa1
	CPRINT Opcode = 0xa2
	SPRINT Opcode = 0xa3
	PRINTL Opcode = 0xaf
	ISCAN  Opcode = 0xb0
	DSCAN  Opcode = 0xb1
	CSCAN  Opcode = 0xb2
)

// OperandKind describes the operands an opcode carries and their encoded
// widths.
type OperandKind int

const (
	NoOperand   OperandKind = iota
	ByteOperand             // 1 byte
	ShortOperand            // 2 bytes
	WordOperand             // 4 bytes
	AddressOperands         // 2 bytes level, 4 bytes offset
)

type opcodeInfo struct {
	name    string
	operand OperandKind
}

var opcodes = map[Opcode]opcodeInfo{
	NOP:    {"nop", NoOperand},
	BIPUSH: {"bipush", ByteOperand},
	IPUSH:  {"ipush", WordOperand},
	POP:    {"pop", NoOperand},
	POP2:   {"pop2", NoOperand},
	POPN:   {"popn", WordOperand},
	DUP:    {"dup", NoOperand},
	DUP2:   {"dup2", NoOperand},
	LOADC:  {"loadc", ShortOperand},
	LOADA:  {"loada", AddressOperands},
	NEW:    {"new", NoOperand},
	SNEW:   {"snew", WordOperand},

	ILOAD:   {"iload", NoOperand},
	DLOAD:   {"dload", NoOperand},
	ALOAD:   {"aload", NoOperand},
	IALOAD:  {"iaload", NoOperand},
	DALOAD:  {"daload", NoOperand},
	AALOAD:  {"aaload", NoOperand},
	ISTORE:  {"istore", NoOperand},
	DSTORE:  {"dstore", NoOperand},
	ASTORE:  {"astore", NoOperand},
	IASTORE: {"iastore", NoOperand},
	DASTORE: {"dastore", NoOperand},
	AASTORE: {"aastore", NoOperand},

	IADD: {"iadd", NoOperand},
	DADD: {"dadd", NoOperand},
	ISUB: {"isub", NoOperand},
	DSUB: {"dsub", NoOperand},
	IMUL: {"imul", NoOperand},
	DMUL: {"dmul", NoOperand},
	IDIV: {"idiv", NoOperand},
	DDIV: {"ddiv", NoOperand},
	INEG: {"ineg", NoOperand},
	DNEG: {"dneg", NoOperand},
	ICMP: {"icmp", NoOperand},
	DCMP: {"dcmp", NoOperand},

	I2D: {"i2d", NoOperand},
	D2I: {"d2i", NoOperand},
	I2C: {"i2c", NoOperand},

	JMP: {"jmp", ShortOperand},
	JE:  {"je", ShortOperand},
	JNE: {"jne", ShortOperand},
	JL:  {"jl", ShortOperand},
	JGE: {"jge", ShortOperand},
	JG:  {"jg", ShortOperand},
	JLE: {"jle", ShortOperand},

	CALL: {"call", ShortOperand},
	RET:  {"ret", NoOperand},
	IRET: {"iret", NoOperand},
	DRET: {"dret", NoOperand},
	ARET: {"aret", NoOperand},

	IPRINT: {"iprint", NoOperand},
	DPRINT: {"dprint", NoOperand},
	CPRINT: {"cprint", NoOperand},
	SPRINT: {"sprint", NoOperand},
	PRINTL: {"printl", NoOperand},
	ISCAN:  {"iscan", NoOperand},
	DSCAN:  {"dscan", NoOperand},
	CSCAN:  {"cscan", NoOperand},
}

// Valid reports whether op is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodes[op]
	return ok
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if info, ok := opcodes[op]; ok {
		return info.name
	}
	return fmt.Sprintf("opcode(%#02x)", byte(op))
}

// Operand returns the operand layout of the opcode.
func (op Opcode) Operand() OperandKind {
	return opcodes[op].operand
}

// Instruction is one stack machine instruction. Only loada uses Y.
type Instruction struct {
	Op Opcode
	X  int32
	Y  int32
}

// String renders the instruction the way listings show it.
func (in Instruction) String() string {
	switch in.Op.Operand() {
	case NoOperand:
		return in.Op.String()
	case AddressOperands:
		return fmt.Sprintf("%s %d, %d", in.Op, in.X, in.Y)
	default:
		return fmt.Sprintf("%s %d", in.Op, in.X)
	}
}

// Program is the output of a compilation: the global start code, the
// function table and one instruction list per function.
type Program struct {
	Start     []Instruction
	Functions []Function
	Bodies    [][]Instruction
}

// stream returns the instruction list code in ctx is emitted into.
func (p *Program) stream(ctx Context) *[]Instruction {
	if index, ok := ctx.Function(); ok {
		return &p.Bodies[index]
	}
	return &p.Start
}
