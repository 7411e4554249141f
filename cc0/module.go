package cc0

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

const (
	Magic   uint32 = 0x43303A29
	Version uint32 = 1
)

// StringConstant is the only constant type C0 modules contain.
const StringConstant byte = 0

// Constant is an entry of the module's constant pool.
type Constant struct {
	Type  byte
	Value string
}

// FunctionRecord describes one function of a module.
type FunctionRecord struct {
	NameIndex uint16
	Params    uint16
	Level     uint16
	Body      []Instruction
}

// Module is the loadable form of a program: the function names become the
// constant pool and every function refers to its name by index.
type Module struct {
	Constants []Constant
	Start     []Instruction
	Functions []FunctionRecord
}

// NewModule lays out a compiled program as a module.
func NewModule(p *Program) *Module {
	m := &Module{Start: p.Start}
	for i, fn := range p.Functions {
		m.Constants = append(m.Constants, Constant{Type: StringConstant, Value: fn.Name})
		m.Functions = append(m.Functions, FunctionRecord{
			NameIndex: uint16(i),
			Params:    uint16(fn.Params),
			Level:     uint16(fn.Level),
			Body:      p.Bodies[i],
		})
	}
	return m
}

// WriteModule writes the binary module of p.
func WriteModule(w io.Writer, p *Program) error {
	_, err := NewModule(p).WriteTo(w)
	return err
}

// WriteTo encodes the module big-endian and writes it to w.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	e := &encoder{}
	e.u32(Magic)
	e.u32(Version)

	e.count(len(m.Constants), "constants")
	for _, c := range m.Constants {
		e.u8(c.Type)
		e.count(len(c.Value), "constant name")
		e.buf.WriteString(c.Value)
	}

	e.count(len(m.Start), "start instructions")
	for _, in := range m.Start {
		e.instruction(in)
	}

	e.count(len(m.Functions), "functions")
	for _, fn := range m.Functions {
		e.u16(fn.NameIndex)
		e.u16(fn.Params)
		e.u16(fn.Level)
		e.count(len(fn.Body), "function instructions")
		for _, in := range fn.Body {
			e.instruction(in)
		}
	}

	if e.err != nil {
		return 0, e.err
	}
	n, err := e.buf.WriteTo(w)
	return n, errors.Wrap(err, "write module")
}

type encoder struct {
	buf bytes.Buffer
	err error
}

func (e *encoder) u8(v byte) {
	e.buf.WriteByte(v)
}

func (e *encoder) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// count writes a u16 length field.
func (e *encoder) count(n int, what string) {
	if n > math.MaxUint16 && e.err == nil {
		e.err = errors.Errorf("too many %s: %d", what, n)
	}
	e.u16(uint16(n))
}

func (e *encoder) instruction(in Instruction) {
	e.u8(byte(in.Op))
	switch in.Op.Operand() {
	case ByteOperand:
		e.u8(byte(in.X))
	case ShortOperand:
		if (in.X < 0 || in.X > math.MaxUint16) && e.err == nil {
			e.err = errors.Errorf("operand of %s out of range: %d", in.Op, in.X)
		}
		e.u16(uint16(in.X))
	case WordOperand:
		e.u32(uint32(in.X))
	case AddressOperands:
		e.u16(uint16(in.X))
		e.u32(uint32(in.Y))
	}
}

// ReadModule decodes a binary module.
func ReadModule(r io.Reader) (*Module, error) {
	d := &decoder{r: bufio.NewReader(r)}

	if magic := d.u32(); d.err == nil && magic != Magic {
		return nil, errors.Errorf("bad magic %#08x", magic)
	}
	if version := d.u32(); d.err == nil && version != Version {
		return nil, errors.Errorf("unsupported version %d", version)
	}

	m := &Module{}
	for n := d.u16(); n > 0 && d.err == nil; n-- {
		c := Constant{Type: d.u8()}
		c.Value = string(d.bytes(int(d.u16())))
		m.Constants = append(m.Constants, c)
	}
	m.Start = d.instructions()
	for n := d.u16(); n > 0 && d.err == nil; n-- {
		fn := FunctionRecord{NameIndex: d.u16(), Params: d.u16(), Level: d.u16()}
		fn.Body = d.instructions()
		m.Functions = append(m.Functions, fn)
	}

	if d.err != nil {
		return nil, errors.Wrap(d.err, "read module")
	}
	return m, nil
}

type decoder struct {
	r   *bufio.Reader
	err error
}

func (d *decoder) bytes(n int) []byte {
	b := make([]byte, n)
	if d.err == nil {
		_, d.err = io.ReadFull(d.r, b)
	}
	return b
}

func (d *decoder) u8() byte {
	return d.bytes(1)[0]
}

func (d *decoder) u16() uint16 {
	return binary.BigEndian.Uint16(d.bytes(2))
}

func (d *decoder) u32() uint32 {
	return binary.BigEndian.Uint32(d.bytes(4))
}

func (d *decoder) instructions() []Instruction {
	var result []Instruction
	for n := d.u16(); n > 0 && d.err == nil; n-- {
		in := Instruction{Op: Opcode(d.u8())}
		if d.err == nil && !in.Op.Valid() {
			d.err = errors.Errorf("unknown opcode %#02x", byte(in.Op))
			break
		}
		switch in.Op.Operand() {
		case ByteOperand:
			in.X = int32(d.u8())
		case ShortOperand:
			in.X = int32(d.u16())
		case WordOperand:
			in.X = int32(d.u32())
		case AddressOperands:
			in.X = int32(d.u16())
			in.Y = int32(d.u32())
		}
		result = append(result, in)
	}
	return result
}
