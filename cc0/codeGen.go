package cc0

import "fmt"

// CodeGenerator appends instructions to the streams of a program and
// backpatches jump targets once they are known.
type CodeGenerator struct {
	program *Program
}

// NewCodeGenerator returns a new instance of CodeGenerator.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{program: &Program{}}
}

// Emit appends an instruction to the stream of ctx and returns its offset.
// Operands fill X then Y.
func (c *CodeGenerator) Emit(ctx Context, op Opcode, operands ...int32) int {
	in := Instruction{Op: op}
	if len(operands) > 0 {
		in.X = operands[0]
	}
	if len(operands) > 1 {
		in.Y = operands[1]
	}

	stream := c.program.stream(ctx)
	*stream = append(*stream, in)
	return len(*stream) - 1
}

// Offset returns the offset the next instruction in ctx will get.
func (c *CodeGenerator) Offset(ctx Context) int {
	return len(*c.program.stream(ctx))
}

// Patch sets the target of the jump at offset.
func (c *CodeGenerator) Patch(ctx Context, offset, target int) {
	stream := *c.program.stream(ctx)
	if offset < 0 || offset >= len(stream) || stream[offset].Op.Operand() != ShortOperand {
		panic(fmt.Sprintf("cc0: no jump to patch at offset %d", offset))
	}
	stream[offset].X = int32(target)
}

// BeginFunction opens the instruction list of the next function.
func (c *CodeGenerator) BeginFunction() {
	c.program.Bodies = append(c.program.Bodies, nil)
}

// CodegenAddress emits the loada that addresses v from code running in ctx.
func (c *CodeGenerator) CodegenAddress(ctx Context, symbols *SymbolTable, v Variable) {
	level, offset := symbols.Resolve(v, ctx)
	c.Emit(ctx, LOADA, int32(level), int32(offset))
}

// CodegenPrintSeparator emits the space printed between items of a print list.
func (c *CodeGenerator) CodegenPrintSeparator(ctx Context) {
	c.Emit(ctx, BIPUSH, ' ')
	c.Emit(ctx, CPRINT)
}

// CodegenReturn emits the return matching the function's declared type.
func (c *CodeGenerator) CodegenReturn(ctx Context, fn Function) {
	if fn.Returns {
		c.Emit(ctx, IRET)
	} else {
		c.Emit(ctx, RET)
	}
}

// Program returns the generated program with its function table.
func (c *CodeGenerator) Program(functions []Function) *Program {
	c.program.Functions = functions
	return c.program
}
