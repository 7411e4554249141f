package cc0

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var constantKinds = map[byte]string{
	StringConstant: "S",
}

// WriteListing writes the text listing of p.
func WriteListing(w io.Writer, p *Program) error {
	return NewModule(p).WriteListing(w)
}

// WriteListing writes the module as text: the constant pool, the start code,
// the function table and then each function body.
func (m *Module) WriteListing(w io.Writer) error {
	out := bufio.NewWriter(w)

	fmt.Fprintln(out, ".constants:")
	for i, c := range m.Constants {
		fmt.Fprintf(out, "%d  %s  \"%s\"\n", i, constantKinds[c.Type], c.Value)
	}

	fmt.Fprintln(out, ".start:")
	writeInstructions(out, m.Start)

	fmt.Fprintln(out, ".functions:")
	for i, fn := range m.Functions {
		fmt.Fprintf(out, "%d  %d  %d  %d\n", i, fn.NameIndex, fn.Params, fn.Level)
	}

	for i, fn := range m.Functions {
		fmt.Fprintf(out, ".F%d:\n", i)
		writeInstructions(out, fn.Body)
	}

	return errors.Wrap(out.Flush(), "write listing")
}

func writeInstructions(w io.Writer, instructions []Instruction) {
	for offset, in := range instructions {
		fmt.Fprintf(w, "%d %s\n", offset, in)
	}
}
