package cc0

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteListing(t *testing.T) {
	program := compileSource(t, `int g = 5;
int add(int a, int b) { return a + b; }
void main() { print(add(g, 2)); }`)

	var out strings.Builder
	require.NoError(t, WriteListing(&out, program))
	assert.Equal(t, `.constants:
0  S  "add"
1  S  "main"
.start:
0 ipush 5
.functions:
0  0  2  1
1  1  0  1
.F0:
0 loada 0, 0
1 iload
2 loada 0, 1
3 iload
4 iadd
5 iret
6 iret
.F1:
0 loada 1, 0
1 iload
2 ipush 2
3 call 0
4 iprint
5 printl
6 ret
`, out.String())
}

func TestWriteListing_EmptyStart(t *testing.T) {
	var out strings.Builder
	require.NoError(t, WriteListing(&out, compileSource(t, "void main() {}")))
	assert.Equal(t, ".constants:\n0  S  \"main\"\n.start:\n.functions:\n0  0  0  1\n.F0:\n0 ret\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestWriteListing_WriteError(t *testing.T) {
	err := WriteListing(failingWriter{}, compileSource(t, "void main() {}"))
	assert.EqualError(t, err, "write listing: io: read/write on closed pipe")
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{Instruction{Op: NOP}, "nop"},
		{Instruction{Op: BIPUSH, X: 32}, "bipush 32"},
		{Instruction{Op: IPUSH, X: -7}, "ipush -7"},
		{Instruction{Op: LOADA, X: 1, Y: 3}, "loada 1, 3"},
		{Instruction{Op: JGE, X: 12}, "jge 12"},
		{Instruction{Op: AALOAD}, "aaload"},
		{Instruction{Op: Opcode(0xff)}, "opcode(0xff)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestOpcode_Operand(t *testing.T) {
	assert.Equal(t, NoOperand, ISUB.Operand())
	assert.Equal(t, ByteOperand, BIPUSH.Operand())
	assert.Equal(t, ShortOperand, CALL.Operand())
	assert.Equal(t, WordOperand, SNEW.Operand())
	assert.Equal(t, AddressOperands, LOADA.Operand())
	assert.True(t, CSCAN.Valid())
	assert.False(t, Opcode(0x03).Valid())
}
