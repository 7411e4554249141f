package cc0

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func scanValue(src string) (int32, error) {
	toks, err := Tokenize(strings.NewReader(src))
	if err != nil {
		return 0, err
	}
	if len(toks) != 1 || toks[0].Type != INTEGER {
		return 0, fmt.Errorf("unexpected tokens %v", toks)
	}
	return toks[0].Value, nil
}

func TestProperty_IntegerLiterals(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decimal and hexadecimal spellings scan to the same value", prop.ForAll(
		func(n int32, upper bool, zeros int) bool {
			hex := strings.Repeat("0", zeros) + strconv.FormatInt(int64(n), 16)
			if upper {
				hex = "0X" + strings.ToUpper(hex)
			} else {
				hex = "0x" + hex
			}
			dec, err1 := scanValue(strconv.FormatInt(int64(n), 10))
			hexValue, err2 := scanValue(hex)
			return err1 == nil && err2 == nil && dec == n && hexValue == n
		},
		gen.Int32Range(0, math.MaxInt32),
		gen.Bool(),
		gen.IntRange(0, 6),
	))

	properties.Property("literals above the int32 range overflow", prop.ForAll(
		func(n int64) bool {
			for _, src := range []string{strconv.FormatInt(n, 10), "0x" + strconv.FormatInt(n, 16)} {
				_, err := scanValue(src)
				if !errors.Is(err, ErrIntegerOverflow) {
					return false
				}
			}
			return true
		},
		gen.Int64Range(math.MaxInt32+1, math.MaxInt64),
	))

	properties.TestingRun(t)
}

func TestProperty_ArithmeticCode(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("operands are pushed in order and operators follow precedence", prop.ForAll(
		func(a, b, c int32) bool {
			src := fmt.Sprintf("void main() { print(%d - %d / -%d); }", a, b, c)
			program, err := Compile(strings.NewReader(src))
			if err != nil {
				return false
			}
			want := []Instruction{
				{Op: IPUSH, X: a},
				{Op: IPUSH, X: b},
				{Op: IPUSH, X: c},
				{Op: INEG},
				{Op: IDIV},
				{Op: ISUB},
				{Op: IPRINT},
				{Op: PRINTL},
				{Op: RET},
			}
			return reflect.DeepEqual(want, program.Bodies[0])
		},
		gen.Int32Range(0, math.MaxInt32),
		gen.Int32Range(0, math.MaxInt32),
		gen.Int32Range(0, math.MaxInt32),
	))

	properties.TestingRun(t)
}

func TestProperty_ModuleRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("reading a written module gives the module back", prop.ForAll(
		func(values []int32, locals int) bool {
			var src strings.Builder
			for i, v := range values {
				fmt.Fprintf(&src, "int g%d = %d;\n", i, v)
			}
			src.WriteString("int f(int p) {\n")
			for i := 0; i < locals; i++ {
				fmt.Fprintf(&src, "int l%d = p * %d;\n", i, i)
			}
			src.WriteString("return p;\n}\nvoid main() { print(f(1)); }\n")

			program, err := Compile(strings.NewReader(src.String()))
			if err != nil {
				return false
			}
			var buf bytes.Buffer
			if err := WriteModule(&buf, program); err != nil {
				return false
			}
			module, err := ReadModule(&buf)
			return err == nil && reflect.DeepEqual(NewModule(program), module)
		},
		gen.SliceOf(gen.Int32Range(0, math.MaxInt32)).SuchThat(func(v []int32) bool { return len(v) > 0 }),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

func TestProperty_ScopeTruncation(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("leaving a function scope frees its addresses", prop.ForAll(
		func(globals, locals int) bool {
			s := NewSymbolTable()
			for i := 0; i < globals; i++ {
				s.Declare(fmt.Sprintf("g%d", i), KindInitialized, 0)
			}
			s.DeclareFunction("f", false)
			s.EnterScope()
			for i := 0; i < locals; i++ {
				s.Declare(fmt.Sprintf("l%d", i), KindInitialized, 1)
			}
			if s.Next() != globals+locals {
				return false
			}
			s.LeaveScope()

			_, found := s.Lookup("l0")
			return s.Next() == globals && !found
		},
		gen.IntRange(0, 30),
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}
