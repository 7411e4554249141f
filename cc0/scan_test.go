package cc0

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Tokenize(strings.NewReader(src))
	require.NoError(t, err)
	return toks
}

func tokenTypes(toks []Token) []TokenType {
	var result []TokenType
	for _, tok := range toks {
		result = append(result, tok.Type)
	}
	return result
}

func TestScanner_Scan(t *testing.T) {
	tests := []struct {
		src    string
		want   TokenType
		lexeme string
	}{
		{"", EOF, "EOF"},
		{"   \t\n", EOF, "EOF"},
		{"+", PLUS, "+"},
		{"-", MINUS, "-"},
		{"*", MULTIPLY, "*"},
		{"/", DIVIDE, "/"},
		{"=", ASSIGN, "="},
		{"==", EQUAL, "=="},
		{"!=", NOTEQUAL, "!="},
		{"<", LESS, "<"},
		{"<=", LESSEQUAL, "<="},
		{">", GREATER, ">"},
		{">=", GREATEREQUAL, ">="},
		{";", SEMICOLON, ";"},
		{",", COMMA, ","},
		{"(", LPAREN, "("},
		{")", RPAREN, ")"},
		{"{", LBRACE, "{"},
		{"}", RBRACE, "}"},
		{"const", CONST, "const"},
		{"void", VOID, "void"},
		{"int", INT, "int"},
		{"char", CHAR, "char"},
		{"double", DOUBLE, "double"},
		{"struct", STRUCT, "struct"},
		{"if", IF, "if"},
		{"else", ELSE, "else"},
		{"switch", SWITCH, "switch"},
		{"case", CASE, "case"},
		{"default", DEFAULT, "default"},
		{"while", WHILE, "while"},
		{"for", FOR, "for"},
		{"do", DO, "do"},
		{"return", RETURN, "return"},
		{"break", BREAK, "break"},
		{"continue", CONTINUE, "continue"},
		{"print", PRINT, "print"},
		{"scan", SCAN, "scan"},
		{"x", IDENTIFIER, "x"},
		{"Int", IDENTIFIER, "Int"},
		{"main2", IDENTIFIER, "main2"},
		{"returned", IDENTIFIER, "returned"},
		{"0", INTEGER, "0"},
		{"42", INTEGER, "42"},
		{"0x1A", INTEGER, "0x1A"},
		{"0XfF", INTEGER, "0XfF"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tok, err := NewScanner(strings.NewReader(tt.src)).Scan()
			require.NoError(t, err)
			assert.Equal(t, tt.want, tok.Type)
			assert.Equal(t, tt.lexeme, tok.Lexeme)
		})
	}
}

func TestScanner_IntegerValues(t *testing.T) {
	tests := []struct {
		src  string
		want int32
	}{
		{"0", 0},
		{"7", 7},
		{"26", 26},
		{"0x1A", 26},
		{"0x0", 0},
		{"0x000000000000ff", 255},
		{"2147483647", 2147483647},
		{"0x7FFFFFFF", 2147483647},
		{"0x0007fffffff", 2147483647},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks := scanAll(t, tt.src)
			require.Len(t, toks, 1)
			assert.Equal(t, INTEGER, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Value)
		})
	}
}

func TestScanner_Positions(t *testing.T) {
	toks := scanAll(t, "int main() {\n  return 0x10;\r\n}")

	want := []Token{
		{Type: INT, Lexeme: "int", Start: Position{0, 0}, End: Position{0, 3}},
		{Type: IDENTIFIER, Lexeme: "main", Start: Position{0, 4}, End: Position{0, 8}},
		{Type: LPAREN, Lexeme: "(", Start: Position{0, 8}, End: Position{0, 9}},
		{Type: RPAREN, Lexeme: ")", Start: Position{0, 9}, End: Position{0, 10}},
		{Type: LBRACE, Lexeme: "{", Start: Position{0, 11}, End: Position{0, 12}},
		{Type: RETURN, Lexeme: "return", Start: Position{1, 2}, End: Position{1, 8}},
		{Type: INTEGER, Lexeme: "0x10", Value: 16, Start: Position{1, 9}, End: Position{1, 13}},
		{Type: SEMICOLON, Lexeme: ";", Start: Position{1, 13}, End: Position{1, 14}},
		{Type: RBRACE, Lexeme: "}", Start: Position{2, 0}, End: Position{2, 1}},
	}
	assert.Equal(t, want, toks)
}

func TestScanner_Comments(t *testing.T) {
	toks := scanAll(t, "a // line comment\nb /* block\n * comment **/ c /**/d//")
	assert.Equal(t, []TokenType{IDENTIFIER, IDENTIFIER, IDENTIFIER, IDENTIFIER}, tokenTypes(toks))
	assert.Equal(t, "b", toks[1].Lexeme)
	assert.Equal(t, Position{1, 0}, toks[1].Start)
	assert.Equal(t, Position{2, 15}, toks[2].Start)
	assert.Equal(t, "d", toks[3].Lexeme)
}

func TestScanner_OperatorsWithoutSpaces(t *testing.T) {
	toks := scanAll(t, "a<=b==-c!=d>e/f")
	assert.Equal(t, []TokenType{
		IDENTIFIER, LESSEQUAL, IDENTIFIER, EQUAL, MINUS, IDENTIFIER,
		NOTEQUAL, IDENTIFIER, GREATER, IDENTIFIER, DIVIDE, IDENTIFIER,
	}, tokenTypes(toks))
}

func TestScanner_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code ErrorCode
		pos  Position
	}{
		{"invalid character", "int a @", ErrInvalidInput, Position{0, 6}},
		{"non printable", "a\x01", ErrInvalidInput, Position{0, 1}},
		{"non ascii", "\n  é", ErrInvalidInput, Position{1, 2}},
		{"identifier starting with digit", "x 12ab", ErrInvalidIdentifier, Position{0, 2}},
		{"zero then letter", "0abc", ErrInvalidIdentifier, Position{0, 0}},
		{"leading zero", "  007", ErrLeadingZero, Position{0, 2}},
		{"decimal overflow", "2147483648", ErrIntegerOverflow, Position{0, 0}},
		{"long decimal", "12345678901", ErrIntegerOverflow, Position{0, 0}},
		{"hex overflow", "0x100000000", ErrIntegerOverflow, Position{0, 0}},
		{"hex sign bit", "0x80000000", ErrIntegerOverflow, Position{0, 0}},
		{"hex without digits", "0x", ErrInvalidIntegerLiteral, Position{0, 0}},
		{"hex bad digit", "0x1g", ErrInvalidIntegerLiteral, Position{0, 0}},
		{"unterminated comment", "a\n /* open", ErrUnterminatedComment, Position{1, 1}},
		{"unterminated after star", "/* open *", ErrUnterminatedComment, Position{0, 0}},
		{"lone bang", "a ! b", ErrInvalidOperator, Position{0, 2}},
		{"bang at end", "a !", ErrEOF, Position{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(strings.NewReader(tt.src))
			require.Error(t, err)

			var compileErr *Error
			require.True(t, errors.As(err, &compileErr))
			assert.Equal(t, tt.code, compileErr.Code)
			assert.Equal(t, tt.pos, compileErr.Pos)
			assert.True(t, errors.Is(err, tt.code))
		})
	}
}

func TestScanner_InvalidCharacterNotConsumed(t *testing.T) {
	s := NewScanner(strings.NewReader("a#"))

	tok, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, IDENTIFIER, tok.Type)

	_, err = s.Scan()
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Scan()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestError_Error(t *testing.T) {
	err := &Error{Code: ErrNoSemicolon, Pos: Position{Line: 3, Column: 14}}
	assert.EqualError(t, err, "Line: 3 Column: 14 Error: missing semicolon")
	assert.Equal(t, "unknown error 999", ErrorCode(999).Error())
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "while", WHILE.String())
	assert.Equal(t, ">=", GREATEREQUAL.String())
	assert.Equal(t, "", TokenType(-1).String())
	assert.True(t, SCAN.IsKeyword())
	assert.False(t, IDENTIFIER.IsKeyword())
}
