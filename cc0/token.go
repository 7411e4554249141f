package cc0

import "fmt"

// TokenType represents the kind of a lexical token.
type TokenType int

// C0's tokens
const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER
	INTEGER

	// Keywords
	CONST
	VOID
	INT
	CHAR
	DOUBLE
	STRUCT
	IF
	ELSE
	SWITCH
	CASE
	DEFAULT
	WHILE
	FOR
	DO
	RETURN
	BREAK
	CONTINUE
	PRINT
	SCAN

	// Operators
	PLUS         // +
	MINUS        // -
	MULTIPLY     // *
	DIVIDE       // /
	ASSIGN       // =
	EQUAL        // ==
	NOTEQUAL     // !=
	LESS         // <
	LESSEQUAL    // <=
	GREATER      // >
	GREATEREQUAL // >=

	// Symbols
	SEMICOLON // ;
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
)

// Position specifies the line and character position of a token.
// The Column and Line are both zero-based indexes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a lexical token. Start is the position of its first character and
// End the position just past its last one.
type Token struct {
	Type   TokenType
	Lexeme string
	Value  int32 // only for INTEGER
	Start  Position
	End    Position
}

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",

	CONST:    "const",
	VOID:     "void",
	INT:      "int",
	CHAR:     "char",
	DOUBLE:   "double",
	STRUCT:   "struct",
	IF:       "if",
	ELSE:     "else",
	SWITCH:   "switch",
	CASE:     "case",
	DEFAULT:  "default",
	WHILE:    "while",
	FOR:      "for",
	DO:       "do",
	RETURN:   "return",
	BREAK:    "break",
	CONTINUE: "continue",
	PRINT:    "print",
	SCAN:     "scan",

	PLUS:         "+",
	MINUS:        "-",
	MULTIPLY:     "*",
	DIVIDE:       "/",
	ASSIGN:       "=",
	EQUAL:        "==",
	NOTEQUAL:     "!=",
	LESS:         "<",
	LESSEQUAL:    "<=",
	GREATER:      ">",
	GREATEREQUAL: ">=",

	SEMICOLON: ";",
	COMMA:     ",",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
}

// keywords maps reserved words to their token types.
var keywords = map[string]TokenType{}

func init() {
	for tok := CONST; tok <= SCAN; tok++ {
		keywords[tokens[tok]] = tok
	}
}

// String returns the string representation of the token type.
func (tok TokenType) String() string {
	if tok >= 0 && tok < TokenType(len(tokens)) {
		return tokens[tok]
	}
	return ""
}

// IsKeyword reports whether the token type is a reserved word.
func (tok TokenType) IsKeyword() bool {
	return tok >= CONST && tok <= SCAN
}
