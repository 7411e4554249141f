package cc0

import "fmt"

// ErrorCode identifies a compile error kind. It implements error so codes can
// be matched with errors.Is.
type ErrorCode int

const (
	ErrStream ErrorCode = iota + 1

	// Lexical errors
	ErrEOF
	ErrInvalidInput
	ErrInvalidIdentifier
	ErrIntegerOverflow
	ErrLeadingZero
	ErrInvalidIntegerLiteral
	ErrUnterminatedComment
	ErrInvalidOperator

	// Syntactic errors
	ErrNeedIdentifier
	ErrNoSemicolon
	ErrNoComma
	ErrNoLeftBracket
	ErrNoRightBracket
	ErrNoLeftBrace
	ErrNoRightBrace
	ErrInvalidVariableDeclaration
	ErrInvalidFunctionDefinition
	ErrIncompleteExpression
	ErrIncompleteStatement
	ErrIncompleteCondition
	ErrIncompleteFunctionCall

	// Semantic errors
	ErrConstantNeedValue
	ErrDuplicateDeclaration
	ErrNotDeclared
	ErrAssignToConstant
	ErrNotInitialized
	ErrNeedReturnValue
	ErrNoNeedReturnValue
	ErrNeedMainFunction
	ErrArgumentCount
)

var messages = [...]string{
	ErrStream: "stream error",

	ErrEOF:                   "unexpected end of input",
	ErrInvalidInput:          "invalid input character",
	ErrInvalidIdentifier:     "invalid identifier",
	ErrIntegerOverflow:       "integer literal overflow",
	ErrLeadingZero:           "invalid integer literal, non-zero value must not have leading zero",
	ErrInvalidIntegerLiteral: "invalid integer literal",
	ErrUnterminatedComment:   "unterminated block comment",
	ErrInvalidOperator:       "invalid operator",

	ErrNeedIdentifier:             "need an identifier",
	ErrNoSemicolon:                "missing semicolon",
	ErrNoComma:                    "missing comma",
	ErrNoLeftBracket:              "missing left bracket",
	ErrNoRightBracket:             "missing right bracket",
	ErrNoLeftBrace:                "missing left brace",
	ErrNoRightBrace:               "missing right brace",
	ErrInvalidVariableDeclaration: "invalid variable declaration",
	ErrInvalidFunctionDefinition:  "invalid function definition",
	ErrIncompleteExpression:       "incomplete expression",
	ErrIncompleteStatement:        "incomplete statement",
	ErrIncompleteCondition:        "incomplete condition",
	ErrIncompleteFunctionCall:     "incomplete function call",

	ErrConstantNeedValue:    "constant needs value",
	ErrDuplicateDeclaration: "duplicate declaration",
	ErrNotDeclared:          "not declared",
	ErrAssignToConstant:     "assign to constant",
	ErrNotInitialized:       "variable not initialized",
	ErrNeedReturnValue:      "function needs return value",
	ErrNoNeedReturnValue:    "function has no return value",
	ErrNeedMainFunction:     "missing main function",
	ErrArgumentCount:        "argument count mismatch",
}

// Error returns the fixed message of the code.
func (c ErrorCode) Error() string {
	if c > 0 && int(c) < len(messages) {
		return messages[c]
	}
	return fmt.Sprintf("unknown error %d", int(c))
}

// Error represents an error that occurred during compilation.
type Error struct {
	Code ErrorCode
	Pos  Position
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("Line: %d Column: %d Error: %s", e.Pos.Line, e.Pos.Column, e.Code.Error())
}

func (e *Error) Unwrap() error { return e.Code }
