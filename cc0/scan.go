package cc0

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// eof is returned by read once the underlying reader is exhausted.
const eof = rune(-1)

type dfaState int

const (
	initialState dfaState = iota
	zeroState
	decimalState
	hexState
	identifierState

	plusState
	minusState
	multiplyState
	divideState
	assignState
	lessState
	greaterState
	exclamationState
	semicolonState
	commaState
	lparenState
	rparenState
	lbraceState
	rbraceState

	lineCommentState
	blockCommentState
	blockCommentStarState
)

// operatorStates maps the first character of an operator or bracket to the
// state that recognizes it.
var operatorStates = map[rune]dfaState{
	'+': plusState,
	'-': minusState,
	'*': multiplyState,
	'/': divideState,
	'=': assignState,
	'<': lessState,
	'>': greaterState,
	'!': exclamationState,
	';': semicolonState,
	',': commaState,
	'(': lparenState,
	')': rparenState,
	'{': lbraceState,
	'}': rbraceState,
}

// singleTokens holds the states that always finish a one-character token.
var singleTokens = map[dfaState]TokenType{
	plusState:      PLUS,
	minusState:     MINUS,
	multiplyState:  MULTIPLY,
	semicolonState: SEMICOLON,
	commaState:     COMMA,
	lparenState:    LPAREN,
	rparenState:    RPAREN,
	lbraceState:    LBRACE,
	rbraceState:    RBRACE,
}

// Scanner represents a lexical scanner.
type Scanner struct {
	Reader      *bufio.Reader
	position    Position
	err         error
	bufferIndex int
	bufferSize  int
	buffer      [16]struct {
		ch       rune
		position Position
	}
}

// NewScanner returns a new instance of Scanner.
func NewScanner(reader io.Reader) *Scanner {
	return &Scanner{
		Reader: bufio.NewReader(reader),
	}
}

// read reads the next rune from the bufferred reader.
// Returns eof once the reader is exhausted or fails.
func (s *Scanner) read() (rune, Position) {
	// If we have unread characters then read them off the buffer first.
	if s.bufferSize > 0 {
		s.bufferSize--
		return s.curr()
	}

	ch, _, err := s.Reader.ReadRune()
	if err != nil {
		if err != io.EOF && s.err == nil {
			s.err = err
		}
		ch = eof
	} else if ch == '\r' {
		if ch, _, err := s.Reader.ReadRune(); err == nil && ch != '\n' {
			_ = s.Reader.UnreadRune()
		}
		ch = '\n'
	}

	// Save character and position to the buffer.
	s.bufferIndex = (s.bufferIndex + 1) % len(s.buffer)
	buffer := &s.buffer[s.bufferIndex]
	buffer.ch, buffer.position = ch, s.position

	switch ch {
	case eof:
	case '\n':
		s.position.Line++
		s.position.Column = 0
	default:
		s.position.Column++
	}

	return s.curr()
}

// curr returns the last read character and position.
func (s *Scanner) curr() (ch rune, pos Position) {
	bufferIndex := (s.bufferIndex - s.bufferSize + len(s.buffer)) % len(s.buffer)
	buffer := &s.buffer[bufferIndex]
	return buffer.ch, buffer.position
}

// pos returns the position of the next character to be read.
func (s *Scanner) pos() Position {
	if s.bufferSize > 0 {
		bufferIndex := (s.bufferIndex - s.bufferSize + 1 + len(s.buffer)) % len(s.buffer)
		return s.buffer[bufferIndex].position
	}
	return s.position
}

// Unscan pushes the previously read character back onto the buffer.
func (s *Scanner) Unscan() {
	s.bufferSize++
}

// Scan returns the next token. At the end of the input it returns an EOF
// token; every other failure is reported as an *Error.
func (s *Scanner) Scan() (Token, error) {
	var buf bytes.Buffer
	var start Position
	state := initialState

	for {
		ch, pos := s.read()

		switch state {
		case initialState:
			switch {
			case ch == eof:
				if s.err != nil {
					return Token{}, &Error{Code: ErrStream, Pos: pos}
				}
				return Token{Type: EOF, Lexeme: "EOF", Start: pos, End: pos}, nil
			case isSpace(ch):
				continue
			case !isPrint(ch):
				s.Unscan()
				return Token{}, &Error{Code: ErrInvalidInput, Pos: pos}
			}

			start = pos
			switch {
			case ch == '0':
				state = zeroState
			case isDigit(ch):
				state = decimalState
			case isLetter(ch):
				state = identifierState
			default:
				next, ok := operatorStates[ch]
				if !ok {
					s.Unscan()
					return Token{}, &Error{Code: ErrInvalidInput, Pos: pos}
				}
				state = next
			}
			buf.WriteRune(ch)

		case zeroState:
			switch {
			case isDigit(ch):
				state = decimalState
			case ch == 'x' || ch == 'X':
				state = hexState
			case isLetter(ch):
				state = identifierState
			default:
				s.Unscan()
				return s.decimal(buf.String(), start)
			}
			buf.WriteRune(ch)

		case decimalState:
			switch {
			case isDigit(ch):
			case isLetter(ch):
				state = identifierState
			default:
				s.Unscan()
				return s.decimal(buf.String(), start)
			}
			buf.WriteRune(ch)

		case hexState:
			if !isDigit(ch) && !isLetter(ch) {
				s.Unscan()
				return s.hexadecimal(buf.String(), start)
			}
			buf.WriteRune(ch)

		case identifierState:
			if !isDigit(ch) && !isLetter(ch) {
				s.Unscan()
				return s.identifier(buf.String(), start)
			}
			buf.WriteRune(ch)

		case divideState:
			switch ch {
			case '/':
				buf.Reset()
				state = lineCommentState
			case '*':
				buf.Reset()
				state = blockCommentState
			default:
				s.Unscan()
				return s.token(DIVIDE, buf.String(), start), nil
			}

		case assignState, lessState, greaterState:
			if ch == '=' {
				buf.WriteRune(ch)
				return s.token(pairTokens[state][1], buf.String(), start), nil
			}
			s.Unscan()
			return s.token(pairTokens[state][0], buf.String(), start), nil

		case exclamationState:
			switch ch {
			case '=':
				buf.WriteRune(ch)
				return s.token(NOTEQUAL, buf.String(), start), nil
			case eof:
				return Token{}, &Error{Code: ErrEOF, Pos: start}
			default:
				s.Unscan()
				return Token{}, &Error{Code: ErrInvalidOperator, Pos: start}
			}

		case lineCommentState:
			// The line break is left for the initial state.
			if ch == '\n' || ch == eof {
				s.Unscan()
				state = initialState
			}

		case blockCommentState:
			switch ch {
			case eof:
				return Token{}, &Error{Code: ErrUnterminatedComment, Pos: start}
			case '*':
				state = blockCommentStarState
			}

		case blockCommentStarState:
			switch ch {
			case eof:
				return Token{}, &Error{Code: ErrUnterminatedComment, Pos: start}
			case '/':
				state = initialState
			case '*':
			default:
				state = blockCommentState
			}

		default:
			s.Unscan()
			return s.token(singleTokens[state], buf.String(), start), nil
		}
	}
}

// pairTokens holds the one- and two-character token types of the states that
// may be followed by '='.
var pairTokens = map[dfaState][2]TokenType{
	assignState:  {ASSIGN, EQUAL},
	lessState:    {LESS, LESSEQUAL},
	greaterState: {GREATER, GREATEREQUAL},
}

func (s *Scanner) token(tokenType TokenType, lexeme string, start Position) Token {
	return Token{Type: tokenType, Lexeme: lexeme, Start: start, End: s.pos()}
}

// decimal finishes a decimal integer literal.
func (s *Scanner) decimal(lexeme string, start Position) (Token, error) {
	if len(lexeme) > 1 && lexeme[0] == '0' {
		return Token{}, &Error{Code: ErrLeadingZero, Pos: start}
	}
	if len(lexeme) > 10 {
		return Token{}, &Error{Code: ErrIntegerOverflow, Pos: start}
	}

	value, err := strconv.ParseInt(lexeme, 10, 32)
	if err != nil {
		return Token{}, &Error{Code: ErrIntegerOverflow, Pos: start}
	}

	tok := s.token(INTEGER, lexeme, start)
	tok.Value = int32(value)
	return tok, nil
}

// hexadecimal finishes a 0x-prefixed integer literal.
func (s *Scanner) hexadecimal(lexeme string, start Position) (Token, error) {
	digits := lexeme[2:]
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return !isHexDigit(r) }) >= 0 {
		return Token{}, &Error{Code: ErrInvalidIntegerLiteral, Pos: start}
	}

	digits = strings.TrimLeft(digits, "0")
	if len(digits) > 8 || len(digits) == 8 && digits[0] > '7' {
		return Token{}, &Error{Code: ErrIntegerOverflow, Pos: start}
	}
	if digits == "" {
		digits = "0"
	}

	value, err := strconv.ParseInt(digits, 16, 32)
	if err != nil {
		return Token{}, &Error{Code: ErrIntegerOverflow, Pos: start}
	}

	tok := s.token(INTEGER, lexeme, start)
	tok.Value = int32(value)
	return tok, nil
}

// identifier finishes an identifier or reserved word.
func (s *Scanner) identifier(lexeme string, start Position) (Token, error) {
	if isDigit(rune(lexeme[0])) {
		return Token{}, &Error{Code: ErrInvalidIdentifier, Pos: start}
	}
	if keyword, ok := keywords[lexeme]; ok {
		return s.token(keyword, lexeme, start), nil
	}
	return s.token(IDENTIFIER, lexeme, start), nil
}

// Tokenize scans the whole input and returns its tokens without the final EOF.
// Scanning stops at the first error.
func Tokenize(reader io.Reader) ([]Token, error) {
	s := NewScanner(reader)

	var result []Token
	for {
		tok, err := s.Scan()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return result, nil
		}
		result = append(result, tok)
	}
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\v' || ch == '\f' || ch == '\r'
}

func isPrint(ch rune) bool {
	return ch >= 0x20 && ch < 0x7f
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
