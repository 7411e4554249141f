package cc0

import (
	"io"
	"log/slog"

	"github.com/nof-sh/C0-compiler/logger"
)

// Parser represents a C0 parser. It checks declarations and uses against its
// symbol table and generates code while it parses.
type Parser struct {
	cursor  *Cursor
	symbols *SymbolTable
	code    *CodeGenerator
	log     *slog.Logger
}

// NewParser returns a new instance of Parser.
func NewParser(tokens []Token) *Parser {
	return &Parser{
		cursor:  NewCursor(tokens),
		symbols: NewSymbolTable(),
		code:    NewCodeGenerator(),
		log:     logger.GetLogger(),
	}
}

// Compile scans and parses a C0 program and returns the generated code.
func Compile(reader io.Reader) (*Program, error) {
	tokens, err := Tokenize(reader)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).ParseProgram()
}

func (p *Parser) next() (Token, bool) {
	return p.cursor.Advance()
}

func (p *Parser) unread() {
	p.cursor.Rewind()
}

// peek returns the next token without consuming it.
func (p *Parser) peek() (Token, bool) {
	tok, ok := p.cursor.Advance()
	if ok {
		p.cursor.Rewind()
	}
	return tok, ok
}

// match consumes the next token if it has one of the given types.
func (p *Parser) match(tokenTypes ...TokenType) (Token, bool) {
	tok, ok := p.next()
	if !ok {
		return tok, false
	}
	for _, tokenType := range tokenTypes {
		if tok.Type == tokenType {
			return tok, true
		}
	}
	p.unread()
	return tok, false
}

// expect consumes the next token and fails with code unless it has the given type.
func (p *Parser) expect(tokenType TokenType, code ErrorCode) (Token, error) {
	tok, ok := p.next()
	if !ok || tok.Type != tokenType {
		return tok, p.fail(code)
	}
	return tok, nil
}

func (p *Parser) fail(code ErrorCode) error {
	return &Error{Code: code, Pos: p.cursor.Pos()}
}

// ParseProgram parses a whole C0 program.
//
//	program -> {variable-decl | function-decl}
func (p *Parser) ParseProgram() (*Program, error) {
	for {
		tok, ok := p.next()
		if !ok {
			break
		}

		switch tok.Type {
		case CONST:
			p.unread()
			if err := p.ParseVariableDeclaration(Global); err != nil {
				return nil, err
			}

		case INT, VOID:
			// type identifier '(' starts a function definition.
			if _, err := p.expect(IDENTIFIER, ErrNeedIdentifier); err != nil {
				return nil, err
			}
			third, ok := p.next()
			if !ok {
				return nil, p.fail(ErrNoSemicolon)
			}
			p.unread()
			p.unread()
			p.unread()

			var err error
			if third.Type == LPAREN {
				err = p.ParseFunctionDefinition()
			} else {
				err = p.ParseVariableDeclaration(Global)
			}
			if err != nil {
				return nil, err
			}

		default:
			return nil, p.fail(ErrInvalidVariableDeclaration)
		}
	}

	if _, _, ok := p.symbols.LookupFunction("main"); !ok {
		return nil, p.fail(ErrNeedMainFunction)
	}

	return p.code.Program(p.symbols.Functions()), nil
}

// ParseVariableDeclaration parses a variable or constant declaration.
//
//	variable-decl -> ["const"] "int" init-declarator {"," init-declarator} ";"
func (p *Parser) ParseVariableDeclaration(ctx Context) error {
	constant := false
	tok, ok := p.next()
	if ok && tok.Type == CONST {
		constant = true
		tok, ok = p.next()
	}
	if !ok || tok.Type != INT {
		return p.fail(ErrInvalidVariableDeclaration)
	}

	for {
		if err := p.ParseInitDeclarator(ctx, constant); err != nil {
			return err
		}

		tok, ok := p.next()
		if !ok {
			return p.fail(ErrNoSemicolon)
		}
		switch tok.Type {
		case COMMA:
		case SEMICOLON:
			return nil
		default:
			return p.fail(ErrNoSemicolon)
		}
	}
}

// ParseInitDeclarator parses one declared name and its optional initializer.
// A local variable is in scope inside its own initializer. Globals and
// constants are declared after their initializer.
//
//	init-declarator -> identifier ["=" expression]
func (p *Parser) ParseInitDeclarator(ctx Context, constant bool) error {
	name, err := p.expect(IDENTIFIER, ErrNeedIdentifier)
	if err != nil {
		return err
	}
	level := ctx.Level()
	if p.symbols.IsDeclared(name.Lexeme, level, ctx) {
		return p.fail(ErrDuplicateDeclaration)
	}

	kind := KindInitialized
	if constant {
		kind = KindConstant
	}

	if _, ok := p.match(ASSIGN); !ok {
		if constant {
			return p.fail(ErrConstantNeedValue)
		}
		tok, ok := p.peek()
		switch {
		case !ok:
			return p.fail(ErrNoSemicolon)
		case tok.Type == COMMA || tok.Type == SEMICOLON:
		case tok.Type == IDENTIFIER || tok.Type == INTEGER:
			return p.fail(ErrNoComma)
		default:
			return p.fail(ErrInvalidVariableDeclaration)
		}

		p.symbols.Declare(name.Lexeme, KindUninitialized, level)
		p.code.Emit(ctx, SNEW, 1)
		return nil
	}

	if _, inside := ctx.Function(); inside && !constant {
		index := p.symbols.Declare(name.Lexeme, KindUninitialized, level)
		if err := p.ParseExpression(ctx); err != nil {
			return err
		}
		p.symbols.SetKind(index, KindInitialized)
		return nil
	}

	if err := p.ParseExpression(ctx); err != nil {
		return err
	}
	p.symbols.Declare(name.Lexeme, kind, level)
	return nil
}

// ParseFunctionDefinition parses a function and generates its body.
//
//	function-decl -> ("int"|"void") identifier "(" [param {"," param}] ")" compound-stmt
func (p *Parser) ParseFunctionDefinition() error {
	typ, ok := p.match(INT, VOID)
	if !ok {
		return p.fail(ErrInvalidFunctionDefinition)
	}
	name, err := p.expect(IDENTIFIER, ErrNeedIdentifier)
	if err != nil {
		return err
	}
	if _, _, exists := p.symbols.LookupFunction(name.Lexeme); exists || p.symbols.IsDeclared(name.Lexeme, 0, Global) {
		return p.fail(ErrDuplicateDeclaration)
	}

	index := p.symbols.DeclareFunction(name.Lexeme, typ.Type == INT)
	ctx := InFunction(index)
	p.code.BeginFunction()
	p.symbols.EnterScope()

	if _, err := p.expect(LPAREN, ErrNoLeftBracket); err != nil {
		return err
	}
	params := 0
	if _, ok := p.match(RPAREN); !ok {
		for {
			if err := p.ParseParameterDeclaration(ctx); err != nil {
				return err
			}
			params++

			tok, ok := p.next()
			if !ok {
				return p.fail(ErrNoRightBracket)
			}
			if tok.Type == RPAREN {
				break
			}
			if tok.Type != COMMA {
				return p.fail(ErrNoRightBracket)
			}
		}
	}
	p.symbols.SetParams(index, params)

	if err := p.ParseCompoundStatement(ctx); err != nil {
		return err
	}
	p.code.CodegenReturn(ctx, p.symbols.Function(index))

	p.log.Debug("compiled function",
		"name", name.Lexeme,
		"index", index,
		"params", params,
		"instructions", p.code.Offset(ctx))

	p.symbols.LeaveScope()
	return nil
}

// ParseParameterDeclaration parses one function parameter.
//
//	param -> ["const"] "int" identifier
func (p *Parser) ParseParameterDeclaration(ctx Context) error {
	kind := KindInitialized
	if _, ok := p.match(CONST); ok {
		kind = KindConstant
	}
	if _, ok := p.match(INT); !ok {
		return p.fail(ErrInvalidFunctionDefinition)
	}
	name, err := p.expect(IDENTIFIER, ErrNeedIdentifier)
	if err != nil {
		return err
	}
	if p.symbols.IsDeclared(name.Lexeme, ctx.Level(), ctx) {
		return p.fail(ErrDuplicateDeclaration)
	}
	p.symbols.Declare(name.Lexeme, kind, ctx.Level())
	return nil
}

// ParseCompoundStatement parses a function body.
//
//	compound-stmt -> "{" {variable-decl} {statement} "}"
func (p *Parser) ParseCompoundStatement(ctx Context) error {
	if _, err := p.expect(LBRACE, ErrNoLeftBrace); err != nil {
		return err
	}

	for {
		tok, ok := p.peek()
		if !ok {
			return p.fail(ErrNoRightBrace)
		}
		if tok.Type != CONST && tok.Type != INT {
			break
		}
		if err := p.ParseVariableDeclaration(ctx); err != nil {
			return err
		}
	}

	if err := p.ParseStatementSequence(ctx); err != nil {
		return err
	}
	_, err := p.expect(RBRACE, ErrNoRightBrace)
	return err
}

// ParseStatementSequence parses statements up to a closing brace, which it
// leaves unconsumed.
//
//	statement-seq -> {statement}
func (p *Parser) ParseStatementSequence(ctx Context) error {
	for {
		tok, ok := p.peek()
		if !ok {
			return p.fail(ErrNoRightBrace)
		}
		if tok.Type == RBRACE {
			return nil
		}
		if err := p.ParseStatement(ctx); err != nil {
			return err
		}
	}
}

// ParseStatement parses a single statement.
//
//	statement -> "{" statement-seq "}" | if-stmt | while-stmt | return-stmt
//	           | scan-stmt | print-stmt | assignment-or-call ";" | ";"
func (p *Parser) ParseStatement(ctx Context) error {
	tok, ok := p.next()
	if !ok {
		return p.fail(ErrIncompleteStatement)
	}

	switch tok.Type {
	case LBRACE:
		if err := p.ParseStatementSequence(ctx); err != nil {
			return err
		}
		_, err := p.expect(RBRACE, ErrNoRightBrace)
		return err
	case IF:
		return p.ParseIfStatement(ctx)
	case WHILE:
		return p.ParseWhileStatement(ctx)
	case RETURN:
		return p.ParseReturnStatement(ctx)
	case SCAN:
		return p.ParseScanStatement(ctx)
	case PRINT:
		return p.ParsePrintStatement(ctx)
	case IDENTIFIER:
		p.unread()
		return p.ParseAssignmentOrCall(ctx)
	case SEMICOLON:
		return nil
	}

	return p.fail(ErrIncompleteStatement)
}

// ParseIfStatement parses an if statement, "if" already consumed.
//
//	if-stmt -> "if" "(" condition ")" statement ["else" statement]
func (p *Parser) ParseIfStatement(ctx Context) error {
	if _, err := p.expect(LPAREN, ErrNoLeftBracket); err != nil {
		return err
	}
	branch, err := p.ParseCondition(ctx)
	if err != nil {
		return err
	}
	if _, err := p.expect(RPAREN, ErrNoRightBracket); err != nil {
		return err
	}
	if err := p.ParseStatement(ctx); err != nil {
		return err
	}

	jump := p.code.Emit(ctx, JMP, 0)
	p.code.Patch(ctx, branch, p.code.Offset(ctx))

	if _, ok := p.match(ELSE); !ok {
		p.code.Patch(ctx, jump, jump+1)
		return nil
	}
	if err := p.ParseStatement(ctx); err != nil {
		return err
	}
	p.code.Patch(ctx, jump, p.code.Offset(ctx))
	return nil
}

// ParseWhileStatement parses a while loop, "while" already consumed.
//
//	while-stmt -> "while" "(" condition ")" statement
func (p *Parser) ParseWhileStatement(ctx Context) error {
	test := p.code.Offset(ctx)

	if _, err := p.expect(LPAREN, ErrNoLeftBracket); err != nil {
		return err
	}
	branch, err := p.ParseCondition(ctx)
	if err != nil {
		return err
	}
	if _, err := p.expect(RPAREN, ErrNoRightBracket); err != nil {
		return err
	}
	if err := p.ParseStatement(ctx); err != nil {
		return err
	}

	p.code.Emit(ctx, JMP, int32(test))
	p.code.Patch(ctx, branch, p.code.Offset(ctx))
	return nil
}

// complementaryJumps maps each relational operator to the branch taken when
// the comparison fails.
var complementaryJumps = map[TokenType]Opcode{
	LESS:         JGE,
	LESSEQUAL:    JG,
	GREATER:      JLE,
	GREATEREQUAL: JL,
	NOTEQUAL:     JE,
	EQUAL:        JNE,
}

// ParseCondition parses a condition and emits the branch taken when it is
// false. It returns the branch's offset for backpatching.
//
//	condition -> expression [rel-op expression]
func (p *Parser) ParseCondition(ctx Context) (int, error) {
	if err := p.ParseExpression(ctx); err != nil {
		return 0, err
	}

	tok, ok := p.peek()
	if !ok {
		return 0, p.fail(ErrNoRightBracket)
	}
	if tok.Type == RPAREN {
		return p.code.Emit(ctx, JE, 0), nil
	}

	jump, ok := complementaryJumps[tok.Type]
	if !ok {
		return 0, p.fail(ErrIncompleteCondition)
	}
	p.next()
	if err := p.ParseExpression(ctx); err != nil {
		return 0, err
	}
	p.code.Emit(ctx, ISUB)
	return p.code.Emit(ctx, jump, 0), nil
}

// ParseReturnStatement parses a return statement, "return" already consumed.
//
//	return-stmt -> "return" [expression] ";"
func (p *Parser) ParseReturnStatement(ctx Context) error {
	index, _ := ctx.Function()
	fn := p.symbols.Function(index)

	if _, ok := p.match(SEMICOLON); ok {
		if fn.Returns {
			return p.fail(ErrNeedReturnValue)
		}
		p.code.Emit(ctx, RET)
		return nil
	}

	if err := p.ParseExpression(ctx); err != nil {
		return err
	}
	if !fn.Returns {
		return p.fail(ErrNoNeedReturnValue)
	}
	p.code.Emit(ctx, IRET)

	_, err := p.expect(SEMICOLON, ErrNoSemicolon)
	return err
}

// ParseScanStatement parses a scan statement, "scan" already consumed.
//
//	scan-stmt -> "scan" "(" identifier ")" ";"
func (p *Parser) ParseScanStatement(ctx Context) error {
	if _, err := p.expect(LPAREN, ErrNoLeftBracket); err != nil {
		return err
	}
	name, err := p.expect(IDENTIFIER, ErrNeedIdentifier)
	if err != nil {
		return err
	}

	index, ok := p.symbols.Lookup(name.Lexeme)
	if !ok {
		return p.fail(ErrNotDeclared)
	}
	v := p.symbols.Variable(index)
	if v.Kind == KindConstant {
		return p.fail(ErrAssignToConstant)
	}

	p.code.CodegenAddress(ctx, p.symbols, v)
	p.code.Emit(ctx, ISCAN)
	p.code.Emit(ctx, ISTORE)
	p.symbols.MarkInitialized(index)

	if _, err := p.expect(RPAREN, ErrNoRightBracket); err != nil {
		return err
	}
	_, err = p.expect(SEMICOLON, ErrNoSemicolon)
	return err
}

// ParsePrintStatement parses a print statement, "print" already consumed.
//
//	print-stmt -> "print" "(" [expression {"," expression}] ")" ";"
func (p *Parser) ParsePrintStatement(ctx Context) error {
	if _, err := p.expect(LPAREN, ErrNoLeftBracket); err != nil {
		return err
	}

	if _, ok := p.match(RPAREN); !ok {
		for first := true; ; first = false {
			if !first {
				p.code.CodegenPrintSeparator(ctx)
			}
			if err := p.ParseExpression(ctx); err != nil {
				return err
			}
			p.code.Emit(ctx, IPRINT)

			tok, ok := p.next()
			if !ok {
				return p.fail(ErrIncompleteStatement)
			}
			if tok.Type == RPAREN {
				break
			}
			if tok.Type != COMMA {
				return p.fail(ErrIncompleteStatement)
			}
		}
	}
	p.code.Emit(ctx, PRINTL)

	_, err := p.expect(SEMICOLON, ErrNoSemicolon)
	return err
}

// ParseAssignmentOrCall parses an assignment or a call used as a statement.
// The result of a call to a value-returning function is popped.
//
//	assignment-or-call -> identifier ("=" expression | "(" [arguments] ")") ";"
func (p *Parser) ParseAssignmentOrCall(ctx Context) error {
	name, err := p.expect(IDENTIFIER, ErrNeedIdentifier)
	if err != nil {
		return err
	}

	tok, ok := p.next()
	if !ok {
		return p.fail(ErrIncompleteStatement)
	}

	switch tok.Type {
	case ASSIGN:
		index, ok := p.symbols.Lookup(name.Lexeme)
		if !ok {
			return p.fail(ErrNotDeclared)
		}
		v := p.symbols.Variable(index)
		if v.Kind == KindConstant {
			return p.fail(ErrAssignToConstant)
		}

		p.code.CodegenAddress(ctx, p.symbols, v)
		if err := p.ParseExpression(ctx); err != nil {
			return err
		}
		p.code.Emit(ctx, ISTORE)
		p.symbols.MarkInitialized(index)

	case LPAREN:
		p.unread()
		p.unread()
		fn, err := p.ParseFunctionCall(ctx)
		if err != nil {
			return err
		}
		if fn.Returns {
			p.code.Emit(ctx, POP)
		}

	default:
		return p.fail(ErrIncompleteStatement)
	}

	_, err = p.expect(SEMICOLON, ErrNoSemicolon)
	return err
}

// ParseExpression parses an additive expression.
//
//	expression -> mult-expr {("+"|"-") mult-expr}
func (p *Parser) ParseExpression(ctx Context) error {
	if err := p.ParseMultiplicativeExpression(ctx); err != nil {
		return err
	}
	for {
		op, ok := p.match(PLUS, MINUS)
		if !ok {
			return nil
		}
		if err := p.ParseMultiplicativeExpression(ctx); err != nil {
			return err
		}
		if op.Type == PLUS {
			p.code.Emit(ctx, IADD)
		} else {
			p.code.Emit(ctx, ISUB)
		}
	}
}

// ParseMultiplicativeExpression parses a multiplicative expression.
//
//	mult-expr -> unary-expr {("*"|"/") unary-expr}
func (p *Parser) ParseMultiplicativeExpression(ctx Context) error {
	if err := p.ParseUnaryExpression(ctx); err != nil {
		return err
	}
	for {
		op, ok := p.match(MULTIPLY, DIVIDE)
		if !ok {
			return nil
		}
		if err := p.ParseUnaryExpression(ctx); err != nil {
			return err
		}
		if op.Type == MULTIPLY {
			p.code.Emit(ctx, IMUL)
		} else {
			p.code.Emit(ctx, IDIV)
		}
	}
}

// ParseUnaryExpression parses an optionally signed primary expression.
//
//	unary-expr -> ["+"|"-"] primary
func (p *Parser) ParseUnaryExpression(ctx Context) error {
	sign, signed := p.match(PLUS, MINUS)
	if err := p.ParsePrimaryExpression(ctx); err != nil {
		return err
	}
	if signed && sign.Type == MINUS {
		p.code.Emit(ctx, INEG)
	}
	return nil
}

// ParsePrimaryExpression parses a primary expression.
//
//	primary -> "(" expression ")" | integer-literal | identifier | call
func (p *Parser) ParsePrimaryExpression(ctx Context) error {
	tok, ok := p.next()
	if !ok {
		return p.fail(ErrIncompleteExpression)
	}

	switch tok.Type {
	case LPAREN:
		if err := p.ParseExpression(ctx); err != nil {
			return err
		}
		_, err := p.expect(RPAREN, ErrIncompleteExpression)
		return err

	case INTEGER:
		p.code.Emit(ctx, IPUSH, tok.Value)
		return nil

	case IDENTIFIER:
		if next, ok := p.peek(); ok && next.Type == LPAREN {
			p.unread()
			_, err := p.ParseFunctionCall(ctx)
			return err
		}

		index, ok := p.symbols.Lookup(tok.Lexeme)
		if !ok {
			return p.fail(ErrNotDeclared)
		}
		v := p.symbols.Variable(index)
		if v.Kind == KindUninitialized {
			return p.fail(ErrNotInitialized)
		}
		p.code.CodegenAddress(ctx, p.symbols, v)
		p.code.Emit(ctx, ILOAD)
		return nil
	}

	return p.fail(ErrIncompleteExpression)
}

// ParseFunctionCall parses a call and returns the called function.
//
//	call -> identifier "(" [expression {"," expression}] ")"
func (p *Parser) ParseFunctionCall(ctx Context) (Function, error) {
	name, err := p.expect(IDENTIFIER, ErrNeedIdentifier)
	if err != nil {
		return Function{}, err
	}
	index, fn, ok := p.symbols.LookupFunction(name.Lexeme)
	if !ok {
		return Function{}, p.fail(ErrNotDeclared)
	}
	if _, err := p.expect(LPAREN, ErrIncompleteFunctionCall); err != nil {
		return Function{}, err
	}

	args := 0
	if _, ok := p.match(RPAREN); !ok {
		for {
			if err := p.ParseExpression(ctx); err != nil {
				return Function{}, err
			}
			args++

			tok, ok := p.next()
			if !ok {
				return Function{}, p.fail(ErrIncompleteFunctionCall)
			}
			if tok.Type == RPAREN {
				break
			}
			if tok.Type != COMMA {
				return Function{}, p.fail(ErrIncompleteFunctionCall)
			}
		}
	}

	if args != fn.Params {
		return Function{}, p.fail(ErrArgumentCount)
	}
	p.code.Emit(ctx, CALL, int32(index))
	return fn, nil
}
