package lang

import (
	"context"
	"log/slog"
	"strconv"
)

// Parse parses Q source text into a Program. Parsing is all-or-nothing:
// on any failure no partial tree is returned, only the first error
// encountered.
func Parse(ctx context.Context, source string, opts ...Option) (*Program, error) {
	cfg := makeOptions(opts...)

	cfg.logger.TraceContext(ctx, "parse start",
		slog.Int("source_bytes", len(source)))

	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("statements", len(prog.Statements)))

	return prog, nil
}

// parser consumes the token sequence produced by the lexer.
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}

	return p.tokens[p.pos]
}

func (p *parser) peek() TokenKind {
	return p.cur().Kind
}

func (p *parser) advance() Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}

	return tok
}

// expect consumes the next token if it has the wanted kind, or fails.
// Hitting end of input while a delimiter is wanted is reported as a
// missing-closing-delimiter error.
func (p *parser) expect(kind TokenKind) (Token, error) {
	tok := p.cur()
	if tok.Kind == kind {
		return p.advance(), nil
	}

	if tok.Kind == TokEOF && isCloser(kind) {
		return tok, ErrMissingDelim.
			WithPosition(tok.Pos()).
			With(slog.String("expected", kind.String()))
	}

	return tok, ErrUnexpectedToken.
		WithPosition(tok.Pos()).
		With(
			slog.String("expected", kind.String()),
			slog.String("got", tok.Kind.String()),
		)
}

func isCloser(kind TokenKind) bool {
	return kind == TokRBrace || kind == TokRParen || kind == TokSemicolon
}

// parseProgram parses top-level statements until end of input.
func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}

	for p.peek() != TokEOF {
		stmt, err := p.parseStatement(false)
		if err != nil {
			return nil, err
		}

		prog.Statements = append(prog.Statements, stmt)
	}

	return prog, nil
}

// parseStatement dispatches on the leading keyword. Brace-delimited
// constructs are disambiguated here by their preceding header, never by
// looking inside the braces.
func (p *parser) parseStatement(inBody bool) (Statement, error) {
	tok := p.cur()

	switch tok.Kind {
	case TokSystem:
		return p.parseSystemStatement()

	case TokFunction:
		if inBody {
			return nil, ErrUnexpectedToken.
				WithPosition(tok.Pos()).
				With(slog.String("got", "nested function declaration"))
		}

		return p.parseFunctionDecl()

	case TokReturn:
		return p.parseReturn()

	default:
		return nil, ErrUnexpectedToken.
			WithPosition(tok.Pos()).
			With(slog.String("got", tok.Kind.String()))
	}
}

// parseSystemStatement parses system.<verb>{...}; selecting the keyed
// block shape by verb.
func (p *parser) parseSystemStatement() (Statement, error) {
	sys := p.advance() // consume 'system'

	if _, err := p.expect(TokDot); err != nil {
		return nil, err
	}

	verb, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}

	var stmt Statement

	switch verb.Lexeme {
	case "init":
		stmt, err = p.parseInitBlock(sys.Pos())
	case "set":
		stmt, err = p.parseSetBlock(sys.Pos())
	case "log":
		stmt, err = p.parseLogBlock(sys.Pos())
	case "exec":
		stmt, err = p.parseExecBlock(sys.Pos())
	case "include":
		stmt, err = p.parseIncludeBlock(sys.Pos())
	default:
		return nil, ErrUnknownVerb.
			WithPosition(verb.Pos()).
			With(slog.String("verb", verb.Lexeme))
	}

	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokSemicolon); err != nil {
		return nil, err
	}

	return stmt, nil
}

// blockEntry delivers one keyed-block entry to a verb-specific handler.
// The handler consumes the entry's value tokens. Quoted keys arrive with
// bare=false; bare-identifier blocks (arguments{...}, parameters{...})
// with bare=true.
type blockEntry func(key string, keyTok Token, bare bool) error

// parseKeyedBlock parses { entry, entry, ... } with duplicate-key
// detection across quoted and bare entries.
func (p *parser) parseKeyedBlock(handle blockEntry) error {
	if _, err := p.expect(TokLBrace); err != nil {
		return err
	}

	seen := make(map[string]struct{})

	for {
		tok := p.cur()

		switch tok.Kind {
		case TokRBrace:
			p.advance()

			return nil

		case TokEOF:
			return ErrMissingDelim.
				WithPosition(tok.Pos()).
				With(slog.String("expected", TokRBrace.String()))

		case TokStringLit:
			p.advance()

			if _, dup := seen[tok.Lexeme]; dup {
				return ErrDuplicateKey.
					WithPosition(tok.Pos()).
					With(slog.String("key", tok.Lexeme))
			}

			seen[tok.Lexeme] = struct{}{}

			if _, err := p.expect(TokColon); err != nil {
				return err
			}

			if err := handle(tok.Lexeme, tok, false); err != nil {
				return err
			}

		case TokIdent:
			p.advance()

			if _, dup := seen[tok.Lexeme]; dup {
				return ErrDuplicateKey.
					WithPosition(tok.Pos()).
					With(slog.String("key", tok.Lexeme))
			}

			seen[tok.Lexeme] = struct{}{}

			if err := handle(tok.Lexeme, tok, true); err != nil {
				return err
			}

		default:
			return ErrUnexpectedToken.
				WithPosition(tok.Pos()).
				With(
					slog.String("expected", "key or '}'"),
					slog.String("got", tok.Kind.String()),
				)
		}

		if p.peek() == TokComma {
			p.advance()
		}
	}
}

// requireKey reports a missing required block entry.
func requireKey(verb, key string, pos Position) error {
	return ErrUnexpectedToken.
		WithPosition(pos).
		With(
			slog.String("verb", verb),
			slog.String("missing", key),
		)
}

// parseName consumes an identifier-valued entry.
func (p *parser) parseName() (string, error) {
	tok, err := p.expect(TokIdent)
	if err != nil {
		return "", err
	}

	return tok.Lexeme, nil
}

// parseDataType consumes a datatype keyword entry.
func (p *parser) parseDataType() (DataType, error) {
	tok := p.cur()

	switch tok.Kind {
	case TokString:
		p.advance()

		return DataString, nil

	case TokNumber:
		p.advance()

		return DataNumber, nil

	case TokBool:
		p.advance()

		return DataBool, nil

	case TokArray:
		p.advance()

		return DataArray, nil

	default:
		return 0, ErrUnexpectedToken.
			WithPosition(tok.Pos()).
			With(
				slog.String("expected", "datatype keyword"),
				slog.String("got", tok.Kind.String()),
			)
	}
}

// parseInitBlock parses the system.init keyed block:
//
//	{"type": variable, "name": v, "datatype": string, "value": expr}
func (p *parser) parseInitBlock(pos Position) (*VariableInit, error) {
	stmt := &VariableInit{node: node{Position: pos}}

	var haveName, haveType bool

	err := p.parseKeyedBlock(func(key string, keyTok Token, bare bool) error {
		if bare {
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", keyTok.Lexeme))
		}

		switch key {
		case "type":
			_, err := p.expect(TokVariable)

			return err

		case "name":
			name, err := p.parseName()
			if err != nil {
				return err
			}

			stmt.Name = name
			haveName = true

			return nil

		case "datatype":
			typ, err := p.parseDataType()
			if err != nil {
				return err
			}

			stmt.Type = typ
			haveType = true

			return nil

		case "value":
			expr, err := p.parseExpression()
			if err != nil {
				return err
			}

			stmt.Init = expr

			return nil

		default:
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", strconv.Quote(key)))
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveName {
		return nil, requireKey("init", "name", pos)
	}

	if !haveType {
		return nil, requireKey("init", "datatype", pos)
	}

	return stmt, nil
}

// parseSetBlock parses the system.set keyed block:
//
//	{"name": v, "value": expr}
func (p *parser) parseSetBlock(pos Position) (*VariableSet, error) {
	stmt := &VariableSet{node: node{Position: pos}}

	var haveName, haveValue bool

	err := p.parseKeyedBlock(func(key string, keyTok Token, bare bool) error {
		if bare {
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", keyTok.Lexeme))
		}

		switch key {
		case "name":
			name, err := p.parseName()
			if err != nil {
				return err
			}

			stmt.Name = name
			haveName = true

			return nil

		case "value":
			expr, err := p.parseExpression()
			if err != nil {
				return err
			}

			stmt.Value = expr
			haveValue = true

			return nil

		default:
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", strconv.Quote(key)))
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveName {
		return nil, requireKey("set", "name", pos)
	}

	if !haveValue {
		return nil, requireKey("set", "value", pos)
	}

	return stmt, nil
}

// parseLogBlock parses the system.log keyed block:
//
//	{"type": info, arguments{expr, ...}, "message": expr}
func (p *parser) parseLogBlock(pos Position) (*Log, error) {
	stmt := &Log{node: node{Position: pos}}

	var haveLevel, haveMessage bool

	err := p.parseKeyedBlock(func(key string, keyTok Token, bare bool) error {
		if bare {
			if key != "arguments" {
				return ErrUnexpectedToken.
					WithPosition(keyTok.Pos()).
					With(slog.String("got", keyTok.Lexeme))
			}

			args, err := p.parseArguments()
			if err != nil {
				return err
			}

			stmt.Args = args

			return nil
		}

		switch key {
		case "type":
			level, err := p.parseLogLevel()
			if err != nil {
				return err
			}

			stmt.Level = level
			haveLevel = true

			return nil

		case "message":
			expr, err := p.parseExpression()
			if err != nil {
				return err
			}

			stmt.Message = expr
			haveMessage = true

			return nil

		default:
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", strconv.Quote(key)))
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveLevel {
		return nil, requireKey("log", "type", pos)
	}

	if !haveMessage {
		return nil, requireKey("log", "message", pos)
	}

	return stmt, nil
}

// parseLogLevel consumes a level keyword entry.
func (p *parser) parseLogLevel() (LogLevel, error) {
	tok := p.cur()

	switch tok.Kind {
	case TokInfo:
		p.advance()

		return LevelInfo, nil

	case TokWarn:
		p.advance()

		return LevelWarn, nil

	case TokError:
		p.advance()

		return LevelError, nil

	default:
		return 0, ErrUnexpectedToken.
			WithPosition(tok.Pos()).
			With(
				slog.String("expected", "log level keyword"),
				slog.String("got", tok.Kind.String()),
			)
	}
}

// parseArguments parses arguments{ expr, expr, ... }.
func (p *parser) parseArguments() ([]Expression, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	var args []Expression

	for {
		switch p.peek() {
		case TokRBrace:
			p.advance()

			return args, nil

		case TokEOF:
			return nil, ErrMissingDelim.
				WithPosition(p.cur().Pos()).
				With(slog.String("expected", TokRBrace.String()))
		}

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, expr)

		if p.peek() == TokComma {
			p.advance()
		}
	}
}

// parseExecBlock parses the system.exec keyed block:
//
//	{"type": function, "name": f, parameters{p => expr, ...}}
func (p *parser) parseExecBlock(pos Position) (*FunctionCall, error) {
	stmt := &FunctionCall{node: node{Position: pos}}

	var haveName bool

	err := p.parseKeyedBlock(func(key string, keyTok Token, bare bool) error {
		if bare {
			if key != "parameters" {
				return ErrUnexpectedToken.
					WithPosition(keyTok.Pos()).
					With(slog.String("got", keyTok.Lexeme))
			}

			args, err := p.parseParameters()
			if err != nil {
				return err
			}

			stmt.Args = args

			return nil
		}

		switch key {
		case "type":
			_, err := p.expect(TokFunction)

			return err

		case "name":
			name, err := p.parseName()
			if err != nil {
				return err
			}

			stmt.Name = name
			haveName = true

			return nil

		default:
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", strconv.Quote(key)))
		}
	})
	if err != nil {
		return nil, err
	}

	if !haveName {
		return nil, requireKey("exec", "name", pos)
	}

	return stmt, nil
}

// parseParameters parses parameters{ name => expr, ... }. This form is a
// mapping from parameter name to argument expression, distinct from the
// quoted "key": value entries used elsewhere; the parser selects it
// purely from the preceding 'parameters' identifier.
func (p *parser) parseParameters() ([]Argument, error) {
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	var args []Argument

	seen := make(map[string]struct{})

	for {
		switch p.peek() {
		case TokRBrace:
			p.advance()

			return args, nil

		case TokEOF:
			return nil, ErrMissingDelim.
				WithPosition(p.cur().Pos()).
				With(slog.String("expected", TokRBrace.String()))
		}

		nameTok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}

		if _, dup := seen[nameTok.Lexeme]; dup {
			return nil, ErrDuplicateKey.
				WithPosition(nameTok.Pos()).
				With(slog.String("key", nameTok.Lexeme))
		}

		seen[nameTok.Lexeme] = struct{}{}

		if _, err := p.expect(TokArrow); err != nil {
			return nil, err
		}

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, Argument{Name: nameTok.Lexeme, Value: expr})

		if p.peek() == TokComma {
			p.advance()
		}
	}
}

// parseIncludeBlock parses the system.include keyed block:
//
//	{"name": remote, "from": "file.q", "as": alias}
//
// The "as" entry is optional; absent, the alias is the remote name.
func (p *parser) parseIncludeBlock(pos Position) (*Include, error) {
	stmt := &Include{node: node{Position: pos}}

	var spec ImportSpec

	err := p.parseKeyedBlock(func(key string, keyTok Token, bare bool) error {
		if bare {
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", keyTok.Lexeme))
		}

		switch key {
		case "name":
			name, err := p.parseName()
			if err != nil {
				return err
			}

			spec.Remote = name

			return nil

		case "from":
			tok, err := p.expect(TokStringLit)
			if err != nil {
				return err
			}

			spec.Source = tok.Lexeme

			return nil

		case "as":
			name, err := p.parseName()
			if err != nil {
				return err
			}

			spec.Alias = name

			return nil

		default:
			return ErrUnexpectedToken.
				WithPosition(keyTok.Pos()).
				With(slog.String("got", strconv.Quote(key)))
		}
	})
	if err != nil {
		return nil, err
	}

	if spec.Remote == "" {
		return nil, requireKey("include", "name", pos)
	}

	if spec.Source == "" {
		return nil, requireKey("include", "from", pos)
	}

	if spec.Alias == "" {
		spec.Alias = spec.Remote
	}

	stmt.Specs = append(stmt.Specs, spec)

	return stmt, nil
}

// parseFunctionDecl parses a function declaration:
//
//	function name(p in number, q in string) { statement; ... };
//
// The body shares the { } delimiter with keyed blocks but is selected by
// the preceding function header.
func (p *parser) parseFunctionDecl() (*FunctionDecl, error) {
	fn := p.advance() // consume 'function'

	stmt := &FunctionDecl{node: node{Position: fn.Pos()}}

	nameTok, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}

	stmt.Name = nameTok.Lexeme

	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}

	for p.peek() != TokRParen {
		if p.peek() == TokEOF {
			return nil, ErrMissingDelim.
				WithPosition(p.cur().Pos()).
				With(slog.String("expected", TokRParen.String()))
		}

		paramTok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokIn); err != nil {
			return nil, err
		}

		typ, err := p.parseDataType()
		if err != nil {
			return nil, err
		}

		stmt.Params = append(stmt.Params, Param{
			Name: paramTok.Lexeme,
			Type: typ,
		})

		if p.peek() == TokComma {
			p.advance()
		}
	}

	p.advance() // consume ')'

	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	for p.peek() != TokRBrace {
		if p.peek() == TokEOF {
			return nil, ErrMissingDelim.
				WithPosition(p.cur().Pos()).
				With(slog.String("expected", TokRBrace.String()))
		}

		body, err := p.parseStatement(true)
		if err != nil {
			return nil, err
		}

		stmt.Body = append(stmt.Body, body)
	}

	p.advance() // consume '}'

	if _, err := p.expect(TokSemicolon); err != nil {
		return nil, err
	}

	return stmt, nil
}

// parseReturn parses return [expr] ;.
func (p *parser) parseReturn() (*Return, error) {
	ret := p.advance() // consume 'return'

	stmt := &Return{node: node{Position: ret.Pos()}}

	if p.peek() != TokSemicolon {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		stmt.Value = expr
	}

	if _, err := p.expect(TokSemicolon); err != nil {
		return nil, err
	}

	return stmt, nil
}

// Expression parsing. Precedence, lowest to highest:
//
//	& (concatenation)  <  + -  <  * /  <  member access
//
// All binary operators are left-associative.

func (p *parser) parseExpression() (Expression, error) {
	return p.parseConcat()
}

func (p *parser) parseConcat() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for p.peek() == TokAmp {
		op := p.advance()

		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		left = &Binary{
			node:  node{Position: op.Pos()},
			Op:    OpConcat,
			Left:  left,
			Right: right,
		}
	}

	return left, nil
}

func (p *parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.peek() == TokPlus || p.peek() == TokMinus {
		op := p.advance()

		binOp := OpAdd
		if op.Kind == TokMinus {
			binOp = OpSub
		}

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		left = &Binary{
			node:  node{Position: op.Pos()},
			Op:    binOp,
			Left:  left,
			Right: right,
		}
	}

	return left, nil
}

func (p *parser) parseMultiplicative() (Expression, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	for p.peek() == TokStar || p.peek() == TokSlash {
		op := p.advance()

		binOp := OpMul
		if op.Kind == TokSlash {
			binOp = OpDiv
		}

		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}

		left = &Binary{
			node:  node{Position: op.Pos()},
			Op:    binOp,
			Left:  left,
			Right: right,
		}
	}

	return left, nil
}

// parsePostfix parses member access: expr.value or expr.type.
func (p *parser) parsePostfix() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.peek() == TokDot {
		dot := p.advance()

		tok, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}

		var member Member

		switch tok.Lexeme {
		case "value":
			member = MemberValue
		case "type":
			member = MemberType
		default:
			return nil, ErrUnexpectedToken.
				WithPosition(tok.Pos()).
				With(
					slog.String("expected", "'value' or 'type'"),
					slog.String("got", tok.Lexeme),
				)
		}

		expr = &MemberAccess{
			node:   node{Position: dot.Pos()},
			Base:   expr,
			Member: member,
		}
	}

	return expr, nil
}

func (p *parser) parsePrimary() (Expression, error) {
	tok := p.cur()

	switch tok.Kind {
	case TokStringLit:
		p.advance()

		return &StringLit{node: node{Position: tok.Pos()}, Value: tok.Lexeme}, nil

	case TokNumberLit:
		p.advance()

		num, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, ErrUnexpectedToken.
				WithPosition(tok.Pos()).
				Wrap(err)
		}

		return &NumberLit{node: node{Position: tok.Pos()}, Value: num}, nil

	case TokTrue, TokFalse:
		p.advance()

		return &BoolLit{
			node:  node{Position: tok.Pos()},
			Value: tok.Kind == TokTrue,
		}, nil

	case TokNull:
		p.advance()

		return &NullLit{node: node{Position: tok.Pos()}}, nil

	case TokIdent:
		p.advance()

		return &Ident{node: node{Position: tok.Pos()}, Name: tok.Lexeme}, nil

	case TokLParen:
		p.advance()

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}

		return expr, nil

	default:
		return nil, ErrUnexpectedToken.
			WithPosition(tok.Pos()).
			With(
				slog.String("expected", "expression"),
				slog.String("got", tok.Kind.String()),
			)
	}
}
