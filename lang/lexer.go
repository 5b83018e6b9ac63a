package lang

import (
	"log/slog"
	"strings"
)

// lexer scans Q source text into tokens. It operates on raw bytes; the
// surface syntax is ASCII, and non-ASCII bytes only ever appear inside
// string literals or comments, where they pass through untouched.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// punct maps single-byte punctuation and operators to their token kind.
var punct = map[byte]TokenKind{
	'{': TokLBrace,
	'}': TokRBrace,
	'(': TokLParen,
	')': TokRParen,
	'.': TokDot,
	',': TokComma,
	':': TokColon,
	';': TokSemicolon,
	'&': TokAmp,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
}

// tokenize scans the whole source, returning the token sequence
// terminated by a TokEOF token, or the first lexical error.
func tokenize(source string) ([]Token, error) {
	lx := &lexer{src: source, line: 1, col: 1}

	var tokens []Token

	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)

		if tok.Kind == TokEOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) peek() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}

	return lx.src[lx.pos]
}

func (lx *lexer) peekAt(offset int) byte {
	if lx.pos+offset >= len(lx.src) {
		return 0
	}

	return lx.src[lx.pos+offset]
}

func (lx *lexer) advance() byte {
	c := lx.src[lx.pos]
	lx.pos++

	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}

	return c
}

// skipWhitespaceAndComments discards whitespace and // line comments.
// Comments terminate at the newline and never produce tokens.
func (lx *lexer) skipWhitespaceAndComments() {
	for lx.pos < len(lx.src) {
		switch c := lx.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			lx.advance()

		case c == '/' && lx.peekAt(1) == '/':
			for lx.pos < len(lx.src) && lx.peek() != '\n' {
				lx.advance()
			}

		default:
			return
		}
	}
}

// next scans and returns the next token.
func (lx *lexer) next() (Token, error) {
	lx.skipWhitespaceAndComments()

	line, col := lx.line, lx.col

	if lx.pos >= len(lx.src) {
		return Token{Kind: TokEOF, Line: line, Column: col}, nil
	}

	c := lx.peek()

	switch {
	case c == '"':
		return lx.scanString()

	case c >= '0' && c <= '9':
		return lx.scanNumber(), nil

	case isIdentStart(c):
		return lx.scanIdentOrKeyword(), nil

	case c == '=' && lx.peekAt(1) == '>':
		lx.advance()
		lx.advance()

		return Token{Kind: TokArrow, Lexeme: "=>", Line: line, Column: col}, nil
	}

	if kind, ok := punct[c]; ok {
		lx.advance()

		return Token{
			Kind:   kind,
			Lexeme: string(c),
			Line:   line,
			Column: col,
		}, nil
	}

	return Token{}, ErrUnexpectedChar.
		WithPosition(Position{Line: line, Column: col}).
		With(slog.String("char", string(c)))
}

// scanString scans a double-quoted string literal, resolving the escape
// sequences \" \\ \n \t. Unknown escapes keep the backslash verbatim.
// Literals may not span lines.
func (lx *lexer) scanString() (Token, error) {
	line, col := lx.line, lx.col

	lx.advance() // opening quote

	var buf strings.Builder

	for {
		if lx.pos >= len(lx.src) || lx.peek() == '\n' {
			return Token{}, ErrUnterminatedString.
				WithPosition(Position{Line: line, Column: col})
		}

		c := lx.advance()

		switch c {
		case '"':
			return Token{
				Kind:   TokStringLit,
				Lexeme: buf.String(),
				Line:   line,
				Column: col,
			}, nil

		case '\\':
			if lx.pos >= len(lx.src) || lx.peek() == '\n' {
				return Token{}, ErrUnterminatedString.
					WithPosition(Position{Line: line, Column: col})
			}

			switch esc := lx.advance(); esc {
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			default:
				buf.WriteByte('\\')
				buf.WriteByte(esc)
			}

		default:
			buf.WriteByte(c)
		}
	}
}

// scanNumber scans an integer or decimal literal. A '.' is consumed only
// when followed by a digit, so member access on a literal still lexes as
// separate tokens.
func (lx *lexer) scanNumber() Token {
	line, col := lx.line, lx.col
	start := lx.pos

	for lx.pos < len(lx.src) && isDigit(lx.peek()) {
		lx.advance()
	}

	if lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		lx.advance() // '.'

		for lx.pos < len(lx.src) && isDigit(lx.peek()) {
			lx.advance()
		}
	}

	return Token{
		Kind:   TokNumberLit,
		Lexeme: lx.src[start:lx.pos],
		Line:   line,
		Column: col,
	}
}

// scanIdentOrKeyword scans an identifier and promotes reserved spellings
// to their keyword kind.
func (lx *lexer) scanIdentOrKeyword() Token {
	line, col := lx.line, lx.col
	start := lx.pos

	for lx.pos < len(lx.src) && isIdentPart(lx.peek()) {
		lx.advance()
	}

	lexeme := lx.src[start:lx.pos]

	kind := TokIdent
	if kw, ok := keywords[lexeme]; ok {
		kind = kw
	}

	return Token{Kind: kind, Lexeme: lexeme, Line: line, Column: col}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
