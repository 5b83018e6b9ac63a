package lang

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokEOF TokenKind = iota

	// Keywords.
	TokSystem
	TokFunction
	TokReturn
	TokIn
	TokVariable
	TokArray
	TokString
	TokNumber
	TokBool
	TokTrue
	TokFalse
	TokNull
	TokInfo
	TokWarn
	TokError

	// Literals and identifiers.
	TokStringLit
	TokNumberLit
	TokIdent

	// Punctuation.
	TokLBrace
	TokRBrace
	TokLParen
	TokRParen
	TokDot
	TokComma
	TokColon
	TokSemicolon
	TokArrow // =>

	// Operators.
	TokAmp
	TokPlus
	TokMinus
	TokStar
	TokSlash
)

// keywords maps reserved identifier spellings to their keyword kind.
// Identifiers not present here lex as TokIdent.
var keywords = map[string]TokenKind{
	"system":   TokSystem,
	"function": TokFunction,
	"return":   TokReturn,
	"in":       TokIn,
	"variable": TokVariable,
	"array":    TokArray,
	"string":   TokString,
	"number":   TokNumber,
	"bool":     TokBool,
	"true":     TokTrue,
	"false":    TokFalse,
	"null":     TokNull,
	"info":     TokInfo,
	"warn":     TokWarn,
	"error":    TokError,
}

// String returns a human-readable name for the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "end of input"
	case TokSystem:
		return "'system'"
	case TokFunction:
		return "'function'"
	case TokReturn:
		return "'return'"
	case TokIn:
		return "'in'"
	case TokVariable:
		return "'variable'"
	case TokArray:
		return "'array'"
	case TokString:
		return "'string'"
	case TokNumber:
		return "'number'"
	case TokBool:
		return "'bool'"
	case TokTrue:
		return "'true'"
	case TokFalse:
		return "'false'"
	case TokNull:
		return "'null'"
	case TokInfo:
		return "'info'"
	case TokWarn:
		return "'warn'"
	case TokError:
		return "'error'"
	case TokStringLit:
		return "string literal"
	case TokNumberLit:
		return "number literal"
	case TokIdent:
		return "identifier"
	case TokLBrace:
		return "'{'"
	case TokRBrace:
		return "'}'"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokDot:
		return "'.'"
	case TokComma:
		return "','"
	case TokColon:
		return "':'"
	case TokSemicolon:
		return "';'"
	case TokArrow:
		return "'=>'"
	case TokAmp:
		return "'&'"
	case TokPlus:
		return "'+'"
	case TokMinus:
		return "'-'"
	case TokStar:
		return "'*'"
	case TokSlash:
		return "'/'"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of Q source text. Lexeme holds the literal
// content with string quotes and escapes already resolved.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

// Pos returns the token's source position.
func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column}
}
