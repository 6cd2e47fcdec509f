package lexer

import (
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// Lexer tokenizes Clausewitz script source text. It never fails: illegal
// input is reported as a diagnostic and skipped.
type Lexer struct {
	source      []byte
	pos         int
	line        int
	lineStart   int
	diagnostics []script.Diagnostic
	types.Logger
}

// New returns a Lexer that tokenizes the given source bytes.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source: source,
		line:   1,
		Logger: types.Logger{L: logger},
	}
	l.Log(slog.LevelDebug, "lexer initialized", slog.Int("bytes", len(source)))
	return l
}

// Diagnostics returns a copy of all collected diagnostics.
func (l *Lexer) Diagnostics() []script.Diagnostic {
	return slices.Clone(l.diagnostics)
}

// Tokenize consumes all source text and returns the token stream, ending
// with TokEOF, along with any diagnostics generated during lexing.
func (l *Lexer) Tokenize() ([]Token, []script.Diagnostic) {
	tokens := make([]Token, 0, max(len(l.source)/5, 64))
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	l.Log(slog.LevelDebug, "tokenization complete",
		slog.Int("tokens", len(tokens)),
		slog.Int("diagnostics", len(l.diagnostics)))
	return tokens, l.Diagnostics()
}

// NextToken advances the lexer and returns the next token.
// Returns TokEOF, repeatedly, once all input is consumed.
func (l *Lexer) NextToken() Token {
	for {
		tok, ok := l.scan()
		if ok {
			if l.TraceEnabled() {
				l.Trace("token",
					slog.String("kind", tok.Kind.String()),
					slog.String("text", tok.Text),
					slog.Int("line", tok.Line))
			}
			return tok
		}
	}
}

func (l *Lexer) peek() (byte, bool) {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) (byte, bool) {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0, false
	}
	return l.source[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	b := l.source[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.lineStart = l.pos
	}
	return b, true
}

func (l *Lexer) column(offset int) int {
	return offset - l.lineStart + 1
}

func (l *Lexer) skipWhitespace() {
	for {
		b, ok := l.peek()
		if !ok || (b != ' ' && b != '\t' && b != '\r' && b != '\n') {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipToEOL() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) warn(code string, line, column int, message string) {
	l.diagnostics = append(l.diagnostics, script.Diagnostic{
		Severity: script.SeverityWarning,
		Code:     code,
		Phase:    types.PhaseLexer,
		Message:  message,
		Line:     line,
		Column:   column,
	})
}

// scan returns the next token, or ok=false when it only skipped input
// (a comment or an illegal character) and the caller should retry.
func (l *Lexer) scan() (tok Token, ok bool) {
	l.skipWhitespace()

	start := l.pos
	line, col := l.line, l.column(start)
	mk := func(kind TokenKind, text string) Token {
		return Token{Kind: kind, Text: text, Offset: start, Line: line, Column: col}
	}

	b, more := l.peek()
	if !more {
		return mk(TokEOF, ""), true
	}

	switch b {
	case '#':
		if next, ok := l.peekAt(1); ok && next == '@' {
			return l.scanMarker(start, line, col)
		}
		l.skipToEOL()
		return Token{}, false
	case '=':
		l.advance()
		return mk(TokEquals, "="), true
	case '{':
		l.advance()
		return mk(TokLBrace, "{"), true
	case '}':
		l.advance()
		return mk(TokRBrace, "}"), true
	case '(':
		l.advance()
		return mk(TokLParen, "("), true
	case ')':
		l.advance()
		return mk(TokRParen, ")"), true
	case '.':
		l.advance()
		return mk(TokDot, "."), true
	case ':':
		l.advance()
		return mk(TokColon, ":"), true
	case '[':
		l.advance()
		return mk(TokLBracket, "["), true
	case ']':
		l.advance()
		return mk(TokRBracket, "]"), true
	case ',':
		l.advance()
		return mk(TokComma, ","), true
	case '"':
		return l.scanString(start, line, col), true
	}

	if b == '-' || b == '+' {
		if next, ok := l.peekAt(1); ok && isDigit(next) {
			l.advance()
			return l.scanNumber(start, line, col, true), true
		}
	}
	if isDigit(b) {
		return l.scanNumber(start, line, col, false), true
	}
	if isIdentStart(b) {
		text := l.scanName()
		switch text {
		case "yes":
			return mk(TokYes, text), true
		case "no":
			return mk(TokNo, text), true
		}
		return mk(TokIdent, text), true
	}

	r, size := utf8.DecodeRune(l.source[l.pos:])
	for range size {
		l.advance()
	}
	l.warn(types.DiagIllegalCharacter, line, col, fmt.Sprintf("illegal character %q", r))
	return Token{}, false
}

func (l *Lexer) scanName() string {
	start := l.pos
	for {
		b, ok := l.peek()
		if !ok || !isIdentPart(b) {
			break
		}
		l.advance()
	}
	return string(l.source[start:l.pos])
}

// scanNumber scans an integer, a float with a single decimal point, or an
// unsigned date with two or more dots. Dots not followed by a digit end
// the number.
func (l *Lexer) scanNumber(start, line, col int, signed bool) Token {
	l.skipDigits()
	dots := 0
	for {
		b, ok := l.peek()
		next, ok2 := l.peekAt(1)
		if !ok || !ok2 || b != '.' || !isDigit(next) {
			break
		}
		if dots == 1 && signed {
			break
		}
		l.advance()
		l.skipDigits()
		dots++
	}
	kind := TokInt
	switch {
	case dots == 1:
		kind = TokFloat
	case dots > 1:
		kind = TokDate
	}
	return Token{Kind: kind, Text: string(l.source[start:l.pos]), Offset: start, Line: line, Column: col}
}

func (l *Lexer) skipDigits() {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			return
		}
		l.advance()
	}
}

// scanString scans a double-quoted string. There is no escape processing.
// An unterminated string runs to the end of input.
func (l *Lexer) scanString(start, line, col int) Token {
	l.advance()
	for {
		b, ok := l.advance()
		if !ok {
			l.warn(types.DiagUnterminatedString, line, col, "unterminated string")
			return Token{Kind: TokString, Text: string(l.source[start+1:]), Offset: start, Line: line, Column: col}
		}
		if b == '"' {
			return Token{Kind: TokString, Text: string(l.source[start+1 : l.pos-1]), Offset: start, Line: line, Column: col}
		}
	}
}

// scanMarker scans #@NAME. A #@ without a name is reported and the rest
// of the line is treated as a comment.
func (l *Lexer) scanMarker(start, line, col int) (Token, bool) {
	l.advance()
	l.advance()
	if b, ok := l.peek(); !ok || !isIdentStart(b) {
		l.warn(types.DiagMalformedMarker, line, col, "marker #@ without a name")
		l.skipToEOL()
		return Token{}, false
	}
	name := l.scanName()
	return Token{Kind: TokMarker, Text: name, Offset: start, Line: line, Column: col}, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
