// Package lexer provides tokenization for Clausewitz script text.
package lexer

import "fmt"

// Token is a lexical token with its source text and position.
type Token struct {
	Kind TokenKind
	// Text is the token's source text. Strings are unquoted and markers
	// carry their name without the leading #@.
	Text   string
	Offset int
	Line   int
	Column int
}

// TokenKind identifies a token type.
type TokenKind int

const (
	// TokEOF is end of input.
	TokEOF TokenKind = iota

	// TokIdent is an identifier: [A-Za-z_][A-Za-z0-9_]*.
	TokIdent
	// TokInt is a signed integer literal.
	TokInt
	// TokFloat is a signed number with a decimal point.
	TokFloat
	// TokDate is a dotted date such as 1936.1.1.
	TokDate
	// TokString is a double-quoted string literal.
	TokString
	// TokYes is the keyword yes.
	TokYes
	// TokNo is the keyword no.
	TokNo
	// TokMarker is a comment-embedded marker, #@ followed by a name.
	TokMarker

	TokEquals
	TokLBrace
	TokRBrace
	TokLParen
	TokRParen
	TokDot
	TokColon
	TokLBracket
	TokRBracket
	TokComma
)

var kindNames = [...]string{
	TokEOF:      "end of file",
	TokIdent:    "identifier",
	TokInt:      "integer",
	TokFloat:    "float",
	TokDate:     "date",
	TokString:   "string",
	TokYes:      "'yes'",
	TokNo:       "'no'",
	TokMarker:   "marker",
	TokEquals:   "'='",
	TokLBrace:   "'{'",
	TokRBrace:   "'}'",
	TokLParen:   "'('",
	TokRParen:   "')'",
	TokDot:      "'.'",
	TokColon:    "':'",
	TokLBracket: "'['",
	TokRBracket: "']'",
	TokComma:    "','",
}

// String returns a description of the kind suitable for error messages.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsNumber reports whether the kind is an integer or float literal.
func (k TokenKind) IsNumber() bool {
	return k == TokInt || k == TokFloat
}

// Describe returns the token as it should appear in a syntax error.
func (t Token) Describe() string {
	switch t.Kind {
	case TokEOF:
		return "end of file"
	case TokString:
		return fmt.Sprintf("string %q", t.Text)
	case TokMarker:
		return "marker #@" + t.Text
	case TokIdent, TokInt, TokFloat, TokDate:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}
