// Package parser builds script documents from Clausewitz script text.
//
// A document is a sequence of top-level named blocks. Block bodies are
// either statements (key = value) or a bare value list; the form is chosen
// by looking past the opening brace. An empty body is an empty statement
// block. Repeated keys merge into a Multiple slot and never overwrite.
//
// Comment-embedded markers are part of the grammar: #@COUNTRY and
// #@COUNTRIES declare the country scope of a top-level block, and
// #@override directives are collected on the block that contains them.
//
// Lexical problems are recovered and reported as diagnostics. A token
// sequence that matches no production aborts the file with a
// *script.SyntaxError and no partial document.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pdxkit/clausewitz/internal/lexer"
	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// maxDepth bounds block nesting so hostile input cannot exhaust the stack.
const maxDepth = 512

// Parser converts a token stream into a script.Document.
// A Parser is single-use: construct one per file.
type Parser struct {
	lex         *lexer.Lexer
	buf         [4]lexer.Token // buf[0]=current, buf[1..3]=lookahead
	filename    string
	depth       int
	diagnostics []script.Diagnostic
	diagConfig  script.DiagnosticConfig
	types.Logger
}

// New returns a Parser over source. The filename is used only to annotate
// diagnostics and errors. Pass nil for logger to disable logging.
func New(source []byte, filename string, logger *slog.Logger, diagConfig script.DiagnosticConfig) *Parser {
	lex := lexer.New(source, types.Component(logger, "lexer"))
	p := &Parser{
		lex:        lex,
		filename:   filename,
		diagConfig: diagConfig,
		Logger:     types.Logger{L: types.Component(logger, "parser")},
	}
	for i := range p.buf {
		p.buf[i] = lex.NextToken()
	}
	return p
}

// Parse parses the whole input.
func (p *Parser) Parse() (*script.Document, error) {
	doc := &script.Document{Filename: p.filename}

	for !p.isEOF() {
		if p.check(lexer.TokMarker) {
			p.skipMarker(types.DiagMisplacedScope, "marker outside a block is ignored")
			continue
		}
		entry, err := p.parseNamedBlock()
		if err != nil {
			p.Log(slog.LevelDebug, "syntax error",
				slog.String("file", p.filename),
				slog.Int("line", err.Line),
				slog.String("found", err.Found))
			return nil, err
		}
		doc.Entries = append(doc.Entries, entry)
	}

	diags := append(p.lex.Diagnostics(), p.diagnostics...)
	for i := range diags {
		diags[i].File = p.filename
	}
	doc.Diagnostics = p.diagConfig.Filter(diags)

	p.Log(slog.LevelDebug, "parsing complete",
		slog.String("file", p.filename),
		slog.Int("entries", len(doc.Entries)),
		slog.Int("diagnostics", len(doc.Diagnostics)))
	return doc, nil
}

func (p *Parser) parseNamedBlock() (*script.Entry, *script.SyntaxError) {
	name, err := p.expect(lexer.TokIdent, "block name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokEquals, "'='"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLBrace, "'{'"); err != nil {
		return nil, err
	}

	entry := &script.Entry{Name: name.Text, Body: script.NewBlock(), Line: name.Line}
	p.Log(slog.LevelDebug, "parsing entry", slog.String("name", name.Text), slog.Int("line", name.Line))

	if p.check(lexer.TokMarker) && isScopeMarker(p.peek().Text) {
		scope, err := p.parseScope()
		if err != nil {
			return nil, err
		}
		entry.Scope = scope
	}
	if err := p.parseStatements(entry.Body); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return entry, nil
}

// parseStatements parses statements into block until a closing brace,
// which is left unconsumed.
func (p *Parser) parseStatements(block *script.Block) *script.SyntaxError {
	for {
		tok := p.peek()
		switch tok.Kind {
		case lexer.TokRBrace:
			return nil
		case lexer.TokEOF:
			return p.makeError("'}'")
		case lexer.TokMarker:
			if !strings.EqualFold(tok.Text, "override") {
				p.skipMarker(markerCode(tok.Text), fmt.Sprintf("marker #@%s is not valid here", tok.Text))
				continue
			}
			d, err := p.parseOverride()
			if err != nil {
				return err
			}
			block.Directives = append(block.Directives, d)
		default:
			if err := p.parseStatement(block); err != nil {
				return err
			}
		}
	}
}

func (p *Parser) parseStatement(block *script.Block) *script.SyntaxError {
	start := p.peek()
	key, err := p.parseKey()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.TokEquals, "'='"); err != nil {
		return err
	}
	value, err := p.parseValue()
	if err != nil {
		return err
	}
	if p.TraceEnabled() {
		p.Trace("statement", slog.String("key", key.String()), slog.Int("line", start.Line))
	}
	block.AddAt(key, value, start.Line, start.Column)
	return nil
}

func (p *Parser) parseKey() (script.Key, *script.SyntaxError) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokIdent:
		p.advance()
		if p.check(lexer.TokDot) && p.peekNth(1).Kind == lexer.TokIdent {
			p.advance()
			member := p.advance()
			return script.Qualified(tok.Text, member.Text), nil
		}
		return script.Ident(tok.Text), nil
	case lexer.TokInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.warn(types.DiagInvalidNumber, tok, fmt.Sprintf("integer key %s out of range, kept as text", tok.Text))
			return script.Ident(tok.Text), nil
		}
		return script.IntKey(n), nil
	case lexer.TokFloat:
		p.advance()
		return script.Ident(tok.Text), nil
	case lexer.TokDate:
		p.advance()
		return script.DateKey(tok.Text), nil
	}
	return script.Key{}, p.makeError("key")
}

func (p *Parser) parseValue() (script.Node, *script.SyntaxError) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokIdent:
		p.advance()
		if p.check(lexer.TokColon) && p.peekNth(1).Kind == lexer.TokIdent {
			p.advance()
			rhs := p.advance()
			return script.StringValue(tok.Text + ":" + rhs.Text), nil
		}
		if p.check(lexer.TokLBrace) {
			inner, err := p.parseBraced()
			if err != nil {
				return nil, err
			}
			return &script.Tagged{Tag: tok.Text, Value: inner}, nil
		}
		return script.IdentValue(tok.Text), nil
	case lexer.TokInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			f, _ := strconv.ParseFloat(tok.Text, 64)
			p.warn(types.DiagInvalidNumber, tok, fmt.Sprintf("integer %s out of range, kept as float", tok.Text))
			return script.Scalar{Kind: script.ScalarFloat, Text: tok.Text, Float: f}, nil
		}
		return script.Scalar{Kind: script.ScalarInt, Text: tok.Text, Int: n}, nil
	case lexer.TokFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.warn(types.DiagInvalidNumber, tok, fmt.Sprintf("invalid number %s", tok.Text))
		}
		return script.Scalar{Kind: script.ScalarFloat, Text: tok.Text, Float: f}, nil
	case lexer.TokDate:
		p.advance()
		return script.DateValue(tok.Text), nil
	case lexer.TokString:
		p.advance()
		return script.StringValue(tok.Text), nil
	case lexer.TokYes:
		p.advance()
		return script.BoolValue(true), nil
	case lexer.TokNo:
		p.advance()
		return script.BoolValue(false), nil
	case lexer.TokLBrace:
		return p.parseBraced()
	case lexer.TokLBracket:
		return p.parseBracketList()
	}
	return nil, p.makeError("value")
}

// parseBraced parses { ... } as a statement block or a bare list.
func (p *Parser) parseBraced() (script.Node, *script.SyntaxError) {
	open, err := p.expect(lexer.TokLBrace, "'{'")
	if err != nil {
		return nil, err
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorAt(open, fmt.Sprintf("at most %d levels of nesting", maxDepth))
	}

	var node script.Node
	if p.startsStatement() {
		block := script.NewBlock()
		if err := p.parseStatements(block); err != nil {
			return nil, err
		}
		node = block
	} else {
		list := &script.List{}
		for !p.check(lexer.TokRBrace) {
			if p.check(lexer.TokEOF) {
				return nil, p.makeError("'}'")
			}
			if p.check(lexer.TokMarker) {
				p.skipMarker(markerCode(p.peek().Text), "marker inside a value list is ignored")
				continue
			}
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, v)
		}
		node = list
	}

	if _, err := p.expect(lexer.TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return node, nil
}

// startsStatement decides the form of a block body from the tokens after
// the opening brace. An empty body and a leading marker count as
// statements; otherwise a key followed by '=' does.
func (p *Parser) startsStatement() bool {
	t0, t1 := p.peekNth(0), p.peekNth(1)
	switch t0.Kind {
	case lexer.TokRBrace, lexer.TokMarker:
		return true
	case lexer.TokInt, lexer.TokFloat, lexer.TokDate:
		return t1.Kind == lexer.TokEquals
	case lexer.TokIdent:
		if t1.Kind == lexer.TokEquals {
			return true
		}
		return t1.Kind == lexer.TokDot &&
			p.peekNth(2).Kind == lexer.TokIdent &&
			p.peekNth(3).Kind == lexer.TokEquals
	}
	return false
}

// parseBracketList parses [ v1, v2 ... ] with optional commas.
func (p *Parser) parseBracketList() (script.Node, *script.SyntaxError) {
	p.advance()
	list := &script.List{}
	for !p.check(lexer.TokRBracket) {
		if p.check(lexer.TokComma) {
			p.advance()
			continue
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, v)
	}
	p.advance()
	return list, nil
}

func (p *Parser) isEOF() bool {
	return p.peek().Kind == lexer.TokEOF
}

func (p *Parser) peek() lexer.Token {
	return p.buf[0]
}

func (p *Parser) peekNth(n int) lexer.Token {
	return p.buf[n]
}

func (p *Parser) advance() lexer.Token {
	tok := p.buf[0]
	copy(p.buf[:], p.buf[1:])
	p.buf[len(p.buf)-1] = p.lex.NextToken()
	return tok
}

func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) expect(kind lexer.TokenKind, expected string) (lexer.Token, *script.SyntaxError) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.makeError(expected)
}

func (p *Parser) makeError(expected string) *script.SyntaxError {
	return p.errorAt(p.peek(), expected)
}

func (p *Parser) errorAt(tok lexer.Token, expected string) *script.SyntaxError {
	return &script.SyntaxError{
		Filename: p.filename,
		Line:     tok.Line,
		Column:   tok.Column,
		Found:    tok.Describe(),
		Expected: expected,
	}
}

func (p *Parser) warn(code string, tok lexer.Token, message string) {
	if !p.diagConfig.ShouldReport(code, script.SeverityWarning) {
		return
	}
	p.diagnostics = append(p.diagnostics, script.Diagnostic{
		Severity: script.SeverityWarning,
		Code:     code,
		Phase:    types.PhaseParser,
		Message:  message,
		Line:     tok.Line,
		Column:   tok.Column,
	})
}
