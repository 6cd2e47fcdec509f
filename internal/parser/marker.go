package parser

import (
	"log/slog"
	"strings"

	"github.com/pdxkit/clausewitz/internal/lexer"
	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

func isScopeMarker(name string) bool {
	return strings.EqualFold(name, "COUNTRY") || strings.EqualFold(name, "COUNTRIES")
}

func markerCode(name string) string {
	if isScopeMarker(name) {
		return types.DiagMisplacedScope
	}
	return types.DiagUnknownMarker
}

// parseScope parses a leading scope marker:
//
//	#@COUNTRY = "TAG"
//	#@COUNTRIES = [TAG, TAG]
//
// Tags may be quoted or bare in either form.
func (p *Parser) parseScope() (*script.CountryScope, *script.SyntaxError) {
	marker := p.advance()
	if _, err := p.expect(lexer.TokEquals, "'='"); err != nil {
		return nil, err
	}

	if strings.EqualFold(marker.Text, "COUNTRY") {
		tag, err := p.parseTag()
		if err != nil {
			return nil, err
		}
		p.Log(slog.LevelDebug, "country scope", slog.String("tag", tag))
		return script.SingleCountry(tag), nil
	}

	if _, err := p.expect(lexer.TokLBracket, "'['"); err != nil {
		return nil, err
	}
	var tags []string
	for !p.check(lexer.TokRBracket) {
		if len(tags) > 0 {
			if _, err := p.expect(lexer.TokComma, "',' or ']'"); err != nil {
				return nil, err
			}
		}
		tag, err := p.parseTag()
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	p.advance()
	if len(tags) == 0 {
		return nil, p.errorAt(marker, "at least one country tag")
	}
	p.Log(slog.LevelDebug, "country scope", slog.Any("tags", tags))
	return script.ManyCountries(tags...), nil
}

func (p *Parser) parseTag() (string, *script.SyntaxError) {
	if p.check(lexer.TokString) || p.check(lexer.TokIdent) {
		return p.advance().Text, nil
	}
	return "", p.makeError("country tag")
}

// parseOverride parses #@override.KEY("VALUE") with an optional
// = { statements } body.
func (p *Parser) parseOverride() (script.Directive, *script.SyntaxError) {
	marker := p.advance()
	if _, err := p.expect(lexer.TokDot, "'.' after #@override"); err != nil {
		return script.Directive{}, err
	}
	key, err := p.expect(lexer.TokIdent, "override target key")
	if err != nil {
		return script.Directive{}, err
	}
	if _, err := p.expect(lexer.TokLParen, "'('"); err != nil {
		return script.Directive{}, err
	}
	value, err := p.expect(lexer.TokString, "override value string")
	if err != nil {
		return script.Directive{}, err
	}
	if _, err := p.expect(lexer.TokRParen, "')'"); err != nil {
		return script.Directive{}, err
	}

	d := script.Directive{Key: key.Text, Value: value.Text, Line: marker.Line}
	if p.check(lexer.TokEquals) {
		p.advance()
		if !p.check(lexer.TokLBrace) {
			return script.Directive{}, p.makeError("'{' after override '='")
		}
		bodyTok := p.peek()
		body, err := p.parseBraced()
		if err != nil {
			return script.Directive{}, err
		}
		block, ok := body.(*script.Block)
		if !ok {
			return script.Directive{}, p.errorAt(bodyTok, "statements in override body")
		}
		d.Body = block
	}
	p.Log(slog.LevelDebug, "override directive",
		slog.String("key", d.Key),
		slog.String("value", d.Value),
		slog.Int("line", d.Line))
	return d, nil
}

// skipMarker reports the current marker and skips it together with any
// tokens that follow it on the same source line.
func (p *Parser) skipMarker(code, message string) {
	marker := p.advance()
	p.warn(code, marker, message)
	for !p.isEOF() && p.peek().Line == marker.Line {
		p.advance()
	}
}
