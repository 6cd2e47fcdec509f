package script

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"full", Diagnostic{Severity: SeverityWarning, File: "a.txt", Line: 3, Column: 7, Message: "m"}, "[warning] a.txt:3:7: m"},
		{"no column", Diagnostic{Severity: SeverityError, File: "a.txt", Line: 3, Message: "m"}, "[error] a.txt:3: m"},
		{"file only", Diagnostic{Severity: SeverityInfo, File: "a.txt", Message: "m"}, "[info] a.txt: m"},
		{"line only", Diagnostic{Severity: SeverityFatal, Line: 9, Message: "m"}, "[fatal] line 9: m"},
		{"bare", Diagnostic{Severity: SeverityWarning, Message: "m"}, "[warning] m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{
		"fatal": SeverityFatal, "0": SeverityFatal,
		"ERROR": SeverityError, "warn": SeverityWarning,
		"warning": SeverityWarning, "3": SeverityInfo,
	} {
		got, err := ParseSeverity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSeverity("loud")
	assert.Error(t, err)

	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("info")))
	assert.Equal(t, SeverityInfo, s)
	text, _ := SeverityError.MarshalText()
	assert.Equal(t, "error", string(text))
	assert.Equal(t, "Severity(9)", Severity(9).String())
}

func TestDiagnosticConfigs(t *testing.T) {
	def := DefaultConfig()
	assert.True(t, def.ShouldReport("anything", SeverityWarning))
	assert.False(t, def.ShouldReport("anything", SeverityInfo))
	assert.True(t, def.ShouldFail(SeverityFatal))
	assert.False(t, def.ShouldFail(SeverityError))

	strict := StrictConfig()
	assert.True(t, strict.ShouldReport("anything", SeverityInfo))
	assert.True(t, strict.ShouldFail(SeverityError))

	perm := PermissiveConfig()
	assert.False(t, perm.ShouldReport("illegal-character", SeverityError))
	assert.False(t, perm.ShouldReport("other", SeverityWarning))
	assert.True(t, perm.ShouldReport("other", SeverityError))

	silent := DiagnosticConfig{Level: SeverityInfo, Silent: true}
	assert.False(t, silent.ShouldReport("x", SeverityFatal))
}

func TestDiagnosticConfigFilter(t *testing.T) {
	cfg := DiagnosticConfig{
		Level:     SeverityWarning,
		Ignore:    []string{"victory-*"},
		Overrides: map[string]Severity{"filename-fallback": SeverityInfo, "invalid-color": SeverityError},
	}
	diags := []Diagnostic{
		{Code: "victory-points-odd", Severity: SeverityWarning},
		{Code: "filename-fallback", Severity: SeverityWarning},
		{Code: "invalid-color", Severity: SeverityWarning},
		{Code: "illegal-character", Severity: SeverityWarning},
	}
	got := cfg.Filter(diags)
	require.Len(t, got, 2)
	assert.Equal(t, "invalid-color", got[0].Code)
	assert.Equal(t, SeverityError, got[0].Severity)
	assert.Equal(t, "illegal-character", got[1].Code)
	assert.Equal(t, SeverityWarning, diags[2].Severity, "input is not modified")
}

func TestMatchGlob(t *testing.T) {
	assert.True(t, MatchGlob("*", "anything"))
	assert.True(t, MatchGlob("victory-*", "victory-points-odd"))
	assert.True(t, MatchGlob("*-odd", "victory-points-odd"))
	assert.True(t, MatchGlob("invalid-color", "invalid-color"))
	assert.False(t, MatchGlob("invalid", "invalid-color"))
	assert.False(t, MatchGlob("state-*", "victory-points-odd"))
}

func TestSyntaxError(t *testing.T) {
	err := fmt.Errorf("load: %w", &SyntaxError{Filename: "a.txt", Line: 2, Column: 5, Found: "'}'", Expected: "'='"})
	assert.ErrorIs(t, err, ErrSyntax)
	assert.NotErrorIs(t, err, ErrExtract)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "a.txt:2:5: syntax error: expected '=', found '}'", se.Error())

	d := se.Diagnostic()
	assert.Equal(t, SeverityFatal, d.Severity)
	assert.Equal(t, "parse-error", d.Code)
	assert.Equal(t, 5, d.Column)

	assert.Equal(t, "1:1: syntax error: expected x, found y", (&SyntaxError{Line: 1, Column: 1, Found: "y", Expected: "x"}).Error())
}

func TestExtractError(t *testing.T) {
	err := &ExtractError{Filename: "s.txt", Kind: "state", Reason: "no state block"}
	assert.ErrorIs(t, err, ErrExtract)
	assert.Equal(t, "s.txt: extract state: no state block", err.Error())
	assert.Equal(t, "extract state: no state block", (&ExtractError{Kind: "state", Reason: "no state block"}).Error())
}
