package script

import (
	"fmt"
	"slices"
	"strings"
)

// Severity grades a diagnostic. Lower values are more severe.
type Severity int

const (
	SeverityFatal   Severity = 0 // File could not be parsed
	SeverityError   Severity = 1 // A record or value was dropped
	SeverityWarning Severity = 2 // Recovered, result may differ from intent
	SeverityInfo    Severity = 3 // Informational notice, e.g. a fallback was used
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", s)
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name or number.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity parses a severity name or its number.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "fatal", "0":
		return SeverityFatal, nil
	case "error", "1":
		return SeverityError, nil
	case "warning", "warn", "2":
		return SeverityWarning, nil
	case "info", "3":
		return SeverityInfo, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// Diagnostic is an issue found while lexing, parsing or extracting.
// Line and Column are 1-based, or 0 when not applicable.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Phase    string   `json:"phase" yaml:"phase"`
	Message  string   `json:"message" yaml:"message"`
	File     string   `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"`
}

// String returns a human-readable representation of the diagnostic.
// Format: "[severity] file:line:col: message" with location parts omitted when zero.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(d.Severity.String())
	b.WriteString("] ")
	if d.File != "" {
		b.WriteString(d.File)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
			if d.Column > 0 {
				fmt.Fprintf(&b, ":%d", d.Column)
			}
		}
		b.WriteString(": ")
	} else if d.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", d.Line)
	}
	b.WriteString(d.Message)
	return b.String()
}

// DiagnosticConfig controls which diagnostics are reported and which
// severities count as failures.
type DiagnosticConfig struct {
	// Level is the reporting threshold. Diagnostics with severity
	// greater than Level are suppressed.
	Level Severity

	// FailAt is the failure threshold used by ShouldFail.
	FailAt Severity

	// Overrides change the severity of specific codes.
	Overrides map[string]Severity

	// Ignore lists codes to suppress entirely.
	// Supports a leading or trailing * (e.g. "victory-*").
	Ignore []string

	// Silent suppresses all reporting.
	Silent bool
}

// DefaultConfig reports warnings and above and fails on fatal diagnostics.
func DefaultConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  SeverityWarning,
		FailAt: SeverityFatal,
	}
}

// StrictConfig reports everything and fails on dropped records.
func StrictConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  SeverityInfo,
		FailAt: SeverityError,
	}
}

// PermissiveConfig reports only errors and suppresses the noise common
// in modded files.
func PermissiveConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  SeverityError,
		FailAt: SeverityFatal,
		Ignore: []string{
			"illegal-character",
			"duplicate-variant",
		},
	}
}

// ShouldReport reports whether a diagnostic with the given code and
// severity passes this configuration.
func (c DiagnosticConfig) ShouldReport(code string, sev Severity) bool {
	if c.Silent {
		return false
	}
	if slices.ContainsFunc(c.Ignore, func(pattern string) bool {
		return MatchGlob(pattern, code)
	}) {
		return false
	}
	return c.severity(code, sev) <= c.Level
}

// ShouldFail reports whether a diagnostic with the given severity
// should count as a failure.
func (c DiagnosticConfig) ShouldFail(sev Severity) bool {
	return sev <= c.FailAt
}

// Filter returns the diagnostics that pass the configuration, with
// severity overrides applied.
func (c DiagnosticConfig) Filter(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if !c.ShouldReport(d.Code, d.Severity) {
			continue
		}
		d.Severity = c.severity(d.Code, d.Severity)
		out = append(out, d)
	}
	return out
}

func (c DiagnosticConfig) severity(code string, sev Severity) Severity {
	if override, ok := c.Overrides[code]; ok {
		return override
	}
	return sev
}

// MatchGlob performs simple glob matching with a leading or trailing * wildcard.
func MatchGlob(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(s, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(s, suffix)
	}
	return pattern == s
}
