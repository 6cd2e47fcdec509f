// Package extract turns parsed script documents into typed game records.
//
// Each record kind has its own extractor:
//
//   - EquipmentVariants and DesignsByCountry read create_equipment_variant blocks
//   - State reads a history/states file
//   - StrategicRegion reads a map/strategicregions file
//   - CountryColors reads common/countries/colors.txt
//   - NameList reads division and ship name lists
//
// Extractors never abort on a malformed sub-record: the record is skipped
// and a diagnostic is returned alongside the result. Only State and
// StrategicRegion can fail outright, with a *script.ExtractError, when
// no usable record can be produced.
package extract

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// Option configures an extractor.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger for debug/trace output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Kind names a record kind.
type Kind string

const (
	KindEquipment Kind = "equipment"
	KindDesigns   Kind = "designs"
	KindState     Kind = "state"
	KindRegion    Kind = "region"
	KindColors    Kind = "colors"
	KindNames     Kind = "names"
)

type extractFunc func(doc *script.Document, opts ...Option) (any, []script.Diagnostic, error)

var registry = map[Kind]extractFunc{
	KindEquipment: func(doc *script.Document, opts ...Option) (any, []script.Diagnostic, error) {
		v, d := EquipmentVariants(doc, opts...)
		return v, d, nil
	},
	KindDesigns: func(doc *script.Document, opts ...Option) (any, []script.Diagnostic, error) {
		v, d := DesignsByCountry(doc, opts...)
		return v, d, nil
	},
	KindState: func(doc *script.Document, opts ...Option) (any, []script.Diagnostic, error) {
		return State(doc, opts...)
	},
	KindRegion: func(doc *script.Document, opts ...Option) (any, []script.Diagnostic, error) {
		return StrategicRegion(doc, opts...)
	},
	KindColors: func(doc *script.Document, opts ...Option) (any, []script.Diagnostic, error) {
		v, d := CountryColors(doc, opts...)
		return v, d, nil
	},
	KindNames: func(doc *script.Document, opts ...Option) (any, []script.Diagnostic, error) {
		v, d := NameList(doc, opts...)
		return v, d, nil
	},
}

// Kinds returns every known kind in a stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	if _, ok := registry[k]; !ok {
		return "", fmt.Errorf("unknown record kind %q", s)
	}
	return k, nil
}

// Result is the outcome of Run.
type Result struct {
	Kind        Kind                `json:"kind" yaml:"kind"`
	Value       any                 `json:"value" yaml:"value"`
	Diagnostics []script.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Run dispatches doc to the extractor for kind.
func Run(kind Kind, doc *script.Document, opts ...Option) (*Result, error) {
	fn, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	v, diags, err := fn(doc, opts...)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: kind, Value: v, Diagnostics: diags}, nil
}

// DetectKind guesses the record kind of a file from its path within a
// game or mod directory.
func DetectKind(p string) (Kind, bool) {
	p = "/" + strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	switch {
	case strings.Contains(p, "/history/states/"):
		return KindState, true
	case strings.Contains(p, "/map/strategicregions/"):
		return KindRegion, true
	case strings.HasSuffix(p, "/common/countries/colors.txt"), path.Base(p) == "colors.txt":
		return KindColors, true
	case strings.Contains(p, "/common/units/names"):
		return KindNames, true
	case strings.Contains(p, "/history/units/"):
		return KindDesigns, true
	}
	return "", false
}

// extraction carries per-call state shared by the extractors.
type extraction struct {
	kind  Kind
	file  string
	diags []script.Diagnostic
	types.Logger
}

func newExtraction(kind Kind, doc *script.Document, opts []Option) *extraction {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	x := &extraction{
		kind:   kind,
		file:   doc.Filename,
		Logger: types.Logger{L: types.Component(cfg.logger, "extract")},
	}
	x.Log(slog.LevelDebug, "extracting",
		slog.String("kind", string(kind)),
		slog.String("file", doc.Filename),
		slog.Int("entries", len(doc.Entries)))
	return x
}

func (x *extraction) report(sev script.Severity, code string, line int, format string, args ...any) {
	x.diags = append(x.diags, script.Diagnostic{
		Severity: sev,
		Code:     code,
		Phase:    types.PhaseExtract,
		Message:  fmt.Sprintf(format, args...),
		File:     x.file,
		Line:     line,
	})
}

// dropped reports a sub-record that was skipped.
func (x *extraction) dropped(code string, line int, format string, args ...any) {
	x.report(script.SeverityError, code, line, format, args...)
}

func (x *extraction) warn(code string, line int, format string, args ...any) {
	x.report(script.SeverityWarning, code, line, format, args...)
}

func (x *extraction) info(code string, line int, format string, args ...any) {
	x.report(script.SeverityInfo, code, line, format, args...)
}

// absorb adds diagnostics produced by another pass, stamping the file name.
func (x *extraction) absorb(diags []script.Diagnostic) {
	for _, d := range diags {
		if d.File == "" {
			d.File = x.file
		}
		x.diags = append(x.diags, d)
	}
}

func (x *extraction) fail(reason string, args ...any) *script.ExtractError {
	return &script.ExtractError{
		Filename: x.file,
		Kind:     string(x.kind),
		Reason:   fmt.Sprintf(reason, args...),
	}
}
