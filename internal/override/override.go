// Package override applies #@override directives to parsed blocks.
//
// For a directive on key K with value V the block is rewritten as:
//
//	original_K = <previous value of K>   (only when original_K is absent)
//	K = "V"
//	K_overridden = yes
//
// followed by the directive body, merged with ordinary duplicate-key rules.
// Provenance is first-wins: a later override of the same key updates K and
// the flag but leaves original_K alone.
package override

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

const (
	originalPrefix   = "original_"
	overriddenSuffix = "_overridden"
)

// OriginalKey returns the key under which the pre-override value of key is kept.
func OriginalKey(key string) string {
	return originalPrefix + key
}

// FlagKey returns the key of the boolean flag set when key is overridden.
func FlagKey(key string) string {
	return key + overriddenSuffix
}

// Apply applies directives to block in order and returns warnings for
// directives whose target key is not present in the block.
func Apply(block *script.Block, directives []script.Directive, logger *slog.Logger) []script.Diagnostic {
	log := types.Logger{L: logger}
	var diags []script.Diagnostic

	for _, d := range directives {
		key := script.Ident(d.Key)
		orig := script.Ident(OriginalKey(d.Key))

		if f, ok := block.Lookup(key); ok {
			if _, seen := block.Lookup(orig); !seen {
				block.SetMerged(orig, f.Value)
			}
		} else {
			diags = append(diags, script.Diagnostic{
				Severity: script.SeverityWarning,
				Code:     types.DiagOverrideTargetMissing,
				Phase:    types.PhaseExtract,
				Message:  fmt.Sprintf("override target %q is not set in the block", d.Key),
				Line:     d.Line,
			})
		}

		block.Set(key, script.StringValue(d.Value))
		block.Set(script.Ident(FlagKey(d.Key)), script.BoolValue(true))
		block.Merge(d.Body)

		log.Log(slog.LevelDebug, "override applied",
			slog.String("key", d.Key),
			slog.String("value", d.Value))
	}
	return diags
}

// Resolve applies the block's own collected directives and clears them,
// so resolving the same block twice is a no-op.
func Resolve(block *script.Block, logger *slog.Logger) []script.Diagnostic {
	diags := Apply(block, block.Directives, logger)
	block.Directives = nil
	return diags
}

// Overridden returns the keys that carry a true overridden flag, in
// block order.
func Overridden(block *script.Block) []string {
	var keys []string
	for _, f := range block.Fields() {
		if f.Key.Kind != script.KeyIdent {
			continue
		}
		name, ok := strings.CutSuffix(f.Key.Name, overriddenSuffix)
		if !ok || name == "" {
			continue
		}
		if s, ok := f.Value.Last().(script.Scalar); ok && s.Kind == script.ScalarBool && s.Bool {
			keys = append(keys, name)
		}
	}
	return keys
}
