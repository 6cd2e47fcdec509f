package types

// Diagnostic codes emitted by the lexer, parser, resolver and extractors.
// Centralizing these prevents silent breakage from typos in string literals.

// Phase names attached to diagnostics.
const (
	PhaseLexer   = "lexer"
	PhaseParser  = "parser"
	PhaseExtract = "extract"
)

// Lexer diagnostic codes.
const (
	DiagIllegalCharacter   = "illegal-character"
	DiagUnterminatedString = "unterminated-string"
	DiagMalformedMarker    = "malformed-marker"
)

// Parser diagnostic codes.
const (
	DiagParseError     = "parse-error"
	DiagUnknownMarker  = "unknown-marker"
	DiagMisplacedScope = "misplaced-scope"
	DiagInvalidNumber  = "invalid-number"
)

// Override diagnostic codes.
const (
	DiagOverrideTargetMissing = "override-target-missing"
)

// Extraction diagnostic codes.
const (
	DiagMissingRequiredField = "missing-required-field"
	DiagDuplicateVariant     = "duplicate-variant"
	DiagMissingCountryScope  = "missing-country-scope"
	DiagNonNumericProvince   = "non-numeric-province"
	DiagVictoryPointsOdd     = "victory-points-odd"
	DiagVictoryPointValue    = "victory-point-value"
	DiagFilenameFallback     = "filename-fallback"
	DiagInvalidBuilding      = "invalid-building"
	DiagInvalidField         = "invalid-field"
	DiagInvalidColor         = "invalid-color"
	DiagInvalidName          = "invalid-name"
	DiagMultipleEntries      = "multiple-entries"
	DiagExtractFailed        = "extract-failed"
)
